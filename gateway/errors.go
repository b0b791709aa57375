package gateway

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errors the gateway maps API responses onto. Callers branch on these with
// errors.Is; everything else is wrapped into ErrRequestFailed.
var (
	// Token missing, invalid or expired (HTTP 401). The credential store is
	// already cleared by the time this is returned.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// The authenticated user may not perform this action (HTTP 403).
	ErrForbidden = errors.New("you do not have permission to perform this action")

	// Resource does not exist (HTTP 404).
	ErrNotFound = errors.New("requested resource not found")

	// Transport failure or an unexpected status code.
	ErrRequestFailed = errors.New("something went wrong")
)

// ValidationError carries the field → messages map of an HTTP 400 response,
// so callers can attach each message to the offending input field.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("validation failed:")
	for _, name := range names {
		fmt.Fprintf(&b, " %s: %s;", name, strings.Join(e.Fields[name], ", "))
	}
	return strings.TrimSuffix(b.String(), ";")
}

// FieldErrors returns the messages for one field, or nil.
func (e *ValidationError) FieldErrors(field string) []string {
	return e.Fields[field]
}
