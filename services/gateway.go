package services

import (
	"context"

	"github.com/Dosada05/challengehub-cli/gateway"
)

// Gateway is the HTTP capability the resource services consume. Satisfied by
// *gateway.Gateway; tests substitute a mock.
type Gateway interface {
	GetJSON(ctx context.Context, path string, out any) error
	GetURL(ctx context.Context, url string, out any) error
	PostJSON(ctx context.Context, path string, body, out any) error
	PutJSON(ctx context.Context, path string, body, out any) error
	PatchJSON(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
	PostMultipart(ctx context.Context, path string, fields map[string]string, files []gateway.FilePart, out any) error
}
