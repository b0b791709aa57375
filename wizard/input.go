package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Dosada05/challengehub-cli/gateway"
	"github.com/Dosada05/challengehub-cli/models"
)

// Manifest is the declarative input of one wizard run: everything the five
// steps need, validated up front so a run does not fail halfway on a typo.
// Phase splits reference phases, dataset splits and leaderboards by their
// index in this manifest; the sequencer resolves indexes to created ids.
type Manifest struct {
	HostTeamID    int                `json:"host_team_id" validate:"required"`
	Challenge     ChallengeForm      `json:"challenge"`
	Leaderboards  []LeaderboardForm  `json:"leaderboards" validate:"required,min=1,dive"`
	Phases        []PhaseForm        `json:"phases" validate:"required,min=1,dive"`
	DatasetSplits []DatasetSplitForm `json:"dataset_splits" validate:"required,min=1,dive"`
	PhaseSplits   []PhaseSplitForm   `json:"phase_splits" validate:"required,min=1,dive"`
}

type ChallengeForm struct {
	Title                string    `json:"title" validate:"required"`
	Description          string    `json:"description" validate:"required"`
	TermsAndConditions   string    `json:"terms_and_conditions"`
	SubmissionGuidelines string    `json:"submission_guidelines"`
	EvaluationDetails    string    `json:"evaluation_details"`
	StartDate            time.Time `json:"start_date" validate:"required"`
	EndDate              time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	IsDockerBased        bool      `json:"is_docker_based"`

	// Local file paths uploaded with the creation request.
	ImagePath            string `json:"image_path"`
	EvaluationScriptPath string `json:"evaluation_script_path" validate:"required"`
}

type LeaderboardForm struct {
	// ID is the client-assigned identity of the entry within this wizard
	// run; phase splits reference it. Defaults to the 1-based position.
	ID     int           `json:"id"`
	Schema models.Schema `json:"schema" validate:"required"`
}

type PhaseForm struct {
	Name                 string    `json:"name" validate:"required"`
	Codename             string    `json:"codename" validate:"required"`
	Description          string    `json:"description"`
	MaxSubmissionsPerDay int       `json:"max_submissions_per_day" validate:"min=1"`
	MaxSubmissions       int       `json:"max_submissions" validate:"min=1"`
	StartDate            time.Time `json:"start_date" validate:"required"`
	EndDate              time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	IsPublic             bool      `json:"is_public"`
	LeaderboardPublic    bool      `json:"leaderboard_public"`

	// Optional local path of the ground-truth annotation file.
	TestAnnotationPath string `json:"test_annotation_path"`
}

type DatasetSplitForm struct {
	Name     string `json:"name" validate:"required"`
	Codename string `json:"codename" validate:"required"`
}

type PhaseSplitForm struct {
	PhaseIndex        int                         `json:"phase_index" validate:"min=0"`
	DatasetSplitIndex int                         `json:"dataset_split_index" validate:"min=0"`
	LeaderboardIndex  int                         `json:"leaderboard_index" validate:"min=0"`
	Visibility        models.PhaseSplitVisibility `json:"visibility" validate:"required,min=1,max=3"`
}

// LoadManifest reads and decodes a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// validateManifest runs struct validation plus the cross-reference checks
// the tag language cannot express. Field errors come back in the same shape
// as server-side 400 responses, so callers render both identically.
func validateManifest(v *validator.Validate, m *Manifest) error {
	if m.HostTeamID == 0 {
		return ErrHostTeamRequired
	}

	fields := make(map[string][]string)
	if err := v.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			name := manifestFieldName(fe)
			fields[name] = append(fields[name], validationMessage(fe))
		}
	}

	for i, ps := range m.PhaseSplits {
		row := fmt.Sprintf("phase_splits[%d]", i)
		if ps.PhaseIndex >= len(m.Phases) {
			fields[row] = append(fields[row], fmt.Sprintf("phase_index %d out of range", ps.PhaseIndex))
		}
		if ps.DatasetSplitIndex >= len(m.DatasetSplits) {
			fields[row] = append(fields[row], fmt.Sprintf("dataset_split_index %d out of range", ps.DatasetSplitIndex))
		}
		if ps.LeaderboardIndex >= len(m.Leaderboards) {
			fields[row] = append(fields[row], fmt.Sprintf("leaderboard_index %d out of range", ps.LeaderboardIndex))
		}
	}

	if len(fields) > 0 {
		return &gateway.ValidationError{Fields: fields}
	}
	return nil
}

// manifestFieldName turns a validator namespace like
// "Manifest.Challenge.Title" into "challenge.title".
func manifestFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	parts := strings.Split(ns, ".")
	for i, part := range parts {
		parts[i] = toSnake(part)
	}
	return strings.Join(parts, ".")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "gtfield":
		return fmt.Sprintf("Must be after %s.", toSnake(fe.Param()))
	default:
		return fmt.Sprintf("Failed %s validation.", fe.Tag())
	}
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
