package models

import (
	"encoding/json"
	"time"
)

// SubmissionStatus values reported by the evaluation backend.
type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "submitted"
	SubmissionRunning   SubmissionStatus = "running"
	SubmissionFinished  SubmissionStatus = "finished"
	SubmissionFailed    SubmissionStatus = "failed"
	SubmissionCancelled SubmissionStatus = "cancelled"
)

// Terminal reports whether the backend will not change this status anymore.
func (s SubmissionStatus) Terminal() bool {
	switch s {
	case SubmissionFinished, SubmissionFailed, SubmissionCancelled:
		return true
	}
	return false
}

// Submission is one uploaded entry for a challenge phase.
type Submission struct {
	ID                 int              `json:"id"`
	ParticipantTeam    int              `json:"participant_team"`
	Status             SubmissionStatus `json:"status"`
	InputFile          *string          `json:"input_file"`
	MethodName         string           `json:"method_name"`
	MethodDescription  string           `json:"method_description"`
	ProjectURL         string           `json:"project_url"`
	PublicationURL     string           `json:"publication_url"`
	IsPublic           bool             `json:"is_public"`
	IsFlagged          bool             `json:"is_flagged"`
	SubmittedAt        time.Time        `json:"submitted_at"`
	SubmissionMetadata json.RawMessage  `json:"submission_metadata,omitempty"`
}
