package models

import "time"

// Challenge is created once through the wizard and mutated field-by-field
// afterwards via PATCH. Image and EvaluationScript are server-side URLs of
// the uploaded blobs.
type Challenge struct {
	ID                   int       `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	TermsAndConditions   string    `json:"terms_and_conditions"`
	SubmissionGuidelines string    `json:"submission_guidelines"`
	EvaluationDetails    string    `json:"evaluation_details"`
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
	Published            bool      `json:"published"`
	IsActive             bool      `json:"is_active"`
	IsDockerBased        bool      `json:"is_docker_based"`
	Image                *string   `json:"image"`
	EvaluationScript     *string   `json:"evaluation_script"`
	CLIVersion           *string   `json:"cli_version"`
	Creator              *HostTeam `json:"creator,omitempty"`
}

// Leaderboard holds the scoring schema phase splits reference by id.
type Leaderboard struct {
	ID     int    `json:"id"`
	Schema Schema `json:"schema"`
}

// Schema describes the ordered metric columns of a leaderboard.
type Schema struct {
	Labels       []string `json:"labels"`
	DefaultOrder string   `json:"default_order_by"`
}

// LeaderboardRow is one ranked entry of a phase split's leaderboard.
type LeaderboardRow struct {
	ID                  int       `json:"id"`
	ParticipantTeamName string    `json:"submission__participant_team__team_name"`
	Result              []float64 `json:"result"`
	SubmittedAt         time.Time `json:"submission__submitted_at"`
}
