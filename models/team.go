package models

import "time"

// HostTeam owns challenges. Membership is managed server-side; the client
// only creates teams and lists the ones the current user belongs to.
type HostTeam struct {
	ID        int       `json:"id"`
	TeamName  string    `json:"team_name"`
	TeamURL   *string   `json:"team_url,omitempty"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ParticipantTeam takes part in challenges and owns submissions.
type ParticipantTeam struct {
	ID        int       `json:"id"`
	TeamName  string    `json:"team_name"`
	TeamURL   *string   `json:"team_url,omitempty"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	Members   []string  `json:"members,omitempty"`
}
