package models

import "time"

// ChallengePhase is one evaluation stage of a challenge.
type ChallengePhase struct {
	ID                   int       `json:"id"`
	Name                 string    `json:"name"`
	Description          string    `json:"description"`
	Codename             string    `json:"codename"`
	MaxSubmissionsPerDay int       `json:"max_submissions_per_day"`
	MaxSubmissions       int       `json:"max_submissions"`
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
	IsPublic             bool      `json:"is_public"`
	LeaderboardPublic    bool      `json:"leaderboard_public"`
	TestAnnotation       *string   `json:"test_annotation"`
	Challenge            int       `json:"challenge"`
}

// DatasetSplit names a portion of the challenge dataset.
type DatasetSplit struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Codename string `json:"codename"`
}

// PhaseSplitVisibility controls who can see a phase split's leaderboard.
type PhaseSplitVisibility int

const (
	VisibilityHost         PhaseSplitVisibility = 1
	VisibilityOwnerAndHost PhaseSplitVisibility = 2
	VisibilityPublic       PhaseSplitVisibility = 3
)

// ChallengePhaseSplit pairs a phase with a dataset split and the leaderboard
// its results are ranked on.
type ChallengePhaseSplit struct {
	ID             int                  `json:"id"`
	ChallengePhase int                  `json:"challenge_phase"`
	DatasetSplit   int                  `json:"dataset_split"`
	Leaderboard    int                  `json:"leaderboard"`
	Visibility     PhaseSplitVisibility `json:"visibility"`
}
