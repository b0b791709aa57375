package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/challengehub-cli/models"
	"github.com/Dosada05/challengehub-cli/poller"
)

// leaderboardPageSize is deliberately large: rankings are rendered whole,
// not paginated.
const leaderboardPageSize = 1000

// LeaderboardService fetches the ranked results of a challenge phase split.
type LeaderboardService struct {
	gw     Gateway
	logger *slog.Logger
}

func NewLeaderboardService(gw Gateway, logger *slog.Logger) *LeaderboardService {
	return &LeaderboardService{gw: gw, logger: logger}
}

// Fetch returns all rows of a phase split's leaderboard.
func (s *LeaderboardService) Fetch(ctx context.Context, phaseSplitID int) (*models.Page[models.LeaderboardRow], error) {
	if phaseSplitID == 0 {
		return nil, ErrPhaseSplitIDRequired
	}
	path := fmt.Sprintf("jobs/challenge_phase_split/%d/leaderboard/?page_size=%d", phaseSplitID, leaderboardPageSize)
	var page models.Page[models.LeaderboardRow]
	if err := s.gw.GetJSON(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("fetch leaderboard for phase split %d: %w", phaseSplitID, err)
	}
	return &page, nil
}

// Snapshot builds the poller change signal for a leaderboard: row count plus
// a fingerprint of entry ids and scores.
func (s *LeaderboardService) Snapshot(ctx context.Context, phaseSplitID int) (poller.Snapshot, error) {
	page, err := s.Fetch(ctx, phaseSplitID)
	if err != nil {
		return poller.Snapshot{}, err
	}
	return LeaderboardSnapshot(page), nil
}

// LeaderboardSnapshot derives the change signal from an already-fetched page.
func LeaderboardSnapshot(page *models.Page[models.LeaderboardRow]) poller.Snapshot {
	var b strings.Builder
	for _, row := range page.Results {
		fmt.Fprintf(&b, "%d=%v;", row.ID, row.Result)
	}
	return poller.Snapshot{Count: page.Count, Fingerprint: b.String()}
}
