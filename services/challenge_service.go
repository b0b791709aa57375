package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/challengehub-cli/models"
)

// ChallengeService reads challenges and applies the per-field PATCH updates
// the platform exposes after creation (title, description, guidelines and so
// on are each independently editable).
type ChallengeService struct {
	gw     Gateway
	logger *slog.Logger
}

func NewChallengeService(gw Gateway, logger *slog.Logger) *ChallengeService {
	return &ChallengeService{gw: gw, logger: logger}
}

func (s *ChallengeService) List(ctx context.Context) (*models.Page[models.Challenge], error) {
	var page models.Page[models.Challenge]
	if err := s.gw.GetJSON(ctx, "challenges/challenge/all", &page); err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return &page, nil
}

func (s *ChallengeService) Page(ctx context.Context, url string) (*models.Page[models.Challenge], error) {
	var page models.Page[models.Challenge]
	if err := s.gw.GetURL(ctx, url, &page); err != nil {
		return nil, fmt.Errorf("load challenge page: %w", err)
	}
	return &page, nil
}

func (s *ChallengeService) Get(ctx context.Context, challengeID int) (*models.Challenge, error) {
	if challengeID == 0 {
		return nil, ErrChallengeIDRequired
	}
	var challenge models.Challenge
	if err := s.gw.GetJSON(ctx, fmt.Sprintf("challenges/challenge/%d/", challengeID), &challenge); err != nil {
		return nil, fmt.Errorf("get challenge %d: %w", challengeID, err)
	}
	return &challenge, nil
}

// Update patches the given fields on a challenge. Fields map directly onto
// the wire names (title, description, submission_guidelines, ...).
func (s *ChallengeService) Update(ctx context.Context, hostTeamID, challengeID int, fields map[string]any) (*models.Challenge, error) {
	if hostTeamID == 0 {
		return nil, ErrHostTeamRequired
	}
	if challengeID == 0 {
		return nil, ErrChallengeIDRequired
	}
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	path := fmt.Sprintf("challenges/challenge_host_team/%d/challenge/%d", hostTeamID, challengeID)
	var challenge models.Challenge
	if err := s.gw.PatchJSON(ctx, path, fields, &challenge); err != nil {
		return nil, fmt.Errorf("update challenge %d: %w", challengeID, err)
	}
	s.logger.Info("challenge updated", slog.Int("challenge_id", challengeID), slog.Int("fields", len(fields)))
	return &challenge, nil
}

// Publish flips the published flag on.
func (s *ChallengeService) Publish(ctx context.Context, hostTeamID, challengeID int) (*models.Challenge, error) {
	return s.Update(ctx, hostTeamID, challengeID, map[string]any{"published": true})
}

// ListPhases returns all phases of a challenge.
func (s *ChallengeService) ListPhases(ctx context.Context, challengeID int) ([]models.ChallengePhase, error) {
	if challengeID == 0 {
		return nil, ErrChallengeIDRequired
	}
	var page models.Page[models.ChallengePhase]
	if err := s.gw.GetJSON(ctx, fmt.Sprintf("challenges/challenge/%d/challenge_phase", challengeID), &page); err != nil {
		return nil, fmt.Errorf("list phases of challenge %d: %w", challengeID, err)
	}
	return page.Results, nil
}

// UpdatePhase patches fields on one phase.
func (s *ChallengeService) UpdatePhase(ctx context.Context, challengeID, phaseID int, fields map[string]any) (*models.ChallengePhase, error) {
	if challengeID == 0 {
		return nil, ErrChallengeIDRequired
	}
	if phaseID == 0 {
		return nil, ErrPhaseIDRequired
	}
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	path := fmt.Sprintf("challenges/challenge/%d/challenge_phase/%d", challengeID, phaseID)
	var phase models.ChallengePhase
	if err := s.gw.PatchJSON(ctx, path, fields, &phase); err != nil {
		return nil, fmt.Errorf("update phase %d: %w", phaseID, err)
	}
	return &phase, nil
}

// ListPhaseSplits returns the phase/dataset-split/leaderboard pairings of a
// challenge.
func (s *ChallengeService) ListPhaseSplits(ctx context.Context, challengeID int) ([]models.ChallengePhaseSplit, error) {
	if challengeID == 0 {
		return nil, ErrChallengeIDRequired
	}
	var splits []models.ChallengePhaseSplit
	if err := s.gw.GetJSON(ctx, fmt.Sprintf("challenges/%d/challenge_phase_split", challengeID), &splits); err != nil {
		return nil, fmt.Errorf("list phase splits of challenge %d: %w", challengeID, err)
	}
	return splits, nil
}
