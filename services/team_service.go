package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/challengehub-cli/models"
)

// TeamService covers host and participant team operations: paginated
// listing, creation and self-removal from a participant team.
type TeamService struct {
	gw     Gateway
	logger *slog.Logger
}

func NewTeamService(gw Gateway, logger *slog.Logger) *TeamService {
	return &TeamService{gw: gw, logger: logger}
}

// ListHostTeams fetches the first page of the current user's host teams.
func (s *TeamService) ListHostTeams(ctx context.Context) (*models.Page[models.HostTeam], error) {
	var page models.Page[models.HostTeam]
	if err := s.gw.GetJSON(ctx, "hosts/challenge_host_team/", &page); err != nil {
		return nil, fmt.Errorf("list host teams: %w", err)
	}
	return &page, nil
}

// HostTeamsPage follows a next/previous link from an earlier envelope.
func (s *TeamService) HostTeamsPage(ctx context.Context, url string) (*models.Page[models.HostTeam], error) {
	var page models.Page[models.HostTeam]
	if err := s.gw.GetURL(ctx, url, &page); err != nil {
		return nil, fmt.Errorf("load host team page: %w", err)
	}
	return &page, nil
}

func (s *TeamService) CreateHostTeam(ctx context.Context, name, teamURL string) (*models.HostTeam, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrTeamNameRequired
	}
	payload := map[string]string{"team_name": name}
	if teamURL != "" {
		payload["team_url"] = teamURL
	}
	var team models.HostTeam
	if err := s.gw.PostJSON(ctx, "hosts/challenge_host_team/", payload, &team); err != nil {
		return nil, fmt.Errorf("create host team: %w", err)
	}
	s.logger.Info("host team created", slog.Int("team_id", team.ID), slog.String("name", team.TeamName))
	return &team, nil
}

func (s *TeamService) ListParticipantTeams(ctx context.Context) (*models.Page[models.ParticipantTeam], error) {
	var page models.Page[models.ParticipantTeam]
	if err := s.gw.GetJSON(ctx, "participants/participant_team", &page); err != nil {
		return nil, fmt.Errorf("list participant teams: %w", err)
	}
	return &page, nil
}

func (s *TeamService) ParticipantTeamsPage(ctx context.Context, url string) (*models.Page[models.ParticipantTeam], error) {
	var page models.Page[models.ParticipantTeam]
	if err := s.gw.GetURL(ctx, url, &page); err != nil {
		return nil, fmt.Errorf("load participant team page: %w", err)
	}
	return &page, nil
}

func (s *TeamService) CreateParticipantTeam(ctx context.Context, name, teamURL string) (*models.ParticipantTeam, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrTeamNameRequired
	}
	payload := map[string]string{"team_name": name}
	if teamURL != "" {
		payload["team_url"] = teamURL
	}
	var team models.ParticipantTeam
	if err := s.gw.PostJSON(ctx, "participants/participant_team", payload, &team); err != nil {
		return nil, fmt.Errorf("create participant team: %w", err)
	}
	s.logger.Info("participant team created", slog.Int("team_id", team.ID), slog.String("name", team.TeamName))
	return &team, nil
}

// RemoveSelf removes the current user from a participant team.
func (s *TeamService) RemoveSelf(ctx context.Context, participantTeamID int) error {
	path := fmt.Sprintf("participants/remove_self_from_participant_team/%d", participantTeamID)
	if err := s.gw.Delete(ctx, path); err != nil {
		return fmt.Errorf("leave participant team %d: %w", participantTeamID, err)
	}
	s.logger.Info("left participant team", slog.Int("team_id", participantTeamID))
	return nil
}
