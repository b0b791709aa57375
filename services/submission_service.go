package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/challengehub-cli/gateway"
	"github.com/Dosada05/challengehub-cli/models"
	"github.com/Dosada05/challengehub-cli/poller"
)

// countConcurrency bounds the per-phase count fan-out.
const countConcurrency = 4

// SubmissionInput is the form for a new submission. File is the multipart
// payload; FileName is sent as the stored name.
type SubmissionInput struct {
	File              io.Reader
	FileName          string
	MethodName        string
	MethodDescription string
	ProjectURL        string
	PublicationURL    string
	IsPublic          bool
}

// SubmissionService creates, lists and patches submissions.
type SubmissionService struct {
	gw     Gateway
	logger *slog.Logger
}

func NewSubmissionService(gw Gateway, logger *slog.Logger) *SubmissionService {
	return &SubmissionService{gw: gw, logger: logger}
}

func submissionPath(challengeID, phaseID int) string {
	return fmt.Sprintf("jobs/challenge/%d/challenge_phase/%d/submission/", challengeID, phaseID)
}

// Create uploads a submission as multipart form data.
func (s *SubmissionService) Create(ctx context.Context, challengeID, phaseID int, input SubmissionInput) (*models.Submission, error) {
	if challengeID == 0 {
		return nil, ErrChallengeIDRequired
	}
	if phaseID == 0 {
		return nil, ErrPhaseIDRequired
	}
	if input.File == nil {
		return nil, ErrSubmissionFileRequired
	}

	fields := map[string]string{
		"status":    string(models.SubmissionSubmitted),
		"is_public": strconv.FormatBool(input.IsPublic),
	}
	if input.MethodName != "" {
		fields["method_name"] = input.MethodName
	}
	if input.MethodDescription != "" {
		fields["method_description"] = input.MethodDescription
	}
	if input.ProjectURL != "" {
		fields["project_url"] = input.ProjectURL
	}
	if input.PublicationURL != "" {
		fields["publication_url"] = input.PublicationURL
	}

	fileName := input.FileName
	if fileName == "" {
		fileName = "submission.zip"
	}
	files := []gateway.FilePart{{Field: "input_file", FileName: filepath.Base(fileName), Reader: input.File}}

	var sub models.Submission
	if err := s.gw.PostMultipart(ctx, submissionPath(challengeID, phaseID), fields, files, &sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	s.logger.Info("submission created",
		slog.Int("submission_id", sub.ID),
		slog.Int("challenge_id", challengeID),
		slog.Int("phase_id", phaseID),
	)
	return &sub, nil
}

func (s *SubmissionService) List(ctx context.Context, challengeID, phaseID int) (*models.Page[models.Submission], error) {
	if challengeID == 0 {
		return nil, ErrChallengeIDRequired
	}
	if phaseID == 0 {
		return nil, ErrPhaseIDRequired
	}
	var page models.Page[models.Submission]
	if err := s.gw.GetJSON(ctx, submissionPath(challengeID, phaseID), &page); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return &page, nil
}

func (s *SubmissionService) Page(ctx context.Context, url string) (*models.Page[models.Submission], error) {
	var page models.Page[models.Submission]
	if err := s.gw.GetURL(ctx, url, &page); err != nil {
		return nil, fmt.Errorf("load submission page: %w", err)
	}
	return &page, nil
}

// SetVisibility toggles whether a submission appears on public leaderboards.
func (s *SubmissionService) SetVisibility(ctx context.Context, challengeID, phaseID, submissionID int, public bool) (*models.Submission, error) {
	return s.patch(ctx, challengeID, phaseID, submissionID, map[string]any{"is_public": public})
}

// SetFlagged toggles the host-side flag on a submission.
func (s *SubmissionService) SetFlagged(ctx context.Context, challengeID, phaseID, submissionID int, flagged bool) (*models.Submission, error) {
	return s.patch(ctx, challengeID, phaseID, submissionID, map[string]any{"is_flagged": flagged})
}

func (s *SubmissionService) patch(ctx context.Context, challengeID, phaseID, submissionID int, fields map[string]any) (*models.Submission, error) {
	if challengeID == 0 {
		return nil, ErrChallengeIDRequired
	}
	if phaseID == 0 {
		return nil, ErrPhaseIDRequired
	}
	path := fmt.Sprintf("%s%d", submissionPath(challengeID, phaseID), submissionID)
	var sub models.Submission
	if err := s.gw.PatchJSON(ctx, path, fields, &sub); err != nil {
		return nil, fmt.Errorf("update submission %d: %w", submissionID, err)
	}
	return &sub, nil
}

// CountByPhase fetches the submission count of each phase concurrently.
// Results are keyed by phase id, so completion order cannot scramble the
// mapping the way loop-ordered response handling would.
func (s *SubmissionService) CountByPhase(ctx context.Context, challengeID int, phaseIDs []int) (map[int]int, error) {
	if challengeID == 0 {
		return nil, ErrChallengeIDRequired
	}

	counts := make(map[int]int, len(phaseIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(countConcurrency)
	for _, phaseID := range phaseIDs {
		phaseID := phaseID
		g.Go(func() error {
			var resp struct {
				Count int `json:"participant_team_submission_count"`
			}
			path := fmt.Sprintf("analytics/challenge/%d/challenge_phase/%d/count", challengeID, phaseID)
			if err := s.gw.GetJSON(gctx, path, &resp); err != nil {
				return fmt.Errorf("count submissions for phase %d: %w", phaseID, err)
			}
			mu.Lock()
			counts[phaseID] = resp.Count
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Snapshot builds the poller change signal for a phase's submission list:
// total count plus a fingerprint of ids and statuses, so both new rows and
// status transitions of existing rows register.
func (s *SubmissionService) Snapshot(ctx context.Context, challengeID, phaseID int) (poller.Snapshot, error) {
	page, err := s.List(ctx, challengeID, phaseID)
	if err != nil {
		return poller.Snapshot{}, err
	}
	return SubmissionSnapshot(page), nil
}

// SubmissionSnapshot derives the change signal from an already-fetched page.
func SubmissionSnapshot(page *models.Page[models.Submission]) poller.Snapshot {
	var b strings.Builder
	for _, sub := range page.Results {
		fmt.Fprintf(&b, "%d=%s;", sub.ID, sub.Status)
	}
	return poller.Snapshot{Count: page.Count, Fingerprint: b.String()}
}
