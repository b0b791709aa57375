// Package wizard drives challenge creation through its five dependent API
// steps: challenge, leaderboards, phases, dataset splits, phase splits.
// Every step runs exactly one round of requests and the next step starts
// only after the created ids of the previous one are stored. There is no
// rollback: a failed run leaves the entities created so far on the server,
// and the returned result says how far it got.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Dosada05/challengehub-cli/credstore"
	"github.com/Dosada05/challengehub-cli/gateway"
	"github.com/Dosada05/challengehub-cli/models"
)

var (
	ErrHostTeamRequired = errors.New("select a host team before creating a challenge")

	errInvalidTransition = errors.New("wizard step out of order")
	errMissingStepResult = errors.New("previous step left no created ids")
)

// Step identifies one stage of the wizard.
type Step int

const (
	StepChallenge Step = iota + 1
	StepLeaderboard
	StepPhases
	StepDatasetSplits
	StepPhaseSplits
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepChallenge:
		return "create challenge"
	case StepLeaderboard:
		return "create leaderboards"
	case StepPhases:
		return "create phases"
	case StepDatasetSplits:
		return "create dataset splits"
	case StepPhaseSplits:
		return "create phase splits"
	case StepDone:
		return "done"
	default:
		return "unknown"
	}
}

// stepTransitions is the strictly linear step machine. No back-transitions,
// no skips.
var stepTransitions = map[Step]Step{
	StepChallenge:     StepLeaderboard,
	StepLeaderboard:   StepPhases,
	StepPhases:        StepDatasetSplits,
	StepDatasetSplits: StepPhaseSplits,
	StepPhaseSplits:   StepDone,
}

// Gateway is the slice of the HTTP gateway the wizard needs.
type Gateway interface {
	PostJSON(ctx context.Context, path string, body, out any) error
	PostMultipart(ctx context.Context, path string, fields map[string]string, files []gateway.FilePart, out any) error
}

// Result reports what a run created. On error it is still returned, partial,
// so the operator knows which server-side entities already exist.
type Result struct {
	RunID           string
	Completed       Step
	ChallengeID     int
	LeaderboardIDs  []int
	PhaseIDs        []int
	DatasetSplitIDs []int
	PhaseSplitIDs   []int
}

// Sequencer runs the wizard. Safe to reuse across runs; each run carries its
// own state and a fresh correlation id.
type Sequencer struct {
	gw       Gateway
	store    credstore.Store
	logger   *slog.Logger
	validate *validator.Validate
}

func New(gw Gateway, store credstore.Store, logger *slog.Logger) *Sequencer {
	return &Sequencer{
		gw:       gw,
		store:    store,
		logger:   logger,
		validate: validator.New(),
	}
}

// Run executes all five steps in order. The manifest is validated in full
// before the first request goes out.
func (s *Sequencer) Run(ctx context.Context, m *Manifest) (*Result, error) {
	if err := validateManifest(s.validate, m); err != nil {
		return nil, err
	}

	res := &Result{RunID: uuid.NewString()}
	logger := s.logger.With(slog.String("wizard_run", res.RunID))
	cur := StepChallenge

	challenge, err := s.createChallenge(ctx, m)
	if err != nil {
		return res, stepError(cur, err)
	}
	res.ChallengeID = challenge.ID
	s.remember("wizard.challenge_id", challenge.ID)
	logger.Info("challenge created", slog.Int("challenge_id", challenge.ID))
	if cur, err = s.advance(cur, StepLeaderboard, res, m); err != nil {
		return res, err
	}

	res.LeaderboardIDs, err = s.createLeaderboards(ctx, res.ChallengeID, m)
	if err != nil {
		return res, stepError(cur, err)
	}
	logger.Info("leaderboards created", slog.Int("count", len(res.LeaderboardIDs)))
	if cur, err = s.advance(cur, StepPhases, res, m); err != nil {
		return res, err
	}

	res.PhaseIDs, err = s.createPhases(ctx, res.ChallengeID, m)
	if err != nil {
		return res, stepError(cur, err)
	}
	logger.Info("phases created", slog.Int("count", len(res.PhaseIDs)))
	if cur, err = s.advance(cur, StepDatasetSplits, res, m); err != nil {
		return res, err
	}

	res.DatasetSplitIDs, err = s.createDatasetSplits(ctx, res.ChallengeID, m)
	if err != nil {
		return res, stepError(cur, err)
	}
	logger.Info("dataset splits created", slog.Int("count", len(res.DatasetSplitIDs)))
	if cur, err = s.advance(cur, StepPhaseSplits, res, m); err != nil {
		return res, err
	}

	res.PhaseSplitIDs, err = s.createPhaseSplits(ctx, res, m)
	if err != nil {
		return res, stepError(cur, err)
	}
	logger.Info("phase splits created", slog.Int("count", len(res.PhaseSplitIDs)))
	if cur, err = s.advance(cur, StepDone, res, m); err != nil {
		return res, err
	}

	res.Completed = StepDone
	s.forget("wizard.challenge_id")
	logger.Info("challenge creation complete", slog.Int("challenge_id", res.ChallengeID))
	return res, nil
}

// advance guards the step machine: the transition must be the linear next
// one and the finished step must have produced its ids.
func (s *Sequencer) advance(from, to Step, res *Result, m *Manifest) (Step, error) {
	if stepTransitions[from] != to {
		return from, fmt.Errorf("%w: %s -> %s", errInvalidTransition, from, to)
	}

	switch from {
	case StepChallenge:
		if res.ChallengeID == 0 {
			return from, fmt.Errorf("%w: challenge id", errMissingStepResult)
		}
	case StepLeaderboard:
		if len(res.LeaderboardIDs) < len(m.Leaderboards) {
			return from, fmt.Errorf("%w: leaderboard ids", errMissingStepResult)
		}
	case StepPhases:
		if len(res.PhaseIDs) < len(m.Phases) {
			return from, fmt.Errorf("%w: phase ids", errMissingStepResult)
		}
	case StepDatasetSplits:
		if len(res.DatasetSplitIDs) < len(m.DatasetSplits) {
			return from, fmt.Errorf("%w: dataset split ids", errMissingStepResult)
		}
	case StepPhaseSplits:
		if len(res.PhaseSplitIDs) < len(m.PhaseSplits) {
			return from, fmt.Errorf("%w: phase split ids", errMissingStepResult)
		}
	}

	res.Completed = from
	return to, nil
}

func (s *Sequencer) createChallenge(ctx context.Context, m *Manifest) (*models.Challenge, error) {
	fields := map[string]string{
		"title":                 m.Challenge.Title,
		"description":           m.Challenge.Description,
		"terms_and_conditions":  m.Challenge.TermsAndConditions,
		"submission_guidelines": m.Challenge.SubmissionGuidelines,
		"evaluation_details":    m.Challenge.EvaluationDetails,
		"start_date":            m.Challenge.StartDate.Format(time.RFC3339),
		"end_date":              m.Challenge.EndDate.Format(time.RFC3339),
		"is_docker_based":       strconv.FormatBool(m.Challenge.IsDockerBased),
	}

	var files []gateway.FilePart
	var closers []*os.File
	defer func() {
		for _, f := range closers {
			f.Close()
		}
	}()

	script, err := os.Open(m.Challenge.EvaluationScriptPath)
	if err != nil {
		return nil, fmt.Errorf("open evaluation script: %w", err)
	}
	closers = append(closers, script)
	files = append(files, gateway.FilePart{
		Field:    "evaluation_script",
		FileName: filepath.Base(m.Challenge.EvaluationScriptPath),
		Reader:   script,
	})

	if m.Challenge.ImagePath != "" {
		image, err := os.Open(m.Challenge.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("open challenge image: %w", err)
		}
		closers = append(closers, image)
		files = append(files, gateway.FilePart{
			Field:    "image",
			FileName: filepath.Base(m.Challenge.ImagePath),
			Reader:   image,
		})
	}

	path := fmt.Sprintf("challenges/challenge_host_team/%d/challenge", m.HostTeamID)
	var challenge models.Challenge
	if err := s.gw.PostMultipart(ctx, path, fields, files, &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (s *Sequencer) createLeaderboards(ctx context.Context, challengeID int, m *Manifest) ([]int, error) {
	payload := make([]map[string]any, 0, len(m.Leaderboards))
	for i, lb := range m.Leaderboards {
		id := lb.ID
		if id == 0 {
			id = i + 1
		}
		payload = append(payload, map[string]any{"id": id, "schema": lb.Schema})
	}

	path := fmt.Sprintf("challenges/challenge/%d/leaderboard", challengeID)
	var created []models.Leaderboard
	if err := s.gw.PostJSON(ctx, path, payload, &created); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(created))
	for _, lb := range created {
		ids = append(ids, lb.ID)
	}
	return ids, nil
}

// createPhases posts each phase individually and strictly in order: the
// next request is not issued until the previous response arrived, and ids
// are accumulated in input order, so index references stay stable.
func (s *Sequencer) createPhases(ctx context.Context, challengeID int, m *Manifest) ([]int, error) {
	path := fmt.Sprintf("challenges/challenge/%d/challenge_phase", challengeID)
	ids := make([]int, 0, len(m.Phases))

	for i, phase := range m.Phases {
		fields := map[string]string{
			"name":                    phase.Name,
			"codename":                phase.Codename,
			"description":             phase.Description,
			"max_submissions_per_day": strconv.Itoa(phase.MaxSubmissionsPerDay),
			"max_submissions":         strconv.Itoa(phase.MaxSubmissions),
			"start_date":              phase.StartDate.Format(time.RFC3339),
			"end_date":                phase.EndDate.Format(time.RFC3339),
			"is_public":               strconv.FormatBool(phase.IsPublic),
			"leaderboard_public":      strconv.FormatBool(phase.LeaderboardPublic),
		}

		var files []gateway.FilePart
		var annotation *os.File
		if phase.TestAnnotationPath != "" {
			f, err := os.Open(phase.TestAnnotationPath)
			if err != nil {
				return ids, fmt.Errorf("open test annotation for phase %q: %w", phase.Codename, err)
			}
			annotation = f
			files = append(files, gateway.FilePart{
				Field:    "test_annotation",
				FileName: filepath.Base(phase.TestAnnotationPath),
				Reader:   f,
			})
		}

		var created models.ChallengePhase
		err := s.gw.PostMultipart(ctx, path, fields, files, &created)
		if annotation != nil {
			annotation.Close()
		}
		if err != nil {
			return ids, fmt.Errorf("phase %d (%s): %w", i+1, phase.Codename, err)
		}
		ids = append(ids, created.ID)
	}
	return ids, nil
}

func (s *Sequencer) createDatasetSplits(ctx context.Context, challengeID int, m *Manifest) ([]int, error) {
	payload := make([]map[string]string, 0, len(m.DatasetSplits))
	for _, split := range m.DatasetSplits {
		payload = append(payload, map[string]string{
			"name":     split.Name,
			"codename": split.Codename,
		})
	}

	path := fmt.Sprintf("challenges/challenge/%d/dataset_split", challengeID)
	var created []models.DatasetSplit
	if err := s.gw.PostJSON(ctx, path, payload, &created); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(created))
	for _, split := range created {
		ids = append(ids, split.ID)
	}
	return ids, nil
}

func (s *Sequencer) createPhaseSplits(ctx context.Context, res *Result, m *Manifest) ([]int, error) {
	payload := make([]map[string]any, 0, len(m.PhaseSplits))
	for _, ps := range m.PhaseSplits {
		payload = append(payload, map[string]any{
			"challenge_phase": res.PhaseIDs[ps.PhaseIndex],
			"dataset_split":   res.DatasetSplitIDs[ps.DatasetSplitIndex],
			"leaderboard":     res.LeaderboardIDs[ps.LeaderboardIndex],
			"visibility":      ps.Visibility,
		})
	}

	path := fmt.Sprintf("challenges/challenge/%d/challenge_phase_split", res.ChallengeID)
	var created []models.ChallengePhaseSplit
	if err := s.gw.PostJSON(ctx, path, payload, &created); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(created))
	for _, ps := range created {
		ids = append(ids, ps.ID)
	}
	return ids, nil
}

func stepError(step Step, err error) error {
	return fmt.Errorf("%s: %w", step, err)
}

// remember persists an id for operator visibility; a failed run can be
// inspected with the credential store still holding the challenge id.
func (s *Sequencer) remember(key string, id int) {
	if err := s.store.Set(key, strconv.Itoa(id)); err != nil {
		s.logger.Warn("failed to persist wizard state", slog.String("key", key), slog.Any("error", err))
	}
}

func (s *Sequencer) forget(key string) {
	if err := s.store.Delete(key); err != nil {
		s.logger.Warn("failed to clear wizard state", slog.String("key", key), slog.Any("error", err))
	}
}
