package wizard

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/challengehub-cli/credstore"
	"github.com/Dosada05/challengehub-cli/gateway"
	"github.com/Dosada05/challengehub-cli/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testManifest(t *testing.T) *Manifest {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "evaluate.py")
	require.NoError(t, os.WriteFile(script, []byte("print('ok')"), 0o644))
	annotation := filepath.Join(dir, "test_annotations.json")
	require.NoError(t, os.WriteFile(annotation, []byte("{}"), 0o644))

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0)

	return &Manifest{
		HostTeamID: 7,
		Challenge: ChallengeForm{
			Title:                "Image Segmentation 2026",
			Description:          "Segment things.",
			StartDate:            start,
			EndDate:              end,
			EvaluationScriptPath: script,
		},
		Leaderboards: []LeaderboardForm{
			{Schema: models.Schema{Labels: []string{"iou"}, DefaultOrder: "iou"}},
		},
		Phases: []PhaseForm{
			{
				Name: "Dev", Codename: "dev",
				MaxSubmissionsPerDay: 5, MaxSubmissions: 50,
				StartDate: start, EndDate: end,
				TestAnnotationPath: annotation,
			},
			{
				Name: "Test", Codename: "test",
				MaxSubmissionsPerDay: 1, MaxSubmissions: 5,
				StartDate: start, EndDate: end,
			},
		},
		DatasetSplits: []DatasetSplitForm{
			{Name: "Validation", Codename: "val"},
		},
		PhaseSplits: []PhaseSplitForm{
			{PhaseIndex: 0, DatasetSplitIndex: 0, LeaderboardIndex: 0, Visibility: models.VisibilityPublic},
			{PhaseIndex: 1, DatasetSplitIndex: 0, LeaderboardIndex: 0, Visibility: models.VisibilityHost},
		},
	}
}

type wizardBackend struct {
	t *testing.T

	paths       []string
	nextPhaseID int
	failPath    string
	failBody    string

	leaderboardPayload []map[string]any
	phaseSplitPayload  []map[string]any
}

func (b *wizardBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.paths = append(b.paths, r.URL.Path)
		if b.failPath != "" && r.URL.Path == b.failPath {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(b.failBody))
			return
		}

		switch r.URL.Path {
		case "/challenges/challenge_host_team/7/challenge":
			require.NoError(b.t, r.ParseMultipartForm(1<<20))
			assert.Equal(b.t, "Image Segmentation 2026", r.FormValue("title"))
			_, _, err := r.FormFile("evaluation_script")
			require.NoError(b.t, err)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": 42, "title": "Image Segmentation 2026"}`))
		case "/challenges/challenge/42/leaderboard":
			raw, err := io.ReadAll(r.Body)
			require.NoError(b.t, err)
			require.NoError(b.t, json.Unmarshal(raw, &b.leaderboardPayload))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`[{"id": 11, "schema": {"labels": ["iou"], "default_order_by": "iou"}}]`))
		case "/challenges/challenge/42/challenge_phase":
			require.NoError(b.t, r.ParseMultipartForm(1<<20))
			b.nextPhaseID++
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(models.ChallengePhase{ID: 20 + b.nextPhaseID, Challenge: 42})
		case "/challenges/challenge/42/dataset_split":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`[{"id": 31, "name": "Validation", "codename": "val"}]`))
		case "/challenges/challenge/42/challenge_phase_split":
			raw, err := io.ReadAll(r.Body)
			require.NoError(b.t, err)
			require.NoError(b.t, json.Unmarshal(raw, &b.phaseSplitPayload))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`[{"id": 51}, {"id": 52}]`))
		default:
			b.t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestSequencer(t *testing.T, backend *wizardBackend) (*Sequencer, credstore.Store) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	store, err := credstore.OpenFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)

	gw := gateway.New(gateway.Config{BaseURL: srv.URL, Store: store})
	return New(gw, store, discardLogger()), store
}

func TestSequencerRunHappyPath(t *testing.T) {
	backend := &wizardBackend{t: t}
	seq, store := newTestSequencer(t, backend)

	res, err := seq.Run(context.Background(), testManifest(t))
	require.NoError(t, err)

	assert.Equal(t, 42, res.ChallengeID)
	assert.Equal(t, []int{11}, res.LeaderboardIDs)
	assert.Equal(t, []int{21, 22}, res.PhaseIDs, "phase ids must accumulate in input order")
	assert.Equal(t, []int{31}, res.DatasetSplitIDs)
	assert.Equal(t, []int{51, 52}, res.PhaseSplitIDs)
	assert.Equal(t, StepDone, res.Completed)
	assert.NotEmpty(t, res.RunID)

	// Steps ran strictly in order, phases one request at a time.
	assert.Equal(t, []string{
		"/challenges/challenge_host_team/7/challenge",
		"/challenges/challenge/42/leaderboard",
		"/challenges/challenge/42/challenge_phase",
		"/challenges/challenge/42/challenge_phase",
		"/challenges/challenge/42/dataset_split",
		"/challenges/challenge/42/challenge_phase_split",
	}, backend.paths)

	// Each leaderboard entry carries its client-assigned id alongside the schema.
	require.Len(t, backend.leaderboardPayload, 1)
	assert.Equal(t, float64(1), backend.leaderboardPayload[0]["id"])
	assert.Contains(t, backend.leaderboardPayload[0], "schema")

	// Later steps used the created ids verbatim.
	require.Len(t, backend.phaseSplitPayload, 2)
	assert.Equal(t, float64(21), backend.phaseSplitPayload[0]["challenge_phase"])
	assert.Equal(t, float64(31), backend.phaseSplitPayload[0]["dataset_split"])
	assert.Equal(t, float64(11), backend.phaseSplitPayload[0]["leaderboard"])
	assert.Equal(t, float64(22), backend.phaseSplitPayload[1]["challenge_phase"])

	// Wizard residue is cleared on completion.
	assert.Empty(t, store.Get("wizard.challenge_id"))
}

func TestSequencerStopsAtFailedStep(t *testing.T) {
	backend := &wizardBackend{
		t:        t,
		failPath: "/challenges/challenge/42/leaderboard",
		failBody: `{"schema": ["Invalid schema."]}`,
	}
	seq, store := newTestSequencer(t, backend)

	res, err := seq.Run(context.Background(), testManifest(t))
	require.Error(t, err)

	var verr *gateway.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Invalid schema."}, verr.FieldErrors("schema"))

	// The challenge exists; nothing after the failed step was attempted.
	assert.Equal(t, 42, res.ChallengeID)
	assert.Equal(t, StepChallenge, res.Completed)
	assert.Equal(t, []string{
		"/challenges/challenge_host_team/7/challenge",
		"/challenges/challenge/42/leaderboard",
	}, backend.paths)

	// No rollback; the partial id stays visible for the operator.
	assert.Equal(t, "42", store.Get("wizard.challenge_id"))
}

func TestSequencerManifestValidation(t *testing.T) {
	backend := &wizardBackend{t: t}
	seq, _ := newTestSequencer(t, backend)

	t.Run("MissingHostTeam", func(t *testing.T) {
		m := testManifest(t)
		m.HostTeamID = 0
		_, err := seq.Run(context.Background(), m)
		assert.ErrorIs(t, err, ErrHostTeamRequired)
	})

	t.Run("MissingTitle", func(t *testing.T) {
		m := testManifest(t)
		m.Challenge.Title = ""
		_, err := seq.Run(context.Background(), m)

		var verr *gateway.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"This field is required."}, verr.FieldErrors("challenge.title"))
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		m := testManifest(t)
		m.Challenge.EndDate = m.Challenge.StartDate.AddDate(0, 0, -1)
		_, err := seq.Run(context.Background(), m)

		var verr *gateway.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.NotEmpty(t, verr.FieldErrors("challenge.end_date"))
	})

	t.Run("PhaseSplitIndexOutOfRange", func(t *testing.T) {
		m := testManifest(t)
		m.PhaseSplits[0].PhaseIndex = 9
		_, err := seq.Run(context.Background(), m)

		var verr *gateway.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.NotEmpty(t, verr.FieldErrors("phase_splits[0]"))
	})

	t.Run("NoLeaderboards", func(t *testing.T) {
		m := testManifest(t)
		m.Leaderboards = nil
		_, err := seq.Run(context.Background(), m)

		var verr *gateway.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.NotEmpty(t, verr.FieldErrors("leaderboards"))
	})

	// Validation failures must not reach the server.
	assert.Empty(t, backend.paths)
}

func TestStepMachineIsStrictlyLinear(t *testing.T) {
	seq := &Sequencer{}
	m := testManifest(t)
	res := &Result{ChallengeID: 42}

	_, err := seq.advance(StepChallenge, StepPhases, res, m)
	assert.ErrorIs(t, err, errInvalidTransition)

	_, err = seq.advance(StepLeaderboard, StepChallenge, res, m)
	assert.ErrorIs(t, err, errInvalidTransition)

	// Advancing without the prerequisite ids is refused.
	_, err = seq.advance(StepLeaderboard, StepPhases, res, m)
	assert.ErrorIs(t, err, errMissingStepResult)

	next, err := seq.advance(StepChallenge, StepLeaderboard, res, m)
	require.NoError(t, err)
	assert.Equal(t, StepLeaderboard, next)
	assert.Equal(t, StepChallenge, res.Completed)
}
