package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/challengehub-cli/credstore"
)

func newTestStore(t *testing.T) *credstore.FileStore {
	t.Helper()
	s, err := credstore.OpenFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)
	return s
}

func newTestGateway(t *testing.T, store credstore.Store, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Store: store})
}

func TestGatewayAuthHeader(t *testing.T) {
	t.Run("TokenAttached", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.SetToken("secret123"))

		var gotAuth string
		gw := newTestGateway(t, store, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{}`))
		})

		var out map[string]any
		require.NoError(t, gw.GetJSON(context.Background(), "challenges/challenge/all", &out))
		assert.Equal(t, "Token secret123", gotAuth)
	})

	t.Run("NoTokenNoHeader", func(t *testing.T) {
		store := newTestStore(t)

		var gotAuth string
		gw := newTestGateway(t, store, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			w.Write([]byte(`{}`))
		})

		require.NoError(t, gw.GetJSON(context.Background(), "challenges/challenge/all", nil))
		assert.Empty(t, gotAuth)
	})
}

func TestGatewayValidationError(t *testing.T) {
	store := newTestStore(t)
	gw := newTestGateway(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"team_name": ["This field is required."]}`))
	})

	err := gw.PostJSON(context.Background(), "hosts/challenge_host_team/", map[string]string{}, nil)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"This field is required."}, verr.FieldErrors("team_name"))
	assert.Nil(t, verr.FieldErrors("team_url"))
	assert.Contains(t, verr.Error(), "team_name")
}

func TestGatewaySessionExpired(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetToken("stale-token"))
	require.NoError(t, store.Set("wizard.challenge_id", "42"))

	gw := newTestGateway(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Invalid token"}`))
	})

	err := gw.GetJSON(context.Background(), "participants/participant_team", nil)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Empty(t, store.Token(), "401 must clear the stored token")
	assert.Equal(t, "42", store.Get("wizard.challenge_id"),
		"401 must not wipe other stored state")
}

func TestGatewayStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"Forbidden", http.StatusForbidden, ErrForbidden},
		{"NotFound", http.StatusNotFound, ErrNotFound},
		{"ServerError", http.StatusInternalServerError, ErrRequestFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := newTestGateway(t, newTestStore(t), func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"error": "nope"}`))
			})
			err := gw.GetJSON(context.Background(), "challenges/challenge/1/", nil)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGatewayTransportFailure(t *testing.T) {
	gw := New(Config{BaseURL: "http://127.0.0.1:1", Store: newTestStore(t)})
	err := gw.GetJSON(context.Background(), "challenges/challenge/all", nil)
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestGatewayPostMultipart(t *testing.T) {
	store := newTestStore(t)

	var gotMethod, gotTitle, gotFile, gotFileName string
	gw := newTestGateway(t, store, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotTitle = r.FormValue("title")

		f, header, err := r.FormFile("evaluation_script")
		require.NoError(t, err)
		defer f.Close()
		buf := make([]byte, 64)
		n, _ := f.Read(buf)
		gotFile = string(buf[:n])
		gotFileName = header.Filename

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 42, "title": "Test"}`))
	})

	fields := map[string]string{"title": "Test"}
	files := []FilePart{{Field: "evaluation_script", FileName: "evaluate.py", Reader: strings.NewReader("print('ok')")}}

	var out struct {
		ID int `json:"id"`
	}
	require.NoError(t, gw.PostMultipart(context.Background(), "challenges/challenge_host_team/7/challenge", fields, files, &out))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Test", gotTitle)
	assert.Equal(t, "print('ok')", gotFile)
	assert.Equal(t, "evaluate.py", gotFileName)
	assert.Equal(t, 42, out.ID)
}

func TestGatewayGetURLFollowsAbsoluteLink(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.SetToken("tok"))

	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"count": 0, "next": null, "previous": null, "results": []}`))
	}))
	defer srv.Close()

	gw := New(Config{BaseURL: "http://elsewhere.invalid", Store: store})
	require.NoError(t, gw.GetURL(context.Background(), srv.URL+"/hosts/challenge_host_team/?page=2", nil))
	assert.Equal(t, "/hosts/challenge_host_team/?page=2", gotPath)
	assert.Equal(t, "Token tok", gotAuth)
}

func TestGatewayContextCancellation(t *testing.T) {
	gw := newTestGateway(t, newTestStore(t), func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := gw.GetJSON(ctx, "challenges/challenge/all", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestFailed))
}
