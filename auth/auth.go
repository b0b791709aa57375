package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Dosada05/challengehub-cli/credstore"
)

var (
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrCredentialsRequired = errors.New("username and password are required")
)

// Gateway is the slice of the HTTP gateway the auth service needs.
type Gateway interface {
	PostJSON(ctx context.Context, path string, body, out any) error
}

// Service manages the session: obtaining a token, persisting it, dropping it
// on logout and probing its expiry locally.
type Service struct {
	gw     Gateway
	store  credstore.Store
	logger *slog.Logger
}

func NewService(gw Gateway, store credstore.Store, logger *slog.Logger) *Service {
	return &Service{gw: gw, store: store, logger: logger}
}

// Login exchanges credentials for a token and persists it.
func (s *Service) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrCredentialsRequired
	}

	payload := map[string]string{"username": username, "password": password}
	var resp struct {
		Token string `json:"token"`
	}
	if err := s.gw.PostJSON(ctx, "auth/login", payload, &resp); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return fmt.Errorf("login: server returned no token")
	}
	if err := s.store.SetToken(resp.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	s.logger.Info("logged in", slog.String("username", username))
	return nil
}

// Logout drops the whole credential store, token and cached residue alike.
func (s *Service) Logout() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	s.logger.Info("logged out")
	return nil
}

// LoggedIn reports whether a token is present. It says nothing about the
// token still being accepted by the server.
func (s *Service) LoggedIn() bool {
	return s.store.Token() != ""
}

// TokenExpired probes the stored token's exp claim without verifying the
// signature; verification is the server's job. Opaque (non-JWT) tokens have
// no readable expiry and report false, leaving detection to the first 401.
func (s *Service) TokenExpired() bool {
	token := s.store.Token()
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
