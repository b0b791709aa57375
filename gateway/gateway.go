package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Dosada05/challengehub-cli/credstore"
)

// FilePart is one file field of a multipart upload.
type FilePart struct {
	Field    string
	FileName string
	Reader   io.Reader
}

// Config for the gateway. Store is consulted on every request for the auth
// token and cleared when the API reports the session invalid.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	Store      credstore.Store
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// Gateway performs all HTTP traffic against the platform API: JSON bodies,
// multipart uploads, token auth and mapping of error responses onto the
// sentinel errors of this package.
type Gateway struct {
	baseURL string
	client  *http.Client
	store   credstore.Store
	logger  *slog.Logger
}

func New(cfg Config) *Gateway {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gateway{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client:  client,
		store:   cfg.Store,
		logger:  logger,
	}
}

// URL resolves a relative endpoint path against the configured base URL.
func (g *Gateway) URL(path string) string {
	return g.baseURL + "/" + strings.TrimPrefix(path, "/")
}

func (g *Gateway) GetJSON(ctx context.Context, path string, out any) error {
	return g.do(ctx, http.MethodGet, g.URL(path), "", nil, out)
}

// GetURL fetches an absolute URL, typically a next/previous link taken from
// a list envelope. The auth token is attached the same as for relative paths.
func (g *Gateway) GetURL(ctx context.Context, url string, out any) error {
	return g.do(ctx, http.MethodGet, url, "", nil, out)
}

func (g *Gateway) PostJSON(ctx context.Context, path string, body, out any) error {
	return g.sendJSON(ctx, http.MethodPost, path, body, out)
}

func (g *Gateway) PutJSON(ctx context.Context, path string, body, out any) error {
	return g.sendJSON(ctx, http.MethodPut, path, body, out)
}

func (g *Gateway) PatchJSON(ctx context.Context, path string, body, out any) error {
	return g.sendJSON(ctx, http.MethodPatch, path, body, out)
}

func (g *Gateway) Delete(ctx context.Context, path string) error {
	return g.do(ctx, http.MethodDelete, g.URL(path), "", nil, nil)
}

func (g *Gateway) sendJSON(ctx context.Context, method, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	return g.do(ctx, method, g.URL(path), "application/json", bytes.NewReader(raw), out)
}

// PostMultipart uploads form fields plus file parts. The content type with
// its boundary is set by the multipart writer.
func (g *Gateway) PostMultipart(ctx context.Context, path string, fields map[string]string, files []FilePart, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			return fmt.Errorf("write form field %s: %w", key, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.FileName)
		if err != nil {
			return fmt.Errorf("create form file %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return fmt.Errorf("copy form file %s: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	return g.do(ctx, http.MethodPost, g.URL(path), w.FormDataContentType(), &buf, out)
}

func (g *Gateway) do(ctx context.Context, method, url, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := g.store.Token(); token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("request failed", slog.String("method", method), slog.String("url", url), slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	g.logger.Debug("request completed",
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrRequestFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return g.mapError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err)
	}
	return nil
}

func (g *Gateway) mapError(status int, raw []byte) error {
	switch status {
	case http.StatusBadRequest:
		if verr := parseValidationError(raw); verr != nil {
			return verr
		}
		return fmt.Errorf("%w: %s", ErrRequestFailed, errorMessage(raw))
	case http.StatusUnauthorized:
		// The token is no longer accepted; drop it so the next command
		// starts logged out. Other stored state (wizard residue) survives
		// so an interrupted run can resume after a fresh login.
		if err := g.store.SetToken(""); err != nil {
			g.logger.Error("failed to clear credentials", slog.Any("error", err))
		}
		return ErrSessionExpired
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: unexpected status %d: %s", ErrRequestFailed, status, errorMessage(raw))
	}
}

// parseValidationError extracts a field → messages map from a 400 body.
// Returns nil when the body is not shaped that way.
func parseValidationError(raw []byte) *ValidationError {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil || len(body) == 0 {
		return nil
	}
	fields := make(map[string][]string)
	for name, value := range body {
		var messages []string
		if err := json.Unmarshal(value, &messages); err == nil {
			fields[name] = messages
			continue
		}
		// Generic message keys are not field errors.
		if name == "error" || name == "detail" {
			continue
		}
		var single string
		if err := json.Unmarshal(value, &single); err == nil {
			fields[name] = []string{single}
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func errorMessage(raw []byte) string {
	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Detail != "" {
			return body.Detail
		}
	}
	if len(raw) == 0 {
		return "empty response body"
	}
	msg := string(raw)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
