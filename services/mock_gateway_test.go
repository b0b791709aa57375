package services

import (
	"context"
	"errors"

	"github.com/Dosada05/challengehub-cli/gateway"
)

// mockGateway implements Gateway with overridable func fields.
type mockGateway struct {
	getJSONFunc       func(ctx context.Context, path string, out any) error
	getURLFunc        func(ctx context.Context, url string, out any) error
	postJSONFunc      func(ctx context.Context, path string, body, out any) error
	putJSONFunc       func(ctx context.Context, path string, body, out any) error
	patchJSONFunc     func(ctx context.Context, path string, body, out any) error
	deleteFunc        func(ctx context.Context, path string) error
	postMultipartFunc func(ctx context.Context, path string, fields map[string]string, files []gateway.FilePart, out any) error
}

func (m *mockGateway) GetJSON(ctx context.Context, path string, out any) error {
	if m.getJSONFunc != nil {
		return m.getJSONFunc(ctx, path, out)
	}
	return errors.New("not implemented")
}

func (m *mockGateway) GetURL(ctx context.Context, url string, out any) error {
	if m.getURLFunc != nil {
		return m.getURLFunc(ctx, url, out)
	}
	return errors.New("not implemented")
}

func (m *mockGateway) PostJSON(ctx context.Context, path string, body, out any) error {
	if m.postJSONFunc != nil {
		return m.postJSONFunc(ctx, path, body, out)
	}
	return errors.New("not implemented")
}

func (m *mockGateway) PutJSON(ctx context.Context, path string, body, out any) error {
	if m.putJSONFunc != nil {
		return m.putJSONFunc(ctx, path, body, out)
	}
	return errors.New("not implemented")
}

func (m *mockGateway) PatchJSON(ctx context.Context, path string, body, out any) error {
	if m.patchJSONFunc != nil {
		return m.patchJSONFunc(ctx, path, body, out)
	}
	return errors.New("not implemented")
}

func (m *mockGateway) Delete(ctx context.Context, path string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, path)
	}
	return errors.New("not implemented")
}

func (m *mockGateway) PostMultipart(ctx context.Context, path string, fields map[string]string, files []gateway.FilePart, out any) error {
	if m.postMultipartFunc != nil {
		return m.postMultipartFunc(ctx, path, fields, files, out)
	}
	return errors.New("not implemented")
}
