package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Jaruso/bareclaw/internal/agent"
	"github.com/Jaruso/bareclaw/internal/memory"
	"github.com/Jaruso/bareclaw/internal/providers"
	"github.com/Jaruso/bareclaw/internal/security"
	"github.com/Jaruso/bareclaw/internal/tools"
)

type stubEchoProvider struct{}

func (stubEchoProvider) Name() string { return "stub" }

func (stubEchoProvider) Chat(_ context.Context, _, _, _ string, _ float64) (string, error) {
	return "ok from agent", nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	pol, err := security.New(dir)
	if err != nil {
		t.Fatalf("security.New: %v", err)
	}
	toolCtx := &tools.Context{
		Policy: pol,
		Audit:  security.NewAuditLog(dir),
		Memory: memory.New(dir),
	}
	reg := tools.NewRegistry()
	tools.Register(reg)
	deps := agent.Deps{
		Router:      providers.NewRouter(stubEchoProvider{}),
		Registry:    reg,
		ToolContext: toolCtx,
		Model:       "test-model",
	}
	return New("127.0.0.1:0", deps)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	s.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["service"] != "bareclaw" {
		t.Fatalf("body = %+v", body)
	}
}

func TestHandleWebhookForwardsMessage(t *testing.T) {
	s := newTestServer(t)
	payload := bytes.NewBufferString(`{"message":"hello there"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", payload)
	rec := httptest.NewRecorder()

	s.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body["received"] {
		t.Fatalf("body = %+v", body)
	}
}

func TestHandleWebhookMissingMessageField404s(t *testing.T) {
	s := newTestServer(t)
	payload := bytes.NewBufferString(`{"not_message":"hello"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhook", payload)
	rec := httptest.NewRecorder()

	s.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
