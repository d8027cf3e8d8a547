// Package gateway implements BareClaw's minimal HTTP external
// collaborator surface: a health check and a webhook that forwards a
// JSON "message" field into one agent turn.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Jaruso/bareclaw/internal/agent"
)

// ReadTimeout bounds how long the gateway waits to receive a request
// body before giving up, per the transport-layer timeout spec'd for
// channel adapters.
const ReadTimeout = 5 * time.Second

// Server is the HTTP health/webhook gateway.
type Server struct {
	addr   string
	deps   agent.Deps
	logger *slog.Logger
	srv    *http.Server
}

// New builds a gateway bound to addr (e.g. "127.0.0.1:8080").
func New(addr string, deps agent.Deps) *Server {
	s := &Server{addr: addr, deps: deps, logger: slog.Default().With("adapter", "gateway")}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /webhook", s.handleWebhook)

	s.srv = &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: ReadTimeout,
	}
	return s
}

// Run starts the server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ReadTimeout)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "bareclaw",
	})
}

type webhookPayload struct {
	Message string `json:"message"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Message == "" {
		http.NotFound(w, r)
		return
	}

	if _, err := agent.Run(r.Context(), s.deps, payload.Message, nil); err != nil {
		s.logger.Error("agent turn failed", "err", err)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"received": true})
}
