// Package httpapi exposes the agent over HTTP: a chat endpoint that runs
// the orchestration loop, a text ingestion endpoint for the document
// store, and a health probe. It is a thin adapter; all behavior lives in
// the agent, tools, and rag packages.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/promptlane/agentd/agent"
	"github.com/promptlane/agentd/llm"
	"github.com/promptlane/agentd/logging"
	"github.com/promptlane/agentd/rag"
	"github.com/promptlane/agentd/tools"
)

// Deps are the injected collaborators a Server needs.
type Deps struct {
	Logger     *slog.Logger
	LLM        llm.Chatter
	Registry   *tools.Registry
	Policies   agent.Policies
	Retriever  *rag.Retriever
	Classifier *rag.Classifier
	Suggester  *rag.Suggester
	Namespace  string
}

// Server handles the HTTP surface.
type Server struct {
	deps Deps
	mux  *http.ServeMux
}

// New builds a Server and its routes.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Namespace == "" {
		deps.Namespace = "default"
	}
	s := &Server{deps: deps, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /v1/chat", s.handleChat)
	s.mux.HandleFunc("POST /v1/ingest/text", s.handleIngestText)
	s.mux.HandleFunc("GET /v1/health", s.handleHealth)
	return s
}

// Handler returns the root handler for mounting or testing.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info("http_server_listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.deps.Logger.Info("http_server_stopping")
	return srv.Shutdown(shutdownCtx)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// recordingSearcher wraps the retriever so the handler can report which
// sources the tools actually hit during a run.
type recordingSearcher struct {
	inner   rag.Searcher
	results []rag.SearchResult
}

func (r *recordingSearcher) Search(ctx context.Context, q rag.Query) ([]rag.SearchResult, error) {
	results, err := r.inner.Search(ctx, q)
	if err == nil {
		r.results = append(r.results, results...)
	}
	return results, err
}

func requestID() string { return uuid.NewString() }

func (s *Server) requestLogger(reqID, convID string) *slog.Logger {
	return logging.WithRequest(s.deps.Logger, reqID, convID)
}
