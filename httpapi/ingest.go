package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
)

type ingestTextRequest struct {
	Texts     []string       `json:"texts"`
	Namespace string         `json:"namespace,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type ingestTextResponse struct {
	Namespace    string `json:"namespace"`
	NumDocuments int    `json:"num_documents"`
	NumChunks    int    `json:"num_chunks"`
}

func (s *Server) handleIngestText(w http.ResponseWriter, r *http.Request) {
	var req ingestTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	texts := make([]string, 0, len(req.Texts))
	for _, t := range req.Texts {
		if strings.TrimSpace(t) != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		writeError(w, http.StatusBadRequest, "texts must contain at least one non-empty entry")
		return
	}

	namespace := req.Namespace
	if namespace == "" {
		namespace = s.deps.Namespace
	}

	stats, err := s.deps.Retriever.IngestTexts(r.Context(), texts, namespace, req.Metadata)
	if err != nil {
		s.deps.Logger.Error("ingest_failed", "error", err.Error(), "namespace", namespace)
		writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	s.deps.Logger.Info("ingest_completed",
		"namespace", namespace,
		"num_documents", stats.NumDocuments,
		"num_chunks", stats.NumChunks,
	)
	writeJSON(w, http.StatusOK, ingestTextResponse{
		Namespace:    namespace,
		NumDocuments: stats.NumDocuments,
		NumChunks:    stats.NumChunks,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"tools":  s.deps.Registry.Names(),
	})
}
