package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"insightcast/internal/core"
	"insightcast/internal/indexing"
)

const maxBodyBytes = 10 << 20

// HealthResponse reports backend reachability
type HealthResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Sections int64             `json:"sections"`
}

type selectionRequest struct {
	Selection *string `json:"selection"`
}

// handleHealth handles the /health endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	count, err := s.deps.Store.Count(r.Context())
	if err != nil {
		s.log.Warn("Vector store health check failed", "error", err)
		checks["vector_store"] = "error"
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Checks: checks,
		})
		return
	}

	checks["vector_store"] = "ok"
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Checks:   checks,
		Sections: count,
	})
}

// handleRetrievedSections handles POST /get_retrieved_sections
func (s *Server) handleRetrievedSections(w http.ResponseWriter, r *http.Request) {
	selection, ok := s.selection(w, r)
	if !ok {
		return
	}
	s.log.Info("Fast retrieval request", "selection", preview(selection))

	sections := s.deps.Retriever.Fast(r.Context(), selection)
	s.respondJSON(w, http.StatusOK, map[string]any{"retrieved_sections": sections})
}

// handleGeneratedInsights handles POST /get_generated_insights
func (s *Server) handleGeneratedInsights(w http.ResponseWriter, r *http.Request) {
	selection, ok := s.selection(w, r)
	if !ok {
		return
	}
	s.log.Info("Insight request", "selection", preview(selection))

	s.respondJSON(w, http.StatusOK, s.deps.Insights.GenerateInsights(r.Context(), selection))
}

// handlePersonaPodcast handles POST /get_persona_podcast
func (s *Server) handlePersonaPodcast(w http.ResponseWriter, r *http.Request) {
	selection, ok := s.selection(w, r)
	if !ok {
		return
	}
	s.log.Info("Persona podcast request", "selection", preview(selection))

	s.respondJSON(w, http.StatusOK, s.deps.Podcasts.GeneratePersonaPodcasts(r.Context(), selection))
}

// handleGeneratePodcast handles POST /generate_podcast with a JSON array of lines
func (s *Server) handleGeneratePodcast(w http.ResponseWriter, r *http.Request) {
	if s.deps.Synthesizer == nil {
		s.respondError(w, http.StatusServiceUnavailable, "Speech synthesis is not configured.")
		return
	}

	var lines []string
	if err := decodeBody(w, r, &lines); err != nil || len(lines) == 0 {
		s.respondError(w, http.StatusBadRequest, "Request body must be a JSON array of strings.")
		return
	}

	path, err := s.deps.Synthesizer.Synthesize(r.Context(), core.Conversation(lines))
	if err != nil {
		s.log.Error("Podcast synthesis failed", "error", err, "lines", len(lines))
		s.respondError(w, http.StatusInternalServerError, "Podcast generation failed: "+err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"audio_path": path})
}

type indexRequest struct {
	Source   string                   `json:"source"`
	Sections []indexing.ParsedSection `json:"sections"`
}

// handleIndexSections handles POST /index_sections with parser output
func (s *Server) handleIndexSections(w http.ResponseWriter, r *http.Request) {
	if s.deps.Indexer == nil {
		s.respondError(w, http.StatusServiceUnavailable, "Indexing is not configured.")
		return
	}

	var req indexRequest
	if err := decodeBody(w, r, &req); err != nil || strings.TrimSpace(req.Source) == "" {
		s.respondError(w, http.StatusBadRequest, "Missing 'source' key.")
		return
	}

	n, err := s.deps.Indexer.IndexDocument(r.Context(), req.Source, req.Sections)
	if err != nil {
		s.log.Error("Indexing failed", "error", err, "source", req.Source)
		s.respondError(w, http.StatusInternalServerError, "Indexing error: "+err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"source": req.Source, "indexed": n})
}

// handleDeleteDocument handles POST /delete_document
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentName *string `json:"document_name"`
	}
	if err := decodeBody(w, r, &req); err != nil || req.DocumentName == nil {
		s.respondError(w, http.StatusBadRequest, "Missing 'document_name' key.")
		return
	}

	name := *req.DocumentName
	if err := s.deps.Store.DeleteDocument(r.Context(), name); err != nil {
		s.log.Error("Failed to delete document", "error", err, "document", name)
		s.respondError(w, http.StatusInternalServerError, "Could not delete "+name+": "+err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Deleted " + name})
}

// selection reads the {"selection": ...} body, answering 400 when it is absent.
func (s *Server) selection(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req selectionRequest
	if err := decodeBody(w, r, &req); err != nil || req.Selection == nil {
		s.respondError(w, http.StatusBadRequest, "Missing 'selection' key.")
		return "", false
	}
	return *req.Selection, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func preview(s string) string {
	const n = 50
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes {"error": message}
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
