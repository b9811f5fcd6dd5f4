package server

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := s.store.All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list threads: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"threads": threads,
		"total":   len(threads),
	})
}

func (s *Server) handleGetThread(w http.ResponseWriter, r *http.Request) {
	id, err := parseRowID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	thread, err := s.store.Get(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load thread: "+err.Error())
		return
	}
	if thread == nil {
		writeError(w, http.StatusNotFound, "not_found", "thread not found")
		return
	}
	writeJSON(w, http.StatusOK, thread)
}

func (s *Server) handleSummarizeThread(w http.ResponseWriter, r *http.Request) {
	if s.summarizer == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "summarization unavailable: no API key configured")
		return
	}

	id, err := parseRowID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	thread, err := s.store.Get(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load thread: "+err.Error())
		return
	}
	if thread == nil {
		writeError(w, http.StatusNotFound, "not_found", "thread not found")
		return
	}

	result, err := s.summarizer.SummarizeAndTag(r.Context(), thread.Title, thread.Content)
	if err != nil {
		writeError(w, http.StatusBadGateway, "summarization_failed", err.Error())
		return
	}

	if err := s.store.SetSummary(thread.ID, result.Summary, result.Tags); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to save summary: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleSummarizeAll summarizes every thread that lacks a summary.
// Per-thread failures are logged and skipped so one bad response does
// not abort the batch.
func (s *Server) handleSummarizeAll(w http.ResponseWriter, r *http.Request) {
	if s.summarizer == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "summarization unavailable: no API key configured")
		return
	}

	pending, err := s.store.WithoutSummary()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list threads: "+err.Error())
		return
	}

	summarized := 0
	for _, thread := range pending {
		result, err := s.summarizer.SummarizeAndTag(r.Context(), thread.Title, thread.Content)
		if err != nil {
			log.Printf("ERROR: summarizing thread %d: %v", thread.ID, err)
			continue
		}
		if err := s.store.SetSummary(thread.ID, result.Summary, result.Tags); err != nil {
			log.Printf("ERROR: saving summary for thread %d: %v", thread.ID, err)
			continue
		}
		summarized++
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"summarized": summarized,
		"pending":    len(pending) - summarized,
	})
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.Tags()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list tags: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

func (s *Server) handleThreadsByTag(w http.ResponseWriter, r *http.Request) {
	threads, err := s.store.ByTag(chi.URLParam(r, "tag"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to list threads: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"threads": threads,
		"total":   len(threads),
	})
}
