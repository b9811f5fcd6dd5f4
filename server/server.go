// Package server exposes the scraper, store, and summarizer over a JSON
// HTTP API.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pevans/redlistener/progress"
	"github.com/pevans/redlistener/scraper"
	"github.com/pevans/redlistener/store"
	"github.com/pevans/redlistener/summarize"
)

// Summarizer is the AI collaborator. A nil Summarizer disables the
// summarization endpoints.
type Summarizer interface {
	SummarizeAndTag(ctx context.Context, title, content string) (*summarize.Result, error)
}

// scrapeFunc runs one scrape request end to end.
type scrapeFunc func(subredditURL string, maxThreads int, fetchContent bool) []scraper.Thread

// Server wires the HTTP handlers to their collaborators.
type Server struct {
	store      *store.Store
	summarizer Summarizer
	tracker    *progress.Tracker
	scrape     scrapeFunc
}

// New creates a Server. Each download request builds a fresh Scraper
// from scraperCfg so every scrape owns its own rate limiter.
func New(st *store.Store, sum Summarizer, scraperCfg scraper.Config) *Server {
	return &Server{
		store:      st,
		summarizer: sum,
		tracker:    progress.NewTracker(0),
		scrape: func(subredditURL string, maxThreads int, fetchContent bool) []scraper.Thread {
			return scraper.New(scraperCfg).ScrapeSubreddit(subredditURL, maxThreads, fetchContent)
		},
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/download", s.handleDownload)
		r.Get("/progress/{id}", s.handleProgress)
		r.Get("/threads", s.handleListThreads)
		r.Get("/threads/{id}", s.handleGetThread)
		r.Post("/threads/{id}/summarize", s.handleSummarizeThread)
		r.Post("/summarize_all", s.handleSummarizeAll)
		r.Get("/tags", s.handleTags)
		r.Get("/threads/tag/{tag}", s.handleThreadsByTag)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
