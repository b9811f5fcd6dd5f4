package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pevans/redlistener/progress"
	"github.com/pevans/redlistener/scraper"
	"github.com/pevans/redlistener/store"
)

type downloadRequest struct {
	SubredditURL string `json:"subreddit_url"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	MaxThreads   int    `json:"max_threads,omitempty"`
	FetchContent bool   `json:"fetch_content,omitempty"`
}

// handleDownload starts a scrape in the background and hands back a
// session id the caller can poll for progress. Scrapes run minutes when
// content fetching is on, so the request must not block on them.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	if req.SubredditURL == "" {
		writeError(w, http.StatusBadRequest, "missing_parameter", "subreddit_url is required")
		return
	}
	if req.MaxThreads == 0 {
		req.MaxThreads = 10
	}
	if req.MaxThreads < 1 || req.MaxThreads > 100 {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "max_threads must be between 1 and 100")
		return
	}

	sess := s.tracker.Start()
	go s.runDownload(sess, req)

	writeJSON(w, http.StatusAccepted, map[string]string{"session_id": sess.ID()})
}

func (s *Server) runDownload(sess *progress.Session, req downloadRequest) {
	sess.SetStage("scraping")
	threads := s.scrape(req.SubredditURL, req.MaxThreads, req.FetchContent)
	if len(threads) == 0 {
		sess.Fail("no threads found or error occurred during scraping")
		return
	}

	if req.StartDate != "" && req.EndDate != "" {
		threads = scraper.FilterByDateRange(threads, req.StartDate, req.EndDate)
		log.Printf("INFO: %d threads within date range %s..%s", len(threads), req.StartDate, req.EndDate)
	}

	sess.SetStage("saving")
	saved, duplicates := 0, 0
	for i, th := range threads {
		inserted, err := s.store.Upsert(toStoreThread(th))
		if err != nil {
			log.Printf("ERROR: saving thread %s: %v", th.ThreadID, err)
			continue
		}
		if inserted {
			saved++
		} else {
			duplicates++
		}
		sess.SetProgress(i+1, len(threads))
		sess.SetCounts(saved, duplicates)
	}

	log.Printf("INFO: download finished: %d saved, %d duplicates", saved, duplicates)
	sess.Finish()
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.tracker.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func toStoreThread(th scraper.Thread) store.Thread {
	return store.Thread{
		ThreadID:    th.ThreadID,
		Subreddit:   th.Subreddit,
		Title:       th.Title,
		Author:      th.Author,
		CreatedDate: th.CreatedDate,
		PostedTime:  th.PostedTime,
		Flair:       th.Flair,
		Content:     th.Content,
		URL:         th.URL,
	}
}

func parseRowID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid thread id")
	}
	return id, nil
}
