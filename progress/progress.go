// Package progress tracks scrape sessions so the web layer can report
// how far along a download is. Sessions are explicit objects with a
// lifecycle: created when a request starts, mutated while it runs,
// read-only once finished, and evicted after a TTL.
package progress

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultTTL = 30 * time.Minute

// Session holds the mutable state of one scrape request.
type Session struct {
	id string

	mu         sync.Mutex
	stage      string
	current    int
	total      int
	saved      int
	duplicates int
	errMsg     string
	done       bool
	finishedAt time.Time
}

// Snapshot is the read-only view handed to the web layer.
type Snapshot struct {
	ID         string `json:"session_id"`
	Stage      string `json:"stage"`
	Current    int    `json:"current"`
	Total      int    `json:"total"`
	Saved      int    `json:"saved"`
	Duplicates int    `json:"duplicates"`
	Error      string `json:"error,omitempty"`
	Done       bool   `json:"done"`
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SetStage names the phase the scrape is in ("scraping", "saving", ...).
// No-op once the session has finished.
func (s *Session) SetStage(stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.stage = stage
}

// SetProgress records how many of total items have been processed.
func (s *Session) SetProgress(current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.current = current
	s.total = total
}

// SetCounts records the saved and duplicate tallies.
func (s *Session) SetCounts(saved, duplicates int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.saved = saved
	s.duplicates = duplicates
}

// Fail marks the session finished with an error message.
func (s *Session) Fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.errMsg = msg
	s.finish()
}

// Finish marks the session complete. Further mutations are ignored.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.finish()
}

func (s *Session) finish() {
	s.done = true
	s.stage = "done"
	s.finishedAt = time.Now()
}

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:         s.id,
		Stage:      s.stage,
		Current:    s.current,
		Total:      s.total,
		Saved:      s.saved,
		Duplicates: s.duplicates,
		Error:      s.errMsg,
		Done:       s.done,
	}
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done && now.Sub(s.finishedAt) > ttl
}

// Tracker owns the live sessions. Finished sessions are purged lazily on
// access once their TTL passes.
type Tracker struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
}

// NewTracker creates a tracker. A non-positive ttl uses the default.
func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Tracker{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Start registers and returns a new session.
func (t *Tracker) Start() *Session {
	s := &Session{
		id:    uuid.NewString(),
		stage: "starting",
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.purgeLocked(time.Now())
	t.sessions[s.id] = s
	return s
}

// Get returns the session with the given id, if it still exists.
func (t *Tracker) Get(id string) (*Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.purgeLocked(time.Now())
	s, ok := t.sessions[id]
	return s, ok
}

func (t *Tracker) purgeLocked(now time.Time) {
	for id, s := range t.sessions {
		if s.expired(now, t.ttl) {
			delete(t.sessions, id)
		}
	}
}
