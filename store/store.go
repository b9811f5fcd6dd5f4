package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists scraped threads in a flat SQLite table keyed by the
// thread identifier reddit assigns.
type Store struct {
	db *sql.DB
}

// Thread is one stored row. Summary, AITags, and SummarizedAt stay nil
// until summarization runs.
type Thread struct {
	ID           int64   `json:"id"`
	ThreadID     string  `json:"thread_id"`
	Subreddit    string  `json:"subreddit"`
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	CreatedDate  string  `json:"created_date"`
	PostedTime   string  `json:"posted_time"`
	Flair        string  `json:"flair"`
	Content      string  `json:"content"`
	URL          string  `json:"url"`
	Summary      *string `json:"summary,omitempty"`
	AITags       *string `json:"ai_tags,omitempty"`
	DownloadedAt string  `json:"downloaded_at"`
	SummarizedAt *string `json:"summarized_at,omitempty"`
}

// New opens (creating if necessary) the thread database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS threads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		thread_id TEXT UNIQUE,
		subreddit TEXT NOT NULL,
		title TEXT NOT NULL,
		author TEXT,
		created_date TEXT,
		posted_time TEXT,
		flair TEXT,
		content TEXT,
		url TEXT,
		summary TEXT,
		ai_tags TEXT,
		downloaded_at TEXT NOT NULL,
		summarized_at TEXT
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts a thread or, when a row with the same thread_id already
// exists, overwrites its scraped columns. The bool reports whether a new
// row was inserted, which callers use to count saved versus duplicate
// threads. Existing summaries survive a re-scrape.
func (s *Store) Upsert(t Thread) (bool, error) {
	var existingID int64
	err := s.db.QueryRow("SELECT id FROM threads WHERE thread_id = ?", t.ThreadID).Scan(&existingID)
	inserted := err == sql.ErrNoRows
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to check for existing thread: %w", err)
	}

	query := `
		INSERT INTO threads (
			thread_id, subreddit, title, author, created_date,
			posted_time, flair, content, url, downloaded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(thread_id) DO UPDATE SET
			subreddit = excluded.subreddit,
			title = excluded.title,
			author = excluded.author,
			created_date = excluded.created_date,
			posted_time = excluded.posted_time,
			flair = excluded.flair,
			content = excluded.content,
			url = excluded.url,
			downloaded_at = excluded.downloaded_at
	`

	_, err = s.db.Exec(query,
		t.ThreadID, t.Subreddit, t.Title, t.Author, t.CreatedDate,
		t.PostedTime, t.Flair, t.Content, t.URL,
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert thread: %w", err)
	}

	return inserted, nil
}

// All returns every stored thread, most recently downloaded first.
func (s *Store) All() ([]Thread, error) {
	return s.query("SELECT * FROM threads ORDER BY downloaded_at DESC")
}

// Get returns the thread with the given row id, or nil if absent.
func (s *Store) Get(id int64) (*Thread, error) {
	threads, err := s.query("SELECT * FROM threads WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(threads) == 0 {
		return nil, nil
	}
	return &threads[0], nil
}

// WithoutSummary returns threads that have not been summarized yet.
func (s *Store) WithoutSummary() ([]Thread, error) {
	return s.query(`
		SELECT * FROM threads
		WHERE summary IS NULL OR summary = ''
		ORDER BY downloaded_at DESC`)
}

// ByTag returns threads whose comma-separated tag column contains tag.
func (s *Store) ByTag(tag string) ([]Thread, error) {
	return s.query(`
		SELECT * FROM threads
		WHERE ai_tags LIKE ?
		ORDER BY downloaded_at DESC`, "%"+tag+"%")
}

// Tags returns the distinct tags across all threads, sorted.
func (s *Store) Tags() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT ai_tags FROM threads
		WHERE ai_tags IS NOT NULL AND ai_tags != ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	seen := map[string]bool{}
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, fmt.Errorf("failed to scan tags: %w", err)
		}
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				seen[tag] = true
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]string, 0, len(seen))
	for tag := range seen {
		result = append(result, tag)
	}
	sort.Strings(result)
	return result, nil
}

// SetSummary records a thread's summary (and tags when present) along
// with the summarization time.
func (s *Store) SetSummary(id int64, summary string, tags []string) error {
	now := time.Now().Format(time.RFC3339)

	var err error
	if len(tags) > 0 {
		_, err = s.db.Exec(`
			UPDATE threads SET summary = ?, ai_tags = ?, summarized_at = ?
			WHERE id = ?`,
			summary, strings.Join(tags, ", "), now, id)
	} else {
		_, err = s.db.Exec(`
			UPDATE threads SET summary = ?, summarized_at = ?
			WHERE id = ?`,
			summary, now, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}
	return nil
}

// Clear removes all stored threads.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM threads"); err != nil {
		return fmt.Errorf("failed to clear threads: %w", err)
	}
	return nil
}

func (s *Store) query(query string, args ...any) ([]Thread, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query threads: %w", err)
	}
	defer rows.Close()

	var threads []Thread
	for rows.Next() {
		var t Thread
		var author, createdDate, postedTime, flair, content, url sql.NullString
		var summary, aiTags, summarizedAt sql.NullString
		err := rows.Scan(
			&t.ID, &t.ThreadID, &t.Subreddit, &t.Title, &author,
			&createdDate, &postedTime, &flair, &content, &url,
			&summary, &aiTags, &t.DownloadedAt, &summarizedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}

		t.Author = author.String
		t.CreatedDate = createdDate.String
		t.PostedTime = postedTime.String
		t.Flair = flair.String
		t.Content = content.String
		t.URL = url.String
		if summary.Valid {
			t.Summary = &summary.String
		}
		if aiTags.Valid {
			t.AITags = &aiTags.String
		}
		if summarizedAt.Valid {
			t.SummarizedAt = &summarizedAt.String
		}

		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return threads, nil
}
