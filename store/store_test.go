package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	require.NoError(t, err, "should create store")
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleThread(id string) Thread {
	return Thread{
		ThreadID:    id,
		Subreddit:   "widgets",
		Title:       "Sample thread " + id,
		Author:      "u/someone",
		CreatedDate: "2024-01-05T12:00:00Z",
		PostedTime:  "3 hours ago",
		Flair:       "Discussion",
		Content:     "Some content",
		URL:         "https://www.reddit.com/r/widgets/comments/" + id + "/",
	}
}

// TestNew_CreatesDatabase verifies the schema initializes and queries
// work on a fresh database.
func TestNew_CreatesDatabase(t *testing.T) {
	s := createTestStore(t)

	threads, err := s.All()
	require.NoError(t, err)
	assert.Empty(t, threads)
}

// TestUpsert_InsertThenDuplicate verifies the inserted flag flips on the
// second write of the same thread_id.
func TestUpsert_InsertThenDuplicate(t *testing.T) {
	s := createTestStore(t)

	inserted, err := s.Upsert(sampleThread("abc"))
	require.NoError(t, err)
	assert.True(t, inserted, "first write should insert")

	updated := sampleThread("abc")
	updated.Title = "Edited title"
	inserted, err = s.Upsert(updated)
	require.NoError(t, err)
	assert.False(t, inserted, "second write should update in place")

	threads, err := s.All()
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "Edited title", threads[0].Title)
}

// TestUpsert_PreservesSummary verifies a re-scrape does not wipe an
// existing summary.
func TestUpsert_PreservesSummary(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Upsert(sampleThread("abc"))
	require.NoError(t, err)

	threads, err := s.All()
	require.NoError(t, err)
	require.Len(t, threads, 1)
	require.NoError(t, s.SetSummary(threads[0].ID, "A summary", []string{"Scam"}))

	_, err = s.Upsert(sampleThread("abc"))
	require.NoError(t, err)

	got, err := s.Get(threads[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "A summary", *got.Summary)
	require.NotNil(t, got.AITags)
	assert.Equal(t, "Scam", *got.AITags)
}

// TestGet_Missing verifies a missing row returns nil without error.
func TestGet_Missing(t *testing.T) {
	s := createTestStore(t)

	got, err := s.Get(42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// TestWithoutSummary verifies only unsummarized threads are returned.
func TestWithoutSummary(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Upsert(sampleThread("one"))
	require.NoError(t, err)
	_, err = s.Upsert(sampleThread("two"))
	require.NoError(t, err)

	all, err := s.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NoError(t, s.SetSummary(all[0].ID, "done", nil))

	pending, err := s.WithoutSummary()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.NotEqual(t, all[0].ID, pending[0].ID)
}

// TestByTagAndTags verifies tag queries over the comma-separated column.
func TestByTagAndTags(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Upsert(sampleThread("one"))
	require.NoError(t, err)
	_, err = s.Upsert(sampleThread("two"))
	require.NoError(t, err)

	all, err := s.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NoError(t, s.SetSummary(all[0].ID, "s1", []string{"Scam", "User Experience"}))
	require.NoError(t, s.SetSummary(all[1].ID, "s2", []string{"Product Quality"}))

	scam, err := s.ByTag("Scam")
	require.NoError(t, err)
	require.Len(t, scam, 1)

	tags, err := s.Tags()
	require.NoError(t, err)
	assert.Equal(t, []string{"Product Quality", "Scam", "User Experience"}, tags)
}

// TestClear verifies all rows are removed.
func TestClear(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Upsert(sampleThread("one"))
	require.NoError(t, err)

	require.NoError(t, s.Clear())

	threads, err := s.All()
	require.NoError(t, err)
	assert.Empty(t, threads)
}
