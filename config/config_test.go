package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_MissingFile verifies defaults apply when no config file
// exists.
func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "reddit_threads.db", cfg.Database.Path)
	assert.Equal(t, 5, cfg.Scraper.MinDelaySeconds)
	assert.Equal(t, 8, cfg.Scraper.MaxDelaySeconds)
}

// TestLoad_File verifies values from the file override defaults.
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen: ":9090"
database:
  path: /tmp/threads.db
scraper:
  min_delay_seconds: 2
  max_delay_seconds: 4
  user_agent: test-agent
gemini:
  model: gemini-test
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "/tmp/threads.db", cfg.Database.Path)
	assert.Equal(t, 2, cfg.Scraper.MinDelaySeconds)
	assert.Equal(t, 4, cfg.Scraper.MaxDelaySeconds)
	assert.Equal(t, "test-agent", cfg.Scraper.UserAgent)
	assert.Equal(t, "gemini-test", cfg.Gemini.Model)
}

// TestLoad_InvalidFile verifies a present but unparseable file errors.
func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [not: valid"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

// TestLoad_EnvOverrides verifies environment variables win over the
// file.
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REDLISTENER_LISTEN", ":7070")
	t.Setenv("REDLISTENER_DB", "override.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Listen)
	assert.Equal(t, "override.db", cfg.Database.Path)
}
