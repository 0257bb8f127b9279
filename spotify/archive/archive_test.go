package archive_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotgram/spotify/archive"
)

func TestLedgerRoundTrip(t *testing.T) {
	t.Parallel()

	ledger := archive.New(filepath.Join(t.TempDir(), "nested", "archive"))

	ok, err := ledger.Contains("6rqhFgbbKwnb9MLmUQDhG6")
	require.NoError(t, err)
	assert.False(t, ok, "missing ledger file must read as empty")

	entry := archive.Entry{
		ID:        "6rqhFgbbKwnb9MLmUQDhG6",
		Timestamp: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		Artist:    "Massive Attack",
		Title:     "Teardrop",
		Filename:  "Teardrop.ogg",
	}
	require.NoError(t, ledger.Add(entry))

	ok, err = ledger.Contains("6rqhFgbbKwnb9MLmUQDhG6")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.Contains("0000000000000000000000")
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := ledger.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
}

func TestLedgerAppendKeepsOrder(t *testing.T) {
	t.Parallel()

	ledger := archive.ForDir(t.TempDir())

	for _, id := range []string{"a1", "b2", "c3"} {
		require.NoError(t, ledger.Add(archive.Entry{ //nolint:exhaustruct
			ID:        id,
			Timestamp: time.Now(),
		}))
	}

	entries, err := ledger.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "a1", entries[0].ID)
	assert.Equal(t, "b2", entries[1].ID)
	assert.Equal(t, "c3", entries[2].ID)
}

func TestLedgerFieldSanitization(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ledger := archive.ForDir(dir)

	require.NoError(t, ledger.Add(archive.Entry{ //nolint:exhaustruct
		ID:        "x9",
		Timestamp: time.Now(),
		Title:     "with\ttab and\nnewline",
	}))

	entries, err := ledger.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "with tab and newline", entries[0].Title)

	raw, err := os.ReadFile(filepath.Join(dir, archive.DirLedgerName))
	require.NoError(t, err)
	assert.Equal(t, 1, countLines(string(raw)))
}

func countLines(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}

	return n
}
