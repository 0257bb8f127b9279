package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagKeysResolveCanonicalSpellings(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]string{
		"album_artist": "ALBUMARTIST",
		"date":         "DATE",
		"year":         "YEAR",
		"disc_number":  "DISCNUMBER",
		"track_number": "TRACKNUMBER",
		"podcast":      "ALBUM",
	} {
		got, ok := tagKeys[name]
		require.True(t, ok, "entry name %q must have a tag mapping", name)
		assert.Equal(t, want, got)
	}
}

func TestTagValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b"}, tagValues([]string{"a", "b"}))
	assert.Equal(t, []string{"x"}, tagValues("x"))
	assert.Equal(t, []string{"7"}, tagValues(7))
	assert.Equal(t, []string{"true"}, tagValues(true))
}
