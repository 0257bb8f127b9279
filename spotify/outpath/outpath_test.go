package outpath_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotgram/spotify/outpath"
	"github.com/xeptore/spotgram/spotify/types"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "clean", in: "Abbey Road", want: "Abbey Road"},
		{name: "separators", in: "AC/DC", want: "AC_DC"},
		{name: "windows specials", in: `a:b|c<d>e"f?g*h`, want: "a_b_c_d_e_f_g_h"},
		{name: "control chars", in: "a\x00b\x1fc", want: "a_b_c"},
		{name: "reserved device name", in: "CON", want: "_CON"},
		{name: "reserved with extension", in: "aux.txt", want: "_aux.txt"},
		{name: "reserved prefix only", in: "console", want: "console"},
		{name: "leading whitespace", in: "  song", want: "song"},
		{name: "trailing dots and spaces", in: "song. ", want: "song_"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := outpath.Sanitize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, outpath.Sanitize(got), "sanitize must be idempotent")
		})
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	meta := []types.MetadataEntry{
		types.NewEntry("album_artist", "AC/DC"),
		types.NewEntry("album", "Back in Black"),
		types.NewEntry("track_number", 3),
		types.NewEntry("artist", []string{"AC/DC"}),
		types.NewEntry("title", "Hells Bells"),
	}

	got := outpath.Render("{album_artist}/{album}/{track_number}. {artist} - {title}", meta)
	want := filepath.Join("AC_DC", "Back in Black", "3. AC_DC - Hells Bells")
	assert.Equal(t, want, got)
}

func TestRenderUnresolvedHole(t *testing.T) {
	t.Parallel()

	meta := []types.MetadataEntry{types.NewEntry("title", "Intro")}

	got := outpath.Render("{playlist}/{title}", meta)
	want := filepath.Join("{playlist}", "Intro")
	assert.Equal(t, want, got)
}

func TestCreate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	meta := []types.MetadataEntry{
		types.NewEntry("album", "X"),
		types.NewEntry("title", "Y"),
	}

	path, err := outpath.Create(root, "{album}/{title}", "ogg", meta, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "X", "Y.ogg"), path)
	assert.DirExists(t, filepath.Dir(path))
}

func TestCreateAlreadyExists(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	meta := []types.MetadataEntry{
		types.NewEntry("album", "X"),
		types.NewEntry("title", "Y"),
	}

	path, err := outpath.Create(root, "{album}/{title}", "ogg", meta, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o600))

	again, err := outpath.Create(root, "{album}/{title}", "ogg", meta, false)
	require.ErrorIs(t, err, outpath.ErrAlreadyExists)
	assert.Equal(t, path, again)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), content, "existing file must not be touched")
}

func TestCreateReplace(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	meta := []types.MetadataEntry{
		types.NewEntry("album", "X"),
		types.NewEntry("title", "Y"),
	}

	path, err := outpath.Create(root, "{album}/{title}", "ogg", meta, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o600))

	again, err := outpath.Create(root, "{album}/{title}", "ogg", meta, true)
	require.NoError(t, err)
	assert.Equal(t, path, again)
}
