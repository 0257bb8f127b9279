package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotgram/spotify/types"
)

func TestQualityResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		quality types.Quality
		premium bool
		want    types.Quality
	}{
		{name: "auto premium", quality: types.QualityAuto, premium: true, want: types.QualityVeryHigh},
		{name: "auto free", quality: types.QualityAuto, premium: false, want: types.QualityHigh},
		{name: "normal passes through", quality: types.QualityNormal, premium: true, want: types.QualityNormal},
		{name: "very high passes through", quality: types.QualityVeryHigh, premium: false, want: types.QualityVeryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.quality.Resolve(tt.premium))
		})
	}
}

func TestQualityBitrate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 96, types.QualityNormal.Bitrate())
	assert.Equal(t, 160, types.QualityHigh.Bitrate())
	assert.Equal(t, 320, types.QualityVeryHigh.Bitrate())
	assert.Panics(t, func() { types.QualityAuto.Bitrate() })
}

func TestFormatExtAndCodec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format types.AudioFormat
		ext    string
		codec  string
	}{
		{format: types.FormatVorbis, ext: "ogg", codec: "copy"},
		{format: types.FormatOpus, ext: "ogg", codec: "libopus"},
		{format: types.FormatMP3, ext: "mp3", codec: "libmp3lame"},
		{format: types.FormatAAC, ext: "m4a", codec: "aac"},
		{format: types.FormatFDKAAC, ext: "m4a", codec: "libfdk_aac"},
		{format: types.FormatFLAC, ext: "flac", codec: "flac"},
		{format: types.FormatWav, ext: "wav", codec: "pcm_s16le"},
		{format: types.FormatWavpack, ext: "wv", codec: "wavpack"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.ext, tt.format.Ext())
			assert.Equal(t, tt.codec, tt.format.Codec())
		})
	}
}

func TestFormatFromExt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, types.FormatVorbis, types.FormatFromExt("ogg"))
	assert.Equal(t, types.FormatAAC, types.FormatFromExt(".m4a"))
	assert.Equal(t, types.FormatMP3, types.FormatFromExt("weird"))
}

func TestMetadataEntryDisplay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain", types.NewEntry("title", "plain").Display)
	assert.Equal(t, "A, B", types.NewEntry("artist", []string{"A", "B"}).Display)
	assert.Equal(t, "7", types.NewEntry("track_number", 7).Display)

	padded := types.NewEntryDisplay("playlist_number", 7, "07")
	assert.Equal(t, "07", padded.Display)
	assert.Equal(t, 7, padded.Value)
}

func TestLookupEntry(t *testing.T) {
	t.Parallel()

	meta := []types.MetadataEntry{
		types.NewEntry("title", "x"),
		types.NewEntry("album", "y"),
	}

	entry, ok := types.LookupEntry(meta, "album")
	require.True(t, ok)
	assert.Equal(t, "y", entry.Display)

	_, ok = types.LookupEntry(meta, "missing")
	assert.False(t, ok)
}

func TestLargestImage(t *testing.T) {
	t.Parallel()

	images := []types.Image{
		{URL: "small", Width: 64, Height: 64},
		{URL: "large", Width: 640, Height: 640},
		{URL: "medium", Width: 300, Height: 300},
	}
	assert.Equal(t, "large", types.LargestImage(images))
	assert.Equal(t, "", types.LargestImage(nil))
}
