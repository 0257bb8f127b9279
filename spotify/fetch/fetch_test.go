package fetch_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotgram/config"
	"github.com/xeptore/spotgram/spotify/fetch"
	"github.com/xeptore/spotgram/spotify/session"
	"github.com/xeptore/spotgram/spotify/types"
)

func testDownloaderConfig() config.Downloader {
	return config.Downloader{ //nolint:exhaustruct
		ChunkSize: 8,
		RealTime:  false,
		Timeouts: config.DownloadTimeouts{ //nolint:exhaustruct
			ReadChunk: 5,
		},
	}
}

func TestWriteAudioStream(t *testing.T) {
	t.Parallel()

	audio := bytes.Repeat([]byte("0123456789"), 10)
	stream := &session.LoadedStream{
		Body:        io.NopCloser(bytes.NewReader(audio)),
		Size:        int64(len(audio)),
		Format:      types.FormatVorbis,
		ExternalURL: "",
	}

	destPath := filepath.Join(t.TempDir(), "song.ogg")
	local, err := fetch.WriteAudioStream(
		context.Background(),
		zerolog.Nop(),
		testDownloaderConfig(),
		stream,
		destPath,
		0,
		"160k",
	)
	require.NoError(t, err)
	assert.Equal(t, destPath, local.Path)
	assert.Equal(t, types.FormatVorbis, local.Format)
	assert.Equal(t, "160k", local.Bitrate)

	written, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, audio, written)

	assert.NoFileExists(t, destPath+".part", "staging file must be renamed away")
}

func TestWriteAudioStreamUsesNativeExtension(t *testing.T) {
	t.Parallel()

	audio := []byte("native vorbis bytes")
	stream := &session.LoadedStream{
		Body:        io.NopCloser(bytes.NewReader(audio)),
		Size:        int64(len(audio)),
		Format:      types.FormatVorbis,
		ExternalURL: "",
	}

	// The rendered path carries the configured output extension; the raw
	// stream must land under its own container extension so a later
	// transcode can move it onto the rendered path.
	destPath := filepath.Join(t.TempDir(), "song.mp3")
	local, err := fetch.WriteAudioStream(
		context.Background(),
		zerolog.Nop(),
		testDownloaderConfig(),
		stream,
		destPath,
		0,
		"160k",
	)
	require.NoError(t, err)

	wantPath := filepath.Join(filepath.Dir(destPath), "song.ogg")
	assert.Equal(t, wantPath, local.Path)
	assert.FileExists(t, wantPath)
	assert.NoFileExists(t, destPath, "rendered path belongs to the post-processor")
}

func TestWriteAudioStreamCleansUpOnFailure(t *testing.T) {
	t.Parallel()

	stream := &session.LoadedStream{
		Body:        io.NopCloser(&failingReader{}),
		Size:        100,
		Format:      types.FormatVorbis,
		ExternalURL: "",
	}

	destPath := filepath.Join(t.TempDir(), "song.ogg")
	_, err := fetch.WriteAudioStream(
		context.Background(),
		zerolog.Nop(),
		testDownloaderConfig(),
		stream,
		destPath,
		0,
		"160k",
	)
	require.Error(t, err)
	assert.NoFileExists(t, destPath)
	assert.NoFileExists(t, destPath+".part", "staging file must be removed on failure")
}

type failingReader struct{}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, fmt.Errorf("connection reset")
}

func TestWriteExternal(t *testing.T) {
	t.Parallel()

	audio := []byte("external mp3 payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(audio)
	}))
	t.Cleanup(server.Close)

	destPath := filepath.Join(t.TempDir(), "episode.ogg")
	local, err := fetch.WriteExternal(
		context.Background(),
		zerolog.Nop(),
		testDownloaderConfig(),
		server.URL+"/feed/episode-42.mp3",
		destPath,
		"160k",
	)
	require.NoError(t, err)

	// The on-disk extension follows the source URL, not the configured
	// output format.
	wantPath := filepath.Join(filepath.Dir(destPath), "episode.mp3")
	assert.Equal(t, wantPath, local.Path)
	assert.Equal(t, types.FormatMP3, local.Format)

	written, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	assert.Equal(t, audio, written)
}

func TestWriteExternalUpstreamError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	destPath := filepath.Join(t.TempDir(), "episode.ogg")
	_, err := fetch.WriteExternal(
		context.Background(),
		zerolog.Nop(),
		testDownloaderConfig(),
		server.URL+"/feed/gone.mp3",
		destPath,
		"160k",
	)
	require.Error(t, err)
	assert.NoFileExists(t, destPath)
}
