package session_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotgram/config"
	"github.com/xeptore/spotgram/spotify/session"
	"github.com/xeptore/spotgram/spotify/types"
)

func newFeed(t *testing.T, handler http.Handler) *session.Feed {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	conf := config.Session{FeedAPI: server.URL, Token: "tok", Country: "US"}
	timeouts := config.DownloadTimeouts{ //nolint:exhaustruct
		GetMeta:    5,
		LoadStream: 5,
	}

	return session.NewFeed(conf, timeouts)
}

func TestConnect(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"product": "premium", "country": "DE"}`)
	})

	feed := newFeed(t, mux)
	require.NoError(t, feed.Connect(context.Background(), zerolog.Nop()))
	assert.True(t, feed.IsPremium())
	assert.Equal(t, "DE", feed.Country())
}

func TestConnectUnauthorized(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/me", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	feed := newFeed(t, mux)
	require.ErrorIs(t, feed.Connect(context.Background(), zerolog.Nop()), session.ErrUnauthorized)
}

func TestLoadStream(t *testing.T) {
	t.Parallel()

	audio := []byte("raw vorbis bytes")
	mux := http.NewServeMux()
	mux.HandleFunc("/audio/track/t1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "160", r.URL.Query().Get("bitrate"))
		w.Header().Set("Content-Type", "audio/ogg")
		_, _ = w.Write(audio)
	})

	feed := newFeed(t, mux)

	stream, err := feed.Load(context.Background(), "t1", types.PlayableKindTrack, types.QualityAuto)
	require.NoError(t, err)
	require.NotNil(t, stream.Body)
	t.Cleanup(func() { _ = stream.Body.Close() })

	assert.Equal(t, types.FormatVorbis, stream.Format)
	assert.Equal(t, int64(len(audio)), stream.Size)
	assert.Empty(t, stream.ExternalURL)

	got, err := io.ReadAll(stream.Body)
	require.NoError(t, err)
	assert.Equal(t, audio, got)
}

func TestLoadExternalRedirect(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/audio/episode/e1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"external_url": "https://cdn.example.com/episode.mp3"}`)
	})

	feed := newFeed(t, mux)

	stream, err := feed.Load(context.Background(), "e1", types.PlayableKindEpisode, types.QualityAuto)
	require.NoError(t, err)
	assert.Nil(t, stream.Body)
	assert.Equal(t, "https://cdn.example.com/episode.mp3", stream.ExternalURL)
}

func TestLoadUnavailable(t *testing.T) {
	t.Parallel()

	feed := newFeed(t, http.NotFoundHandler())

	_, err := feed.Load(context.Background(), "t1", types.PlayableKindTrack, types.QualityAuto)
	require.ErrorIs(t, err, session.ErrUnavailable)
}

func TestLoadRateLimited(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/audio/track/t1", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	feed := newFeed(t, mux)

	_, err := feed.Load(context.Background(), "t1", types.PlayableKindTrack, types.QualityAuto)
	require.ErrorIs(t, err, session.ErrTooManyRequests)
}
