package collection_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/spotgram/cache"
	"github.com/xeptore/spotgram/config"
	"github.com/xeptore/spotgram/spotify/api"
	"github.com/xeptore/spotgram/spotify/collection"
	"github.com/xeptore/spotgram/spotify/types"
)

type staticToken string

func (t staticToken) AccessToken(context.Context) (string, error) { return string(t), nil }

func newTestConfig(baseURL string) *config.Config {
	conf := &config.Config{ //nolint:exhaustruct
		API: config.API{BaseURL: baseURL, LyricsURL: baseURL + "/lyrics"},
		Library: config.Library{
			Music:    "/library/music",
			Podcast:  "/library/podcasts",
			Playlist: "/library/playlists",
		},
		Output: config.Output{
			Album:           "{album}/{track_number}. {title}",
			Podcast:         "{podcast}/{episode_number} - {title}",
			PlaylistTrack:   "{playlist}/{playlist_number}. {title}",
			PlaylistEpisode: "{playlist}/{playlist_number}. {title}",
		},
		Downloader: config.Downloader{ //nolint:exhaustruct
			Timeouts: config.DownloadTimeouts{ //nolint:exhaustruct
				GetMeta: 5,
			},
			Retry: config.Retry{Attempts: 1},
		},
	}

	return conf
}

func newExpander(t *testing.T, handler http.Handler) (*collection.Expander, *config.Config) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	conf := newTestConfig(server.URL)
	client := api.NewClient(conf.API, conf.Downloader, "US", staticToken("tok"), cache.New())

	return collection.NewExpander(client, conf), conf
}

func TestExpandTrack(t *testing.T) {
	t.Parallel()

	expander, conf := newExpander(t, http.NotFoundHandler())

	items, err := expander.Expand(context.Background(), zerolog.Nop(), types.Link{
		Kind: types.LinkKindTrack,
		ID:   "6rqhFgbbKwnb9MLmUQDhG6",
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, types.PlayableKindTrack, items[0].Kind)
	assert.Equal(t, "6rqhFgbbKwnb9MLmUQDhG6", items[0].ID)
	assert.Equal(t, conf.Library.Music, items[0].LibraryRoot)
	assert.Equal(t, conf.Output.Album, items[0].OutputTemplate)
	assert.Empty(t, items[0].Metadata)
}

func TestExpandAlbumKeepsDiscOrder(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/albums/alb00000000000000000001", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"id": "alb00000000000000000001",
			"name": "Album",
			"artists": [{"id": "a1", "name": "Artist"}],
			"tracks": {
				"items": [
					{"id": "t1", "name": "One", "disc_number": 1, "track_number": 1},
					{"id": "t2", "name": "Two", "disc_number": 1, "track_number": 2},
					{"id": "t3", "name": "Three", "disc_number": 2, "track_number": 1}
				],
				"next": ""
			}
		}`)
	})

	expander, _ := newExpander(t, mux)

	items, err := expander.Expand(context.Background(), zerolog.Nop(), types.Link{
		Kind: types.LinkKindAlbum,
		ID:   "alb00000000000000000001",
	})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "t1", items[0].ID)
	assert.Equal(t, "t2", items[1].ID)
	assert.Equal(t, "t3", items[2].ID)
}

func TestExpandAlbumFollowsTrackPages(t *testing.T) {
	t.Parallel()

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/albums/alb1", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `{
			"id": "alb1",
			"name": "Album",
			"tracks": {
				"items": [{"id": "t1", "name": "One", "track_number": 1}],
				"next": %q
			}
		}`, server.URL+"/albums/alb1/tracks?offset=1")
	})
	mux.HandleFunc("/albums/alb1/tracks", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"items": [{"id": "t2", "name": "Two", "track_number": 2}],
			"next": ""
		}`)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	conf := newTestConfig(server.URL)
	client := api.NewClient(conf.API, conf.Downloader, "US", staticToken("tok"), cache.New())
	expander := collection.NewExpander(client, conf)

	items, err := expander.Expand(context.Background(), zerolog.Nop(), types.Link{
		Kind: types.LinkKindAlbum,
		ID:   "alb1",
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "t1", items[0].ID)
	assert.Equal(t, "t2", items[1].ID)
}

func TestExpandPlaylistDemuxAndPadding(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/playlists/pl1", func(w http.ResponseWriter, _ *http.Request) {
		entries := `{"track": {"uri": "spotify:track:aaaaaaaaaaaaaaaaaaaaa1"}}`
		for i := 2; i <= 10; i++ {
			entries += fmt.Sprintf(`,{"track": {"uri": "spotify:track:aaaaaaaaaaaaaaaaaaaaa%d"}}`, i%10)
		}
		entries += `,{"track": {"uri": "spotify:episode:bbbbbbbbbbbbbbbbbbbbb1"}}`
		entries += `,{"track": {"uri": "spotify:track:short"}}`
		entries += `,{"track": {"uri": ""}}`
		fmt.Fprintf(w, `{
			"id": "pl1",
			"name": "Mixed Bag",
			"owner": {"display_name": "someone"},
			"tracks": {"items": [%s], "next": ""}
		}`, entries)
	})

	expander, conf := newExpander(t, mux)

	items, err := expander.Expand(context.Background(), zerolog.Nop(), types.Link{
		Kind: types.LinkKindPlaylist,
		ID:   "pl1",
	})
	require.NoError(t, err)
	// 10 tracks + 1 episode; the unparsable URI and the empty URI are
	// dropped.
	require.Len(t, items, 11)

	first := items[0]
	assert.Equal(t, types.PlayableKindTrack, first.Kind)
	assert.Equal(t, conf.Library.Playlist, first.LibraryRoot)
	assert.Equal(t, conf.Output.PlaylistTrack, first.OutputTemplate)

	name, ok := types.LookupEntry(first.Metadata, "playlist")
	require.True(t, ok)
	assert.Equal(t, "Mixed Bag", name.Display)

	owner, ok := types.LookupEntry(first.Metadata, "playlist_owner")
	require.True(t, ok)
	assert.Equal(t, "someone", owner.Display)

	length, ok := types.LookupEntry(first.Metadata, "playlist_length")
	require.True(t, ok)
	assert.Equal(t, 12, length.Value)

	// Positions are padded to the playlist length width.
	number, ok := types.LookupEntry(first.Metadata, "playlist_number")
	require.True(t, ok)
	assert.Equal(t, "01", number.Display)

	episode := items[10]
	assert.Equal(t, types.PlayableKindEpisode, episode.Kind)
	assert.Equal(t, conf.Output.PlaylistEpisode, episode.OutputTemplate)
	epNumber, ok := types.LookupEntry(episode.Metadata, "playlist_number")
	require.True(t, ok)
	assert.Equal(t, "11", epNumber.Display)
}

func TestExpandPlaylistRejectsUnknownEntryKind(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/playlists/pl3", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"id": "pl3",
			"name": "Broken",
			"owner": {"display_name": "someone"},
			"tracks": {
				"items": [
					{"track": {"uri": "spotify:track:aaaaaaaaaaaaaaaaaaaaa1"}},
					{"track": {"uri": "spotify:show:ccccccccccccccccccccc1"}}
				],
				"next": ""
			}
		}`)
	})

	expander, _ := newExpander(t, mux)

	_, err := expander.Expand(context.Background(), zerolog.Nop(), types.Link{
		Kind: types.LinkKindPlaylist,
		ID:   "pl3",
	})
	require.Error(t, err, "a recognized but non-playable entry kind must fail the expansion")
	assert.ErrorContains(t, err, "unknown playable content")
}

func TestExpandShowNumbersEpisodesOldestFirst(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/shows/sh1", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{
			"id": "sh1",
			"name": "Some Show",
			"publisher": "Pub",
			"episodes": {
				"items": [
					{"id": "newest", "name": "Newest"},
					{"id": "older", "name": "Older"},
					{"id": "oldest", "name": "Oldest"}
				],
				"next": ""
			}
		}`)
	})

	expander, conf := newExpander(t, mux)

	items, err := expander.Expand(context.Background(), zerolog.Nop(), types.Link{
		Kind: types.LinkKindShow,
		ID:   "sh1",
	})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "oldest", items[0].ID)
	assert.Equal(t, "older", items[1].ID)
	assert.Equal(t, "newest", items[2].ID)
	assert.Equal(t, conf.Library.Podcast, items[0].LibraryRoot)
}

func TestExpandEmptyPlaylist(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/playlists/pl2", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id": "pl2", "name": "Empty", "owner": {"display_name": "x"}, "tracks": {"items": [], "next": ""}}`)
	})

	expander, _ := newExpander(t, mux)

	_, err := expander.Expand(context.Background(), zerolog.Nop(), types.Link{
		Kind: types.LinkKindPlaylist,
		ID:   "pl2",
	})
	require.ErrorIs(t, err, collection.ErrEmptyCollection)
}
