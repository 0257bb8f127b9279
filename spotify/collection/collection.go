// Package collection expands a resolved link into the ordered list of
// playable items it denotes.
package collection

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/xeptore/spotgram/config"
	"github.com/xeptore/spotgram/spotify/api"
	"github.com/xeptore/spotgram/spotify/resolve"
	"github.com/xeptore/spotgram/spotify/types"
)

var ErrEmptyCollection = errors.New("collection has no playable items")

type Expander struct {
	client  *api.Client
	library config.Library
	output  config.Output
}

func NewExpander(client *api.Client, conf *config.Config) *Expander {
	return &Expander{
		client:  client,
		library: conf.Library,
		output:  conf.Output,
	}
}

// Expand flattens a link into playable items in download order. Single
// tracks and episodes become one-element lists so the caller treats every
// link kind uniformly.
func (e *Expander) Expand(
	ctx context.Context,
	logger zerolog.Logger,
	link types.Link,
) ([]types.PlayableItem, error) {
	switch link.Kind {
	case types.LinkKindTrack:
		return []types.PlayableItem{e.trackItem(link.ID, nil)}, nil
	case types.LinkKindEpisode:
		return []types.PlayableItem{e.episodeItem(link.ID, nil)}, nil
	case types.LinkKindAlbum:
		return e.expandAlbum(ctx, link.ID)
	case types.LinkKindArtist:
		return e.expandArtist(ctx, logger, link.ID)
	case types.LinkKindShow:
		return e.expandShow(ctx, link.ID)
	case types.LinkKindPlaylist:
		return e.expandPlaylist(ctx, logger, link.ID)
	default:
		return nil, fmt.Errorf("unsupported link kind: %s", link.Kind)
	}
}

func (e *Expander) trackItem(id string, extra []types.MetadataEntry) types.PlayableItem {
	template := e.output.Album
	if _, ok := types.LookupEntry(extra, "playlist"); ok {
		template = e.output.PlaylistTrack
	}

	root := e.library.Music
	if _, ok := types.LookupEntry(extra, "playlist"); ok {
		root = e.library.Playlist
	}

	return types.PlayableItem{
		Kind:           types.PlayableKindTrack,
		ID:             id,
		LibraryRoot:    root,
		OutputTemplate: template,
		Metadata:       extra,
	}
}

func (e *Expander) episodeItem(id string, extra []types.MetadataEntry) types.PlayableItem {
	template := e.output.Podcast
	root := e.library.Podcast
	if _, ok := types.LookupEntry(extra, "playlist"); ok {
		template = e.output.PlaylistEpisode
		root = e.library.Playlist
	}

	return types.PlayableItem{
		Kind:           types.PlayableKindEpisode,
		ID:             id,
		LibraryRoot:    root,
		OutputTemplate: template,
		Metadata:       extra,
	}
}

func (e *Expander) expandAlbum(ctx context.Context, id string) ([]types.PlayableItem, error) {
	album, err := e.client.Album(ctx, id)
	if nil != err {
		return nil, fmt.Errorf("failed to expand album: %w", err)
	}

	if len(album.Tracks) == 0 {
		return nil, ErrEmptyCollection
	}

	items := make([]types.PlayableItem, len(album.Tracks))
	for i, t := range album.Tracks {
		items[i] = e.trackItem(t.ID, nil)
	}

	return items, nil
}

func (e *Expander) expandArtist(
	ctx context.Context,
	logger zerolog.Logger,
	id string,
) ([]types.PlayableItem, error) {
	albums, err := e.client.ArtistAlbums(ctx, id)
	if nil != err {
		return nil, fmt.Errorf("failed to expand artist: %w", err)
	}

	var items []types.PlayableItem
	for _, album := range albums {
		albumItems, err := e.expandAlbum(ctx, album.ID)
		if nil != err {
			if errors.Is(err, ErrEmptyCollection) {
				logger.Warn().Str("album_id", album.ID).Msg("Skipping empty artist album")
				continue
			}

			return nil, err
		}

		items = append(items, albumItems...)
	}

	if len(items) == 0 {
		return nil, ErrEmptyCollection
	}

	return items, nil
}

func (e *Expander) expandShow(ctx context.Context, id string) ([]types.PlayableItem, error) {
	show, err := e.client.Show(ctx, id)
	if nil != err {
		return nil, fmt.Errorf("failed to expand show: %w", err)
	}

	if len(show.Episodes) == 0 {
		return nil, ErrEmptyCollection
	}

	items := make([]types.PlayableItem, len(show.Episodes))
	for i, episode := range show.Episodes {
		items[i] = e.episodeItem(episode.ID, nil)
	}

	return items, nil
}

func (e *Expander) expandPlaylist(
	ctx context.Context,
	logger zerolog.Logger,
	id string,
) ([]types.PlayableItem, error) {
	playlist, err := e.client.Playlist(ctx, id)
	if nil != err {
		return nil, fmt.Errorf("failed to expand playlist: %w", err)
	}

	// Position numbers are zero-padded to the width of the playlist length
	// so lexicographic file ordering matches playlist ordering.
	width := len(strconv.Itoa(len(playlist.Entries)))

	items := make([]types.PlayableItem, 0, len(playlist.Entries))
	for i, entry := range playlist.Entries {
		// Entries whose URI cannot be parsed at all (local files, removed
		// items) are skipped; entries of a recognized but non-playable kind
		// fail the expansion below.
		link, err := resolve.Resolve(entry.URI)
		if nil != err {
			logger.Warn().Str("uri", entry.URI).Msg("Skipping unparsable playlist entry")
			continue
		}

		number := fmt.Sprintf("%0*d", width, i+1)
		extra := []types.MetadataEntry{
			types.NewEntry("playlist", playlist.Name),
			types.NewEntry("playlist_length", len(playlist.Entries)),
			types.NewEntry("playlist_owner", playlist.Owner),
			types.NewEntryDisplay("playlist_number", i+1, number),
		}

		switch link.Kind {
		case types.LinkKindTrack:
			items = append(items, e.trackItem(link.ID, extra))
		case types.LinkKindEpisode:
			items = append(items, e.episodeItem(link.ID, extra))
		default:
			return nil, fmt.Errorf("unknown playable content in playlist %s: entry %s has kind %s", id, entry.URI, link.Kind)
		}
	}

	if len(items) == 0 {
		return nil, ErrEmptyCollection
	}

	return items, nil
}
