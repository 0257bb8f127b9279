package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/xeptore/spotgram/spotify/types"
)

type playlistItemResponse struct {
	Track struct {
		URI string `json:"uri"`
	} `json:"track"`
}

type playlistResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
	Tracks struct {
		Items []playlistItemResponse `json:"items"`
		Next  string                 `json:"next"`
	} `json:"tracks"`
}

// Playlist returns the playlist metadata with the URI of every entry in
// playlist order. Episodes appear under the track key like tracks do.
func (c *Client) Playlist(ctx context.Context, id string) (*types.PlaylistMeta, error) {
	params := make(url.Values, 2)
	params.Add("market", c.country)
	params.Add("additional_types", "track,episode")

	reqURL, err := c.endpoint("/playlists/"+id, params)
	if nil != err {
		return nil, err
	}

	timeout := time.Duration(c.timeouts.GetMeta) * time.Second
	respBody, err := c.invoke(ctx, reqURL, timeout)
	if nil != err {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	var respPlaylist playlistResponse
	if err := json.Unmarshal(respBody, &respPlaylist); nil != err {
		return nil, fmt.Errorf("failed to decode playlist response: %v", err)
	}

	items := respPlaylist.Tracks.Items
	if next := respPlaylist.Tracks.Next; next != "" {
		rest, err := collectPages[playlistItemResponse](ctx, c, next, timeout)
		if nil != err {
			return nil, fmt.Errorf("failed to get playlist entry pages: %w", err)
		}

		items = append(items, rest...)
	}

	entries := make([]types.PlaylistEntry, 0, len(items))
	for _, item := range items {
		// Removed or local items come through with an empty URI.
		if item.Track.URI == "" {
			continue
		}

		entries = append(entries, types.PlaylistEntry{URI: item.Track.URI})
	}

	return &types.PlaylistMeta{
		ID:      respPlaylist.ID,
		Name:    respPlaylist.Name,
		Owner:   respPlaylist.Owner.DisplayName,
		Entries: entries,
	}, nil
}

// PlaylistRef is a playlist listing entry from the user library.
type PlaylistRef struct {
	ID   string
	Name string
}

func (c *Client) MyPlaylists(ctx context.Context) ([]PlaylistRef, error) {
	params := make(url.Values, 1)
	params.Add("limit", strconv.Itoa(50))

	reqURL, err := c.endpoint("/me/playlists", params)
	if nil != err {
		return nil, err
	}

	timeout := time.Duration(c.timeouts.GetMeta) * time.Second
	refs, err := collectPages[struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}](ctx, c, reqURL, timeout)
	if nil != err {
		return nil, fmt.Errorf("failed to get user playlists: %w", err)
	}

	out := make([]PlaylistRef, len(refs))
	for i, r := range refs {
		out[i] = PlaylistRef{ID: r.ID, Name: r.Name}
	}

	return out, nil
}
