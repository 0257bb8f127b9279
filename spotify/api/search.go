package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/xeptore/spotgram/spotify/types"
)

// SearchResult is one catalog match, labeled for interactive selection.
type SearchResult struct {
	Link  types.Link
	Label string
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	params := make(url.Values, 4)
	params.Add("q", query)
	params.Add("type", "track,album,artist,playlist,show,episode")
	params.Add("market", c.country)
	params.Add("limit", strconv.Itoa(limit))

	reqURL, err := c.endpoint("/search", params)
	if nil != err {
		return nil, err
	}

	timeout := time.Duration(c.timeouts.GetMeta) * time.Second
	respBody, err := c.invoke(ctx, reqURL, timeout)
	if nil != err {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var respSearch struct {
		Tracks struct {
			Items []trackResponse `json:"items"`
		} `json:"tracks"`
		Albums struct {
			Items []albumResponse `json:"items"`
		} `json:"albums"`
		Artists struct {
			Items []artistRefResponse `json:"items"`
		} `json:"artists"`
		Playlists struct {
			Items []playlistResponse `json:"items"`
		} `json:"playlists"`
		Shows struct {
			Items []showResponse `json:"items"`
		} `json:"shows"`
		Episodes struct {
			Items []episodeResponse `json:"items"`
		} `json:"episodes"`
	}
	if err := json.Unmarshal(respBody, &respSearch); nil != err {
		return nil, fmt.Errorf("failed to decode search response: %v", err)
	}

	var results []SearchResult
	for _, t := range respSearch.Tracks.Items {
		artists := strings.Join(types.ArtistNames(toArtistRefs(t.Artists)), ", ")
		results = append(results, SearchResult{
			Link:  types.Link{Kind: types.LinkKindTrack, ID: t.ID},
			Label: fmt.Sprintf("[track] %s - %s", artists, t.Name),
		})
	}

	for _, a := range respSearch.Albums.Items {
		artists := strings.Join(types.ArtistNames(toArtistRefs(a.Artists)), ", ")
		results = append(results, SearchResult{
			Link:  types.Link{Kind: types.LinkKindAlbum, ID: a.ID},
			Label: fmt.Sprintf("[album] %s - %s", artists, a.Name),
		})
	}

	for _, a := range respSearch.Artists.Items {
		results = append(results, SearchResult{
			Link:  types.Link{Kind: types.LinkKindArtist, ID: a.ID},
			Label: fmt.Sprintf("[artist] %s", a.Name),
		})
	}

	for _, p := range respSearch.Playlists.Items {
		results = append(results, SearchResult{
			Link:  types.Link{Kind: types.LinkKindPlaylist, ID: p.ID},
			Label: fmt.Sprintf("[playlist] %s (by %s)", p.Name, p.Owner.DisplayName),
		})
	}

	for _, s := range respSearch.Shows.Items {
		results = append(results, SearchResult{
			Link:  types.Link{Kind: types.LinkKindShow, ID: s.ID},
			Label: fmt.Sprintf("[show] %s (%s)", s.Name, s.Publisher),
		})
	}

	for _, e := range respSearch.Episodes.Items {
		results = append(results, SearchResult{
			Link:  types.Link{Kind: types.LinkKindEpisode, ID: e.ID},
			Label: fmt.Sprintf("[episode] %s", e.Name),
		})
	}

	return results, nil
}
