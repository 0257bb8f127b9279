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

// User is the account profile of the session owner.
type User struct {
	DisplayName string
	Country     string
	Product     string
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	reqURL, err := c.endpoint("/me", nil)
	if nil != err {
		return nil, err
	}

	timeout := time.Duration(c.timeouts.GetMeta) * time.Second
	respBody, err := c.invoke(ctx, reqURL, timeout)
	if nil != err {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	var respUser struct {
		DisplayName string `json:"display_name"`
		Country     string `json:"country"`
		Product     string `json:"product"`
	}
	if err := json.Unmarshal(respBody, &respUser); nil != err {
		return nil, fmt.Errorf("failed to decode user profile response: %v", err)
	}

	return &User{
		DisplayName: respUser.DisplayName,
		Country:     respUser.Country,
		Product:     respUser.Product,
	}, nil
}

// SavedTracks lists the liked tracks of the session owner.
func (c *Client) SavedTracks(ctx context.Context) ([]types.Link, error) {
	return c.savedItems(ctx, "/me/tracks", "track", types.LinkKindTrack)
}

// SavedEpisodes lists the saved episodes of the session owner.
func (c *Client) SavedEpisodes(ctx context.Context) ([]types.Link, error) {
	return c.savedItems(ctx, "/me/episodes", "episode", types.LinkKindEpisode)
}

func (c *Client) savedItems(
	ctx context.Context,
	path string,
	key string,
	kind types.LinkKind,
) ([]types.Link, error) {
	params := make(url.Values, 2)
	params.Add("market", c.country)
	params.Add("limit", strconv.Itoa(50))

	reqURL, err := c.endpoint(path, params)
	if nil != err {
		return nil, err
	}

	timeout := time.Duration(c.timeouts.GetMeta) * time.Second
	items, err := collectPages[map[string]struct {
		ID string `json:"id"`
	}](ctx, c, reqURL, timeout)
	if nil != err {
		return nil, fmt.Errorf("failed to get saved items: %w", err)
	}

	links := make([]types.Link, 0, len(items))
	for _, item := range items {
		if entry, ok := item[key]; ok && entry.ID != "" {
			links = append(links, types.Link{Kind: kind, ID: entry.ID})
		}
	}

	return links, nil
}

// FollowedArtists lists the artists the session owner follows. The
// listing uses cursor pagination rather than offsets.
func (c *Client) FollowedArtists(ctx context.Context) ([]types.ArtistRef, error) {
	var (
		artists []types.ArtistRef
		after   string
	)
	timeout := time.Duration(c.timeouts.GetMeta) * time.Second

	for {
		params := make(url.Values, 3)
		params.Add("type", "artist")
		params.Add("limit", strconv.Itoa(50))
		if after != "" {
			params.Add("after", after)
		}

		reqURL, err := c.endpoint("/me/following", params)
		if nil != err {
			return nil, err
		}

		respBody, err := c.invoke(ctx, reqURL, timeout)
		if nil != err {
			return nil, fmt.Errorf("failed to get followed artists: %w", err)
		}

		var respPage struct {
			Artists struct {
				Items   []artistRefResponse `json:"items"`
				Cursors struct {
					After string `json:"after"`
				} `json:"cursors"`
			} `json:"artists"`
		}
		if err := json.Unmarshal(respBody, &respPage); nil != err {
			return nil, fmt.Errorf("failed to decode followed artists response: %v", err)
		}

		artists = append(artists, toArtistRefs(respPage.Artists.Items)...)

		after = respPage.Artists.Cursors.After
		if after == "" {
			return artists, nil
		}
	}
}
