package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/xeptore/spotgram/cache"
)

// ArtistGenres returns the genre labels attached to an artist profile.
// Results are cached since album downloads ask for the same artist once
// per track.
func (c *Client) ArtistGenres(ctx context.Context, id string) ([]string, error) {
	cachedGenres, err := c.cache.ArtistGenres.Fetch(
		id,
		cache.DefaultArtistGenresTTL,
		func() ([]string, error) { return c.fetchArtistGenres(ctx, id) },
	)
	if nil != err {
		return nil, err
	}

	return cachedGenres.Value(), nil
}

func (c *Client) fetchArtistGenres(ctx context.Context, id string) ([]string, error) {
	reqURL, err := c.endpoint("/artists/"+id, url.Values{})
	if nil != err {
		return nil, err
	}

	timeout := time.Duration(c.timeouts.GetMeta) * time.Second
	respBody, err := c.invoke(ctx, reqURL, timeout)
	if nil != err {
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}

	var respArtist struct {
		Genres []string `json:"genres"`
	}
	if err := json.Unmarshal(respBody, &respArtist); nil != err {
		return nil, fmt.Errorf("failed to decode artist response: %v", err)
	}

	return respArtist.Genres, nil
}
