package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/xeptore/spotgram/spotify/types"
)

type episodeResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ReleaseDate string          `json:"release_date"`
	DurationMS  int             `json:"duration_ms"`
	Explicit    bool            `json:"explicit"`
	Language    string          `json:"language"`
	Images      []imageResponse `json:"images"`
	Show        struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Publisher string `json:"publisher"`
	} `json:"show"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

func (e episodeResponse) toMeta() *types.EpisodeMeta {
	return &types.EpisodeMeta{
		ID:          e.ID,
		Title:       e.Name,
		Description: e.Description,
		ShowID:      e.Show.ID,
		ShowName:    e.Show.Name,
		Publisher:   e.Show.Publisher,
		ReleaseDate: e.ReleaseDate,
		DurationMS:  e.DurationMS,
		Explicit:    e.Explicit,
		Language:    e.Language,
		Images:      toImages(e.Images),
		ExternalURL: e.ExternalURLs.Spotify,
	}
}

func (c *Client) Episode(ctx context.Context, id string) (*types.EpisodeMeta, error) {
	params := make(url.Values, 1)
	params.Add("market", c.country)

	reqURL, err := c.endpoint("/episodes/"+id, params)
	if nil != err {
		return nil, err
	}

	timeout := time.Duration(c.timeouts.GetMeta) * time.Second
	respBody, err := c.invoke(ctx, reqURL, timeout)
	if nil != err {
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}

	var respEpisode episodeResponse
	if err := json.Unmarshal(respBody, &respEpisode); nil != err {
		return nil, fmt.Errorf("failed to decode episode response: %v", err)
	}

	return respEpisode.toMeta(), nil
}
