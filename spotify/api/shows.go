package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/xeptore/spotgram/spotify/types"
)

type showEpisodeResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ReleaseDate string          `json:"release_date"`
	DurationMS  int             `json:"duration_ms"`
	Explicit    bool            `json:"explicit"`
	Language    string          `json:"language"`
	Images      []imageResponse `json:"images"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type showResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
	Episodes  struct {
		Items []showEpisodeResponse `json:"items"`
		Next  string                `json:"next"`
	} `json:"episodes"`
}

// Show returns the show metadata with every episode across all listing
// pages, oldest first. Episode numbers are assigned from the listing
// position.
func (c *Client) Show(ctx context.Context, id string) (*types.ShowMeta, error) {
	params := make(url.Values, 1)
	params.Add("market", c.country)

	reqURL, err := c.endpoint("/shows/"+id, params)
	if nil != err {
		return nil, err
	}

	timeout := time.Duration(c.timeouts.GetMeta) * time.Second
	respBody, err := c.invoke(ctx, reqURL, timeout)
	if nil != err {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}

	var respShow showResponse
	if err := json.Unmarshal(respBody, &respShow); nil != err {
		return nil, fmt.Errorf("failed to decode show response: %v", err)
	}

	items := respShow.Episodes.Items
	if next := respShow.Episodes.Next; next != "" {
		rest, err := collectPages[showEpisodeResponse](ctx, c, next, timeout)
		if nil != err {
			return nil, fmt.Errorf("failed to get show episode pages: %w", err)
		}

		items = append(items, rest...)
	}

	// The listing is newest-first while episode numbering counts from the
	// first published episode.
	episodes := make([]types.EpisodeMeta, len(items))
	for i, e := range items {
		episodes[len(items)-1-i] = types.EpisodeMeta{
			ID:          e.ID,
			Title:       e.Name,
			Description: e.Description,
			ShowID:      respShow.ID,
			ShowName:    respShow.Name,
			Publisher:   respShow.Publisher,
			ReleaseDate: e.ReleaseDate,
			DurationMS:  e.DurationMS,
			Explicit:    e.Explicit,
			Language:    e.Language,
			Number:      len(items) - i,
			Images:      toImages(e.Images),
			ExternalURL: e.ExternalURLs.Spotify,
		}
	}

	return &types.ShowMeta{
		ID:        respShow.ID,
		Name:      respShow.Name,
		Publisher: respShow.Publisher,
		Episodes:  episodes,
	}, nil
}

// ShowEpisodeNumber resolves the position of an episode within its show.
func (c *Client) ShowEpisodeNumber(ctx context.Context, showID, episodeID string) (int, error) {
	show, err := c.Show(ctx, showID)
	if nil != err {
		return 0, err
	}

	for _, e := range show.Episodes {
		if e.ID == episodeID {
			return e.Number, nil
		}
	}

	return 0, fmt.Errorf("episode %s not found in show %s: %w", episodeID, showID, ErrNotFound)
}
