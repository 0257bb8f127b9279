package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/xeptore/spotgram/spotify/types"
)

type trackResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Artists     []artistRefResponse `json:"artists"`
	Album       albumResponse       `json:"album"`
	DiscNumber  int                 `json:"disc_number"`
	TrackNumber int                 `json:"track_number"`
	DurationMS  int                 `json:"duration_ms"`
	Explicit    bool                `json:"explicit"`
	Popularity  int                 `json:"popularity"`
	IsPlayable  *bool               `json:"is_playable"`
	ExternalIDs struct {
		ISRC string `json:"isrc"`
	} `json:"external_ids"`
}

func (t trackResponse) toMeta() *types.TrackMeta {
	// Playability is only reported when a market is in effect. Absence
	// means the item is available.
	playable := true
	if nil != t.IsPlayable {
		playable = *t.IsPlayable
	}

	return &types.TrackMeta{
		ID:          t.ID,
		Title:       t.Name,
		Artists:     toArtistRefs(t.Artists),
		Album:       *t.Album.toMeta(),
		DiscNumber:  t.DiscNumber,
		TrackNumber: t.TrackNumber,
		DurationMS:  t.DurationMS,
		Explicit:    t.Explicit,
		ISRC:        t.ExternalIDs.ISRC,
		Popularity:  t.Popularity,
		IsPlayable:  playable,
	}
}

func (c *Client) Track(ctx context.Context, id string) (*types.TrackMeta, error) {
	params := make(url.Values, 1)
	params.Add("market", c.country)

	reqURL, err := c.endpoint("/tracks/"+id, params)
	if nil != err {
		return nil, err
	}

	timeout := time.Duration(c.timeouts.GetMeta) * time.Second
	respBody, err := c.invoke(ctx, reqURL, timeout)
	if nil != err {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}

	var respTrack trackResponse
	if err := json.Unmarshal(respBody, &respTrack); nil != err {
		return nil, fmt.Errorf("failed to decode track response: %v", err)
	}

	return respTrack.toMeta(), nil
}
