package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/xeptore/spotgram/cache"
	"github.com/xeptore/spotgram/spotify/types"
)

type imageResponse struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func toImages(images []imageResponse) []types.Image {
	out := make([]types.Image, len(images))
	for i, img := range images {
		out[i] = types.Image{URL: img.URL, Width: img.Width, Height: img.Height}
	}

	return out
}

type artistRefResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toArtistRefs(artists []artistRefResponse) []types.ArtistRef {
	out := make([]types.ArtistRef, len(artists))
	for i, a := range artists {
		out[i] = types.ArtistRef{ID: a.ID, Name: a.Name}
	}

	return out
}

type albumTrackResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	DiscNumber  int                 `json:"disc_number"`
	TrackNumber int                 `json:"track_number"`
	DurationMS  int                 `json:"duration_ms"`
	Artists     []artistRefResponse `json:"artists"`
}

func (t albumTrackResponse) toMeta() types.AlbumTrackMeta {
	return types.AlbumTrackMeta{
		ID:          t.ID,
		Title:       t.Name,
		DiscNumber:  t.DiscNumber,
		TrackNumber: t.TrackNumber,
		DurationMS:  t.DurationMS,
		Artists:     toArtistRefs(t.Artists),
	}
}

type albumResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Artists     []artistRefResponse `json:"artists"`
	ReleaseDate string              `json:"release_date"`
	TotalTracks int                 `json:"total_tracks"`
	Images      []imageResponse     `json:"images"`
	Tracks      struct {
		Items []albumTrackResponse `json:"items"`
		Next  string               `json:"next"`
	} `json:"tracks"`
}

func (a albumResponse) toMeta() *types.AlbumMeta {
	tracks := make([]types.AlbumTrackMeta, len(a.Tracks.Items))
	for i, t := range a.Tracks.Items {
		tracks[i] = t.toMeta()
	}

	return &types.AlbumMeta{
		ID:          a.ID,
		Title:       a.Name,
		Artists:     toArtistRefs(a.Artists),
		ReleaseDate: a.ReleaseDate,
		TotalTracks: a.TotalTracks,
		Images:      toImages(a.Images),
		Tracks:      tracks,
	}
}

// Album returns the full album metadata including every track across all
// listing pages. Results are cached.
func (c *Client) Album(ctx context.Context, id string) (*types.AlbumMeta, error) {
	cachedMeta, err := c.cache.AlbumsMeta.Fetch(
		id,
		cache.DefaultAlbumTTL,
		func() (*types.AlbumMeta, error) { return c.fetchAlbum(ctx, id) },
	)
	if nil != err {
		return nil, err
	}

	return cachedMeta.Value(), nil
}

func (c *Client) fetchAlbum(ctx context.Context, id string) (*types.AlbumMeta, error) {
	params := make(url.Values, 1)
	params.Add("market", c.country)

	reqURL, err := c.endpoint("/albums/"+id, params)
	if nil != err {
		return nil, err
	}

	timeout := time.Duration(c.timeouts.GetMeta) * time.Second
	respBody, err := c.invoke(ctx, reqURL, timeout)
	if nil != err {
		return nil, fmt.Errorf("failed to get album: %w", err)
	}

	var respAlbum albumResponse
	if err := json.Unmarshal(respBody, &respAlbum); nil != err {
		return nil, fmt.Errorf("failed to decode album response: %v", err)
	}

	meta := respAlbum.toMeta()

	if next := respAlbum.Tracks.Next; next != "" {
		rest, err := collectPages[albumTrackResponse](ctx, c, next, timeout)
		if nil != err {
			return nil, fmt.Errorf("failed to get album track pages: %w", err)
		}

		for _, t := range rest {
			meta.Tracks = append(meta.Tracks, t.toMeta())
		}
	}

	return meta, nil
}

type albumRefResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AlbumGroup string `json:"album_group"`
}

// ArtistAlbums lists the artist's albums, singles, compilations, and
// appearances, in grouping order as served by the listing.
func (c *Client) ArtistAlbums(ctx context.Context, id string) ([]types.AlbumRef, error) {
	params := make(url.Values, 3)
	params.Add("market", c.country)
	params.Add("include_groups", "album,single,compilation,appears_on")
	params.Add("limit", strconv.Itoa(50))

	reqURL, err := c.endpoint("/artists/"+id+"/albums", params)
	if nil != err {
		return nil, err
	}

	timeout := time.Duration(c.timeouts.GetMeta) * time.Second
	refs, err := collectPages[albumRefResponse](ctx, c, reqURL, timeout)
	if nil != err {
		return nil, fmt.Errorf("failed to get artist albums: %w", err)
	}

	out := make([]types.AlbumRef, len(refs))
	for i, r := range refs {
		out[i] = types.AlbumRef{ID: r.ID, Title: r.Name, Group: r.AlbumGroup}
	}

	return out, nil
}
