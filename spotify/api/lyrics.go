package api

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Lyrics returns the raw lyrics payload for a track. ErrNotFound is
// returned when the catalog has no lyrics for it.
func (c *Client) Lyrics(ctx context.Context, trackID string) ([]byte, error) {
	reqURL, err := url.Parse(c.lyricsURL + "/track/" + trackID)
	if nil != err {
		return nil, fmt.Errorf("failed to parse lyrics URL: %v", err)
	}

	params := make(url.Values, 2)
	params.Add("format", "json")
	params.Add("market", "from_token")
	reqURL.RawQuery = params.Encode()

	timeout := time.Duration(c.timeouts.GetLyrics) * time.Second
	respBody, err := c.invoke(ctx, reqURL.String(), timeout)
	if nil != err {
		return nil, fmt.Errorf("failed to get lyrics: %w", err)
	}

	return respBody, nil
}
