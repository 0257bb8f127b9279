package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/xeptore/spotgram/cache"
	"github.com/xeptore/spotgram/httputil"
)

// Cover downloads cover art from the image CDN. The CDN needs no
// authorization. Results are cached since album tracks share one cover.
func (c *Client) Cover(ctx context.Context, coverURL string) ([]byte, error) {
	cachedCover, err := c.cache.Covers.Fetch(
		coverURL,
		cache.DefaultCoverTTL,
		func() ([]byte, error) { return c.fetchCover(ctx, coverURL) },
	)
	if nil != err {
		return nil, err
	}

	return cachedCover.Value(), nil
}

func (c *Client) fetchCover(ctx context.Context, coverURL string) (b []byte, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if nil != err {
		return nil, fmt.Errorf("failed to create download cover request: %v", err)
	}

	client := http.Client{ //nolint:exhaustruct
		Timeout: time.Duration(c.timeouts.DownloadCover) * time.Second,
	}
	resp, err := client.Do(req)
	if nil != err {
		return nil, fmt.Errorf("failed to send download cover request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close download cover response body: %v", closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected cover status code: %d", resp.StatusCode)
	}

	respBody, err := httputil.ReadResponseBody(resp)
	if nil != err {
		return nil, err
	}

	return respBody, nil
}
