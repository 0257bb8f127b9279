package api

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

type page[T any] struct {
	Items []T    `json:"items"`
	Next  string `json:"next"`
}

// collectPages walks a paginated listing starting at firstURL, following
// the next link until the listing is exhausted.
func collectPages[T any](
	ctx context.Context,
	c *Client,
	firstURL string,
	timeout time.Duration,
) ([]T, error) {
	var items []T
	for next := firstURL; next != ""; {
		respBody, err := c.invoke(ctx, next, timeout)
		if nil != err {
			return nil, err
		}

		var p page[T]
		if err := json.Unmarshal(respBody, &p); nil != err {
			return nil, fmt.Errorf("failed to decode page response: %v", err)
		}

		items = append(items, p.Items...)
		next = p.Next
	}

	return items, nil
}
