// Package api implements the Web API metadata client. All calls carry the
// session bearer token and are retried with Fibonacci backoff on transient
// failures.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/xeptore/spotgram/cache"
	"github.com/xeptore/spotgram/config"
	"github.com/xeptore/spotgram/httputil"
)

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTooManyRequests = errors.New("too many requests")
	ErrNotFound        = errors.New("not found")
)

// StatusError is a non-2xx Web API response that does not map to one of
// the sentinel errors above.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.Status, e.Message)
}

// TokenSource yields the bearer token requests are authorized with.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type Client struct {
	baseURL   string
	lyricsURL string
	country   string
	attempts  int
	timeouts  config.DownloadTimeouts
	tokens    TokenSource
	cache     *cache.Cache
}

func NewClient(
	conf config.API,
	dlConf config.Downloader,
	country string,
	tokens TokenSource,
	c *cache.Cache,
) *Client {
	return &Client{
		baseURL:   conf.BaseURL,
		lyricsURL: conf.LyricsURL,
		country:   country,
		attempts:  dlConf.Retry.Attempts,
		timeouts:  dlConf.Timeouts,
		tokens:    tokens,
		cache:     c,
	}
}

func (c *Client) endpoint(path string, params url.Values) (string, error) {
	reqURL, err := url.Parse(c.baseURL + path)
	if nil != err {
		return "", fmt.Errorf("failed to parse request URL: %v", err)
	}

	if nil != params {
		reqURL.RawQuery = params.Encode()
	}

	return reqURL.String(), nil
}

// invoke sends an authorized GET request and returns the response body.
// Timeouts, rate limiting responses, and server errors are retried.
func (c *Client) invoke(ctx context.Context, reqURL string, timeout time.Duration) ([]byte, error) {
	var respBody []byte
	err := retry.Do(
		ctx,
		retry.WithMaxRetries(uint64(c.attempts), retry.NewFibonacci(1*time.Second)),
		func(ctx context.Context) error {
			b, err := c.send(ctx, reqURL, timeout)
			if nil != err {
				if errors.Is(err, context.DeadlineExceeded) {
					return retry.RetryableError(context.DeadlineExceeded)
				}

				if errors.Is(err, ErrTooManyRequests) {
					return retry.RetryableError(ErrTooManyRequests)
				}

				var statusErr *StatusError
				if errors.As(err, &statusErr) && statusErr.Status >= http.StatusInternalServerError {
					return retry.RetryableError(err)
				}

				return err
			}

			respBody = b

			return nil
		},
	)
	if nil != err {
		return nil, fmt.Errorf("request failed after retries: %w", err)
	}

	return respBody, nil
}

func (c *Client) send(ctx context.Context, reqURL string, timeout time.Duration) (b []byte, err error) {
	accessToken, err := c.tokens.AccessToken(ctx)
	if nil != err {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if nil != err {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Add("Authorization", "Bearer "+accessToken)

	client := http.Client{Timeout: timeout} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		return nil, fmt.Errorf("failed to send request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close response body: %v", closeErr))
		}
	}()

	switch code := resp.StatusCode; code {
	case http.StatusOK:
	case http.StatusUnauthorized:
		respBytes, err := httputil.ReadResponseBody(resp)
		if nil != err {
			return nil, err
		}

		if ok, err := httputil.IsTokenExpiredResponse(respBytes); nil != err {
			return nil, err
		} else if ok {
			return nil, ErrUnauthorized
		}

		if ok, err := httputil.IsTokenInvalidResponse(respBytes); nil != err {
			return nil, err
		} else if ok {
			return nil, ErrUnauthorized
		}

		return nil, ErrUnauthorized
	case http.StatusNotFound:
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		return nil, ErrTooManyRequests
	default:
		respBytes, err := httputil.ReadOptionalResponseBody(resp)
		if nil != err {
			return nil, err
		}

		if env, err := httputil.ParseErrorEnvelope(respBytes); nil == err {
			return nil, &StatusError{Status: env.Status, Message: env.Message}
		}

		return nil, &StatusError{Status: code, Message: http.StatusText(code)}
	}

	respBody, err := httputil.ReadResponseBody(resp)
	if nil != err {
		return nil, err
	}

	return respBody, nil
}
