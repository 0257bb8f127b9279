// Package session manages the authenticated streaming session audio is
// served over.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/xeptore/spotgram/config"
	"github.com/xeptore/spotgram/httputil"
	"github.com/xeptore/spotgram/spotify/types"
)

var (
	ErrUnauthorized    = errors.New("session unauthorized")
	ErrTooManyRequests = errors.New("session rate limited")
	ErrUnavailable     = errors.New("item is not available for streaming")
)

// LoadedStream is an open audio stream for a single item. Exactly one of
// Body and ExternalURL is set: items the feed does not host carry the
// external URL they must be fetched from instead.
type LoadedStream struct {
	Body        io.ReadCloser
	Size        int64
	Format      types.AudioFormat
	ExternalURL string
}

type Session interface {
	Load(ctx context.Context, id string, kind types.PlayableKind, quality types.Quality) (*LoadedStream, error)
	AccessToken(ctx context.Context) (string, error)
	IsPremium() bool
	Country() string
}

// Feed is a Session backed by an HTTP audio feed endpoint.
type Feed struct {
	baseURL  string
	token    string
	country  string
	premium  bool
	timeouts config.DownloadTimeouts
}

func NewFeed(conf config.Session, timeouts config.DownloadTimeouts) *Feed {
	return &Feed{
		baseURL:  strings.TrimRight(conf.FeedAPI, "/"),
		token:    conf.Token,
		country:  conf.Country,
		premium:  false,
		timeouts: timeouts,
	}
}

// Connect validates the token against the feed and learns the account
// entitlement and storefront country.
func (f *Feed) Connect(ctx context.Context, logger zerolog.Logger) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/me", nil)
	if nil != err {
		return fmt.Errorf("failed to create session profile request: %v", err)
	}
	req.Header.Add("Authorization", "Bearer "+f.token)

	client := http.Client{ //nolint:exhaustruct
		Timeout: time.Duration(f.timeouts.GetMeta) * time.Second,
	}
	resp, err := client.Do(req)
	if nil != err {
		return fmt.Errorf("failed to send session profile request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close session profile response body: %v", closeErr))
		}
	}()

	switch code := resp.StatusCode; code {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrTooManyRequests
	default:
		return fmt.Errorf("unexpected session profile status code: %d", code)
	}

	respBody, err := httputil.ReadResponseBody(resp)
	if nil != err {
		return err
	}

	var respProfile struct {
		Product string `json:"product"`
		Country string `json:"country"`
	}
	if err := json.Unmarshal(respBody, &respProfile); nil != err {
		return fmt.Errorf("failed to decode session profile response: %v", err)
	}

	f.premium = respProfile.Product == "premium"
	if respProfile.Country != "" {
		f.country = respProfile.Country
	}

	logger.Debug().
		Str("product", respProfile.Product).
		Str("country", f.country).
		Msg("Session connected")

	return nil
}

func (f *Feed) Load(
	ctx context.Context,
	id string,
	kind types.PlayableKind,
	quality types.Quality,
) (*LoadedStream, error) {
	reqURL, err := url.Parse(fmt.Sprintf("%s/audio/%s/%s", f.baseURL, kind, id))
	if nil != err {
		return nil, fmt.Errorf("failed to parse audio stream URL: %v", err)
	}

	params := make(url.Values, 1)
	params.Add("bitrate", strconv.Itoa(quality.Resolve(f.premium).Bitrate()))
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to create audio stream request: %v", err)
	}
	req.Header.Add("Authorization", "Bearer "+f.token)

	client := http.Client{ //nolint:exhaustruct
		Timeout: 0, // read deadline is enforced per chunk by the fetcher
	}
	resp, err := client.Do(req)
	if nil != err {
		return nil, fmt.Errorf("failed to send audio stream request: %v", err)
	}

	switch code := resp.StatusCode; code {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, closeDiscarding(resp, ErrUnauthorized)
	case http.StatusForbidden, http.StatusNotFound:
		return nil, closeDiscarding(resp, ErrUnavailable)
	case http.StatusTooManyRequests:
		return nil, closeDiscarding(resp, ErrTooManyRequests)
	default:
		return nil, closeDiscarding(resp, fmt.Errorf("unexpected audio stream status code: %d", code))
	}

	// Items the feed does not host come back as a JSON redirect document
	// instead of an audio stream.
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(ct, "application/json") {
		respBody, err := httputil.ReadResponseBody(resp)
		if closeErr := resp.Body.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close audio stream response body: %v", closeErr))
		}
		if nil != err {
			return nil, err
		}

		var respRedirect struct {
			ExternalURL string `json:"external_url"`
		}
		if err := json.Unmarshal(respBody, &respRedirect); nil != err {
			return nil, fmt.Errorf("failed to decode audio redirect response: %v", err)
		}

		if respRedirect.ExternalURL == "" {
			return nil, ErrUnavailable
		}

		return &LoadedStream{ //nolint:exhaustruct
			ExternalURL: respRedirect.ExternalURL,
		}, nil
	}

	return &LoadedStream{
		Body:        resp.Body,
		Size:        resp.ContentLength,
		Format:      formatFromContentType(resp.Header.Get("Content-Type")),
		ExternalURL: "",
	}, nil
}

func (f *Feed) AccessToken(_ context.Context) (string, error) {
	if f.token == "" {
		return "", ErrUnauthorized
	}

	return f.token, nil
}

func (f *Feed) IsPremium() bool { return f.premium }

func (f *Feed) Country() string { return f.country }

func closeDiscarding(resp *http.Response, err error) error {
	if _, copyErr := io.Copy(io.Discard, resp.Body); nil != copyErr {
		err = errors.Join(err, fmt.Errorf("failed to drain audio stream response body: %v", copyErr))
	}

	if closeErr := resp.Body.Close(); nil != closeErr {
		err = errors.Join(err, fmt.Errorf("failed to close audio stream response body: %v", closeErr))
	}

	return err
}

func formatFromContentType(ct string) types.AudioFormat {
	switch {
	case strings.HasPrefix(ct, "audio/ogg"):
		return types.FormatVorbis
	case strings.HasPrefix(ct, "audio/mpeg"):
		return types.FormatMP3
	case strings.HasPrefix(ct, "audio/mp4"), strings.HasPrefix(ct, "audio/aac"):
		return types.FormatAAC
	default:
		return types.FormatVorbis
	}
}
