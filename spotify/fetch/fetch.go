// Package fetch writes audio streams to disk. Files are staged with a
// .part suffix and renamed into place only once fully written, so an
// interrupted run never leaves a finished-looking file behind.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"

	"github.com/xeptore/spotgram/config"
	"github.com/xeptore/spotgram/must"
	"github.com/xeptore/spotgram/spotify/process"
	"github.com/xeptore/spotgram/spotify/session"
	"github.com/xeptore/spotgram/spotify/types"
)

var ErrChunkTimeout = errors.New("audio chunk read timed out")

// WriteAudioStream drains a loaded session stream to disk next to
// destPath, under the stream's native container extension. Format
// conversion onto the rendered path is the post-processor's job. When
// real-time pacing is on, writes are throttled so the transfer takes
// about as long as the audio plays for.
func WriteAudioStream(
	ctx context.Context,
	logger zerolog.Logger,
	conf config.Downloader,
	stream *session.LoadedStream,
	destPath string,
	durationMS int,
	bitrate string,
) (f *process.LocalFile, err error) {
	defer func() {
		if closeErr := stream.Body.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close audio stream: %v", closeErr))
		}
	}()

	var limiter *rate.Limiter
	if conf.RealTime && stream.Size > 0 && durationMS > 0 {
		bytesPerSec := float64(stream.Size) * 1000 / float64(durationMS)
		limiter = rate.NewLimiter(rate.Limit(bytesPerSec), conf.ChunkSize)
	}

	path := strings.TrimSuffix(destPath, filepath.Ext(destPath)) + "." + stream.Format.Ext()

	if err := writeChunks(ctx, conf, stream.Body, stream.Size, path, limiter); nil != err {
		return nil, err
	}

	logger.Debug().Str("path", path).Int64("size", stream.Size).Msg("Wrote audio stream")

	return &process.LocalFile{
		Path:    path,
		Format:  stream.Format,
		Bitrate: bitrate,
	}, nil
}

// WriteExternal downloads an externally hosted item over plain HTTP. The
// on-disk extension follows the source URL since the remote container is
// whatever the host serves.
func WriteExternal(
	ctx context.Context,
	logger zerolog.Logger,
	conf config.Downloader,
	extURL string,
	destPath string,
	bitrate string,
) (f *process.LocalFile, err error) {
	parsed, err := url.Parse(extURL)
	if nil != err {
		return nil, fmt.Errorf("failed to parse external audio URL: %v", err)
	}

	ext := strings.TrimPrefix(filepath.Ext(parsed.Path), ".")
	if ext == "" {
		ext = "mp3"
	}
	path := strings.TrimSuffix(destPath, filepath.Ext(destPath)) + "." + ext

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, extURL, nil)
	if nil != err {
		return nil, fmt.Errorf("failed to create external audio request: %v", err)
	}

	client := http.Client{Timeout: 0} //nolint:exhaustruct
	resp, err := client.Do(req)
	if nil != err {
		return nil, fmt.Errorf("failed to send external audio request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close external audio response body: %v", closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected external audio status code: %d", resp.StatusCode)
	}

	if err := writeChunks(ctx, conf, resp.Body, resp.ContentLength, path, nil); nil != err {
		return nil, err
	}

	logger.Debug().Str("path", path).Str("url", extURL).Msg("Wrote external audio")

	return &process.LocalFile{
		Path:    path,
		Format:  types.FormatFromExt(ext),
		Bitrate: bitrate,
	}, nil
}

func writeChunks(
	ctx context.Context,
	conf config.Downloader,
	src io.Reader,
	size int64,
	destPath string,
	limiter *rate.Limiter,
) (err error) {
	must.Be(conf.ChunkSize > 0, "chunk size must be positive")

	partPath := destPath + ".part"

	out, err := os.Create(partPath)
	if nil != err {
		return fmt.Errorf("failed to create staging file: %v", err)
	}
	defer func() {
		if nil != err {
			if removeErr := os.Remove(partPath); nil != removeErr && !errors.Is(removeErr, os.ErrNotExist) {
				err = errors.Join(err, fmt.Errorf("failed to remove staging file: %v", removeErr))
			}
		}
	}()

	bar := progressbar.DefaultBytes(size, filepath.Base(destPath))
	chunkTimeout := time.Duration(conf.Timeouts.ReadChunk) * time.Second

	var (
		buf   = make([]byte, conf.ChunkSize)
		done  = make(chan struct{})
		ack   = make(chan struct{})
		reads = readChunks(src, buf, ack, done)
	)
	defer close(done)

	for {
		var res readResult
		select {
		case res = <-reads:
		case <-time.After(chunkTimeout):
			err = errors.Join(ErrChunkTimeout, out.Close())
			return err
		case <-ctx.Done():
			err = errors.Join(ctx.Err(), out.Close())
			return err
		}

		if res.n > 0 {
			if _, writeErr := out.Write(buf[:res.n]); nil != writeErr {
				err = errors.Join(fmt.Errorf("failed to write audio chunk: %v", writeErr), out.Close())
				return err
			}

			_ = bar.Add(res.n)

			if nil != limiter {
				if waitErr := limiter.WaitN(ctx, res.n); nil != waitErr {
					err = errors.Join(fmt.Errorf("pacing wait canceled: %v", waitErr), out.Close())
					return err
				}
			}
		}

		if nil != res.err {
			if errors.Is(res.err, io.EOF) {
				break
			}

			err = errors.Join(fmt.Errorf("failed to read audio chunk: %v", res.err), out.Close())
			return err
		}

		select {
		case ack <- struct{}{}:
		case <-ctx.Done():
			err = errors.Join(ctx.Err(), out.Close())
			return err
		}
	}

	if err = out.Close(); nil != err {
		return fmt.Errorf("failed to close staging file: %v", err)
	}

	if err = os.Rename(partPath, destPath); nil != err {
		return fmt.Errorf("failed to move staging file into place: %v", err)
	}

	return nil
}

type readResult struct {
	n   int
	err error
}

// readChunks reads on a separate goroutine so the caller can enforce a
// per-chunk deadline. The reader waits for an ack before reusing the
// shared buffer, and bails out once done closes so an abandoned transfer
// does not leak the goroutine.
func readChunks(src io.Reader, buf []byte, ack <-chan struct{}, done <-chan struct{}) <-chan readResult {
	out := make(chan readResult)
	go func() {
		for {
			n, err := src.Read(buf)

			select {
			case out <- readResult{n: n, err: err}:
			case <-done:
				return
			}

			if nil != err {
				return
			}

			select {
			case <-ack:
			case <-done:
				return
			}
		}
	}()

	return out
}
