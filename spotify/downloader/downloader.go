// Package downloader drives the end to end pipeline for one playable
// item: metadata, output path, stream fetch, post-processing, and ledger
// bookkeeping. Items are processed strictly one at a time.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/xeptore/spotgram/config"
	"github.com/xeptore/spotgram/ratelimit"
	"github.com/xeptore/spotgram/spotify/api"
	"github.com/xeptore/spotgram/spotify/archive"
	"github.com/xeptore/spotgram/spotify/collection"
	"github.com/xeptore/spotgram/spotify/fetch"
	"github.com/xeptore/spotgram/spotify/lyrics"
	"github.com/xeptore/spotgram/spotify/outpath"
	"github.com/xeptore/spotgram/spotify/process"
	"github.com/xeptore/spotgram/spotify/session"
	"github.com/xeptore/spotgram/spotify/types"
)

var (
	ErrPreviouslyDownloaded = errors.New("item was downloaded by a previous run")
	ErrUnavailable          = errors.New("item is not playable in this market")
)

type Downloader struct {
	conf     *config.Config
	sess     session.Session
	client   *api.Client
	expander *collection.Expander
	quality  types.Quality
	format   types.AudioFormat
	global   archive.Ledger
}

func New(conf *config.Config, sess session.Session, client *api.Client) (*Downloader, error) {
	quality, err := types.ParseQuality(conf.Downloader.Quality)
	if nil != err {
		return nil, fmt.Errorf("failed to parse configured quality: %v", err)
	}

	format, err := types.ParseFormat(conf.Downloader.Format)
	if nil != err {
		return nil, fmt.Errorf("failed to parse configured format: %v", err)
	}

	return &Downloader{
		conf:     conf,
		sess:     sess,
		client:   client,
		expander: collection.NewExpander(client, conf),
		quality:  quality,
		format:   format,
		global:   archive.New(conf.Downloader.ArchivePath),
	}, nil
}

// DownloadAll expands every link and downloads the resulting items in
// order. Individual item failures are recorded in the summary and do not
// abort the batch; only context cancellation stops it early.
func (d *Downloader) DownloadAll(
	ctx context.Context,
	logger zerolog.Logger,
	links []types.Link,
) (*Summary, error) {
	summary := new(Summary)

	var items []types.PlayableItem
	for _, link := range links {
		expanded, err := d.expander.Expand(ctx, logger, link)
		if nil != err {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}

			logger.Error().
				Err(err).
				Str("kind", link.Kind.String()).
				Str("id", link.ID).
				Msg("Failed to expand link")
			summary.record(Result{
				ID:     link.ID,
				Label:  link.Kind.String() + ":" + link.ID,
				Status: StatusFailed,
				Reason: err.Error(),
			})

			continue
		}

		items = append(items, expanded...)
	}

	for i, item := range items {
		itemLogger := logger.With().
			Str("kind", item.Kind.String()).
			Str("id", item.ID).
			Int("position", i+1).
			Int("total", len(items)).
			Logger()

		res := d.download(ctx, itemLogger, item)
		summary.record(res)

		switch res.Status {
		case StatusFailed:
			if errors.Is(ctx.Err(), context.Canceled) {
				return summary, ctx.Err()
			}

			itemLogger.Error().Str("reason", res.Reason).Msg("Item download failed")
		case StatusSkipped:
			itemLogger.Info().Str("reason", res.Reason).Msg("Item skipped")
		case StatusDownloaded:
			itemLogger.Info().Str("path", res.Path).Msg("Item downloaded")
		}

		// Pacing between items keeps bulk runs shaped like a human
		// listening session rather than a scraper burst.
		if i < len(items)-1 && res.Status == StatusDownloaded {
			time.Sleep(ratelimit.BulkDownloadSleep())
		}
	}

	return summary, nil
}

func (d *Downloader) download(
	ctx context.Context,
	logger zerolog.Logger,
	item types.PlayableItem,
) Result {
	res := Result{ID: item.ID} //nolint:exhaustruct

	meta, durationMS, err := d.itemMetadata(ctx, item)
	if nil != err {
		res.Status = StatusFailed
		res.Reason = err.Error()
		res.Label = item.Kind.String() + ":" + item.ID

		return res
	}
	res.Label = displayLabel(meta)

	destPath, err := outpath.Create(
		item.LibraryRoot,
		item.OutputTemplate,
		d.format.Ext(),
		meta,
		d.conf.Downloader.Replace,
	)
	if nil != err {
		if errors.Is(err, outpath.ErrAlreadyExists) {
			res.Status = StatusSkipped
			res.Reason = "output file already exists"
			res.Path = destPath

			return res
		}

		res.Status = StatusFailed
		res.Reason = err.Error()

		return res
	}
	res.Path = destPath

	dirLedger := archive.ForDir(filepath.Dir(destPath))
	if d.conf.Downloader.SkipPrevious {
		if skip, err := d.previouslyDownloaded(dirLedger, item.ID); nil != err {
			logger.Warn().Err(err).Msg("Failed to read download ledgers")
		} else if skip {
			res.Status = StatusSkipped
			res.Reason = ErrPreviouslyDownloaded.Error()

			return res
		}
	}

	local, err := d.fetchAudio(ctx, logger, item, destPath, durationMS)
	if nil != err {
		res.Status = StatusFailed
		res.Reason = err.Error()

		return res
	}

	meta = mergeNativeTags(logger, local, meta)

	base := strings.TrimSuffix(destPath, filepath.Ext(destPath))
	if d.conf.Downloader.SaveLyrics && item.Kind == types.PlayableKindTrack && d.sess.IsPremium() {
		d.saveLyrics(ctx, logger, item.ID, base)
	}

	// The source is replaced so the rendered path holds the only artifact
	// and the next run's existence check sees it.
	if err := process.Transcode(ctx, logger, d.conf.Downloader, local, d.format, true); nil != err {
		// The native-format file is still intact and playable, so a
		// failed conversion downgrades to tagging what we have.
		logger.Error().Err(err).Msg("Transcode failed, keeping the native format file")
	}

	d.writeTags(ctx, logger, local, meta)

	if d.conf.Downloader.SaveMetadata {
		if err := saveMetadataFile(base, meta); nil != err {
			logger.Warn().Err(err).Msg("Failed to save metadata file")
		}
	}

	d.recordLedgers(logger, dirLedger, item.ID, meta, local.Path)

	res.Status = StatusDownloaded
	res.Path = local.Path

	return res
}

func (d *Downloader) previouslyDownloaded(dirLedger archive.Ledger, id string) (bool, error) {
	if ok, err := dirLedger.Contains(id); nil != err {
		return false, err
	} else if ok {
		return true, nil
	}

	if ok, err := d.global.Contains(id); nil != err {
		return false, err
	} else if ok {
		return true, nil
	}

	return false, nil
}

func (d *Downloader) fetchAudio(
	ctx context.Context,
	logger zerolog.Logger,
	item types.PlayableItem,
	destPath string,
	durationMS int,
) (*process.LocalFile, error) {
	stream, err := d.sess.Load(ctx, item.ID, item.Kind, d.quality)
	if nil != err {
		if errors.Is(err, session.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		return nil, fmt.Errorf("failed to load audio stream: %w", err)
	}

	bitrate := fmt.Sprintf("%dk", d.quality.Resolve(d.sess.IsPremium()).Bitrate())

	if stream.ExternalURL != "" {
		local, err := fetch.WriteExternal(ctx, logger, d.conf.Downloader, stream.ExternalURL, destPath, bitrate)
		if nil != err {
			return nil, fmt.Errorf("failed to download external audio: %w", err)
		}

		return local, nil
	}

	local, err := fetch.WriteAudioStream(ctx, logger, d.conf.Downloader, stream, destPath, durationMS, bitrate)
	if nil != err {
		return nil, fmt.Errorf("failed to download audio stream: %w", err)
	}

	return local, nil
}

func (d *Downloader) saveLyrics(ctx context.Context, logger zerolog.Logger, trackID, base string) {
	raw, err := d.client.Lyrics(ctx, trackID)
	if nil != err {
		if errors.Is(err, api.ErrNotFound) {
			logger.Debug().Msg("No lyrics available")
			return
		}

		logger.Warn().Err(err).Msg("Failed to fetch lyrics")

		return
	}

	parsed, err := lyrics.Parse(raw)
	if nil != err {
		if errors.Is(err, lyrics.ErrNotFound) {
			logger.Debug().Msg("No lyrics available")
			return
		}

		logger.Warn().Err(err).Msg("Failed to parse lyrics")

		return
	}

	path, err := parsed.Save(base)
	if nil != err {
		logger.Warn().Err(err).Msg("Failed to save lyrics")
		return
	}

	logger.Debug().Str("path", path).Msg("Saved lyrics")
}

func (d *Downloader) writeTags(
	ctx context.Context,
	logger zerolog.Logger,
	local *process.LocalFile,
	meta []types.MetadataEntry,
) {
	if err := process.WriteTags(logger, local, meta); nil != err {
		if errors.Is(err, process.ErrNativeHeader) {
			logger.Warn().Err(err).Msg("Tag parser rejected the native stream header, leaving tags unset")
		} else {
			logger.Warn().Err(err).Msg("Failed to write tags")
		}
	}

	coverURL, ok := types.LookupEntry(meta, "cover_url")
	if !ok || coverURL.Display == "" {
		return
	}

	cover, err := d.client.Cover(ctx, coverURL.Display)
	if nil != err {
		logger.Warn().Err(err).Msg("Failed to download cover art")
		return
	}

	if err := process.WriteCoverArt(ctx, d.conf.Downloader.FFmpeg, local, cover); nil != err {
		logger.Warn().Err(err).Msg("Failed to embed cover art")
	}
}

func (d *Downloader) recordLedgers(
	logger zerolog.Logger,
	dirLedger archive.Ledger,
	id string,
	meta []types.MetadataEntry,
	path string,
) {
	entry := archive.Entry{
		ID:        id,
		Timestamp: time.Now(),
		Artist:    displayOf(meta, "artist"),
		Title:     displayOf(meta, "title"),
		Filename:  filepath.Base(path),
	}

	if err := dirLedger.Add(entry); nil != err {
		logger.Warn().Err(err).Msg("Failed to record directory ledger entry")
	}

	if err := d.global.Add(entry); nil != err {
		logger.Warn().Err(err).Msg("Failed to record archive entry")
	}
}

func displayOf(meta []types.MetadataEntry, name string) string {
	if entry, ok := types.LookupEntry(meta, name); ok {
		return entry.Display
	}

	return ""
}

func displayLabel(meta []types.MetadataEntry) string {
	artist := displayOf(meta, "artist")
	if artist == "" {
		artist = displayOf(meta, "podcast")
	}

	title := displayOf(meta, "title")
	if artist == "" {
		return title
	}

	return artist + " - " + title
}
