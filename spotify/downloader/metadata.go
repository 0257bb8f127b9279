package downloader

import (
	"context"
	"fmt"
	"os"

	"github.com/dhowden/tag"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/xeptore/spotgram/spotify/process"
	"github.com/xeptore/spotgram/spotify/types"
)

// itemMetadata builds the full metadata entry list for an item and
// returns its audio duration in milliseconds. Collection-level entries
// carried by the item are appended after the intrinsic ones.
func (d *Downloader) itemMetadata(
	ctx context.Context,
	item types.PlayableItem,
) ([]types.MetadataEntry, int, error) {
	switch item.Kind {
	case types.PlayableKindTrack:
		return d.trackMetadata(ctx, item)
	case types.PlayableKindEpisode:
		return d.episodeMetadata(ctx, item)
	default:
		return nil, 0, fmt.Errorf("unsupported playable kind: %s", item.Kind)
	}
}

func (d *Downloader) trackMetadata(
	ctx context.Context,
	item types.PlayableItem,
) ([]types.MetadataEntry, int, error) {
	t, err := d.client.Track(ctx, item.ID)
	if nil != err {
		return nil, 0, fmt.Errorf("failed to get track metadata: %w", err)
	}

	if !t.IsPlayable {
		return nil, 0, ErrUnavailable
	}

	albumArtist := ""
	if len(t.Album.Artists) > 0 {
		albumArtist = t.Album.Artists[0].Name
	}

	meta := []types.MetadataEntry{
		types.NewEntry("title", t.Title),
		types.NewEntry("artist", types.ArtistNames(t.Artists)),
		types.NewEntry("album", t.Album.Title),
		types.NewEntry("album_artist", albumArtist),
		types.NewEntry("date", t.Album.ReleaseDate),
		types.NewEntry("year", releaseYear(t.Album.ReleaseDate)),
		types.NewEntry("disc_number", t.DiscNumber),
		types.NewEntry("track_number", t.TrackNumber),
		types.NewEntry("total_tracks", t.Album.TotalTracks),
		types.NewEntry("isrc", t.ISRC),
		types.NewEntry("explicit", t.Explicit),
		types.NewEntry("cover_url", types.LargestImage(t.Album.Images)),
	}

	if d.conf.Downloader.SaveGenres && len(t.Artists) > 0 {
		genres, err := d.client.ArtistGenres(ctx, t.Artists[0].ID)
		if nil != err {
			return nil, 0, fmt.Errorf("failed to get artist genres: %w", err)
		}

		if len(genres) > 0 {
			meta = append(meta, types.NewEntry("genre", genres))
		}
	}

	return append(meta, item.Metadata...), t.DurationMS, nil
}

func (d *Downloader) episodeMetadata(
	ctx context.Context,
	item types.PlayableItem,
) ([]types.MetadataEntry, int, error) {
	e, err := d.client.Episode(ctx, item.ID)
	if nil != err {
		return nil, 0, fmt.Errorf("failed to get episode metadata: %w", err)
	}

	number := e.Number
	if number == 0 && e.ShowID != "" {
		// Single-episode links carry no listing position, so resolve it
		// from the show.
		if n, err := d.client.ShowEpisodeNumber(ctx, e.ShowID, e.ID); nil == err {
			number = n
		}
	}

	meta := []types.MetadataEntry{
		types.NewEntry("title", e.Title),
		types.NewEntry("podcast", e.ShowName),
		types.NewEntry("publisher", e.Publisher),
		types.NewEntry("date", e.ReleaseDate),
		types.NewEntry("year", releaseYear(e.ReleaseDate)),
		types.NewEntry("episode_number", number),
		types.NewEntry("language", e.Language),
		types.NewEntry("explicit", e.Explicit),
		types.NewEntry("cover_url", types.LargestImage(e.Images)),
	}

	return append(meta, item.Metadata...), e.DurationMS, nil
}

func releaseYear(releaseDate string) string {
	if len(releaseDate) >= 4 {
		return releaseDate[:4]
	}

	return releaseDate
}

// mergeNativeTags fills metadata gaps from tags already embedded in the
// downloaded stream. Remote metadata wins; native tags only contribute
// names the remote catalog did not provide.
func mergeNativeTags(
	logger zerolog.Logger,
	local *process.LocalFile,
	meta []types.MetadataEntry,
) []types.MetadataEntry {
	f, err := os.Open(local.Path)
	if nil != err {
		logger.Debug().Err(err).Msg("Failed to open file for native tag read")
		return meta
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			logger.Debug().Err(closeErr).Msg("Failed to close file after native tag read")
		}
	}()

	native, err := tag.ReadFrom(f)
	if nil != err {
		logger.Debug().Err(err).Msg("No readable native tags in downloaded stream")
		return meta
	}

	for name, value := range map[string]string{
		"title":        native.Title(),
		"album":        native.Album(),
		"album_artist": native.AlbumArtist(),
		"genre":        native.Genre(),
		"comment":      native.Comment(),
	} {
		if value == "" {
			continue
		}

		if existing, ok := types.LookupEntry(meta, name); !ok || existing.Display == "" {
			meta = append(meta, types.NewEntry(name, value))
		}
	}

	return meta
}

// saveMetadataFile writes the raw metadata values next to the audio file.
func saveMetadataFile(base string, meta []types.MetadataEntry) error {
	doc := make(map[string]any, len(meta))
	for _, entry := range meta {
		doc[entry.Name] = entry.Value
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if nil != err {
		return fmt.Errorf("failed to encode metadata document: %v", err)
	}

	if err := os.WriteFile(base+".json", b, 0o644); nil != err {
		return fmt.Errorf("failed to write metadata file: %v", err)
	}

	return nil
}
