package process

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	mp4tag "github.com/zhaarey/go-mp4tag"
	"go.senan.xyz/taglib"

	"github.com/xeptore/spotgram/spotify/types"
)

// ErrNativeHeader marks tag writes rejected by the codec header parser.
// Natively encoded streams occasionally carry headers the parser refuses;
// the file itself plays fine, so callers treat this as benign.
var ErrNativeHeader = errors.New("audio file header was rejected by the tag parser")

// tagKeys maps metadata entry names to tag property names. The tag
// library accepts arbitrary property names uniformly, so the dialect
// variants (ALBUM_ARTIST, YEAR, DISC, TRACK) collapse into one canonical
// spelling per entry resolved here, before the library call.
var tagKeys = map[string]string{
	"title":        "TITLE",
	"artist":       "ARTIST",
	"album":        "ALBUM",
	"album_artist": "ALBUMARTIST",
	"date":         "DATE",
	"year":         "YEAR",
	"disc_number":  "DISCNUMBER",
	"track_number": "TRACKNUMBER",
	"genre":        "GENRE",
	"isrc":         "ISRC",
	"lyrics":       "LYRICS",
	"comment":      "COMMENT",
	"podcast":      "ALBUM",
	"publisher":    "PUBLISHER",
}

// WriteTags writes the known metadata entries into the file's tags.
// Entries with no tag mapping (collection bookkeeping like playlist
// position) are skipped.
func WriteTags(logger zerolog.Logger, f *LocalFile, meta []types.MetadataEntry) error {
	if f.Format == types.FormatAAC || f.Format == types.FormatFDKAAC {
		return writeMP4Tags(f, meta)
	}

	tags := make(map[string][]string, len(meta))
	for _, entry := range meta {
		key, ok := tagKeys[entry.Name]
		if !ok {
			continue
		}

		tags[key] = tagValues(entry.Value)
	}

	if err := taglib.WriteTags(f.Path, tags, 0); nil != err {
		if errors.Is(err, taglib.ErrInvalidFile) && f.Format == types.FormatVorbis {
			return fmt.Errorf("%s: %w", f.Path, ErrNativeHeader)
		}

		return fmt.Errorf("failed to write tags to %s: %v", f.Path, err)
	}

	logger.Debug().Str("path", f.Path).Int("tags", len(tags)).Msg("Wrote file tags")

	return nil
}

func tagValues(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case string:
		return []string{v}
	case int:
		return []string{strconv.Itoa(v)}
	default:
		return []string{fmt.Sprint(v)}
	}
}

func writeMP4Tags(f *LocalFile, meta []types.MetadataEntry) (err error) {
	tags := &mp4tag.MP4Tags{Custom: map[string]string{}} //nolint:exhaustruct
	for _, entry := range meta {
		display := strings.Join(tagValues(entry.Value), ", ")
		switch entry.Name {
		case "title":
			tags.Title = display
		case "artist":
			tags.Artist = display
		case "album", "podcast":
			tags.Album = display
		case "album_artist":
			tags.AlbumArtist = display
		case "date", "year":
			tags.Date = display
		case "genre":
			tags.CustomGenre = display
		case "lyrics":
			tags.Lyrics = display
		case "track_number":
			if n, ok := entry.Value.(int); ok {
				tags.TrackNumber = int16(n)
			}
		case "disc_number":
			if n, ok := entry.Value.(int); ok {
				tags.DiscNumber = int16(n)
			}
		case "isrc", "publisher":
			tags.Custom[strings.ToUpper(entry.Name)] = display
		}
	}

	mp4, err := mp4tag.Open(f.Path)
	if nil != err {
		return fmt.Errorf("failed to open %s for tagging: %v", f.Path, err)
	}
	defer func() {
		if closeErr := mp4.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close tagged file: %v", closeErr))
		}
	}()

	if err := mp4.Write(tags, []string{}); nil != err {
		return fmt.Errorf("failed to write tags to %s: %v", f.Path, err)
	}

	return nil
}
