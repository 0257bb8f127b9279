// Package resolve parses heterogeneous service links into typed
// (kind, id) pairs. It is a pure string operation; no network access.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeptore/spotgram/spotify/types"
)

// All content identifiers are fixed-length base-62 tokens. The separator
// preceding the id is whatever character the link uses between segments
// (":" for URIs, "/" for URLs), found by position.
const idLength = 22

var ErrParse = errors.New("unparsable link")

var linkKinds = map[string]types.LinkKind{
	"album":    types.LinkKindAlbum,
	"artist":   types.LinkKindArtist,
	"show":     types.LinkKindShow,
	"track":    types.LinkKindTrack,
	"episode":  types.LinkKindEpisode,
	"playlist": types.LinkKindPlaylist,
}

func Resolve(link string) (types.Link, error) {
	l := link
	if i := strings.IndexByte(l, '?'); i >= 0 {
		l = l[:i]
	}

	if len(l) < idLength+2 {
		return types.Link{}, fmt.Errorf("%w: %q", ErrParse, link)
	}

	sep := l[len(l)-idLength-1]
	parts := strings.Split(l, string(sep))
	if len(parts) < 2 {
		return types.Link{}, fmt.Errorf("%w: %q", ErrParse, link)
	}

	id := parts[len(parts)-1]
	kind, ok := linkKinds[parts[len(parts)-2]]
	if !ok {
		return types.Link{}, fmt.Errorf("%w: unknown content type %q in %q", ErrParse, parts[len(parts)-2], link)
	}

	return types.Link{Kind: kind, ID: id}, nil
}
