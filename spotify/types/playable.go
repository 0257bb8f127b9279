package types

type PlayableKind int

const (
	PlayableKindTrack PlayableKind = iota
	PlayableKindEpisode
)

func (k PlayableKind) String() string {
	switch k {
	case PlayableKindTrack:
		return "track"
	case PlayableKindEpisode:
		return "episode"
	}

	return "unknown"
}

// PlayableItem is one track or episode queued for download. It is created
// by the collection expander and consumed exactly once by the download
// orchestrator. Metadata carries collection-level entries (playlist name,
// position) merged with item-intrinsic entries at path-render time.
type PlayableItem struct {
	Kind           PlayableKind
	ID             string
	LibraryRoot    string
	OutputTemplate string
	Metadata       []MetadataEntry
}
