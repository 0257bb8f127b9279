package types

type LinkKind int

const (
	LinkKindAlbum LinkKind = iota
	LinkKindArtist
	LinkKindShow
	LinkKindTrack
	LinkKindEpisode
	LinkKindPlaylist
)

func (k LinkKind) String() string {
	switch k {
	case LinkKindAlbum:
		return "album"
	case LinkKindArtist:
		return "artist"
	case LinkKindShow:
		return "show"
	case LinkKindTrack:
		return "track"
	case LinkKindEpisode:
		return "episode"
	case LinkKindPlaylist:
		return "playlist"
	}

	return "unknown"
}

type Link struct {
	Kind LinkKind
	ID   string
}
