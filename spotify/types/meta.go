package types

// Remote metadata shapes returned by the metadata API client. Field sets
// are limited to what the pipeline consumes; the API schema itself is
// treated as opaque.

type Image struct {
	URL    string
	Width  int
	Height int
}

// LargestImage returns the URL of the widest image, or "" when none.
func LargestImage(images []Image) string {
	var (
		url   string
		width = -1
	)
	for _, img := range images {
		if img.Width > width {
			url = img.URL
			width = img.Width
		}
	}

	return url
}

type ArtistRef struct {
	ID   string
	Name string
}

func ArtistNames(artists []ArtistRef) []string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}

	return names
}

type AlbumTrackMeta struct {
	ID          string
	Title       string
	DiscNumber  int
	TrackNumber int
	DurationMS  int
	Artists     []ArtistRef
}

type AlbumMeta struct {
	ID          string
	Title       string
	Artists     []ArtistRef
	ReleaseDate string
	TotalTracks int
	Images      []Image
	Tracks      []AlbumTrackMeta
}

type AlbumRef struct {
	ID    string
	Title string
	Group string
}

type TrackMeta struct {
	ID          string
	Title       string
	Artists     []ArtistRef
	Album       AlbumMeta
	DiscNumber  int
	TrackNumber int
	DurationMS  int
	Explicit    bool
	ISRC        string
	Popularity  int
	IsPlayable  bool
}

type EpisodeMeta struct {
	ID          string
	Title       string
	Description string
	ShowID      string
	ShowName    string
	Publisher   string
	ReleaseDate string
	DurationMS  int
	Explicit    bool
	Language    string
	Number      int
	Images      []Image
	ExternalURL string
}

type ShowMeta struct {
	ID        string
	Name      string
	Publisher string
	Episodes  []EpisodeMeta
}

type PlaylistEntry struct {
	URI string
}

type PlaylistMeta struct {
	ID      string
	Name    string
	Owner   string
	Entries []PlaylistEntry
}
