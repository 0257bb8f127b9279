package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/xeptore/spotgram/spotify/types"
)

var (
	DefaultAlbumTTL        = 1 * time.Hour
	DefaultArtistGenresTTL = 1 * time.Hour
	DefaultCoverTTL        = 1 * time.Hour
)

type Cache struct {
	AlbumsMeta   AlbumsMetaCache
	ArtistGenres ArtistGenresCache
	Covers       CoversCache
}

func New() *Cache {
	albumsMetaCache := ccache.New(
		ccache.Configure[*types.AlbumMeta]().
			MaxSize(1000).
			GetsPerPromote(3).
			ItemsToPrune(1),
	)

	artistGenresCache := ccache.New(
		ccache.Configure[[]string]().
			MaxSize(1000).
			GetsPerPromote(3).
			ItemsToPrune(1),
	)

	coversCache := ccache.New(
		ccache.Configure[[]byte]().
			MaxSize(100).
			GetsPerPromote(3).
			ItemsToPrune(1),
	)

	return &Cache{
		AlbumsMeta: AlbumsMetaCache{
			c:   albumsMetaCache,
			mux: sync.Mutex{},
		},
		ArtistGenres: ArtistGenresCache{
			c:   artistGenresCache,
			mux: sync.Mutex{},
		},
		Covers: CoversCache{
			c:   coversCache,
			mux: sync.Mutex{},
		},
	}
}

type AlbumsMetaCache struct {
	c   *ccache.Cache[*types.AlbumMeta]
	mux sync.Mutex
}

func (c *AlbumsMetaCache) Fetch(
	k string,
	ttl time.Duration,
	fetch func() (*types.AlbumMeta, error),
) (*ccache.Item[*types.AlbumMeta], error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	v, err := c.c.Fetch(k, ttl, fetch)
	if nil != err {
		return nil, fmt.Errorf("fetch album meta: %w", err)
	}

	return v, nil
}

type ArtistGenresCache struct {
	c   *ccache.Cache[[]string]
	mux sync.Mutex
}

func (c *ArtistGenresCache) Fetch(
	k string,
	ttl time.Duration,
	fetch func() ([]string, error),
) (*ccache.Item[[]string], error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	v, err := c.c.Fetch(k, ttl, fetch)
	if nil != err {
		return nil, fmt.Errorf("fetch artist genres: %w", err)
	}

	return v, nil
}

type CoversCache struct {
	c   *ccache.Cache[[]byte]
	mux sync.Mutex
}

func (c *CoversCache) Fetch(
	k string,
	ttl time.Duration,
	fetch func() ([]byte, error),
) (*ccache.Item[[]byte], error) {
	c.mux.Lock()
	defer c.mux.Unlock()

	v, err := c.c.Fetch(k, ttl, fetch)
	if nil != err {
		return nil, fmt.Errorf("fetch cover: %w", err)
	}

	return v, nil
}
