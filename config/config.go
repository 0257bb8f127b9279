package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/xeptore/spotgram/redact"
	"github.com/xeptore/spotgram/unit"
)

type Config struct {
	Log        Log        `yaml:"log"`
	Library    Library    `yaml:"library"`
	Output     Output     `yaml:"output"`
	Downloader Downloader `yaml:"downloader"`
	Session    Session    `yaml:"session"`
	API        API        `yaml:"api"`
}

func (c *Config) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Dict("log", c.Log.ToDict()).
		Dict("library", c.Library.ToDict()).
		Dict("output", c.Output.ToDict()).
		Dict("downloader", c.Downloader.ToDict()).
		Dict("session", c.Session.ToDict()).
		Dict("api", c.API.ToDict())
}

func (c *Config) setDefaults() {
	c.Log.setDefaults()
	c.Library.setDefaults()
	c.Output.setDefaults()
	c.Downloader.setDefaults()
	c.Session.setDefaults()
	c.API.setDefaults()
}

func (c *Config) validate() error {
	if err := c.Log.validate(); nil != err {
		return fmt.Errorf("log config validation failed: %v", err)
	}

	if err := c.Library.validate(); nil != err {
		return fmt.Errorf("library config validation failed: %v", err)
	}

	if err := c.Output.validate(); nil != err {
		return fmt.Errorf("output config validation failed: %v", err)
	}

	if err := c.Downloader.validate(); nil != err {
		return fmt.Errorf("downloader config validation failed: %v", err)
	}

	if err := c.Session.validate(); nil != err {
		return fmt.Errorf("session config validation failed: %v", err)
	}

	if err := c.API.validate(); nil != err {
		return fmt.Errorf("api config validation failed: %v", err)
	}

	return nil
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Log) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("level", c.Level).
		Str("format", c.Format)
}

func (c *Log) setDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}

	if c.Format == "" {
		c.Format = "auto"
	}
}

func (c *Log) validate() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error", "fatal", "panic"}, c.Level) {
		return fmt.Errorf(
			"level must be one of: debug, info, warn, error, fatal, panic, got: %s",
			c.Level,
		)
	}

	if !slices.Contains([]string{"json", "pretty", "auto"}, c.Format) {
		return fmt.Errorf("format must be 'json', 'pretty', or 'auto', got: %s", c.Format)
	}

	return nil
}

// Library holds the root directories downloaded items are laid out under.
type Library struct {
	Music    string `yaml:"music"`
	Podcast  string `yaml:"podcast"`
	Playlist string `yaml:"playlist"`
}

func (c *Library) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("music", c.Music).
		Str("podcast", c.Podcast).
		Str("playlist", c.Playlist)
}

func (c *Library) setDefaults() {
	if c.Music == "" {
		c.Music = "./Music"
	}

	if c.Podcast == "" {
		c.Podcast = "./Podcasts"
	}

	if c.Playlist == "" {
		c.Playlist = c.Music
	}
}

func (c *Library) validate() error {
	if c.Music == "" {
		return errors.New("music is required")
	}

	if c.Podcast == "" {
		return errors.New("podcast is required")
	}

	return nil
}

// Output holds the path templates items are rendered against. Template
// fields are written as {name} placeholders.
type Output struct {
	Album           string `yaml:"album"`
	Podcast         string `yaml:"podcast"`
	PlaylistTrack   string `yaml:"playlist_track"`
	PlaylistEpisode string `yaml:"playlist_episode"`
}

func (c *Output) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("album", c.Album).
		Str("podcast", c.Podcast).
		Str("playlist_track", c.PlaylistTrack).
		Str("playlist_episode", c.PlaylistEpisode)
}

func (c *Output) setDefaults() {
	if c.Album == "" {
		c.Album = "{album_artist}/{album}/{album} {track_number}. {artist} - {title}"
	}

	if c.Podcast == "" {
		c.Podcast = "{podcast}/{episode_number} - {title}"
	}

	if c.PlaylistTrack == "" {
		c.PlaylistTrack = "{playlist}/{artist} - {title}"
	}

	if c.PlaylistEpisode == "" {
		c.PlaylistEpisode = "{playlist}/{episode_number} - {title}"
	}
}

func (c *Output) validate() error {
	for name, tmpl := range map[string]string{
		"album":            c.Album,
		"podcast":          c.Podcast,
		"playlist_track":   c.PlaylistTrack,
		"playlist_episode": c.PlaylistEpisode,
	} {
		if tmpl == "" {
			return fmt.Errorf("%s template is required", name)
		}

		if filepath.IsAbs(tmpl) {
			return fmt.Errorf("%s template must be relative, got: %s", name, tmpl)
		}
	}

	return nil
}

type Downloader struct {
	Quality          string           `yaml:"quality"`
	Format           string           `yaml:"format"`
	TranscodeBitrate string           `yaml:"transcode_bitrate"`
	ChunkSize        int              `yaml:"chunk_size"`
	RealTime         bool             `yaml:"real_time"`
	Replace          bool             `yaml:"replace"`
	SkipPrevious     bool             `yaml:"skip_previous"`
	SaveLyrics       bool             `yaml:"save_lyrics"`
	SaveMetadata     bool             `yaml:"save_metadata"`
	SaveGenres       bool             `yaml:"save_genres"`
	ArchivePath      string           `yaml:"archive_path"`
	FFmpeg           FFmpeg           `yaml:"ffmpeg"`
	Timeouts         DownloadTimeouts `yaml:"timeouts"`
	Retry            Retry            `yaml:"retry"`
}

func (c *Downloader) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("quality", c.Quality).
		Str("format", c.Format).
		Str("transcode_bitrate", c.TranscodeBitrate).
		Int("chunk_size", c.ChunkSize).
		Bool("real_time", c.RealTime).
		Bool("replace", c.Replace).
		Bool("skip_previous", c.SkipPrevious).
		Bool("save_lyrics", c.SaveLyrics).
		Bool("save_metadata", c.SaveMetadata).
		Bool("save_genres", c.SaveGenres).
		Str("archive_path", c.ArchivePath).
		Dict("ffmpeg", c.FFmpeg.ToDict()).
		Dict("timeouts", c.Timeouts.ToDict()).
		Dict("retry", c.Retry.ToDict())
}

func (c *Downloader) setDefaults() {
	if c.Quality == "" {
		c.Quality = "auto"
	}

	if c.Format == "" {
		c.Format = "vorbis"
	}

	if c.ChunkSize == 0 {
		c.ChunkSize = 128 * unit.Kibibyte
	}

	if c.ArchivePath == "" {
		c.ArchivePath = "./.song_archive"
	}

	c.FFmpeg.setDefaults()
	c.Timeouts.setDefaults()
	c.Retry.setDefaults()
}

func (c *Downloader) validate() error {
	if !slices.Contains([]string{"auto", "normal", "high", "very_high"}, c.Quality) {
		return fmt.Errorf(
			"quality must be one of: auto, normal, high, very_high, got: %s",
			c.Quality,
		)
	}

	formats := []string{"vorbis", "opus", "mp3", "aac", "fdk_aac", "flac", "wav", "wavpack"}
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf(
			"format must be one of: %s, got: %s",
			strings.Join(formats, ", "),
			c.Format,
		)
	}

	if c.TranscodeBitrate != "" && !strings.HasSuffix(c.TranscodeBitrate, "k") {
		return fmt.Errorf("transcode_bitrate must end with 'k', got: %s", c.TranscodeBitrate)
	}

	if c.ChunkSize < 0 {
		return errors.New("chunk_size must be greater than 0")
	}

	if err := c.FFmpeg.validate(); nil != err {
		return fmt.Errorf("ffmpeg config validation failed: %v", err)
	}

	if err := c.Timeouts.validate(); nil != err {
		return fmt.Errorf("timeouts config validation failed: %v", err)
	}

	if err := c.Retry.validate(); nil != err {
		return fmt.Errorf("retry config validation failed: %v", err)
	}

	return nil
}

type FFmpeg struct {
	Path string   `yaml:"path"`
	Args []string `yaml:"args"`
}

func (c *FFmpeg) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("path", c.Path).
		Strs("args", c.Args)
}

func (c *FFmpeg) setDefaults() {
	if c.Path == "" {
		c.Path = "ffmpeg"
	}
}

func (c *FFmpeg) validate() error {
	if c.Path == "" {
		return errors.New("path is required")
	}

	return nil
}

type DownloadTimeouts struct {
	GetMeta       int `yaml:"get_meta"`
	GetLyrics     int `yaml:"get_lyrics"`
	DownloadCover int `yaml:"download_cover"`
	LoadStream    int `yaml:"load_stream"`
	ReadChunk     int `yaml:"read_chunk"`
}

func (c *DownloadTimeouts) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Int("get_meta", c.GetMeta).
		Int("get_lyrics", c.GetLyrics).
		Int("download_cover", c.DownloadCover).
		Int("load_stream", c.LoadStream).
		Int("read_chunk", c.ReadChunk)
}

func (c *DownloadTimeouts) setDefaults() {
	if c.GetMeta == 0 {
		c.GetMeta = 5
	}

	if c.GetLyrics == 0 {
		c.GetLyrics = 5
	}

	if c.DownloadCover == 0 {
		c.DownloadCover = 10
	}

	if c.LoadStream == 0 {
		c.LoadStream = 10
	}

	if c.ReadChunk == 0 {
		c.ReadChunk = 60
	}
}

func (c *DownloadTimeouts) validate() error {
	if c.GetMeta < 0 {
		return errors.New("get_meta must be greater than 0")
	}

	if c.GetLyrics < 0 {
		return errors.New("get_lyrics must be greater than 0")
	}

	if c.DownloadCover < 0 {
		return errors.New("download_cover must be greater than 0")
	}

	if c.LoadStream < 0 {
		return errors.New("load_stream must be greater than 0")
	}

	if c.ReadChunk < 0 {
		return errors.New("read_chunk must be greater than 0")
	}

	return nil
}

type Retry struct {
	Attempts int `yaml:"attempts"`
}

func (c *Retry) ToDict() *zerolog.Event {
	return zerolog.Dict().Int("attempts", c.Attempts)
}

func (c *Retry) setDefaults() {
	if c.Attempts == 0 {
		c.Attempts = 3
	}
}

func (c *Retry) validate() error {
	if c.Attempts < 0 {
		return errors.New("attempts must be greater than 0")
	}

	return nil
}

type Session struct {
	FeedAPI string `yaml:"feed_api"`
	Token   string `yaml:"-"`
	Country string `yaml:"country"`
}

func (c *Session) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("feed_api", c.FeedAPI).
		Str("token", redact.String(c.Token)).
		Str("country", c.Country)
}

func (c *Session) setDefaults() {
	if c.Country == "" {
		c.Country = "US"
	}
}

func (c *Session) validate() error {
	if c.FeedAPI == "" {
		return errors.New("feed_api is required")
	}

	if c.Token == "" {
		return errors.New("make sure the SPOTGRAM_TOKEN environment variable is set")
	}

	if len(c.Country) != 2 {
		return fmt.Errorf("country must be a 2-letter code, got: %s", c.Country)
	}

	return nil
}

type API struct {
	BaseURL   string `yaml:"base_url"`
	LyricsURL string `yaml:"lyrics_url"`
}

func (c *API) ToDict() *zerolog.Event {
	return zerolog.Dict().
		Str("base_url", c.BaseURL).
		Str("lyrics_url", c.LyricsURL)
}

func (c *API) setDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.spotify.com/v1"
	}

	if c.LyricsURL == "" {
		c.LyricsURL = "https://spclient.wg.spotify.com/color-lyrics/v2"
	}
}

func (c *API) validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}

	if c.LyricsURL == "" {
		return errors.New("lyrics_url is required")
	}

	return nil
}

func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(lo.Ternary(len(filename) > 0, filename, "config.yaml"))
	if nil != err {
		return nil, fmt.Errorf("failed to read config file %s: %v", filename, err)
	}

	var conf Config
	if err := yaml.Unmarshal(data, &conf); nil != err {
		return nil, fmt.Errorf("failed to parse config file %s: %v", filename, err)
	}

	conf.Session.Token = os.Getenv("SPOTGRAM_TOKEN")
	conf.setDefaults()

	if err := conf.validate(); nil != err {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	return &conf, nil
}
