package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/xeptore/spotgram/cache"
	"github.com/xeptore/spotgram/config"
	"github.com/xeptore/spotgram/constant"
	"github.com/xeptore/spotgram/log"
	"github.com/xeptore/spotgram/spotify/api"
	"github.com/xeptore/spotgram/spotify/downloader"
	"github.com/xeptore/spotgram/spotify/resolve"
	"github.com/xeptore/spotgram/spotify/session"
	"github.com/xeptore/spotgram/spotify/types"
)

func main() {
	logger := log.NewDefault()

	//nolint:exhaustruct
	app := &cli.Command{
		Name:    "spotgram",
		Version: constant.Version,
		Metadata: map[string]any{
			"compiled_at": constant.CompileTime,
		},
		Suggest:                    true,
		Usage:                      "Music and podcast downloader",
		EnableShellCompletion:      true,
		ShellCompletionCommandName: "shell-completion",
		AllowExtFlags:              false,
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:     "config",
				Usage:    "Config file path",
				Required: false,
			},
		},
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:      "download",
				Usage:     "Download tracks, albums, playlists, shows, and episodes",
				ArgsUsage: "[URL...]",
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  "from-file",
						Usage: "Read URLs from a file, one per line",
					},
					//nolint:exhaustruct
					&cli.BoolFlag{
						Name:  "liked-tracks",
						Usage: "Download the liked tracks of the account",
					},
					//nolint:exhaustruct
					&cli.BoolFlag{
						Name:  "liked-episodes",
						Usage: "Download the saved episodes of the account",
					},
					//nolint:exhaustruct
					&cli.BoolFlag{
						Name:  "followed-artists",
						Usage: "Download the discography of every followed artist",
					},
					//nolint:exhaustruct
					&cli.BoolFlag{
						Name:  "playlists",
						Usage: "Download every playlist of the account",
					},
				},
				Action: download,
			},
			//nolint:exhaustruct
			{
				Name:      "search",
				Usage:     "Search the catalog and download the selected results",
				ArgsUsage: "QUERY",
				Action:    search,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			os.Exit(1)
		}

		var exitCode exitCodeError
		if errors.As(err, &exitCode) {
			os.Exit(int(exitCode))
		}

		logger.Error().Err(err).Msg("Application exited with error")
		os.Exit(10)
	}
}

type exitCodeError int

func (e exitCodeError) Error() string {
	return "error with exit code: " + strconv.Itoa(int(e))
}

type app struct {
	logger zerolog.Logger
	conf   *config.Config
	sess   *session.Feed
	client *api.Client
	dl     *downloader.Downloader
}

func bootstrap(ctx context.Context, cmd *cli.Command) (*app, error) {
	logger := log.NewDefault()

	if err := godotenv.Load(); nil != err {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env file: %v", err)
		}
		logger.Info().Msg(".env file was not found")
	} else {
		logger.Debug().Msg(".env file was loaded")
	}

	conf, err := config.Load(cmd.String("config"))
	if nil != err {
		return nil, fmt.Errorf("load config: %v", err)
	}

	logger = log.FromConfig(conf.Log)

	logger.Debug().Dict("config", conf.ToDict()).Msg("Config loaded")

	sess := session.NewFeed(conf.Session, conf.Downloader.Timeouts)
	if err := sess.Connect(ctx, logger); nil != err {
		if errors.Is(err, session.ErrUnauthorized) {
			logger.Error().Msg("Session token was rejected. Please set a valid SPOTGRAM_TOKEN.")
			return nil, exitCodeError(2)
		}

		return nil, fmt.Errorf("connect session: %w", err)
	}
	logger.Debug().Bool("premium", sess.IsPremium()).Msg("Session connected")

	client := api.NewClient(conf.API, conf.Downloader, sess.Country(), sess, cache.New())

	dl, err := downloader.New(conf, sess, client)
	if nil != err {
		return nil, fmt.Errorf("create downloader: %v", err)
	}

	return &app{
		logger: logger,
		conf:   conf,
		sess:   sess,
		client: client,
		dl:     dl,
	}, nil
}

func download(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, cmd)
	if nil != err {
		return err
	}

	links, err := collectLinks(ctx, a, cmd)
	if nil != err {
		return err
	}

	if len(links) == 0 {
		a.logger.Error().Msg("Nothing to download. Pass URLs or one of the library flags.")
		return exitCodeError(1)
	}

	summary, err := a.dl.DownloadAll(ctx, a.logger, links)
	fmt.Println(summary.RenderTable())
	if nil != err {
		return fmt.Errorf("download batch interrupted: %w", err)
	}

	return nil
}

func collectLinks(ctx context.Context, a *app, cmd *cli.Command) ([]types.Link, error) {
	var urls []string
	urls = append(urls, cmd.Args().Slice()...)

	if fromFile := cmd.String("from-file"); fromFile != "" {
		fileURLs, err := readURLsFile(fromFile)
		if nil != err {
			return nil, err
		}

		urls = append(urls, fileURLs...)
	}

	var links []types.Link
	for _, u := range urls {
		link, err := resolve.Resolve(u)
		if nil != err {
			return nil, fmt.Errorf("unrecognized URL %q: %w", u, err)
		}

		links = append(links, link)
	}

	if cmd.Bool("liked-tracks") {
		liked, err := a.client.SavedTracks(ctx)
		if nil != err {
			return nil, fmt.Errorf("list liked tracks: %w", err)
		}

		links = append(links, liked...)
	}

	if cmd.Bool("liked-episodes") {
		saved, err := a.client.SavedEpisodes(ctx)
		if nil != err {
			return nil, fmt.Errorf("list saved episodes: %w", err)
		}

		links = append(links, saved...)
	}

	if cmd.Bool("followed-artists") {
		artists, err := a.client.FollowedArtists(ctx)
		if nil != err {
			return nil, fmt.Errorf("list followed artists: %w", err)
		}

		for _, artist := range artists {
			links = append(links, types.Link{Kind: types.LinkKindArtist, ID: artist.ID})
		}
	}

	if cmd.Bool("playlists") {
		playlists, err := a.client.MyPlaylists(ctx)
		if nil != err {
			return nil, fmt.Errorf("list playlists: %w", err)
		}

		for _, playlist := range playlists {
			links = append(links, types.Link{Kind: types.LinkKindPlaylist, ID: playlist.ID})
		}
	}

	return links, nil
}

func readURLsFile(path string) (urls []string, err error) {
	f, err := os.Open(path)
	if nil != err {
		return nil, fmt.Errorf("open URLs file: %v", err)
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("close URLs file: %v", closeErr))
		}
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		urls = append(urls, line)
	}
	if err := scanner.Err(); nil != err {
		return nil, fmt.Errorf("read URLs file: %v", err)
	}

	return urls, nil
}

func search(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return errors.New("search query is required")
	}

	a, err := bootstrap(ctx, cmd)
	if nil != err {
		return err
	}

	results, err := a.client.Search(ctx, query, 10)
	if nil != err {
		return fmt.Errorf("search catalog: %w", err)
	}

	if len(results) == 0 {
		a.logger.Info().Str("query", query).Msg("No results")
		return nil
	}

	labels := make([]string, len(results))
	for i, r := range results {
		labels[i] = r.Label
	}

	var picked []string
	prompt := &survey.MultiSelect{ //nolint:exhaustruct
		Message:  "Select what to download:",
		Options:  labels,
		PageSize: 15,
	}
	if err := survey.AskOne(prompt, &picked); nil != err {
		return fmt.Errorf("selection aborted: %v", err)
	}

	var links []types.Link
	for _, label := range picked {
		for _, r := range results {
			if r.Label == label {
				links = append(links, r.Link)
				break
			}
		}
	}

	if len(links) == 0 {
		return nil
	}

	summary, err := a.dl.DownloadAll(ctx, a.logger, links)
	fmt.Println(summary.RenderTable())
	if nil != err {
		return fmt.Errorf("download batch interrupted: %w", err)
	}

	return nil
}
