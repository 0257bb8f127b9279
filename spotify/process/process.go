// Package process post-processes downloaded audio files: transcoding,
// tag writing, and cover art embedding.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/xeptore/spotgram/config"
	"github.com/xeptore/spotgram/spotify/types"
)

// LocalFile is a downloaded audio file on disk. Transcode mutates it in
// place to track the file the pipeline should keep working on.
type LocalFile struct {
	Path    string
	Format  types.AudioFormat
	Bitrate string
}

// Transcode converts the file to the target format with ffmpeg. The
// source file is removed on success only when replaceSource is set.
// Converting to the file's own format with no extra arguments and no
// explicit bitrate is a no-op.
func Transcode(
	ctx context.Context,
	logger zerolog.Logger,
	conf config.Downloader,
	f *LocalFile,
	target types.AudioFormat,
	replaceSource bool,
) error {
	if target == f.Format && len(conf.FFmpeg.Args) == 0 && conf.TranscodeBitrate == "" {
		logger.Debug().Str("path", f.Path).Msg("Skipping transcode to the same format")
		return nil
	}

	dst := strings.TrimSuffix(f.Path, "."+f.Format.Ext()) + "." + target.Ext()
	if dst == f.Path {
		return &TargetExistsError{Path: dst}
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", f.Path}

	bitrate := conf.TranscodeBitrate
	if bitrate == "" {
		bitrate = f.Bitrate
	}

	codec := target.Codec()
	if bitrate != "" && codec != "copy" {
		args = append(args, "-b:a", bitrate)
	}

	args = append(args, "-c:a", codec)
	args = append(args, conf.FFmpeg.Args...)
	args = append(args, dst)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, conf.FFmpeg.Path, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); nil != err {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return &FFmpegNotFoundError{Path: conf.FFmpeg.Path}
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &FFmpegExecutionError{
				CommandLine: strings.Join(cmd.Args, " "),
				ExitCode:    exitErr.ExitCode(),
				Stderr:      stderr.String(),
			}
		}

		return fmt.Errorf("failed to run ffmpeg: %w: %v", ErrTranscode, err)
	}

	if replaceSource {
		if err := os.Remove(f.Path); nil != err {
			return fmt.Errorf("failed to remove transcode source file: %v", err)
		}
	}

	f.Path = dst
	f.Format = target
	if bitrate != "" {
		f.Bitrate = bitrate
	}

	return nil
}
