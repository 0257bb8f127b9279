package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/xeptore/spotgram/config"
)

// WriteCoverArt embeds cover image bytes into the audio file as an
// attached picture. The image container is detected from the bytes.
func WriteCoverArt(
	ctx context.Context,
	conf config.FFmpeg,
	f *LocalFile,
	cover []byte,
) (err error) {
	mime := mimetype.Detect(cover)
	if !strings.HasPrefix(mime.String(), "image/") {
		return fmt.Errorf("cover art bytes are not an image: %s", mime.String())
	}

	coverFile, err := os.CreateTemp("", "cover-*"+mime.Extension())
	if nil != err {
		return fmt.Errorf("failed to create cover art temp file: %v", err)
	}
	defer func() {
		if removeErr := os.Remove(coverFile.Name()); nil != removeErr && !errors.Is(removeErr, os.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("failed to remove cover art temp file: %v", removeErr))
		}
	}()

	if _, err := coverFile.Write(cover); nil != err {
		err = errors.Join(err, coverFile.Close())
		return fmt.Errorf("failed to write cover art temp file: %v", err)
	}

	if err := coverFile.Close(); nil != err {
		return fmt.Errorf("failed to close cover art temp file: %v", err)
	}

	embedded := f.Path + ".embedded." + f.Format.Ext()
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", f.Path,
		"-i", coverFile.Name(),
		"-map", "0:a",
		"-map", "1",
		"-c", "copy",
		"-disposition:v", "attached_pic",
		embedded,
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, conf.Path, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); nil != err {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return &FFmpegNotFoundError{Path: conf.Path}
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

	if err := os.Rename(embedded, f.Path); nil != err {
		return fmt.Errorf("failed to replace audio file with embedded cover: %v", err)
	}

	return nil
}
