package process

import (
	"errors"
	"fmt"
)

// ErrTranscode is the sentinel every transcode failure unwraps to, so
// callers can classify without matching concrete subtypes.
var ErrTranscode = errors.New("transcode failed")

// TargetExistsError is returned when the transcode target resolves to the
// source path itself, which happens when source and target formats share a
// container extension.
type TargetExistsError struct {
	Path string
}

func (e *TargetExistsError) Error() string {
	return fmt.Sprintf("transcode target %s collides with the source file", e.Path)
}

func (e *TargetExistsError) Unwrap() error { return ErrTranscode }

// FFmpegNotFoundError is returned when the configured ffmpeg binary is
// not on PATH.
type FFmpegNotFoundError struct {
	Path string
}

func (e *FFmpegNotFoundError) Error() string {
	return fmt.Sprintf("ffmpeg binary %s was not found", e.Path)
}

func (e *FFmpegNotFoundError) Unwrap() error { return ErrTranscode }

// FFmpegExecutionError is returned when ffmpeg starts but exits non-zero.
type FFmpegExecutionError struct {
	CommandLine string
	ExitCode    int
	Stderr      string
}

func (e *FFmpegExecutionError) Error() string {
	return fmt.Sprintf("ffmpeg exited with code %d: %s", e.ExitCode, e.CommandLine)
}

func (e *FFmpegExecutionError) Unwrap() error { return ErrTranscode }
