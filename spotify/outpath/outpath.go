// Package outpath renders metadata-driven output path templates into
// filesystem-safe file paths.
package outpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xeptore/spotgram/spotify/types"
)

var ErrAlreadyExists = errors.New("output file already exists")

var (
	invalidChars = regexp.MustCompile("[\\\\/:|<>\"?*\\x00-\\x1f]")
	reservedName = regexp.MustCompile(`(?i)^(aux|com[1-9]|con|lpt[1-9]|nul|prn)(\.|$)`)
	trailingJunk = regexp.MustCompile(`[\s.]+$`)
	fieldHole    = regexp.MustCompile(`\{([a-z0-9_]+)\}`)
)

// Sanitize rewrites a single path segment so it is valid on all major
// filesystems. The transformation is idempotent.
func Sanitize(s string) string {
	s = invalidChars.ReplaceAllString(s, "_")

	if reservedName.MatchString(s) {
		s = "_" + s
	}

	s = strings.TrimLeft(s, " \t\n\v\f\r")
	s = trailingJunk.ReplaceAllString(s, "_")

	return s
}

// Render substitutes {field} holes in the template with the sanitized
// display form of the matching metadata entry. Holes with no matching
// entry are left verbatim.
func Render(template string, meta []types.MetadataEntry) string {
	segments := strings.Split(template, "/")
	for i, segment := range segments {
		segments[i] = renderSegment(segment, meta)
	}

	return strings.Join(segments, string(filepath.Separator))
}

func renderSegment(segment string, meta []types.MetadataEntry) string {
	rendered := fieldHole.ReplaceAllStringFunc(segment, func(hole string) string {
		name := hole[1 : len(hole)-1]
		if entry, ok := types.LookupEntry(meta, name); ok {
			return entry.Display
		}

		return hole
	})

	return Sanitize(rendered)
}

// Create renders the item path under root with the given extension and
// prepares its parent directory. When the file already exists and replace
// is off it returns the path with ErrAlreadyExists without touching the
// filesystem.
func Create(root, template, ext string, meta []types.MetadataEntry, replace bool) (string, error) {
	full := filepath.Join(root, Render(template, meta)) + "." + ext

	if _, err := os.Stat(full); nil == err {
		if !replace {
			return full, fmt.Errorf("%s: %w", full, ErrAlreadyExists)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat output file: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); nil != err {
		return "", fmt.Errorf("failed to create output directory: %v", err)
	}

	return full, nil
}
