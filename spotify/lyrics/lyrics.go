// Package lyrics parses lyrics API payloads and writes them next to
// downloaded tracks.
package lyrics

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrNotFound = errors.New("no lyrics available")

type Line struct {
	StartMS int64
	Words   string
}

// Lyrics is a parsed lyrics document. Synced lyrics carry per-line start
// offsets and are saved as .lrc; unsynced ones as plain text.
type Lyrics struct {
	Synced bool
	Lines  []Line
}

// Parse decodes a raw lyrics API payload.
func Parse(raw []byte) (*Lyrics, error) {
	doc := gjson.GetBytes(raw, "lyrics")
	if !doc.Exists() {
		return nil, ErrNotFound
	}

	lines := doc.Get("lines").Array()
	if len(lines) == 0 {
		return nil, ErrNotFound
	}

	out := &Lyrics{
		Synced: doc.Get("syncType").String() == "LINE_SYNCED",
		Lines:  make([]Line, len(lines)),
	}
	for i, line := range lines {
		out.Lines[i] = Line{
			StartMS: line.Get("startTimeMs").Int(),
			Words:   line.Get("words").String(),
		}
	}

	return out, nil
}

// Save writes the lyrics beside the audio file at basePath (path without
// extension), as .lrc when synced and .txt otherwise. It returns the
// written file path.
func (l *Lyrics) Save(basePath string) (string, error) {
	var (
		path string
		body strings.Builder
	)
	if l.Synced {
		path = basePath + ".lrc"
		for _, line := range l.Lines {
			body.WriteString(formatTimestamp(line.StartMS))
			body.WriteString(line.Words)
			body.WriteString("\n")
		}
	} else {
		path = basePath + ".txt"
		for _, line := range l.Lines {
			body.WriteString(line.Words)
			body.WriteString("\n")
		}
	}

	if err := os.WriteFile(path, []byte(body.String()), 0o644); nil != err {
		return "", fmt.Errorf("failed to write lyrics file: %v", err)
	}

	return path, nil
}

func formatTimestamp(ms int64) string {
	var (
		mins       = ms / 60_000
		secs       = (ms % 60_000) / 1000
		hundredths = (ms % 1000) / 10
	)

	return fmt.Sprintf("[%02d:%02d.%02d]", mins, secs, hundredths)
}
