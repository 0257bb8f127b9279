// Package archive tracks downloaded item IDs in append-only ledger files
// so later runs can skip work that is already done.
package archive

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DirLedgerName is the per-directory ledger file name. It is hidden so it
// does not show up next to the audio files it describes.
const DirLedgerName = ".song_ids"

type Entry struct {
	ID        string
	Timestamp time.Time
	Artist    string
	Title     string
	Filename  string
}

// Ledger is a tab-separated append-only record file. A missing file is an
// empty ledger.
type Ledger struct {
	path string
}

func New(path string) Ledger {
	return Ledger{path: path}
}

// ForDir returns the per-directory ledger of dir.
func ForDir(dir string) Ledger {
	return Ledger{path: filepath.Join(dir, DirLedgerName)}
}

func (l Ledger) Path() string { return l.path }

// Contains reports whether an entry with the given ID was recorded.
func (l Ledger) Contains(id string) (bool, error) {
	entries, err := l.Entries()
	if nil != err {
		return false, err
	}

	for _, e := range entries {
		if e.ID == id {
			return true, nil
		}
	}

	return false, nil
}

// Add appends an entry. Parent directories are created as needed.
func (l Ledger) Add(e Entry) (err error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); nil != err {
		return fmt.Errorf("failed to create ledger directory: %v", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if nil != err {
		return fmt.Errorf("failed to open ledger file: %v", err)
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close ledger file: %v", closeErr))
		}
	}()

	line := strings.Join([]string{
		e.ID,
		e.Timestamp.Format(time.DateTime),
		sanitizeField(e.Artist),
		sanitizeField(e.Title),
		sanitizeField(e.Filename),
	}, "\t")
	if _, err := fmt.Fprintln(f, line); nil != err {
		return fmt.Errorf("failed to append ledger entry: %v", err)
	}

	return nil
}

// Entries reads the whole ledger. Rows that do not parse are skipped
// rather than failing the read, since the file may predate this layout.
func (l Ledger) Entries() (entries []Entry, err error) {
	f, err := os.Open(l.path)
	if nil != err {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to open ledger file: %v", err)
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			err = errors.Join(err, fmt.Errorf("failed to close ledger file: %v", closeErr))
		}
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 1 || fields[0] == "" {
			continue
		}

		e := Entry{ID: fields[0]} //nolint:exhaustruct
		if len(fields) > 1 {
			if ts, err := time.Parse(time.DateTime, fields[1]); nil == err {
				e.Timestamp = ts
			}
		}
		if len(fields) > 2 {
			e.Artist = fields[2]
		}
		if len(fields) > 3 {
			e.Title = fields[3]
		}
		if len(fields) > 4 {
			e.Filename = fields[4]
		}

		entries = append(entries, e)
	}
	if err := scanner.Err(); nil != err {
		return nil, fmt.Errorf("failed to read ledger file: %v", err)
	}

	return entries, nil
}

// sanitizeField keeps the tab-separated layout intact when a value itself
// carries tabs or newlines.
func sanitizeField(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
