package downloader

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type Status int

const (
	StatusDownloaded Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}

	return "unknown"
}

// Result is the outcome of one playable item.
type Result struct {
	ID     string
	Label  string
	Path   string
	Status Status
	Reason string
}

// Summary aggregates a whole batch. A batch that ran to completion exits
// successfully regardless of per-item failures; callers inspect Failed()
// to decide what to surface.
type Summary struct {
	Results []Result
}

func (s *Summary) record(r Result) {
	s.Results = append(s.Results, r)
}

func (s *Summary) Downloaded() int { return s.count(StatusDownloaded) }

func (s *Summary) Skipped() int { return s.count(StatusSkipped) }

func (s *Summary) Failed() int { return s.count(StatusFailed) }

func (s *Summary) count(status Status) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}

	return n
}

// RenderTable formats the batch outcome as a text table for the terminal.
func (s *Summary) RenderTable() string {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.AppendHeader(table.Row{"#", "Item", "Status", "Detail"})
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60}, //nolint:exhaustruct
		{Number: 4, WidthMax: 60}, //nolint:exhaustruct
	})

	for i, r := range s.Results {
		detail := r.Path
		if r.Status != StatusDownloaded {
			detail = r.Reason
		}

		w.AppendRow(table.Row{strconv.Itoa(i + 1), r.Label, colorize(r.Status), detail})
	}

	w.AppendFooter(table.Row{
		"",
		"",
		"",
		strconv.Itoa(s.Downloaded()) + " downloaded, " +
			strconv.Itoa(s.Skipped()) + " skipped, " +
			strconv.Itoa(s.Failed()) + " failed",
	})

	return w.Render()
}

func colorize(s Status) string {
	switch s {
	case StatusDownloaded:
		return text.FgGreen.Sprint(s)
	case StatusSkipped:
		return text.FgYellow.Sprint(s)
	case StatusFailed:
		return text.FgRed.Sprint(s)
	}

	return s.String()
}
