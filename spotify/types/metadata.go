package types

import (
	"fmt"
	"strconv"
	"strings"
)

// MetadataEntry is a single named value with two representations: Value is
// what gets written to file tags (may be structured, e.g. a list of artist
// names), Display is the string substituted into filename templates.
type MetadataEntry struct {
	Name    string
	Value   any
	Display string
}

func NewEntry(name string, value any) MetadataEntry {
	return MetadataEntry{Name: name, Value: value, Display: displayString(value)}
}

func NewEntryDisplay(name string, value any, display string) MetadataEntry {
	return MetadataEntry{Name: name, Value: value, Display: display}
}

func displayString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func LookupEntry(meta []MetadataEntry, name string) (MetadataEntry, bool) {
	for _, m := range meta {
		if m.Name == name {
			return m, true
		}
	}

	return MetadataEntry{}, false //nolint:exhaustruct
}
