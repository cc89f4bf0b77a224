// Package report renders analysis statistics as text, JSON or YAML and
// validates persisted JSON reports against the embedded schema.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Sumatoshi-tech/pacelog/pkg/analysis"
)

// Format names an output encoding.
type Format string

// Supported formats.
const (
	FormatText    Format = "text"
	FormatCompact Format = "compact"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// ErrUnknownFormat is returned for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Formats lists the supported formats in help order.
func Formats() []Format {
	return []Format{FormatText, FormatCompact, FormatJSON, FormatYAML}
}

// ParseFormat resolves a case-insensitive format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Options tune rendering.
type Options struct {
	// Source labels the report header in text output.
	Source string
	// NoColor disables ANSI colors in text output.
	NoColor bool
}

// Write renders st to w in the given format.
func Write(w io.Writer, format Format, st *analysis.Statistics, opts Options) error {
	switch format {
	case FormatText:
		return WriteText(w, st, opts)
	case FormatCompact:
		return WriteCompact(w, st, opts)
	case FormatJSON:
		return WriteJSON(w, st)
	case FormatYAML:
		return WriteYAML(w, st)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeString(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
