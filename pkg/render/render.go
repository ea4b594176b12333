// Package render writes reports in the supported output formats.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatConsole  = "console"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

const yamlIndent = 2

var (
	// ErrUnknownFormat is returned for a format name outside Formats.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrUnsupportedValue is returned when a value has no tabular rendering.
	ErrUnsupportedValue = errors.New("value cannot be rendered as a table")
)

// Formats lists the supported format names.
func Formats() []string {
	return []string{FormatConsole, FormatJSON, FormatYAML, FormatCSV, FormatMarkdown, FormatHTML}
}

// ValidateFormat returns ErrUnknownFormat for unsupported names.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats(), format) {
		return fmt.Errorf("%w: %q (want one of %v)", ErrUnknownFormat, format, Formats())
	}

	return nil
}

// Options controls presentation.
type Options struct {
	// Color enables ANSI colors in console output.
	Color bool
}

// Render writes v in format. v is one of *report.CountReport,
// *report.DiffReport, *report.TrendReport or *gitlib.Info.
func Render(w io.Writer, format string, v any, opts Options) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, v)
	case FormatYAML:
		return writeYAML(w, v)
	case FormatConsole:
		return writeConsole(w, v, opts)
	case FormatCSV:
		return writeCSV(w, v)
	case FormatMarkdown:
		return writeMarkdown(w, v)
	case FormatHTML:
		return writeHTML(w, v)
	default:
		return ValidateFormat(format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(v)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)

	err := enc.Encode(v)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("close yaml encoder: %w", err)
	}

	return nil
}
