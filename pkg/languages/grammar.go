// Package languages maps file names to language comment grammars.
package languages

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Sumatoshi-tech/locdiff/pkg/failure"
)

// Pair is a multi-line comment delimiter pair.
type Pair struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end"   yaml:"end"`
}

// Grammar describes the comment syntax of one language.
type Grammar struct {
	// Name is the language identifier, e.g. "Go".
	Name string `json:"name" yaml:"name"`

	// Extensions are file suffixes including the leading dot, e.g. ".go" or ".test.js".
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`

	// Filenames are exact base names without an extension, e.g. "Makefile".
	Filenames []string `json:"filenames,omitempty" yaml:"filenames,omitempty"`

	// LineMarkers start a comment that runs to end of line.
	LineMarkers []string `json:"line_markers,omitempty" yaml:"line_markers,omitempty"`

	// BlockPairs are multi-line comment delimiters in registration order.
	BlockPairs []Pair `json:"block_pairs,omitempty" yaml:"block_pairs,omitempty"`

	// Quotes are the characters that open a string literal, inside which
	// delimiters are ignored. Nil means DefaultQuotes; an empty non-nil slice
	// disables string masking, as prose formats need for apostrophes.
	Quotes []byte `json:"quotes,omitempty" yaml:"quotes,omitempty"`
}

// DefaultQuotes are the string quotes of C-like and scripting languages.
const DefaultQuotes = "\"'"

// QuoteChars returns the effective string quote characters.
func (g Grammar) QuoteChars() []byte {
	if g.Quotes == nil {
		return []byte(DefaultQuotes)
	}

	return g.Quotes
}

// Validate checks delimiter consistency.
func (g Grammar) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: empty name", failure.ErrMalformedGrammar)
	}

	if len(g.Extensions) == 0 && len(g.Filenames) == 0 {
		return fmt.Errorf("%w: %s has no extensions or file names", failure.ErrMalformedGrammar, g.Name)
	}

	for _, ext := range g.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%w: %s extension %q must start with a dot", failure.ErrMalformedGrammar, g.Name, ext)
		}
	}

	for _, marker := range g.LineMarkers {
		if !validDelimiter(marker) {
			return fmt.Errorf("%w: %s line marker %q", failure.ErrMalformedGrammar, g.Name, marker)
		}
	}

	for _, q := range g.Quotes {
		if q >= utf8.RuneSelf || unicode.IsSpace(rune(q)) || !unicode.IsPrint(rune(q)) {
			return fmt.Errorf("%w: %s quote %q", failure.ErrMalformedGrammar, g.Name, q)
		}
	}

	seen := make(map[Pair]struct{}, len(g.BlockPairs))

	for _, pair := range g.BlockPairs {
		if !validDelimiter(pair.Start) || !validDelimiter(pair.End) {
			return fmt.Errorf("%w: %s block pair %q..%q", failure.ErrMalformedGrammar, g.Name, pair.Start, pair.End)
		}

		if _, dup := seen[pair]; dup {
			return fmt.Errorf("%w: %s duplicate block pair %q..%q", failure.ErrMalformedGrammar, g.Name, pair.Start, pair.End)
		}

		seen[pair] = struct{}{}

		for _, marker := range g.LineMarkers {
			if marker == pair.Start {
				return fmt.Errorf("%w: %s marker %q is both line and block start",
					failure.ErrMalformedGrammar, g.Name, marker)
			}
		}
	}

	return nil
}

func (g Grammar) clone() Grammar {
	out := g
	out.Extensions = append([]string(nil), g.Extensions...)
	out.Filenames = append([]string(nil), g.Filenames...)
	out.LineMarkers = append([]string(nil), g.LineMarkers...)
	out.BlockPairs = append([]Pair(nil), g.BlockPairs...)
	out.Quotes = slices.Clone(g.Quotes)

	return out
}

func validDelimiter(d string) bool {
	if d == "" {
		return false
	}

	return strings.IndexFunc(d, unicode.IsSpace) < 0
}
