package linecount

import (
	"bytes"
	"strings"

	"github.com/Sumatoshi-tech/locdiff/pkg/languages"
)

const bom = "\uFEFF"

const normalPair = -1

// State is the scanner state carried between lines: either normal, or inside
// an unterminated block comment of one of the grammar's pairs.
type State struct {
	pair int
}

// Normal is the state outside any block comment.
var Normal = State{pair: normalPair}

// InBlock returns the state inside the block comment of the given pair index.
func InBlock(pair int) State {
	return State{pair: pair}
}

// InComment reports whether the state is inside a block comment.
func (s State) InComment() bool {
	return s.pair != normalPair
}

// Pair returns the index of the open block pair, or -1.
func (s State) Pair() int {
	return s.pair
}

// Result is the output of classifying one file.
type Result struct {
	Lines  []LineRecord
	Counts Counts

	// Unterminated is set when a block comment is still open at end of input.
	Unterminated bool
}

// Classify folds Step over lines, starting in the Normal state.
// A leading byte order mark on the first line is ignored.
func Classify(lines []string, grammar languages.Grammar) Result {
	res := Result{Lines: make([]LineRecord, 0, len(lines))}
	state := Normal

	for i, line := range lines {
		if i == 0 {
			line = strings.TrimPrefix(line, bom)
		}

		var class Class

		class, state = Step(state, line, grammar)

		res.Lines = append(res.Lines, LineRecord{Number: i + 1, Class: class})
		res.Counts.Add(class)
	}

	res.Unterminated = state.InComment()

	return res
}

// ClassifyPlain classifies lines without comment detection: every
// non-blank line is Code.
func ClassifyPlain(lines []string) Result {
	res := Result{Lines: make([]LineRecord, 0, len(lines))}

	for i, line := range lines {
		if i == 0 {
			line = strings.TrimPrefix(line, bom)
		}

		class := Code
		if isBlank(line) {
			class = Blank
		}

		res.Lines = append(res.Lines, LineRecord{Number: i + 1, Class: class})
		res.Counts.Add(class)
	}

	return res
}

// Step classifies a single line given the incoming state and returns the
// state to carry into the next line.
func Step(state State, line string, grammar languages.Grammar) (Class, State) {
	var hasCode, hasComment bool

	pos := 0

	if state.InComment() {
		hasComment = true

		end := grammar.BlockPairs[state.pair].End

		idx := strings.Index(line, end)
		if idx < 0 {
			return Comment, state
		}

		pos = idx + len(end)
		state = Normal
	}

	var quote byte

	quotes := grammar.QuoteChars()

	for pos < len(line) {
		ch := line[pos]

		if quote != 0 {
			switch ch {
			case '\\':
				pos += 2
			case quote:
				quote = 0
				pos++
			default:
				pos++
			}

			continue
		}

		if isSpace(ch) {
			pos++

			continue
		}

		match := matchDelimiter(line[pos:], grammar)

		switch match.kind {
		case lineMarker:
			return classOf(hasCode, true), state
		case blockStart:
			hasComment = true
			pos += len(grammar.BlockPairs[match.pair].Start)

			end := grammar.BlockPairs[match.pair].End

			idx := strings.Index(line[pos:], end)
			if idx < 0 {
				return classOf(hasCode, hasComment), InBlock(match.pair)
			}

			pos += idx + len(end)
		default:
			hasCode = true

			if bytes.IndexByte(quotes, ch) >= 0 {
				quote = ch
			}

			pos++
		}
	}

	return classOf(hasCode, hasComment), state
}

type delimiterKind uint8

const (
	noDelimiter delimiterKind = iota
	lineMarker
	blockStart
)

type delimiterMatch struct {
	kind delimiterKind
	pair int
}

// matchDelimiter finds the comment delimiter starting at the beginning of s.
// The longest delimiter wins; among equal lengths the first registered wins,
// line markers before block pairs.
func matchDelimiter(s string, grammar languages.Grammar) delimiterMatch {
	best := delimiterMatch{kind: noDelimiter, pair: normalPair}
	bestLen := 0

	for _, marker := range grammar.LineMarkers {
		if len(marker) > bestLen && strings.HasPrefix(s, marker) {
			best = delimiterMatch{kind: lineMarker, pair: normalPair}
			bestLen = len(marker)
		}
	}

	for i, pair := range grammar.BlockPairs {
		if len(pair.Start) > bestLen && strings.HasPrefix(s, pair.Start) {
			best = delimiterMatch{kind: blockStart, pair: i}
			bestLen = len(pair.Start)
		}
	}

	return best
}

func classOf(hasCode, hasComment bool) Class {
	switch {
	case hasCode && hasComment:
		return Mixed
	case hasCode:
		return Code
	case hasComment:
		return Comment
	default:
		return Blank
	}
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	default:
		return false
	}
}

func isBlank(line string) bool {
	for i := range len(line) {
		if !isSpace(line[i]) {
			return false
		}
	}

	return true
}
