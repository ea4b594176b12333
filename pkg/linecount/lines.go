package linecount

import (
	"strings"

	"github.com/Sumatoshi-tech/locdiff/pkg/languages"
)

// SplitLines splits content on newlines, dropping a trailing carriage return
// from each line and the empty fragment after a final newline.
func SplitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}

	lines := strings.Split(string(content), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

// ClassifyContent splits content and classifies it with grammar, or as plain
// text when grammar is nil.
func ClassifyContent(content []byte, grammar *languages.Grammar) Result {
	lines := SplitLines(content)

	if grammar == nil {
		return ClassifyPlain(lines)
	}

	return Classify(lines, *grammar)
}
