package revdiff

import (
	"fmt"
	"strconv"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

const (
	headerSimilarity = "similarity index "
	headerRenameFrom = "rename from "
	headerRenameTo   = "rename to "

	percent = 100
)

// ParseRenameHints extracts rename hints from a git-style unified diff, as
// produced by "git diff -M". Renames without a similarity header get 1.
func ParseRenameHints(patch []byte) (RenameHints, error) {
	fileDiffs, err := godiff.ParseMultiFileDiff(patch)
	if err != nil {
		return nil, fmt.Errorf("parse rename patch: %w", err)
	}

	hints := make(RenameHints)

	for _, fd := range fileDiffs {
		var from, to string

		similarity := 1.0

		for _, header := range fd.Extended {
			switch {
			case strings.HasPrefix(header, headerRenameFrom):
				from = unquote(strings.TrimPrefix(header, headerRenameFrom))
			case strings.HasPrefix(header, headerRenameTo):
				to = unquote(strings.TrimPrefix(header, headerRenameTo))
			case strings.HasPrefix(header, headerSimilarity):
				raw := strings.TrimSuffix(strings.TrimPrefix(header, headerSimilarity), "%")

				pct, convErr := strconv.Atoi(raw)
				if convErr != nil {
					return nil, fmt.Errorf("parse rename patch: bad similarity %q: %w", header, convErr)
				}

				similarity = float64(pct) / percent
			}
		}

		if from != "" && to != "" {
			hints[from] = Rename{NewPath: to, Similarity: clamp01(similarity)}
		}
	}

	return hints, nil
}

func unquote(name string) string {
	if s, err := strconv.Unquote(name); err == nil {
		return s
	}

	return name
}
