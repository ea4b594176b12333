package revdiff

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Churn computes line-level added, removed and changed counts between two
// file versions. A deletion immediately followed by an insertion pairs up
// as changed lines.
func Churn(from, to []byte) LineChurn {
	dmp := diffmatchpatch.New()
	src, dst, _ := dmp.DiffLinesToRunes(string(from), string(to))
	diffs := dmp.DiffMainRunes(src, dst, false)

	var (
		churn   LineChurn
		pending int
	)

	for _, edit := range diffs {
		lines := utf8.RuneCountInString(edit.Text)

		switch edit.Type {
		case diffmatchpatch.DiffEqual:
			churn.Removed += pending
			pending = 0
		case diffmatchpatch.DiffDelete:
			pending += lines
		case diffmatchpatch.DiffInsert:
			paired := min(pending, lines)
			churn.Changed += paired
			churn.Removed += pending - paired
			churn.Added += lines - paired
			pending = 0
		}
	}

	churn.Removed += pending

	return churn
}
