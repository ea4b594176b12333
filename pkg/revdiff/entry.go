// Package revdiff computes line-count deltas between two snapshots.
package revdiff

import (
	"fmt"

	"github.com/Sumatoshi-tech/locdiff/pkg/linecount"
)

// Status is the change kind of a diff entry. Its order is the entry group order.
type Status uint8

// Entry statuses.
const (
	Added Status = iota
	Modified
	Renamed
	Deleted
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Renamed:
		return "renamed"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Delta is a signed change in published line counts.
type Delta struct {
	Code     int `json:"code"     yaml:"code"`
	Comments int `json:"comments" yaml:"comments"`
	Blank    int `json:"blank"    yaml:"blank"`
	Total    int `json:"total"    yaml:"total"`
}

// Between returns to − from.
func Between(from, to linecount.Counts) Delta {
	return Delta{
		Code:     to.Code - from.Code,
		Comments: to.Comments - from.Comments,
		Blank:    to.Blank - from.Blank,
		Total:    to.Total - from.Total,
	}
}

// Plus returns the field-wise sum.
func (d Delta) Plus(o Delta) Delta {
	return Delta{
		Code:     d.Code + o.Code,
		Comments: d.Comments + o.Comments,
		Blank:    d.Blank + o.Blank,
		Total:    d.Total + o.Total,
	}
}

// IsZero reports whether all fields are zero.
func (d Delta) IsZero() bool {
	return d == Delta{}
}

// LineChurn is the line-level edit volume of a modified file.
type LineChurn struct {
	Added   int `json:"added"   yaml:"added"`
	Removed int `json:"removed" yaml:"removed"`
	Changed int `json:"changed" yaml:"changed"`
}

// DiffEntry is the change of one file between two snapshots.
type DiffEntry struct {
	Status   Status `json:"status"             yaml:"status"`
	OldPath  string `json:"old_path,omitempty" yaml:"old_path,omitempty"`
	NewPath  string `json:"new_path,omitempty" yaml:"new_path,omitempty"`
	Language string `json:"language"           yaml:"language"`
	Delta    Delta  `json:"delta"              yaml:"delta"`

	// Similarity is set for Renamed entries only, in [0,1].
	Similarity float64 `json:"similarity,omitempty" yaml:"similarity,omitempty"`

	Churn *LineChurn `json:"churn,omitempty" yaml:"churn,omitempty"`
}

// Path returns the entry's sort key: the new path, or the old one for deletions.
func (e DiffEntry) Path() string {
	if e.Status == Deleted {
		return e.OldPath
	}

	return e.NewPath
}

// LanguageDelta aggregates entry deltas of one language.
type LanguageDelta struct {
	Language string `json:"language" yaml:"language"`
	Files    int    `json:"files"    yaml:"files"`
	Delta    Delta  `json:"delta"    yaml:"delta"`
}

// Rename is an externally detected rename target.
type Rename struct {
	NewPath    string  `json:"new_path"   yaml:"new_path"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// RenameHints maps old paths to their rename targets.
type RenameHints map[string]Rename
