// Package snapshot builds the classified line-count state of a file tree at
// one revision.
package snapshot

import (
	"sort"

	"github.com/Sumatoshi-tech/locdiff/pkg/failure"
	"github.com/Sumatoshi-tech/locdiff/pkg/filter"
	"github.com/Sumatoshi-tech/locdiff/pkg/languages"
	"github.com/Sumatoshi-tech/locdiff/pkg/linecount"
)

// WorkTreeRevision identifies a snapshot of an on-disk directory rather than a commit.
const WorkTreeRevision = "WORKTREE"

// FileRecord is the line counts of one eligible file.
type FileRecord struct {
	Path string `json:"path" yaml:"path"`

	// Language is empty when the language is undetected and the file was counted as plain text.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	Counts linecount.Counts `json:"counts" yaml:"counts"`
	Size   int64            `json:"size"   yaml:"size"`
	Hash   string           `json:"hash"   yaml:"hash"`

	// Unterminated is set when a block comment runs to end of file.
	Unterminated bool `json:"unterminated,omitempty" yaml:"unterminated,omitempty"`

	// Lines holds the per-line classification when the builder keeps it.
	Lines []linecount.LineRecord `json:"lines,omitempty" yaml:"-"`
}

// Ineligible is a file excluded from counting.
type Ineligible struct {
	Path   string        `json:"path"             yaml:"path"`
	Reason filter.Reason `json:"reason"           yaml:"reason"`
	Detail string        `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// LanguageTotal aggregates the files of one language.
type LanguageTotal struct {
	Language string           `json:"language" yaml:"language"`
	Files    int              `json:"files"    yaml:"files"`
	Counts   linecount.Counts `json:"counts"   yaml:"counts"`
	Size     int64            `json:"size"     yaml:"size"`
}

// Snapshot is the classified state of a tree at one revision.
// It is read-only once Build returns.
type Snapshot struct {
	Revision   string
	Files      map[string]*FileRecord
	Failures   []*failure.Failure
	Ineligible []Ineligible

	totals []LanguageTotal
}

func newSnapshot(revision string, records []*FileRecord) *Snapshot {
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })

	snap := &Snapshot{
		Revision: revision,
		Files:    make(map[string]*FileRecord, len(records)),
	}

	index := make(map[string]int)

	for _, rec := range records {
		snap.Files[rec.Path] = rec

		name := languages.DisplayName(rec.Language)

		i, ok := index[name]
		if !ok {
			i = len(snap.totals)
			index[name] = i
			snap.totals = append(snap.totals, LanguageTotal{Language: name})
		}

		snap.totals[i].Files++
		snap.totals[i].Counts = snap.totals[i].Counts.Plus(rec.Counts)
		snap.totals[i].Size += rec.Size
	}

	return snap
}

// Totals returns per-language totals in first-seen order, scanning paths
// lexicographically.
func (s *Snapshot) Totals() []LanguageTotal {
	return append([]LanguageTotal(nil), s.totals...)
}

// Summary returns the grand total over all files.
func (s *Snapshot) Summary() LanguageTotal {
	sum := LanguageTotal{Language: "Total"}

	for _, lt := range s.totals {
		sum.Files += lt.Files
		sum.Counts = sum.Counts.Plus(lt.Counts)
		sum.Size += lt.Size
	}

	return sum
}

// Lookup returns the record for path.
func (s *Snapshot) Lookup(path string) (*FileRecord, bool) {
	rec, ok := s.Files[path]

	return rec, ok
}

// Paths returns the counted paths in lexicographic order.
func (s *Snapshot) Paths() []string {
	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	return paths
}

// Partial reports whether any file-level failures were collected.
func (s *Snapshot) Partial() bool {
	return len(s.Failures) > 0
}
