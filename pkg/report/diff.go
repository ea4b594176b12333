package report

import (
	"github.com/Sumatoshi-tech/locdiff/pkg/failure"
	"github.com/Sumatoshi-tech/locdiff/pkg/languages"
	"github.com/Sumatoshi-tech/locdiff/pkg/revdiff"
	"github.com/Sumatoshi-tech/locdiff/pkg/snapshot"
)

// DeltaRow is the net change of one language.
type DeltaRow struct {
	Language string `json:"language" yaml:"language"`
	Files    int    `json:"files"    yaml:"files"`
	Code     int    `json:"code"     yaml:"code"`
	Comments int    `json:"comments" yaml:"comments"`
	Blank    int    `json:"blank"    yaml:"blank"`
	Total    int    `json:"total"    yaml:"total"`
}

// EntryRow is one changed file.
type EntryRow struct {
	Status     string             `json:"status"               yaml:"status"`
	OldPath    string             `json:"old_path,omitempty"   yaml:"old_path,omitempty"`
	NewPath    string             `json:"new_path,omitempty"   yaml:"new_path,omitempty"`
	Language   string             `json:"language"             yaml:"language"`
	Code       int                `json:"code"                 yaml:"code"`
	Comments   int                `json:"comments"             yaml:"comments"`
	Blank      int                `json:"blank"                yaml:"blank"`
	Total      int                `json:"total"                yaml:"total"`
	Similarity float64            `json:"similarity,omitempty" yaml:"similarity,omitempty"`
	Churn      *revdiff.LineChurn `json:"churn,omitempty"      yaml:"churn,omitempty"`
}

// DiffReport is the report of a revision comparison.
type DiffReport struct {
	From      string          `json:"from"                 yaml:"from"`
	To        string          `json:"to"                   yaml:"to"`
	Status    Status          `json:"status"               yaml:"status"`
	Summary   revdiff.Summary `json:"summary"              yaml:"summary"`
	Languages []DeltaRow      `json:"languages"            yaml:"languages"`
	Entries   []EntryRow      `json:"entries,omitempty"    yaml:"entries,omitempty"`
	Failures  []FailureRow    `json:"failures,omitempty"   yaml:"failures,omitempty"`
}

// FromDiff builds the report of d. The snapshots a and b contribute their
// collected failures; either may be nil. Entries are listed when
// opts.ShowFiles is set.
func FromDiff(d *revdiff.RevisionDiff, a, b *snapshot.Snapshot, opts Options) *DiffReport {
	rep := &DiffReport{
		From:      d.From,
		To:        d.To,
		Status:    StatusOK,
		Summary:   d.Summary(),
		Languages: deltaRows(d.Languages()),
	}

	var fs []*failure.Failure

	for _, s := range []*snapshot.Snapshot{a, b} {
		if s != nil {
			fs = append(fs, s.Failures...)
		}
	}

	rep.Failures = failureRows(fs)
	if len(rep.Failures) > 0 {
		rep.Status = StatusPartial
	}

	if opts.ShowFiles {
		rep.Entries = entryRows(d.Entries)
	}

	return rep
}

func deltaRows(langs []revdiff.LanguageDelta) []DeltaRow {
	rows := make([]DeltaRow, 0, len(langs))

	for _, l := range langs {
		rows = append(rows, DeltaRow{
			Language: l.Language,
			Files:    l.Files,
			Code:     l.Delta.Code,
			Comments: l.Delta.Comments,
			Blank:    l.Delta.Blank,
			Total:    l.Delta.Total,
		})
	}

	return rows
}

func entryRows(entries []revdiff.DiffEntry) []EntryRow {
	rows := make([]EntryRow, 0, len(entries))

	for _, e := range entries {
		rows = append(rows, EntryRow{
			Status:     e.Status.String(),
			OldPath:    e.OldPath,
			NewPath:    e.NewPath,
			Language:   languages.DisplayName(e.Language),
			Code:       e.Delta.Code,
			Comments:   e.Delta.Comments,
			Blank:      e.Delta.Blank,
			Total:      e.Delta.Total,
			Similarity: e.Similarity,
			Churn:      e.Churn,
		})
	}

	return rows
}
