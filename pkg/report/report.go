// Package report turns snapshots, diffs and trends into plain data for
// output.
package report

import (
	"sort"

	"github.com/Sumatoshi-tech/locdiff/pkg/failure"
	"github.com/Sumatoshi-tech/locdiff/pkg/languages"
	"github.com/Sumatoshi-tech/locdiff/pkg/linecount"
	"github.com/Sumatoshi-tech/locdiff/pkg/snapshot"
)

// Options controls report detail.
type Options struct {
	// ShowFiles adds per-file rows.
	ShowFiles bool
}

// Summary is the grand total of a snapshot.
type Summary struct {
	Files    int   `json:"files"    yaml:"files"`
	Total    int   `json:"total"    yaml:"total"`
	Code     int   `json:"code"     yaml:"code"`
	Comments int   `json:"comments" yaml:"comments"`
	Blank    int   `json:"blank"    yaml:"blank"`
	Size     int64 `json:"size"     yaml:"size"`
}

// LanguageRow is the total of one language.
type LanguageRow struct {
	Language string `json:"language" yaml:"language"`
	Files    int    `json:"files"    yaml:"files"`
	Code     int    `json:"code"     yaml:"code"`
	Comments int    `json:"comments" yaml:"comments"`
	Blank    int    `json:"blank"    yaml:"blank"`
	Total    int    `json:"total"    yaml:"total"`
	Size     int64  `json:"size"     yaml:"size"`
}

// FileRow is the counts of one file.
type FileRow struct {
	Path     string `json:"path"     yaml:"path"`
	Language string `json:"language" yaml:"language"`
	Code     int    `json:"code"     yaml:"code"`
	Comments int    `json:"comments" yaml:"comments"`
	Blank    int    `json:"blank"    yaml:"blank"`
	Total    int    `json:"total"    yaml:"total"`
	Size     int64  `json:"size"     yaml:"size"`
}

// FailureRow is a collected error.
type FailureRow struct {
	Revision string `json:"revision,omitempty" yaml:"revision,omitempty"`
	Path     string `json:"path,omitempty"     yaml:"path,omitempty"`
	Kind     string `json:"kind"               yaml:"kind"`
	Message  string `json:"message"            yaml:"message"`
}

// IneligibleRow is a skipped file.
type IneligibleRow struct {
	Path   string `json:"path"             yaml:"path"`
	Reason string `json:"reason"           yaml:"reason"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// CountReport is the report of one snapshot.
type CountReport struct {
	Revision   string          `json:"revision"             yaml:"revision"`
	Status     Status          `json:"status"               yaml:"status"`
	Summary    Summary         `json:"summary"              yaml:"summary"`
	Languages  []LanguageRow   `json:"languages"            yaml:"languages"`
	Files      []FileRow       `json:"files,omitempty"      yaml:"files,omitempty"`
	Failures   []FailureRow    `json:"failures,omitempty"   yaml:"failures,omitempty"`
	Ineligible []IneligibleRow `json:"ineligible,omitempty" yaml:"ineligible,omitempty"`
}

// FromSnapshot builds the report of s.
func FromSnapshot(s *snapshot.Snapshot, opts Options) *CountReport {
	total := s.Summary()

	rep := &CountReport{
		Revision:   s.Revision,
		Status:     StatusOK,
		Summary:    summaryOf(total),
		Languages:  languageRows(s.Totals()),
		Failures:   failureRows(s.Failures),
		Ineligible: ineligibleRows(s.Ineligible),
	}

	if s.Partial() {
		rep.Status = StatusPartial
	}

	if opts.ShowFiles {
		rep.Files = fileRows(s)
	}

	return rep
}

func summaryOf(t snapshot.LanguageTotal) Summary {
	return Summary{
		Files:    t.Files,
		Total:    t.Counts.Total,
		Code:     t.Counts.Code,
		Comments: t.Counts.Comments,
		Blank:    t.Counts.Blank,
		Size:     t.Size,
	}
}

// languageRows sorts by code descending, then by name.
func languageRows(totals []snapshot.LanguageTotal) []LanguageRow {
	rows := make([]LanguageRow, 0, len(totals))

	for _, t := range totals {
		rows = append(rows, LanguageRow{
			Language: t.Language,
			Files:    t.Files,
			Code:     t.Counts.Code,
			Comments: t.Counts.Comments,
			Blank:    t.Counts.Blank,
			Total:    t.Counts.Total,
			Size:     t.Size,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Code != rows[j].Code {
			return rows[i].Code > rows[j].Code
		}

		return rows[i].Language < rows[j].Language
	})

	return rows
}

func fileRows(s *snapshot.Snapshot) []FileRow {
	paths := s.Paths()
	rows := make([]FileRow, 0, len(paths))

	for _, path := range paths {
		rec := s.Files[path]
		rows = append(rows, fileRow(rec.Path, rec.Language, rec.Counts, rec.Size))
	}

	return rows
}

func fileRow(path, language string, c linecount.Counts, size int64) FileRow {
	return FileRow{
		Path:     path,
		Language: languages.DisplayName(language),
		Code:     c.Code,
		Comments: c.Comments,
		Blank:    c.Blank,
		Total:    c.Total,
		Size:     size,
	}
}

func failureRows(fs []*failure.Failure) []FailureRow {
	if len(fs) == 0 {
		return nil
	}

	rows := make([]FailureRow, 0, len(fs))

	for _, f := range fs {
		rows = append(rows, FailureRow{
			Revision: f.Revision,
			Path:     f.Path,
			Kind:     f.Kind(),
			Message:  f.Err.Error(),
		})
	}

	return rows
}

func ineligibleRows(in []snapshot.Ineligible) []IneligibleRow {
	if len(in) == 0 {
		return nil
	}

	rows := make([]IneligibleRow, 0, len(in))

	for _, i := range in {
		rows = append(rows, IneligibleRow{Path: i.Path, Reason: string(i.Reason), Detail: i.Detail})
	}

	return rows
}
