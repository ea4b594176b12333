package report

import (
	"errors"

	"github.com/Sumatoshi-tech/locdiff/pkg/failure"
	"github.com/Sumatoshi-tech/locdiff/pkg/history"
)

// TrendPoint is one commit of a trend. The first point has no From and
// zero deltas.
type TrendPoint struct {
	Index int    `json:"index"          yaml:"index"`
	From  string `json:"from,omitempty" yaml:"from,omitempty"`
	To    string `json:"to"             yaml:"to"`

	// Totals of the To revision. Zero when the step failed.
	Code     int `json:"code"     yaml:"code"`
	Comments int `json:"comments" yaml:"comments"`
	Blank    int `json:"blank"    yaml:"blank"`
	Total    int `json:"total"    yaml:"total"`

	// Net change from the From revision.
	DeltaCode     int `json:"delta_code"     yaml:"delta_code"`
	DeltaComments int `json:"delta_comments" yaml:"delta_comments"`
	DeltaBlank    int `json:"delta_blank"    yaml:"delta_blank"`
	DeltaTotal    int `json:"delta_total"    yaml:"delta_total"`

	FilesChanged int    `json:"files_changed"   yaml:"files_changed"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

// TrendReport is the report of a commit range.
type TrendReport struct {
	Commits  int          `json:"commits"            yaml:"commits"`
	Status   Status       `json:"status"             yaml:"status"`
	Points   []TrendPoint `json:"points"             yaml:"points"`
	Failures []FailureRow `json:"failures,omitempty" yaml:"failures,omitempty"`

	// Error is the terminal error that cut the sequence short.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// FromTrend builds the report of t. A terminal error after at least one
// step yields StatusPartial; with no steps it is StatusFailed.
func FromTrend(t *history.Trend) *TrendReport {
	rep := &TrendReport{
		Commits: len(t.Commits),
		Status:  StatusOK,
		Points:  make([]TrendPoint, 0, len(t.Steps)),
	}

	var fs []*failure.Failure

	for _, step := range t.Steps {
		point := TrendPoint{Index: step.Index, From: step.From, To: step.To}

		switch {
		case step.Err != nil:
			point.Error = step.Err.Error()
			fs = append(fs, asFailure(step.Err, step.To))
			rep.Status = Worst(rep.Status, StatusPartial)
		default:
			c := step.Summary.Counts
			point.Code, point.Comments, point.Blank, point.Total = c.Code, c.Comments, c.Blank, c.Total

			if step.Partial {
				rep.Status = Worst(rep.Status, StatusPartial)
			}

			if step.Diff == nil {
				break
			}

			summary := step.Diff.Summary()
			point.DeltaCode = summary.Delta.Code
			point.DeltaComments = summary.Delta.Comments
			point.DeltaBlank = summary.Delta.Blank
			point.DeltaTotal = summary.Delta.Total
			point.FilesChanged = len(step.Diff.Entries)
		}

		rep.Points = append(rep.Points, point)
	}

	if t.Err != nil {
		rep.Error = t.Err.Error()
		fs = append(fs, asFailure(t.Err, ""))

		if len(t.Steps) == 0 {
			rep.Status = StatusFailed
		} else {
			rep.Status = Worst(rep.Status, StatusPartial)
		}
	}

	rep.Failures = failureRows(fs)

	return rep
}

func asFailure(err error, revision string) *failure.Failure {
	var f *failure.Failure
	if errors.As(err, &f) {
		return f
	}

	return failure.New(revision, "", err)
}
