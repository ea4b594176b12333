package report_test

import (
	"context"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locdiff/pkg/failure"
	"github.com/Sumatoshi-tech/locdiff/pkg/history"
	"github.com/Sumatoshi-tech/locdiff/pkg/report"
	"github.com/Sumatoshi-tech/locdiff/pkg/revdiff"
	"github.com/Sumatoshi-tech/locdiff/pkg/snapshot"
)

// brokenSource lists one unreadable file next to the files of a MapSource.
type brokenSource struct {
	*snapshot.MapSource
}

func (b brokenSource) ListFiles(ctx context.Context) ([]snapshot.Entry, error) {
	entries, err := b.MapSource.ListFiles(ctx)
	if err != nil {
		return nil, err
	}

	return append(entries, snapshot.Entry{Path: "locked.go", Err: fs.ErrPermission}), nil
}

func build(t *testing.T, src snapshot.Source) *snapshot.Snapshot {
	t.Helper()

	s, err := snapshot.NewBuilder().Build(context.Background(), src)
	require.NoError(t, err)

	return s
}

func sample() map[string][]byte {
	return map[string][]byte{
		"main.go":   []byte("package main\n\n// run\nfunc main() {}\n"),
		"lib.py":    []byte("x = 1\ny = 2\nz = 3\n"),
		"notes.txt": []byte("hello\n"),
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, report.StatusOK.ExitCode())
	assert.Equal(t, 2, report.StatusPartial.ExitCode())
	assert.Equal(t, 1, report.StatusFailed.ExitCode())
	assert.Equal(t, "partial", report.StatusPartial.String())
	assert.Equal(t, report.StatusFailed, report.Worst(report.StatusPartial, report.StatusFailed))
	assert.Equal(t, report.StatusPartial, report.Worst(report.StatusPartial, report.StatusOK))

	text, err := report.StatusFailed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "failed", string(text))

	var decoded report.Status
	require.NoError(t, decoded.UnmarshalText([]byte("partial")))
	assert.Equal(t, report.StatusPartial, decoded)
	require.ErrorIs(t, decoded.UnmarshalText([]byte("bogus")), report.ErrUnknownStatus)
}

func TestFromSnapshot(t *testing.T) {
	t.Parallel()

	s := build(t, snapshot.NewMapSource("rev1", sample()))

	rep := report.FromSnapshot(s, report.Options{})

	assert.Equal(t, "rev1", rep.Revision)
	assert.Equal(t, report.StatusOK, rep.Status)
	assert.Equal(t, 3, rep.Summary.Files)
	assert.Equal(t, 8, rep.Summary.Total)
	assert.Equal(t, 6, rep.Summary.Code)
	assert.Equal(t, 1, rep.Summary.Comments)
	assert.Equal(t, 1, rep.Summary.Blank)
	assert.Nil(t, rep.Files)

	require.Len(t, rep.Languages, 3)
	assert.Equal(t, "Python", rep.Languages[0].Language)
	assert.Equal(t, "Go", rep.Languages[1].Language)
	assert.Equal(t, "Plain Text", rep.Languages[2].Language)
}

func TestFromSnapshotShowFilesAndFailures(t *testing.T) {
	t.Parallel()

	s := build(t, brokenSource{snapshot.NewMapSource("rev1", sample())})

	rep := report.FromSnapshot(s, report.Options{ShowFiles: true})

	assert.Equal(t, report.StatusPartial, rep.Status)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "locked.go", rep.Failures[0].Path)
	assert.Equal(t, failure.KindPermissionDenied, rep.Failures[0].Kind)

	require.Len(t, rep.Files, 3)
	assert.Equal(t, "lib.py", rep.Files[0].Path)
	assert.Equal(t, "Plain Text", rep.Files[2].Language)
}

func TestFromDiff(t *testing.T) {
	t.Parallel()

	files := sample()
	a := build(t, snapshot.NewMapSource("a", files))

	next := sample()
	next["lib.py"] = []byte("x = 1\n")
	next["new.go"] = []byte("package x\n")
	b := build(t, brokenSource{snapshot.NewMapSource("b", next)})

	d := revdiff.Diff(a, b, nil)

	rep := report.FromDiff(d, a, b, report.Options{ShowFiles: true})

	assert.Equal(t, "a", rep.From)
	assert.Equal(t, "b", rep.To)
	assert.Equal(t, report.StatusPartial, rep.Status)
	assert.Equal(t, 1, rep.Summary.Added)
	assert.Equal(t, 1, rep.Summary.Modified)
	assert.Equal(t, -1, rep.Summary.Delta.Total)

	require.Len(t, rep.Entries, 2)
	assert.Equal(t, "added", rep.Entries[0].Status)
	assert.Equal(t, "new.go", rep.Entries[0].NewPath)
	assert.Equal(t, "modified", rep.Entries[1].Status)
	assert.Equal(t, -2, rep.Entries[1].Code)

	noFiles := report.FromDiff(d, nil, nil, report.Options{})
	assert.Equal(t, report.StatusOK, noFiles.Status)
	assert.Nil(t, noFiles.Entries)
}

func TestFromTrend(t *testing.T) {
	t.Parallel()

	a := build(t, snapshot.NewMapSource("a", sample()))

	grown := sample()
	grown["more.go"] = []byte("package more\n")
	b := build(t, snapshot.NewMapSource("b", grown))

	pairErr := failure.New("c", "", fmt.Errorf("list files: %w", failure.ErrNotFound))

	trend := &history.Trend{
		Commits: []string{"a", "b", "c"},
		Steps: []history.Step{
			{Index: 0, To: "a", Summary: a.Summary()},
			{Index: 1, From: "a", To: "b", Diff: revdiff.Diff(a, b, nil), Summary: b.Summary()},
			{Index: 2, From: "b", To: "c", Err: pairErr},
		},
	}

	rep := report.FromTrend(trend)

	assert.Equal(t, 3, rep.Commits)
	assert.Equal(t, report.StatusPartial, rep.Status)
	require.Len(t, rep.Points, 3)

	base := rep.Points[0]
	assert.Equal(t, 8, base.Total)
	assert.Zero(t, base.DeltaTotal)
	assert.Zero(t, base.FilesChanged)
	assert.Empty(t, base.From)

	assert.Equal(t, 9, rep.Points[1].Total)
	assert.Equal(t, 1, rep.Points[1].DeltaCode)
	assert.Equal(t, 1, rep.Points[1].FilesChanged)
	assert.NotEmpty(t, rep.Points[2].Error)

	require.Len(t, rep.Failures, 1)
	assert.Equal(t, failure.KindNotFound, rep.Failures[0].Kind)
	assert.Equal(t, "c", rep.Failures[0].Revision)
}

func TestFromTrendSingleCommit(t *testing.T) {
	t.Parallel()

	a := build(t, snapshot.NewMapSource("a", sample()))

	rep := report.FromTrend(&history.Trend{
		Commits: []string{"a"},
		Steps:   []history.Step{{Index: 0, To: "a", Totals: a.Totals(), Summary: a.Summary()}},
	})

	assert.Equal(t, report.StatusOK, rep.Status)
	require.Len(t, rep.Points, 1)
	assert.Equal(t, "a", rep.Points[0].To)
	assert.Equal(t, a.Summary().Counts.Code, rep.Points[0].Code)
	assert.Equal(t, a.Summary().Counts.Total, rep.Points[0].Total)
}

func TestFromTrendPartialBaseline(t *testing.T) {
	t.Parallel()

	rep := report.FromTrend(&history.Trend{
		Commits: []string{"a"},
		Steps:   []history.Step{{Index: 0, To: "a", Partial: true}},
	})

	assert.Equal(t, report.StatusPartial, rep.Status)
	require.Len(t, rep.Points, 1)
}

func TestFromTrendTerminalError(t *testing.T) {
	t.Parallel()

	rep := report.FromTrend(&history.Trend{
		Commits: []string{"a", "b"},
		Err:     context.DeadlineExceeded,
	})

	assert.Equal(t, report.StatusFailed, rep.Status)
	assert.Empty(t, rep.Points)
	assert.Equal(t, context.DeadlineExceeded.Error(), rep.Error)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, failure.KindOther, rep.Failures[0].Kind)
}
