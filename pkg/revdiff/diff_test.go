package revdiff_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/locdiff/pkg/revdiff"
	"github.com/Sumatoshi-tech/locdiff/pkg/snapshot"
)

func build(t *testing.T, rev string, files map[string]string) *snapshot.Snapshot {
	t.Helper()

	raw := make(map[string][]byte, len(files))
	for p, c := range files {
		raw[p] = []byte(c)
	}

	snap, err := snapshot.NewBuilder().Build(context.Background(), snapshot.NewMapSource(rev, raw))
	require.NoError(t, err)

	return snap
}

func codeLines(n int) string {
	return strings.Repeat("x = 1;\n", n)
}

func TestDiff_SelfIsEmpty(t *testing.T) {
	t.Parallel()

	files := map[string]string{"a.go": "package a\n// doc\n", "b.py": "x = 1\n"}
	a := build(t, "r1", files)
	b := build(t, "r1", files)

	d := revdiff.Diff(a, b, nil)

	assert.True(t, d.Empty())
	assert.Empty(t, d.Languages())
	assert.Equal(t, revdiff.Summary{}, d.Summary())
}

func TestDiff_RenameWithIdenticalContent(t *testing.T) {
	t.Parallel()

	a := build(t, "r1", map[string]string{"foo.js": codeLines(10)})
	b := build(t, "r2", map[string]string{"bar.js": codeLines(10)})

	d := revdiff.Diff(a, b, revdiff.RenameHints{"foo.js": {NewPath: "bar.js", Similarity: 0.95}})

	require.Len(t, d.Entries, 1)

	e := d.Entries[0]
	assert.Equal(t, revdiff.Renamed, e.Status)
	assert.Equal(t, "foo.js", e.OldPath)
	assert.Equal(t, "bar.js", e.NewPath)
	assert.True(t, e.Delta.IsZero())
	assert.InDelta(t, 0.95, e.Similarity, 1e-9)
	assert.Equal(t, "r1", d.From)
	assert.Equal(t, "r2", d.To)
}

func TestDiff_NoHintsMeansNoRenameInference(t *testing.T) {
	t.Parallel()

	a := build(t, "r1", map[string]string{"foo.js": codeLines(10)})
	b := build(t, "r2", map[string]string{"bar.js": codeLines(10)})

	d := revdiff.Diff(a, b, nil)

	require.Len(t, d.Entries, 2)
	assert.Equal(t, revdiff.Added, d.Entries[0].Status)
	assert.Equal(t, revdiff.Delta{Code: 10, Total: 10}, d.Entries[0].Delta)
	assert.Equal(t, revdiff.Deleted, d.Entries[1].Status)
	assert.Equal(t, revdiff.Delta{Code: -10, Total: -10}, d.Entries[1].Delta)
	assert.True(t, d.Summary().Delta.IsZero())
}

func TestDiff_OrderAndDeltas(t *testing.T) {
	t.Parallel()

	a := build(t, "r1", map[string]string{
		"keep.go":    "package k\n",
		"mod.go":     "package m\n\n// c\n",
		"z_gone.go":  "package z\n",
		"a_gone.go":  "package a\n",
		"old/ren.go": "package r\nvar x = 1\n",
	})
	b := build(t, "r2", map[string]string{
		"keep.go":    "package k\n",
		"mod.go":     "package m\nfunc f() {} // c\n",
		"new2.go":    "package n\n",
		"new1.go":    "package n\n",
		"new/ren.go": "package r\n",
	})

	d := revdiff.Diff(a, b, revdiff.RenameHints{"old/ren.go": {NewPath: "new/ren.go", Similarity: 0.5}})

	var got []string
	for _, e := range d.Entries {
		got = append(got, e.Status.String()+":"+e.Path())
	}

	assert.Equal(t, []string{
		"added:new1.go", "added:new2.go",
		"modified:mod.go",
		"renamed:new/ren.go",
		"deleted:a_gone.go", "deleted:z_gone.go",
	}, got)

	mod := d.Entries[2]
	assert.Equal(t, revdiff.Delta{Code: 1, Comments: 0, Blank: -1, Total: -1}, mod.Delta)

	ren := d.Entries[3]
	assert.Equal(t, revdiff.Delta{Code: -1, Total: -1}, ren.Delta)

	sum := d.Summary()
	assert.Equal(t, 2, sum.Added)
	assert.Equal(t, 1, sum.Modified)
	assert.Equal(t, 1, sum.Renamed)
	assert.Equal(t, 2, sum.Deleted)

	langs := d.Languages()
	require.Len(t, langs, 1)
	assert.Equal(t, "Go", langs[0].Language)
	assert.Equal(t, 6, langs[0].Files)
	assert.Equal(t, sum.Delta, langs[0].Delta)
}

func TestDiff_RenameAttributedToDestinationLanguage(t *testing.T) {
	t.Parallel()

	a := build(t, "r1", map[string]string{"tool.js": codeLines(3)})
	b := build(t, "r2", map[string]string{"tool.ts": codeLines(3)})

	d := revdiff.Diff(a, b, revdiff.RenameHints{"tool.js": {NewPath: "tool.ts", Similarity: 1}})

	langs := d.Languages()
	require.Len(t, langs, 1)
	assert.Equal(t, "TypeScript", langs[0].Language)
	assert.Equal(t, "TypeScript", d.Entries[0].Language)
}

func TestDiff_HintIgnoredUnlessBothSidesMatch(t *testing.T) {
	t.Parallel()

	a := build(t, "r1", map[string]string{"a.go": "package a\n", "b.go": "package b\n"})
	b := build(t, "r2", map[string]string{"b.go": "package b\n", "c.go": "package c\n"})

	d := revdiff.Diff(a, b, revdiff.RenameHints{
		"a.go": {NewPath: "b.go", Similarity: 0.9},
		"x.go": {NewPath: "c.go", Similarity: 0.9},
	})

	var statuses []revdiff.Status
	for _, e := range d.Entries {
		statuses = append(statuses, e.Status)
	}

	assert.Equal(t, []revdiff.Status{revdiff.Added, revdiff.Deleted}, statuses)
}

func TestDiff_UnchangedContentExcluded(t *testing.T) {
	t.Parallel()

	a := build(t, "r1", map[string]string{"same.go": "package s\n", "edit.go": "package e\n"})
	b := build(t, "r2", map[string]string{"same.go": "package s\n", "edit.go": "package e\n\n"})

	d := revdiff.Diff(a, b, nil)

	require.Len(t, d.Entries, 1)
	assert.Equal(t, "edit.go", d.Entries[0].NewPath)
	assert.Equal(t, revdiff.Delta{Blank: 1, Total: 1}, d.Entries[0].Delta)
}

func TestDiff_Deterministic(t *testing.T) {
	t.Parallel()

	files := func(prefix string, n int) map[string]string {
		out := make(map[string]string, n)
		for i := range n {
			out[prefix+strings.Repeat("x", i+1)+".go"] = codeLines(i + 1)
		}

		return out
	}

	a := files("old_", 20)
	for p, c := range files("same_", 10) {
		a[p] = c
	}

	b := files("new_", 20)
	for p, c := range files("same_", 10) {
		b[p] = c + "\n"
	}

	ra, rb := build(t, "r1", a), build(t, "r2", b)

	first := revdiff.Diff(ra, rb, nil)
	require.Len(t, first.Entries, 50)

	for range 5 {
		assert.Equal(t, first, revdiff.Diff(ra, rb, nil))
	}
}

func TestStatus_MarshalText(t *testing.T) {
	t.Parallel()

	text, err := revdiff.Renamed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "renamed", string(text))
}
