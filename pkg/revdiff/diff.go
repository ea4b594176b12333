package revdiff

import (
	"sort"

	"github.com/Sumatoshi-tech/locdiff/pkg/languages"
	"github.com/Sumatoshi-tech/locdiff/pkg/linecount"
	"github.com/Sumatoshi-tech/locdiff/pkg/snapshot"
)

var zeroCounts linecount.Counts

// RevisionDiff is the set of per-file changes between two snapshots.
type RevisionDiff struct {
	From    string      `json:"from"    yaml:"from"`
	To      string      `json:"to"      yaml:"to"`
	Entries []DiffEntry `json:"entries" yaml:"entries"`

	languages []LanguageDelta
}

// Summary is the net change over all entries.
type Summary struct {
	Added    int   `json:"added"    yaml:"added"`
	Modified int   `json:"modified" yaml:"modified"`
	Renamed  int   `json:"renamed"  yaml:"renamed"`
	Deleted  int   `json:"deleted"  yaml:"deleted"`
	Delta    Delta `json:"delta"    yaml:"delta"`
}

// Diff compares snapshot a to snapshot b. Files with equal content hashes
// are omitted. Renames come only from hints: a hint applies when its source
// exists only in a and its target only in b.
func Diff(a, b *snapshot.Snapshot, hints RenameHints) *RevisionDiff {
	added, deleted, changed := onlyIn(b, a), onlyIn(a, b), modified(a, b)

	renamedFrom, renamedTo := matchRenames(added, deleted, hints)

	entries := make([]DiffEntry, 0, len(added)+len(deleted)+len(changed))

	for _, p := range added {
		if _, ok := renamedTo[p]; ok {
			continue
		}

		rec := b.Files[p]
		entries = append(entries, DiffEntry{
			Status: Added, NewPath: p, Language: languages.DisplayName(rec.Language),
			Delta: Between(zeroCounts, rec.Counts),
		})
	}

	for _, p := range changed {
		from, to := a.Files[p], b.Files[p]
		entries = append(entries, DiffEntry{
			Status: Modified, OldPath: p, NewPath: p, Language: languages.DisplayName(to.Language),
			Delta: Between(from.Counts, to.Counts),
		})
	}

	for _, p := range deleted {
		target, ok := renamedFrom[p]
		if !ok {
			continue
		}

		from, to := a.Files[p], b.Files[target.NewPath]
		entries = append(entries, DiffEntry{
			Status: Renamed, OldPath: p, NewPath: target.NewPath, Language: languages.DisplayName(to.Language),
			Delta: Between(from.Counts, to.Counts), Similarity: clamp01(target.Similarity),
		})
	}

	for _, p := range deleted {
		if _, ok := renamedFrom[p]; ok {
			continue
		}

		rec := a.Files[p]
		entries = append(entries, DiffEntry{
			Status: Deleted, OldPath: p, Language: languages.DisplayName(rec.Language),
			Delta: Between(rec.Counts, zeroCounts),
		})
	}

	sortEntries(entries)

	return &RevisionDiff{
		From:      a.Revision,
		To:        b.Revision,
		Entries:   entries,
		languages: aggregate(entries),
	}
}

// Languages returns per-language deltas in order of first appearance among entries.
func (d *RevisionDiff) Languages() []LanguageDelta {
	return append([]LanguageDelta(nil), d.languages...)
}

// Empty reports whether no file changed.
func (d *RevisionDiff) Empty() bool {
	return len(d.Entries) == 0
}

// Summary returns entry counts per status and the net delta.
func (d *RevisionDiff) Summary() Summary {
	var sum Summary

	for _, e := range d.Entries {
		switch e.Status {
		case Added:
			sum.Added++
		case Modified:
			sum.Modified++
		case Renamed:
			sum.Renamed++
		case Deleted:
			sum.Deleted++
		}

		sum.Delta = sum.Delta.Plus(e.Delta)
	}

	return sum
}

// onlyIn returns the sorted paths of x that are absent from y.
func onlyIn(x, y *snapshot.Snapshot) []string {
	var out []string

	for p := range x.Files {
		if _, ok := y.Files[p]; !ok {
			out = append(out, p)
		}
	}

	sort.Strings(out)

	return out
}

// modified returns the sorted paths present in both with differing content.
func modified(a, b *snapshot.Snapshot) []string {
	var out []string

	for p, from := range a.Files {
		to, ok := b.Files[p]
		if ok && from.Hash != to.Hash {
			out = append(out, p)
		}
	}

	sort.Strings(out)

	return out
}

func matchRenames(added, deleted []string, hints RenameHints) (map[string]Rename, map[string]struct{}) {
	from := make(map[string]Rename)
	to := make(map[string]struct{})

	if len(hints) == 0 {
		return from, to
	}

	addedSet := make(map[string]struct{}, len(added))
	for _, p := range added {
		addedSet[p] = struct{}{}
	}

	for _, old := range deleted {
		hint, ok := hints[old]
		if !ok {
			continue
		}

		if _, isAdded := addedSet[hint.NewPath]; !isAdded {
			continue
		}

		if _, taken := to[hint.NewPath]; taken {
			continue
		}

		from[old] = hint
		to[hint.NewPath] = struct{}{}
	}

	return from, to
}

func sortEntries(entries []DiffEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Status != entries[j].Status {
			return entries[i].Status < entries[j].Status
		}

		if entries[i].Path() != entries[j].Path() {
			return entries[i].Path() < entries[j].Path()
		}

		return entries[i].OldPath < entries[j].OldPath
	})
}

func aggregate(entries []DiffEntry) []LanguageDelta {
	var out []LanguageDelta

	index := make(map[string]int)

	for _, e := range entries {
		i, ok := index[e.Language]
		if !ok {
			i = len(out)
			index[e.Language] = i
			out = append(out, LanguageDelta{Language: e.Language})
		}

		out[i].Files++
		out[i].Delta = out[i].Delta.Plus(e.Delta)
	}

	return out
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
