package history

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/locdiff/internal/observability"
	"github.com/Sumatoshi-tech/locdiff/pkg/revdiff"
	"github.com/Sumatoshi-tech/locdiff/pkg/snapshot"
)

// Comparison is a diff together with the snapshots it was computed from.
type Comparison struct {
	Diff *revdiff.RevisionDiff
	From *snapshot.Snapshot
	To   *snapshot.Snapshot
}

// Partial reports whether either snapshot collected file failures.
func (c *Comparison) Partial() bool {
	return c.From.Partial() || c.To.Partial()
}

// Compare builds snapshots of revA and revB and diffs them using the
// backend's rename detection. Any error, including a failed snapshot,
// returns no comparison.
func Compare(ctx context.Context, vcs VCS, builder *snapshot.Builder, revA, revB string) (*Comparison, error) {
	a, b, err := buildPair(ctx, vcs, builder, revA, revB)
	if err != nil {
		return nil, err
	}

	d, err := diffPair(ctx, vcs, a, b)
	if err != nil {
		return nil, err
	}

	return &Comparison{Diff: d, From: a, To: b}, nil
}

// buildPair resolves and builds both revisions concurrently.
func buildPair(ctx context.Context, vcs VCS, builder *snapshot.Builder, revA, revB string) (*snapshot.Snapshot, *snapshot.Snapshot, error) {
	var a, b *snapshot.Snapshot

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error

		a, err = buildAt(groupCtx, vcs, builder, revA)

		return err
	})
	group.Go(func() error {
		var err error

		b, err = buildAt(groupCtx, vcs, builder, revB)

		return err
	})

	err := group.Wait()
	if err != nil {
		return nil, nil, err
	}

	return a, b, nil
}

// buildAt resolves rev and builds its snapshot.
func buildAt(ctx context.Context, vcs VCS, builder *snapshot.Builder, rev string) (*snapshot.Snapshot, error) {
	id, err := vcs.Resolve(ctx, rev)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rev, err)
	}

	return builder.Build(ctx, SourceAt(vcs, id))
}

func diffPair(ctx context.Context, vcs VCS, a, b *snapshot.Snapshot) (*revdiff.RevisionDiff, error) {
	hints, err := vcs.ResolveRenames(ctx, a.Revision, b.Revision)
	if err != nil {
		return nil, fmt.Errorf("resolve renames %s..%s: %w", a.Revision, b.Revision, err)
	}

	return revdiff.Diff(a, b, hints), nil
}

// AttachChurn fills the line churn of every entry in d by diffing blob
// contents. Added and Deleted files churn against empty content.
func AttachChurn(ctx context.Context, vcs VCS, d *revdiff.RevisionDiff) error {
	for i := range d.Entries {
		entry := &d.Entries[i]

		var from, to []byte

		if entry.Status != revdiff.Added {
			content, err := vcs.ReadBlob(ctx, d.From, entry.OldPath)
			if err != nil {
				return fmt.Errorf("churn %s: %w", entry.OldPath, err)
			}

			from = content
		}

		if entry.Status != revdiff.Deleted {
			content, err := vcs.ReadBlob(ctx, d.To, entry.NewPath)
			if err != nil {
				return fmt.Errorf("churn %s: %w", entry.NewPath, err)
			}

			to = content
		}

		churn := revdiff.Churn(from, to)
		entry.Churn = &churn
	}

	return nil
}

// DiffStats converts the entry counts of d for metric recording.
func DiffStats(d *revdiff.RevisionDiff) observability.DiffStats {
	summary := d.Summary()

	return observability.DiffStats{
		Added:    summary.Added,
		Modified: summary.Modified,
		Renamed:  summary.Renamed,
		Deleted:  summary.Deleted,
	}
}
