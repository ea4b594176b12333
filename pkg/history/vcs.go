// Package history compares revisions and walks a commit sequence pair by
// pair, keeping at most two snapshots in memory.
package history

import (
	"context"

	"github.com/Sumatoshi-tech/locdiff/pkg/revdiff"
	"github.com/Sumatoshi-tech/locdiff/pkg/snapshot"
)

// VCS is the version-control backend the analyzer reads revisions from.
type VCS interface {
	// Resolve returns the canonical id of a revision expression.
	Resolve(ctx context.Context, rev string) (string, error)
	// ListFiles lists the files of a revision.
	ListFiles(ctx context.Context, rev string) ([]snapshot.Entry, error)
	// ReadBlob returns the content of path at a revision.
	ReadBlob(ctx context.Context, rev, path string) ([]byte, error)
	// ResolveRenames returns the renames detected between two revisions.
	ResolveRenames(ctx context.Context, revA, revB string) (revdiff.RenameHints, error)
	// CommitsBetween lists commit ids of a range, oldest first. Bounds are
	// commit-ishes or dates.
	CommitsBetween(ctx context.Context, from, to string) ([]string, error)
}

type revisionSource struct {
	vcs VCS
	rev string
}

// SourceAt adapts one revision of vcs into a snapshot.Source. rev should
// already be resolved so the Snapshot carries the canonical id.
func SourceAt(vcs VCS, rev string) snapshot.Source {
	return &revisionSource{vcs: vcs, rev: rev}
}

func (s *revisionSource) Revision() string {
	return s.rev
}

func (s *revisionSource) ListFiles(ctx context.Context) ([]snapshot.Entry, error) {
	return s.vcs.ListFiles(ctx, s.rev)
}

func (s *revisionSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return s.vcs.ReadBlob(ctx, s.rev, path)
}

type hintedVCS struct {
	VCS

	hints revdiff.RenameHints
}

// WithRenameHints wraps vcs so that every rename lookup returns hints instead
// of asking the backend. Hints that do not fit a pair are ignored by the diff.
func WithRenameHints(vcs VCS, hints revdiff.RenameHints) VCS {
	return &hintedVCS{VCS: vcs, hints: hints}
}

func (h *hintedVCS) ResolveRenames(context.Context, string, string) (revdiff.RenameHints, error) {
	return h.hints, nil
}
