package gitlib

import (
	"context"
	"fmt"
	"sync"

	"github.com/Sumatoshi-tech/locdiff/pkg/failure"
	"github.com/Sumatoshi-tech/locdiff/pkg/revdiff"
	"github.com/Sumatoshi-tech/locdiff/pkg/snapshot"
)

// listingCacheSize bounds the per-revision path indexes kept for blob reads.
const listingCacheSize = 2

// VCS exposes a Repository to the counting and history packages. libgit2
// calls are serialized; callers may use it from many goroutines.
type VCS struct {
	repo *Repository

	mu       sync.Mutex
	listings map[Hash]map[string]Hash
	order    []Hash
}

// NewVCS wraps repo. The caller keeps ownership of repo.
func NewVCS(repo *Repository) *VCS {
	return &VCS{repo: repo, listings: make(map[Hash]map[string]Hash)}
}

// Resolve returns the full commit hash named by rev.
func (v *VCS) Resolve(_ context.Context, rev string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	hash, err := v.repo.Resolve(rev)
	if err != nil {
		return "", err
	}

	return hash.String(), nil
}

// ListFiles lists the blobs of rev with sizes and blob hashes.
func (v *VCS) ListFiles(ctx context.Context, rev string) ([]snapshot.Entry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	commitHash, err := v.repo.Resolve(rev)
	if err != nil {
		return nil, err
	}

	tree, err := v.repo.CommitTree(commitHash.String())
	if err != nil {
		return nil, err
	}
	defer tree.Free()

	files, err := tree.Files(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]Hash, len(files))
	entries := make([]snapshot.Entry, 0, len(files))

	for _, f := range files {
		index[f.Path] = f.Hash
		entries = append(entries, snapshot.Entry{Path: f.Path, Size: f.Size, Hash: f.Hash.String()})
	}

	v.remember(commitHash, index)

	return entries, nil
}

// ReadBlob returns the content of path at rev.
func (v *VCS) ReadBlob(ctx context.Context, rev, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	commitHash, err := v.repo.Resolve(rev)
	if err != nil {
		return nil, err
	}

	blob, ok := v.listings[commitHash][path]
	if !ok {
		blob, err = v.lookupBlob(commitHash, path)
		if err != nil {
			return nil, err
		}
	}

	return v.repo.ReadBlob(blob)
}

func (v *VCS) lookupBlob(commitHash Hash, path string) (Hash, error) {
	if index, cached := v.listings[commitHash]; cached {
		if _, ok := index[path]; !ok {
			return Hash{}, fmt.Errorf("%s@%s: %w", path, commitHash, failure.ErrNotFound)
		}
	}

	tree, err := v.repo.CommitTree(commitHash.String())
	if err != nil {
		return Hash{}, err
	}
	defer tree.Free()

	return tree.BlobByPath(path)
}

// ResolveRenames returns the renames libgit2 detects between two revisions.
func (v *VCS) ResolveRenames(_ context.Context, revA, revB string) (revdiff.RenameHints, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	treeA, err := v.repo.CommitTree(revA)
	if err != nil {
		return nil, err
	}
	defer treeA.Free()

	treeB, err := v.repo.CommitTree(revB)
	if err != nil {
		return nil, err
	}
	defer treeB.Free()

	pairs, err := v.repo.Renames(treeA, treeB)
	if err != nil {
		return nil, err
	}

	hints := make(revdiff.RenameHints, len(pairs))
	for _, p := range pairs {
		hints[p.OldPath] = revdiff.Rename{NewPath: p.NewPath, Similarity: p.Similarity}
	}

	return hints, nil
}

// CommitsBetween lists the commits of a range, oldest first, as full hashes.
func (v *VCS) CommitsBetween(ctx context.Context, from, to string) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	hashes, err := v.repo.CommitsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	revs := make([]string, len(hashes))
	for i, h := range hashes {
		revs[i] = h.String()
	}

	return revs, nil
}

// Info returns repository information.
func (v *VCS) Info(ctx context.Context) (*Info, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.repo.Info(ctx)
}

func (v *VCS) remember(commitHash Hash, index map[string]Hash) {
	if _, ok := v.listings[commitHash]; !ok {
		v.order = append(v.order, commitHash)
	}

	v.listings[commitHash] = index

	for len(v.order) > listingCacheSize {
		delete(v.listings, v.order[0])
		v.order = v.order[1:]
	}
}
