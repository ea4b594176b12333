package gitlib

import (
	git2go "github.com/libgit2/git2go/v34"
)

// similarityScale converts libgit2 similarity scores to [0,1].
const similarityScale = 100.0

// RenamePair is a rename detected by libgit2 similarity search.
type RenamePair struct {
	OldPath    string
	NewPath    string
	Similarity float64
}

// Renames diffs two trees and returns the renames libgit2 detects between
// them. Copies and modifications are not reported.
func (r *Repository) Renames(oldTree, newTree *Tree) ([]RenamePair, error) {
	opts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil, wrapErr("get diff options", err)
	}

	diff, err := r.repo.DiffTreeToTree(oldTree.tree, newTree.tree, &opts)
	if err != nil {
		return nil, wrapErr("diff trees", err)
	}
	defer func() { _ = diff.Free() }()

	findOpts, err := git2go.DefaultDiffFindOptions()
	if err != nil {
		return nil, wrapErr("get find options", err)
	}

	findOpts.Flags = git2go.DiffFindRenames

	err = diff.FindSimilar(&findOpts)
	if err != nil {
		return nil, wrapErr("find renames", err)
	}

	numDeltas, err := diff.NumDeltas()
	if err != nil {
		return nil, wrapErr("count deltas", err)
	}

	var renames []RenamePair

	for i := range numDeltas {
		delta, deltaErr := diff.Delta(i)
		if deltaErr != nil {
			return nil, wrapErr("read delta", deltaErr)
		}

		if delta.Status != git2go.DeltaRenamed {
			continue
		}

		renames = append(renames, RenamePair{
			OldPath:    delta.OldFile.Path,
			NewPath:    delta.NewFile.Path,
			Similarity: float64(delta.Similarity) / similarityScale,
		})
	}

	return renames, nil
}
