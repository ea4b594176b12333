package gitlib

import (
	"context"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/Sumatoshi-tech/locdiff/pkg/failure"
	"github.com/Sumatoshi-tech/locdiff/pkg/safeconv"
)

// TreeFile is one blob reachable from a tree.
type TreeFile struct {
	Path string
	Hash Hash
	Size int64
}

// Tree wraps a libgit2 tree.
type Tree struct {
	tree *git2go.Tree
	repo *Repository
}

// BlobByPath returns the hash of the blob at path.
func (t *Tree) BlobByPath(path string) (Hash, error) {
	entry, err := t.tree.EntryByPath(path)
	if err != nil {
		return Hash{}, wrapErr("entry "+path, err)
	}

	if entry.Type != git2go.ObjectBlob {
		return Hash{}, fmt.Errorf("entry %s: %w: not a file", path, failure.ErrNotFound)
	}

	return HashFromOid(entry.Id), nil
}

// Files returns every regular-file blob under the tree in tree order, with
// sizes read from the object database headers. Symlinks and submodules are
// skipped.
func (t *Tree) Files(ctx context.Context) ([]TreeFile, error) {
	odb, err := t.repo.repo.Odb()
	if err != nil {
		return nil, wrapErr("open object database", err)
	}
	defer odb.Free()

	var files []TreeFile

	err = t.walk(ctx, odb, t.tree, "", &files)
	if err != nil {
		return nil, err
	}

	return files, nil
}

func (t *Tree) walk(ctx context.Context, odb *git2go.Odb, tree *git2go.Tree, prefix string, files *[]TreeFile) error {
	count := tree.EntryCount()

	for i := range count {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry := tree.EntryByIndex(i)
		if entry == nil {
			continue
		}

		path := entry.Name
		if prefix != "" {
			path = prefix + "/" + path
		}

		switch entry.Type {
		case git2go.ObjectBlob:
			if entry.Filemode == git2go.FilemodeLink {
				continue
			}

			size, _, headerErr := odb.ReadHeader(entry.Id)
			if headerErr != nil {
				return wrapErr("read header "+path, headerErr)
			}

			*files = append(*files, TreeFile{Path: path, Hash: HashFromOid(entry.Id), Size: safeconv.MustUint64ToInt64(size)})
		case git2go.ObjectTree:
			subtree, lookupErr := t.repo.repo.LookupTree(entry.Id)
			if lookupErr != nil {
				return wrapErr("lookup tree "+path, lookupErr)
			}

			walkErr := t.walk(ctx, odb, subtree, path, files)

			subtree.Free()

			if walkErr != nil {
				return walkErr
			}
		default:
		}
	}

	return nil
}

// Free releases the tree resources.
func (t *Tree) Free() {
	if t.tree != nil {
		t.tree.Free()
		t.tree = nil
	}
}
