package gitlib

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	git2go "github.com/libgit2/git2go/v34"
)

var remoteURIPattern = regexp.MustCompile(`^[A-Za-z]\w*@[A-Za-z0-9][\w.]*:`)

// Repository wraps a libgit2 repository.
type Repository struct {
	repo *git2go.Repository
	path string
}

// OpenRepository opens a local git repository. Remote URIs are rejected.
func OpenRepository(path string) (*Repository, error) {
	if strings.Contains(path, "://") || remoteURIPattern.MatchString(path) {
		return nil, fmt.Errorf("%w: %s", ErrRemoteNotSupported, path)
	}

	if len(path) > 1 && path[len(path)-1] == os.PathSeparator {
		path = path[:len(path)-1]
	}

	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, wrapErr("open repository "+path, err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Head returns the commit HEAD points at.
func (r *Repository) Head() (Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Hash{}, wrapErr("get HEAD", err)
	}
	defer ref.Free()

	return HashFromOid(ref.Target()), nil
}

// Resolve turns a revision expression (hash, prefix, branch, tag, HEAD~n)
// into the hash of the commit it names.
func (r *Repository) Resolve(rev string) (Hash, error) {
	obj, err := r.repo.RevparseSingle(rev)
	if err != nil {
		return Hash{}, wrapErr("resolve "+rev, err)
	}
	defer obj.Free()

	commit, err := obj.Peel(git2go.ObjectCommit)
	if err != nil {
		return Hash{}, wrapErr("resolve "+rev, err)
	}
	defer commit.Free()

	return HashFromOid(commit.Id()), nil
}

// LookupCommit returns the commit with the given hash.
func (r *Repository) LookupCommit(hash Hash) (*Commit, error) {
	commit, err := r.repo.LookupCommit(hash.ToOid())
	if err != nil {
		return nil, wrapErr("lookup commit "+hash.String(), err)
	}

	return &Commit{commit: commit, repo: r}, nil
}

// LookupTree returns the tree with the given hash.
func (r *Repository) LookupTree(hash Hash) (*Tree, error) {
	tree, err := r.repo.LookupTree(hash.ToOid())
	if err != nil {
		return nil, wrapErr("lookup tree "+hash.String(), err)
	}

	return &Tree{tree: tree, repo: r}, nil
}

// ReadBlob returns a copy of the blob content with the given hash.
func (r *Repository) ReadBlob(hash Hash) ([]byte, error) {
	blob, err := r.repo.LookupBlob(hash.ToOid())
	if err != nil {
		return nil, wrapErr("lookup blob "+hash.String(), err)
	}
	defer blob.Free()

	contents := blob.Contents()
	out := make([]byte, len(contents))
	copy(out, contents)

	return out, nil
}

// CommitTree returns the root tree of the commit named by rev.
func (r *Repository) CommitTree(rev string) (*Tree, error) {
	hash, err := r.Resolve(rev)
	if err != nil {
		return nil, err
	}

	commit, err := r.LookupCommit(hash)
	if err != nil {
		return nil, err
	}
	defer commit.Free()

	return commit.Tree()
}

// Native returns the underlying libgit2 repository.
func (r *Repository) Native() *git2go.Repository {
	return r.repo
}
