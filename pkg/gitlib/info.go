package gitlib

import (
	"context"
	"sort"
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// DetachedHead is the branch name reported when HEAD is detached.
const DetachedHead = "HEAD"

// LastCommit describes the commit HEAD points at.
type LastCommit struct {
	ID      string    `json:"id" yaml:"id"`
	Message string    `json:"message" yaml:"message"`
	Author  string    `json:"author" yaml:"author"`
	Date    time.Time `json:"date" yaml:"date"`
}

// Remote is a configured remote.
type Remote struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Info summarizes a repository.
type Info struct {
	Path    string     `json:"path" yaml:"path"`
	Branch  string     `json:"branch" yaml:"branch"`
	Remotes []Remote   `json:"remotes" yaml:"remotes"`
	Commits int        `json:"commits" yaml:"commits"`
	Last    LastCommit `json:"last_commit" yaml:"last_commit"`
}

// Info collects repository information. Commits counts every commit
// reachable from HEAD.
func (r *Repository) Info(ctx context.Context) (*Info, error) {
	info := &Info{Path: r.path}

	branch, err := r.branch()
	if err != nil {
		return nil, err
	}

	info.Branch = branch

	info.Remotes, err = r.remotes()
	if err != nil {
		return nil, err
	}

	head, err := r.Head()
	if err != nil {
		return nil, err
	}

	commit, err := r.LookupCommit(head)
	if err != nil {
		return nil, err
	}
	defer commit.Free()

	author := commit.Author()
	info.Last = LastCommit{
		ID:      head.String(),
		Message: commit.Summary(),
		Author:  author.Name,
		Date:    author.When,
	}

	info.Commits, err = r.countCommits(ctx, head)
	if err != nil {
		return nil, err
	}

	return info, nil
}

func (r *Repository) branch() (string, error) {
	detached, err := r.repo.IsHeadDetached()
	if err != nil {
		return "", wrapErr("inspect HEAD", err)
	}

	if detached {
		return DetachedHead, nil
	}

	ref, err := r.repo.Head()
	if err != nil {
		return "", wrapErr("get HEAD", err)
	}
	defer ref.Free()

	return ref.Shorthand(), nil
}

func (r *Repository) remotes() ([]Remote, error) {
	names, err := r.repo.Remotes.List()
	if err != nil {
		return nil, wrapErr("list remotes", err)
	}

	sort.Strings(names)

	remotes := make([]Remote, 0, len(names))

	for _, name := range names {
		remote, lookupErr := r.repo.Remotes.Lookup(name)
		if lookupErr != nil {
			return nil, wrapErr("lookup remote "+name, lookupErr)
		}

		remotes = append(remotes, Remote{Name: name, URL: remote.Url()})
		remote.Free()
	}

	return remotes, nil
}

func (r *Repository) countCommits(ctx context.Context, head Hash) (int, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return 0, wrapErr("create revwalk", err)
	}
	defer walk.Free()

	err = walk.Push(head.ToOid())
	if err != nil {
		return 0, wrapErr("push HEAD", err)
	}

	count := 0

	err = drainWalk(ctx, walk, func(*git2go.Oid) (bool, error) {
		count++

		return true, nil
	})

	return count, err
}
