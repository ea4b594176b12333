package gitlib

import (
	"context"
	"fmt"
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// ParseTime parses a time string in various formats:
// - Duration relative to now (e.g. "24h")
// - RFC3339 (e.g. "2024-01-01T00:00:00Z")
// - Date only (e.g. "2024-01-01").
func ParseTime(s string) (time.Time, error) {
	d, durationErr := time.ParseDuration(s)
	if durationErr == nil {
		return time.Now().Add(-d), nil
	}

	parsedTime, rfc3339Err := time.Parse(time.RFC3339, s)
	if rfc3339Err == nil {
		return parsedTime, nil
	}

	parsedTime, dateOnlyErr := time.Parse(time.DateOnly, s)
	if dateOnlyErr == nil {
		return parsedTime, nil
	}

	return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimeFormat, s)
}

// parseEnd parses a range end. A bare date covers the whole day.
func parseEnd(s string) (time.Time, error) {
	if day, err := time.Parse(time.DateOnly, s); err == nil {
		return day.Add(24*time.Hour - time.Nanosecond), nil
	}

	return ParseTime(s)
}

// CommitsBetween lists the commits of a range, oldest first.
//
// When both bounds parse as times, the result is every first-parent commit
// reachable from HEAD whose committer time lies in [from, to]. Otherwise
// both bounds are revisions: the result starts with from and follows the
// first-parent chain up to and including to.
func (r *Repository) CommitsBetween(ctx context.Context, from, to string) ([]Hash, error) {
	start, startErr := ParseTime(from)
	end, endErr := parseEnd(to)

	switch {
	case startErr == nil && endErr == nil:
		if end.Before(start) {
			return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, from, to)
		}

		return r.commitsInWindow(ctx, start, end)
	case startErr == nil || endErr == nil:
		return nil, fmt.Errorf("%w: %q, %q", ErrMixedBounds, from, to)
	default:
		return r.commitsInRange(ctx, from, to)
	}
}

func (r *Repository) commitsInRange(ctx context.Context, from, to string) ([]Hash, error) {
	fromHash, err := r.Resolve(from)
	if err != nil {
		return nil, err
	}

	toHash, err := r.Resolve(to)
	if err != nil {
		return nil, err
	}

	if fromHash == toHash {
		return []Hash{fromHash}, nil
	}

	descends, err := r.repo.DescendantOf(toHash.ToOid(), fromHash.ToOid())
	if err != nil {
		return nil, wrapErr("check ancestry", err)
	}

	if !descends {
		return nil, fmt.Errorf("%w: %s..%s", ErrNotAncestor, from, to)
	}

	walk, err := r.firstParentWalk(toHash)
	if err != nil {
		return nil, err
	}
	defer walk.Free()

	err = walk.Hide(fromHash.ToOid())
	if err != nil {
		return nil, wrapErr("hide "+from, err)
	}

	commits := []Hash{}

	err = drainWalk(ctx, walk, func(oid *git2go.Oid) (bool, error) {
		commits = append(commits, HashFromOid(oid))

		return true, nil
	})
	if err != nil {
		return nil, err
	}

	commits = append(commits, fromHash)
	reverseHashes(commits)

	return commits, nil
}

func (r *Repository) commitsInWindow(ctx context.Context, start, end time.Time) ([]Hash, error) {
	head, err := r.Head()
	if err != nil {
		return nil, err
	}

	walk, err := r.firstParentWalk(head)
	if err != nil {
		return nil, err
	}
	defer walk.Free()

	var commits []Hash

	err = drainWalk(ctx, walk, func(oid *git2go.Oid) (bool, error) {
		commit, lookupErr := r.repo.LookupCommit(oid)
		if lookupErr != nil {
			return false, wrapErr("lookup commit "+oid.String(), lookupErr)
		}
		defer commit.Free()

		when := commit.Committer().When
		if when.Before(start) {
			return false, nil
		}

		if !when.After(end) {
			commits = append(commits, HashFromOid(oid))
		}

		return true, nil
	})
	if err != nil {
		return nil, err
	}

	reverseHashes(commits)

	return commits, nil
}

func (r *Repository) firstParentWalk(tip Hash) (*git2go.RevWalk, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, wrapErr("create revwalk", err)
	}

	err = walk.Push(tip.ToOid())
	if err != nil {
		walk.Free()

		return nil, wrapErr("push "+tip.String(), err)
	}

	// Topological order keeps parents after children when clocks disagree.
	walk.Sorting(git2go.SortTime | git2go.SortTopological)
	walk.SimplifyFirstParent()

	return walk, nil
}

// drainWalk feeds each walked oid to fn until the walk ends or fn returns false.
func drainWalk(ctx context.Context, walk *git2go.RevWalk, fn func(*git2go.Oid) (bool, error)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		oid := new(git2go.Oid)

		err := walk.Next(oid)
		if git2go.IsErrorCode(err, git2go.ErrorCodeIterOver) {
			return nil
		}

		if err != nil {
			return wrapErr("walk commits", err)
		}

		more, err := fn(oid)
		if err != nil {
			return err
		}

		if !more {
			return nil
		}
	}
}

func reverseHashes(hashes []Hash) {
	for i, j := 0, len(hashes)-1; i < j; i, j = i+1, j-1 {
		hashes[i], hashes[j] = hashes[j], hashes[i]
	}
}
