package gitlib

import (
	"errors"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/Sumatoshi-tech/locdiff/pkg/failure"
)

var (
	// ErrInvalidHash is returned for a malformed object id.
	ErrInvalidHash = errors.New("invalid hash")
	// ErrInvalidTimeFormat is returned when a time string cannot be parsed.
	ErrInvalidTimeFormat = errors.New("cannot parse time")
	// ErrRemoteNotSupported is returned when a remote repository URI is provided.
	ErrRemoteNotSupported = errors.New("remote repositories not supported")
	// ErrNotAncestor is returned when a range start is not an ancestor of its end.
	ErrNotAncestor = errors.New("start revision is not an ancestor of end revision")
	// ErrMixedBounds is returned when one range bound is a date and the other a revision.
	ErrMixedBounds = errors.New("range bounds must both be dates or both be revisions")
	// ErrInvalidRange is returned when a date range ends before it starts.
	ErrInvalidRange = errors.New("range end precedes range start")
)

// wrapErr maps a libgit2 error onto the failure taxonomy.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}

	if git2go.IsErrorCode(err, git2go.ErrorCodeNotFound) ||
		git2go.IsErrorCode(err, git2go.ErrorCodeInvalidSpec) ||
		git2go.IsErrorCode(err, git2go.ErrorCodeAmbiguous) {
		return fmt.Errorf("%s: %w: %w", op, failure.ErrNotFound, err)
	}

	return fmt.Errorf("%s: %w: %w", op, failure.ErrVCSFailure, err)
}
