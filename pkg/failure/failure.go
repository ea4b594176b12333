// Package failure defines the error taxonomy shared by the counting and
// diffing packages, and the record type used to collect per-file and
// per-revision errors without aborting a run.
package failure

import (
	"errors"
	"fmt"
	"io/fs"
)

// Sentinel errors for the error taxonomy.
var (
	// ErrNotFound indicates a path or commit is absent.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied indicates content exists but cannot be read.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnclassifiable indicates no language grammar matched; counting degrades to plain text.
	ErrUnclassifiable = errors.New("language undetected")
	// ErrMalformedGrammar indicates a registry entry with inconsistent delimiters.
	ErrMalformedGrammar = errors.New("malformed grammar")
	// ErrVCSFailure indicates the version-control backend failed.
	ErrVCSFailure = errors.New("vcs failure")
)

// Kind names used in reports.
const (
	KindNotFound         = "not_found"
	KindPermissionDenied = "permission_denied"
	KindUnclassifiable   = "unclassifiable"
	KindMalformedGrammar = "malformed_grammar"
	KindVCSFailure       = "vcs_failure"
	KindOther            = "error"
)

// Failure is a collected error scoped to one file of one revision, or to a
// revision pair when Path is empty.
type Failure struct {
	Revision string
	Path     string
	Err      error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	switch {
	case f.Path != "" && f.Revision != "":
		return fmt.Sprintf("%s@%s: %v", f.Path, shortRev(f.Revision), f.Err)
	case f.Path != "":
		return fmt.Sprintf("%s: %v", f.Path, f.Err)
	case f.Revision != "":
		return fmt.Sprintf("%s: %v", shortRev(f.Revision), f.Err)
	default:
		return f.Err.Error()
	}
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Kind returns the taxonomy kind of the wrapped error.
func (f *Failure) Kind() string {
	return KindOf(f.Err)
}

// New creates a Failure, mapping filesystem errors onto the taxonomy.
func New(revision, path string, err error) *Failure {
	return &Failure{Revision: revision, Path: path, Err: Classify(err)}
}

// Classify maps well-known filesystem errors onto the taxonomy sentinels.
// Errors already carrying a sentinel are returned unchanged.
func Classify(err error) error {
	if err == nil || KindOf(err) != KindOther {
		return err
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return err
	}
}

// KindOf returns the stable kind name of err.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, ErrUnclassifiable):
		return KindUnclassifiable
	case errors.Is(err, ErrMalformedGrammar):
		return KindMalformedGrammar
	case errors.Is(err, ErrVCSFailure):
		return KindVCSFailure
	default:
		return KindOther
	}
}

const shortRevLen = 10

func shortRev(rev string) string {
	if len(rev) > shortRevLen {
		return rev[:shortRevLen]
	}

	return rev
}
