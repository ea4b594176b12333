package report

import (
	"errors"
	"fmt"
)

// ErrUnknownStatus is returned when decoding an unrecognized status name.
var ErrUnknownStatus = errors.New("unknown status")

// Status is the overall outcome of a run.
type Status int

const (
	// StatusOK means every file and pair was processed.
	StatusOK Status = iota
	// StatusPartial means results were produced but some errors were collected.
	StatusPartial
	// StatusFailed means no result could be produced.
	StatusFailed
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailed  = 1
	ExitPartial = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for _, candidate := range []Status{StatusOK, StatusPartial, StatusFailed} {
		if candidate.String() == string(text) {
			*s = candidate

			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrUnknownStatus, text)
}

// ExitCode maps the status to a process exit code.
func (s Status) ExitCode() int {
	switch s {
	case StatusOK:
		return ExitOK
	case StatusPartial:
		return ExitPartial
	default:
		return ExitFailed
	}
}

// Worst returns the more severe of two statuses.
func Worst(a, b Status) Status {
	return max(a, b)
}
