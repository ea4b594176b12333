// Package filter decides whether a file is eligible for line counting.
package filter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/src-d/enry/v2"
)

// SniffLength is the number of leading bytes inspected for binary detection.
const SniffLength = 8192

// ErrInvalidPattern indicates an ignore pattern failed to compile.
var ErrInvalidPattern = errors.New("invalid ignore pattern")

// Reason explains why a file is ineligible.
type Reason string

// Ineligibility reasons.
const (
	ReasonIgnored  Reason = "ignored"
	ReasonVendored Reason = "vendored"
	ReasonTooLarge Reason = "too_large"
	ReasonBinary   Reason = "binary"
	ReasonLanguage Reason = "language"
)

// Verdict is the outcome of an eligibility check. Detail names the matched
// pattern or the offending size.
type Verdict struct {
	Eligible bool
	Reason   Reason
	Detail   string
}

var eligible = Verdict{Eligible: true}

// defaultIgnorePatterns covers VCS metadata, build caches, dependency
// directories and compiled artefacts.
var defaultIgnorePatterns = []string{
	`(^|/)\.git/`,
	`(^|/)\.svn/`,
	`(^|/)\.hg/`,
	`(^|/)__pycache__/`,
	`\.py[cod]$`,
	`\.(so|dll|exe|o|a|lib|dylib)$`,
	`\.(class|jar|war|ear)$`,
	`\.(zip|tar|gz|bz2|xz|7z|rar)$`,
	`(^|/)node_modules/`,
	`(^|/)vendor/`,
	`(^|/)\.?venv/`,
	`(^|/)\.?env/`,
	`(^|/)\.idea/`,
	`(^|/)\.vscode/`,
	`(^|/)\.DS_Store$`,
	`(^|/)Thumbs\.db$`,
}

// DefaultIgnorePatterns returns a copy of the built-in ignore patterns.
func DefaultIgnorePatterns() []string {
	return append([]string(nil), defaultIgnorePatterns...)
}

// Options configures a Filter.
type Options struct {
	// IgnorePatterns are appended after the defaults, in order.
	IgnorePatterns []string

	// NoDefaultIgnores drops the built-in patterns.
	NoDefaultIgnores bool

	// MaxFileSize in bytes; zero disables the limit.
	MaxFileSize int64

	// SkipVendored also excludes paths enry classifies as vendored.
	SkipVendored bool
}

// Filter applies ignore patterns, a size limit and binary sniffing.
// It is safe for concurrent use.
type Filter struct {
	patterns     []*regexp.Regexp
	maxFileSize  int64
	skipVendored bool
}

// New compiles the configured patterns. Patterns match case-insensitively
// anywhere in the slash-separated relative path.
func New(opts Options) (*Filter, error) {
	var sources []string
	if !opts.NoDefaultIgnores {
		sources = append(sources, defaultIgnorePatterns...)
	}

	sources = append(sources, opts.IgnorePatterns...)

	patterns := make([]*regexp.Regexp, 0, len(sources))

	for _, src := range sources {
		re, err := regexp.Compile("(?i)" + src)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, src, err)
		}

		patterns = append(patterns, re)
	}

	return &Filter{
		patterns:     patterns,
		maxFileSize:  opts.MaxFileSize,
		skipVendored: opts.SkipVendored,
	}, nil
}

// CheckPath tests path against the ignore patterns. The first match wins.
func (f *Filter) CheckPath(path string) Verdict {
	path = strings.ReplaceAll(path, "\\", "/")

	for _, re := range f.patterns {
		if re.MatchString(path) {
			return Verdict{Reason: ReasonIgnored, Detail: re.String()}
		}
	}

	if f.skipVendored && enry.IsVendor(path) {
		return Verdict{Reason: ReasonVendored, Detail: path}
	}

	return eligible
}

// CheckDir reports whether a directory may contain eligible files, letting
// tree walkers prune ignored directories early.
func (f *Filter) CheckDir(dir string) Verdict {
	return f.CheckPath(strings.TrimSuffix(dir, "/") + "/")
}

// CheckSize rejects files above the configured size limit.
func (f *Filter) CheckSize(size int64) Verdict {
	if f.maxFileSize > 0 && size > f.maxFileSize {
		return Verdict{Reason: ReasonTooLarge, Detail: fmt.Sprintf("%d > %d bytes", size, f.maxFileSize)}
	}

	return eligible
}

// CheckContent rejects binary content.
func (f *Filter) CheckContent(sample []byte) Verdict {
	if IsBinary(sample) {
		return Verdict{Reason: ReasonBinary}
	}

	return eligible
}

// IsEligible reports whether both the path and the content sample pass.
func (f *Filter) IsEligible(path string, sample []byte) bool {
	return f.CheckPath(path).Eligible && f.CheckContent(sample).Eligible
}

// IsBinary reports whether a NUL byte occurs within the first SniffLength bytes.
func IsBinary(data []byte) bool {
	sniff := data
	if len(sniff) > SniffLength {
		sniff = sniff[:SniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}
