package snapshot

import (
	"context"
	"crypto/sha1" //nolint:gosec // git object ids are SHA-1.
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/Sumatoshi-tech/locdiff/pkg/failure"
	"github.com/Sumatoshi-tech/locdiff/pkg/filter"
)

// Entry is one file listed by a Source.
type Entry struct {
	Path string

	// Size in bytes, or zero when unknown before reading.
	Size int64

	// Hash is a precomputed content id. When empty the builder hashes the content.
	Hash string

	// Err is a listing error for this path; it is recorded as a failure.
	Err error
}

// Source lists and reads the files of one revision.
type Source interface {
	Revision() string
	ListFiles(ctx context.Context) ([]Entry, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
}

// BlobHash returns the git blob object id of content, so hashes of on-disk
// files compare equal to those of committed blobs.
func BlobHash(content []byte) string {
	h := sha1.New() //nolint:gosec // git object ids are SHA-1.
	h.Write([]byte("blob " + strconv.Itoa(len(content)) + "\x00"))
	h.Write(content)

	return hex.EncodeToString(h.Sum(nil))
}

// WorkTree is a Source over an on-disk directory.
type WorkTree struct {
	root   string
	filter *filter.Filter
}

// NewWorkTree creates a directory source. When flt is non-nil, ignored
// directories are pruned during the walk.
func NewWorkTree(root string, flt *filter.Filter) *WorkTree {
	return &WorkTree{root: root, filter: flt}
}

// Revision returns WorkTreeRevision.
func (w *WorkTree) Revision() string {
	return WorkTreeRevision
}

// ListFiles walks the directory in lexical order. Unreadable subdirectories
// are reported as entries with Err set.
func (w *WorkTree) ListFiles(ctx context.Context) ([]Entry, error) {
	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", w.root, failure.Classify(err))
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", failure.ErrNotFound, w.root)
	}

	var entries []Entry

	walkErr := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return relErr
		}

		rel = filepath.ToSlash(rel)

		if err != nil {
			if rel == "." {
				return err
			}

			entries = append(entries, Entry{Path: rel, Err: err})

			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			if rel != "." && w.filter != nil && !w.filter.CheckDir(rel).Eligible {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		fi, infoErr := d.Info()
		if infoErr != nil {
			entries = append(entries, Entry{Path: rel, Err: infoErr})

			return nil
		}

		entries = append(entries, Entry{Path: rel, Size: fi.Size()})

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", w.root, failure.Classify(walkErr))
	}

	return entries, nil
}

// ReadFile reads a file relative to the root.
func (w *WorkTree) ReadFile(ctx context.Context, path string) ([]byte, error) {
	ctxErr := ctx.Err()
	if ctxErr != nil {
		return nil, ctxErr
	}

	data, err := os.ReadFile(filepath.Join(w.root, filepath.FromSlash(path)))
	if err != nil {
		return nil, failure.Classify(err)
	}

	return data, nil
}

// ErrFileNotFound is returned by MapSource for unknown paths.
var ErrFileNotFound = fmt.Errorf("%w: file", failure.ErrNotFound)

// MapSource is an in-memory Source, used for inline content and tests.
type MapSource struct {
	revision string
	files    map[string][]byte
}

// NewMapSource creates an in-memory source for the given revision.
func NewMapSource(revision string, files map[string][]byte) *MapSource {
	return &MapSource{revision: revision, files: files}
}

// Revision returns the configured revision id.
func (m *MapSource) Revision() string {
	return m.revision
}

// ListFiles returns the paths in lexical order.
func (m *MapSource) ListFiles(ctx context.Context) ([]Entry, error) {
	ctxErr := ctx.Err()
	if ctxErr != nil {
		return nil, ctxErr
	}

	entries := make([]Entry, 0, len(m.files))
	for p, data := range m.files {
		entries = append(entries, Entry{Path: p, Size: int64(len(data))})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	return entries, nil
}

// ReadFile returns a file's content.
func (m *MapSource) ReadFile(ctx context.Context, path string) ([]byte, error) {
	ctxErr := ctx.Err()
	if ctxErr != nil {
		return nil, ctxErr
	}

	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	return data, nil
}
