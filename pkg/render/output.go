package render

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
)

const compressedSuffix = ".lz4"

// OpenOutput opens the destination for rendered output. An empty path or
// "-" writes to stdout and closing it is a no-op. Paths ending in ".lz4"
// are written as an LZ4 frame.
func OpenOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output %s: %w", path, err)
	}

	if strings.HasSuffix(strings.ToLower(path), compressedSuffix) {
		return &compressedFile{Writer: lz4.NewWriter(f), file: f}, nil
	}

	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

type compressedFile struct {
	*lz4.Writer
	file *os.File
}

// Close flushes the LZ4 frame, then closes the file.
func (c *compressedFile) Close() error {
	return errors.Join(c.Writer.Close(), c.file.Close())
}
