// Package logsource opens detector logs for analysis, transparently
// decompressing lz4-framed logs.
package logsource

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// lz4Extension marks compressed logs by name.
const lz4Extension = ".lz4"

// lz4Magic is the little-endian lz4 frame magic number 0x184D2204.
var lz4Magic = []byte{0x04, 0x22, 0x4D, 0x18}

// ErrNotRegular is returned when the path is a directory or device.
var ErrNotRegular = errors.New("log path is not a regular file")

// Source is an open log stream.
type Source struct {
	// Name is the path, or "-" for standard input.
	Name string
	// Size is the on-disk size in bytes, or -1 when unknown.
	Size int64
	// Compressed is true when the stream is lz4-decoded.
	Compressed bool

	r      io.Reader
	closer io.Closer
}

// Read implements io.Reader over the decoded log contents.
func (s *Source) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

// Close releases the underlying file. Closing a stdin source is a no-op.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}

	err := s.closer.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", s.Name, err)
	}

	return nil
}

// Open opens the log at path, or standard input for "-".
func Open(path string) (*Source, error) {
	if path == Stdin {
		return wrap(Stdin, -1, os.Stdin, nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	info, statErr := file.Stat()
	if statErr != nil {
		file.Close()

		return nil, fmt.Errorf("stat log: %w", statErr)
	}

	if !info.Mode().IsRegular() {
		file.Close()

		return nil, fmt.Errorf("%w: %s", ErrNotRegular, path)
	}

	return wrap(path, info.Size(), file, file)
}

// NewReader wraps an arbitrary stream, decoding it when it carries the lz4
// frame magic.
func NewReader(name string, r io.Reader) (*Source, error) {
	return wrap(name, -1, r, nil)
}

func wrap(name string, size int64, r io.Reader, closer io.Closer) (*Source, error) {
	br := bufio.NewReader(r)

	compressed := strings.HasSuffix(name, lz4Extension)
	if !compressed {
		head, peekErr := br.Peek(len(lz4Magic))
		if peekErr != nil && !errors.Is(peekErr, io.EOF) {
			if closer != nil {
				closer.Close()
			}

			return nil, fmt.Errorf("read log header: %w", peekErr)
		}

		compressed = bytes.Equal(head, lz4Magic)
	}

	src := &Source{Name: name, Size: size, Compressed: compressed, r: br, closer: closer}
	if compressed {
		src.r = lz4.NewReader(br)
	}

	return src, nil
}
