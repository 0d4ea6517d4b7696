package sink

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/GriffinCanCode/minitel/internal/resource"
	"github.com/klauspost/compress/gzip"
)

// File appends JSON-lines telemetry to a file. Paths ending in .gz are
// gzip-compressed transparently.
type File struct {
	*JSONL
	file    *os.File
	gz      *gzip.Writer
	closers []io.Closer
}

// NewFile opens (or creates) path for appending and returns a file sink.
func NewFile(path string, res *resource.Resource) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry file: %w", err)
	}

	sink := &File{file: f}
	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		sink.gz = gzip.NewWriter(f)
		w = sink.gz
		sink.closers = append(sink.closers, sink.gz)
	}
	sink.closers = append(sink.closers, f)
	sink.JSONL = NewJSONL(w, res)
	return sink, nil
}

// Close flushes compressed output and closes the file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var first error
	for _, c := range f.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
