package gen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"
)

// marker is prepended to every generated file.
const marker = "Code generated by crudo. DO NOT EDIT."

// Metrics describes a completed generation run.
type Metrics struct {
	// Files is the number of files written.
	Files int
	// Bytes is the total number of bytes written.
	Bytes int64
}

// writer renders files to the target directory. It is safe for
// concurrent use.
type writer struct {
	dir    string
	header string

	mu      sync.Mutex
	metrics Metrics
}

func newWriter(dir, header string) *writer {
	return &writer{dir: dir, header: header}
}

// write renders the file, runs it through goimports and stores it under
// the target directory.
func (w *writer) write(ctx context.Context, name string, f *jen.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.header != "" {
		f.HeaderComment(w.header)
	}
	f.HeaderComment(marker)
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	src, err := imports.Process(name, buf.Bytes(), nil)
	if err != nil {
		return fmt.Errorf("format %s: %w", name, err)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	target := filepath.Join(w.dir, name)
	if err := os.WriteFile(target, src, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	w.mu.Lock()
	w.metrics.Files++
	w.metrics.Bytes += int64(len(src))
	w.mu.Unlock()
	return nil
}

// Metrics returns a copy of the accumulated metrics.
func (w *writer) Metrics() Metrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}
