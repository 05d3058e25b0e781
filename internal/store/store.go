// store package opens and creates image files on disk.
//
// Files whose name ends in ".zst" are transparently zstd compressed.
// Writers remove their file when the write is abandoned or fails to
// complete, so a path either holds a complete file or nothing.
package store

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const compressedExt = ".zst"

// Reports whether filename will be zstd compressed
func Compressed(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), compressedExt)
}

// Strips a trailing ".zst" so callers can look at the real extension
func BaseExt(filename string) string {
	if Compressed(filename) {
		filename = filename[:len(filename)-len(compressedExt)]
	}
	return strings.ToLower(filepath.Ext(filename))
}

type reader struct {
	io.Reader
	f   *os.File
	dec *zstd.Decoder
}

func (r *reader) Close() error {
	if r.dec != nil {
		r.dec.Close()
	}
	return r.f.Close()
}

// Opens filename for reading. Plain files are returned as *os.File (and so
// are seekable); compressed files are decoded on the fly.
func Open(filename string) (io.ReadCloser, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	if !Compressed(filename) {
		return f, nil
	}

	dec, err := zstd.NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd reader for %s: %w", filename, err)
	}
	return &reader{Reader: dec, f: f, dec: dec}, nil
}

// Writer is a file being written. Either Close or Abort must be called.
type Writer struct {
	path string
	f    *os.File
	w    io.Writer
	enc  *zstd.Encoder
	done bool
}

// Creates (or truncates) filename for writing
func Create(filename string) (*Writer, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	w := &Writer{path: filename, f: f, w: f}
	if Compressed(filename) {
		enc, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			os.Remove(filename)
			return nil, fmt.Errorf("zstd writer for %s: %w", filename, err)
		}
		w.enc, w.w = enc, enc
	}
	return w, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

// Finishes the file. If anything fails the file is removed.
func (w *Writer) Close() error {
	if w.done {
		return nil
	}
	w.done = true

	var err error
	if w.enc != nil {
		err = w.enc.Close()
	}
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(w.path)
		return fmt.Errorf("closing %s: %w", w.path, err)
	}
	return nil
}

// Abandons the file and removes it from disk
func (w *Writer) Abort() {
	if w.done {
		return
	}
	w.done = true

	if w.enc != nil {
		w.enc.Close()
	}
	w.f.Close()
	os.Remove(w.path)
}
