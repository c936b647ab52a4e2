// Package artifact opens output files for the batch tools. Targets named
// *.zst are compressed transparently on the way out.
package artifact

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

type writeCloser struct {
	f   *os.File
	enc *zstd.Encoder
}

func (w *writeCloser) Write(p []byte) (int, error) {
	if w.enc != nil {
		return w.enc.Write(p)
	}
	return w.f.Write(p)
}

func (w *writeCloser) Close() error {
	if w.enc != nil {
		if err := w.enc.Close(); err != nil {
			w.f.Close()
			return err
		}
	}
	return w.f.Close()
}

// Create opens path for writing, wrapping it in a zstd encoder when the
// name carries a .zst suffix.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".zst") {
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			f.Close()
			return nil, err
		}
		return &writeCloser{f: f, enc: enc}, nil
	}
	return &writeCloser{f: f}, nil
}
