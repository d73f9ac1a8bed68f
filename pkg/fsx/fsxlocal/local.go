// Package fsxlocal stores files on local disk under a base directory.
package fsxlocal

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/Abraxas-365/cvscreen/pkg/fsx"
)

type LocalFileSystem struct {
	baseDir string
}

// NewLocalFileSystem creates a local store rooted at baseDir. The directory
// is created on first write if missing.
func NewLocalFileSystem(baseDir string) *LocalFileSystem {
	return &LocalFileSystem{baseDir: baseDir}
}

var _ fsx.FileSystem = (*LocalFileSystem)(nil)

func (l *LocalFileSystem) Join(parts ...string) string {
	return filepath.Join(parts...)
}

func (l *LocalFileSystem) resolve(path string) string {
	return filepath.Join(l.baseDir, path)
}

func (l *LocalFileSystem) WriteFile(ctx context.Context, path string, data []byte) error {
	full := l.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func (l *LocalFileSystem) WriteFileStream(ctx context.Context, path string, r io.Reader) error {
	full := l.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	f, err := os.Create(full)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (l *LocalFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(l.resolve(path))
}

func (l *LocalFileSystem) ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error) {
	return os.Open(l.resolve(path))
}

func (l *LocalFileSystem) DeleteFile(ctx context.Context, path string) error {
	err := os.Remove(l.resolve(path))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
