// Package fsx abstracts file storage behind a small interface so services
// don't care whether bytes live on local disk or in S3.
package fsx

import (
	"context"
	"io"
)

// FileReader is the read-only subset for consumers that never write.
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error)
}

// FileSystem is the full storage contract.
type FileSystem interface {
	FileReader

	// Join builds a storage path from segments using the backend's separator.
	Join(parts ...string) string

	WriteFile(ctx context.Context, path string, data []byte) error
	WriteFileStream(ctx context.Context, path string, r io.Reader) error
	DeleteFile(ctx context.Context, path string) error
}
