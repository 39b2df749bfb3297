package gateways

import (
	"context"
	"io"
)

// ExportStore holds the bytes of uploaded legacy exports.
type ExportStore interface {
	// Put stores content under key.
	Put(ctx context.Context, key string, content io.Reader, size int64, contentType string) error

	// Get reads the full content stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)
}
