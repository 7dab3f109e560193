package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("archived file not found")

// Archive keeps immutable copies of import payloads and settlement exports.
type Archive interface {
	// Save writes the content under path and returns the cleaned key
	Save(ctx context.Context, path string, content io.Reader) (string, error)

	// Open retrieves a file
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)
}
