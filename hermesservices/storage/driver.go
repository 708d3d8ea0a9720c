package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("file not found")

type Driver interface {
	Put(ctx context.Context, filePath string, payload io.Reader) error
	Get(ctx context.Context, filePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, filePath string) error
	Exists(ctx context.Context, filePath string) (bool, error)
	// List returns every file path under prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	IsReady(ctx context.Context) error
}
