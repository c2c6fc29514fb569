package openapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LoadFile reads an OpenAPI document from disk.
func LoadFile(ctx context.Context, path string) (Document, error) {
	if path == "" {
		return Document{}, errors.New("openapi loader: file path is required")
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	clean := filepath.Clean(path)
	data, err := os.ReadFile(clean)
	if err != nil {
		return Document{}, fmt.Errorf("openapi loader: read %s: %w", clean, err)
	}
	return NewDocument(clean, data)
}

// LoadFS reads an OpenAPI document from an fs.FS.
func LoadFS(ctx context.Context, fsys fs.FS, name string) (Document, error) {
	if fsys == nil {
		return Document{}, errors.New("openapi loader: filesystem is not configured")
	}
	if name == "" {
		return Document{}, errors.New("openapi loader: fs path is required")
	}
	select {
	case <-ctx.Done():
		return Document{}, ctx.Err()
	default:
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Document{}, fmt.Errorf("openapi loader: read %s: %w", name, err)
	}
	return NewDocument(name, data)
}
