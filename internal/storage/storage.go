// Package storage persists uploaded images on the local filesystem or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	ErrNotFound    = errors.New("object not found")
	ErrInvalidName = errors.New("invalid object name")
)

// Store saves and loads objects by flat name.
type Store interface {
	// Put stores data under name and returns a location for it.
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
	// Get returns the object stored under name, or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)
}

// checkName accepts only single path elements so that names can never leave
// the store's root.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || path.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
