// Package filesystem routes every disk access through a swappable afero backend.
package filesystem

import (
	"io"
	"os"
)

// GacheFs bridges the afero backend to the gache.FileSystem interface so the
// durable caches (profiles, queries, version checks) honor the active backend.
type GacheFs struct{}

// OpenFile opens a cache file on the current backend.
func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

// MkdirAll creates a cache directory on the current backend.
func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
