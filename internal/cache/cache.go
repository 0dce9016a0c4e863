// Package cache provides a content-addressed filesystem cache for downloaded media
// assets, currently profile avatars.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/streamer459/streamingdev-sub000/filesystem"
	"github.com/streamer459/streamingdev-sub000/where"
)

const TTL = 7 * 24 * time.Hour

// GenerateKey derives a deterministic cache filename from a source URL, preserving the
// extension so downstream tooling can sniff the media type from the path.
func GenerateKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:]) + filepath.Ext(url)
}

// Path returns the absolute location of a cached asset, reporting whether a fresh copy
// exists on disk.
func Path(key string) (string, bool) {
	path := filepath.Join(where.Avatars(), key)

	info, err := filesystem.API().Stat(path)
	if err != nil || time.Since(info.ModTime()) > TTL {
		return path, false
	}
	return path, true
}

// Write persists asset bytes to the cache using an atomic file swap and returns the
// final location.
func Write(key string, data []byte) (string, error) {
	path := filepath.Join(where.Avatars(), key)
	tmpPath := path + ".tmp"

	if err := filesystem.API().WriteFile(tmpPath, data, 0644); err != nil {
		return "", err
	}
	if err := filesystem.API().Rename(tmpPath, path); err != nil {
		return "", err
	}
	return path, nil
}

// CollectGarbage initializes an asynchronous background task to prune expired cache
// entries from the filesystem.
func CollectGarbage() {
	go func() {
		dir := where.Avatars()
		_ = filesystem.API().Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			if time.Since(info.ModTime()) > TTL {
				_ = filesystem.API().Remove(path)
			}
			return nil
		})
	}()
}
