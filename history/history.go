// Package history provides the implementation for tracking and persisting watched channels.
package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/metafates/gache"
	"github.com/streamer459/streamingdev-sub000/filesystem"
	"github.com/streamer459/streamingdev-sub000/util"
	"github.com/streamer459/streamingdev-sub000/where"
)

// SavedChannel represents a single watched-channel entry preserved in the user's history.
type SavedChannel struct {
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Quality   string    `json:"quality"`
	WatchedAt time.Time `json:"watched_at"`
	Visits    int       `json:"visits"`
}

func (s *SavedChannel) encode() string {
	return strings.ToLower(s.Name)
}

func (s *SavedChannel) String() string {
	return fmt.Sprintf("%s - %s (%s)", s.Name, s.Title, util.Quantify(s.Visits, "visit", "visits"))
}

// cacher provides an abstracted, disk-backed registry for watched-channel records.
var cacher = gache.New[map[string]*SavedChannel](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of watched-channel records from the persistent store.
func Get() (map[string]*SavedChannel, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedChannel), nil
	}
	return cached, nil
}

// Save upserts a watched-channel record, bumping its visit count and timestamp.
func Save(channel, title, quality string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := &SavedChannel{
		Name:      channel,
		Title:     title,
		Quality:   quality,
		WatchedAt: time.Now(),
		Visits:    1,
	}

	if existing, exists := saved[record.encode()]; exists {
		record.Visits = existing.Visits + 1
		// A rewatch without an explicit quality switch keeps the previous choice.
		if quality == "" {
			record.Quality = existing.Quality
		}
	}

	saved[record.encode()] = record
	return cacher.Set(saved)
}

// Remove permanently deletes a specific watched-channel record from the registry.
func Remove(channel *SavedChannel) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, channel.encode())
	return cacher.Set(saved)
}
