// Package prefs persists small per-user client state: the per-channel quality
// preference and the random viewer identifier the platform uses to deduplicate
// join/leave calls.
package prefs

import (
	"strings"

	"github.com/google/uuid"
	"github.com/metafates/gache"
	"github.com/samber/mo"
	"github.com/streamer459/streamingdev-sub000/filesystem"
	"github.com/streamer459/streamingdev-sub000/where"
)

// qualityCacher stores the channel → quality map chosen by explicit user switches.
var qualityCacher = gache.New[map[string]string](
	&gache.Options{
		Path:       where.Quality(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// viewerCacher stores the persistent viewer identifier, generated on first use.
var viewerCacher = gache.New[string](
	&gache.Options{
		Path:       where.Viewer(),
		FileSystem: &filesystem.GacheFs{},
	},
)

func channelKey(channel string) string {
	return strings.ToLower(strings.TrimSpace(channel))
}

// Quality returns the saved quality preference for a channel, if any.
func Quality(channel string) mo.Option[string] {
	cached, expired, err := qualityCacher.Get()
	if err != nil || expired || cached == nil {
		return mo.None[string]()
	}

	quality, ok := cached[channelKey(channel)]
	if !ok || quality == "" {
		return mo.None[string]()
	}
	return mo.Some(quality)
}

// SetQuality persists the quality preference for a channel, replacing any prior value.
func SetQuality(channel, quality string) error {
	cached, expired, err := qualityCacher.Get()
	if err != nil || expired || cached == nil {
		cached = make(map[string]string)
	}

	cached[channelKey(channel)] = quality
	return qualityCacher.Set(cached)
}

// ForgetQuality removes the saved preference for a channel.
func ForgetQuality(channel string) error {
	cached, expired, err := qualityCacher.Get()
	if err != nil || expired || cached == nil {
		return nil
	}

	delete(cached, channelKey(channel))
	return qualityCacher.Set(cached)
}

// ViewerID returns the persistent viewer identifier, generating and persisting a new
// one on first use. The identifier survives restarts so the platform can recognize
// repeated joins from this client.
func ViewerID() (string, error) {
	cached, _, err := viewerCacher.Get()
	if err == nil && cached != "" {
		return cached, nil
	}

	id := uuid.NewString()
	if err := viewerCacher.Set(id); err != nil {
		return "", err
	}
	return id, nil
}
