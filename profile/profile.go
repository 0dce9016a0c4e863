// Package profile serves channel profiles from a multi-day disk cache, falling back to
// the platform API on misses. Entries are dropped eagerly when the push channel reports
// a profile update, so the long expiry never shows stale bios.
package profile

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/samber/mo"
	"github.com/streamer459/streamingdev-sub000/api"
	"github.com/streamer459/streamingdev-sub000/constant"
	"github.com/streamer459/streamingdev-sub000/filesystem"
	"github.com/streamer459/streamingdev-sub000/internal/cache"
	"github.com/streamer459/streamingdev-sub000/log"
	"github.com/streamer459/streamingdev-sub000/network"
	"github.com/streamer459/streamingdev-sub000/util"
	"github.com/streamer459/streamingdev-sub000/where"
)

// cacheData defines the structured format for persisting cached profiles to disk.
type cacheData[K comparable, T any] struct {
	Profiles map[K]T `json:"profiles"`
}

// cacher provides a generic, thread-safe wrapper for high-level caching operations.
type cacher[K comparable, T any] struct {
	internal   *gache.Cache[*cacheData[K, T]]
	keyWrapper func(K) K
	mu         sync.RWMutex
}

// Get retrieves a value from the cache associated with the specified key.
func (c *cacher[K, T]) Get(key K) mo.Option[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[T]()
	}

	profile, ok := data.Profiles[c.keyWrapper(key)]
	if ok {
		return mo.Some(profile)
	}

	return mo.None[T]()
}

// Set persists a key-value pair to the cache.
func (c *cacher[K, T]) Set(key K, t T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}

	if !expired && data != nil {
		data.Profiles[c.keyWrapper(key)] = t
		return c.internal.Set(data)
	}

	internal := &cacheData[K, T]{Profiles: make(map[K]T)}
	internal.Profiles[c.keyWrapper(key)] = t
	return c.internal.Set(internal)
}

// Delete removes the entry associated with the specified key from the cache.
func (c *cacher[K, T]) Delete(key K) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}

	if !expired && data != nil {
		delete(data.Profiles, c.keyWrapper(key))
		return c.internal.Set(data)
	}

	return nil
}

// profileCacher persists channel profiles between runs. Push notifications invalidate
// individual entries long before the lifetime does.
var profileCacher = &cacher[string, *api.Profile]{
	internal: gache.New[*cacheData[string, *api.Profile]](
		&gache.Options{
			Path:       where.Profiles(),
			Lifetime:   time.Hour * 24 * 7,
			FileSystem: &filesystem.GacheFs{},
		},
	),
	keyWrapper: strings.ToLower,
}

// Get returns a channel's profile, preferring the disk cache over the platform API.
func Get(ctx context.Context, client *api.Client, username string) (*api.Profile, error) {
	if cached, ok := profileCacher.Get(username).Get(); ok {
		return cached, nil
	}

	profile, err := client.Profile(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := profileCacher.Set(username, profile); err != nil {
		log.Warnf("profile cache write failed for %s: %v", username, err)
	}
	return profile, nil
}

// Invalidate drops a channel's cached profile. Called when the push channel announces
// a profile update.
func Invalidate(username string) error {
	return profileCacher.Delete(username)
}

// AvatarPath downloads a profile picture into the content-addressed media cache and
// returns its local path. Fresh copies are served from disk without a network call.
func AvatarPath(ctx context.Context, avatarURL string) (string, error) {
	key := cache.GenerateKey(avatarURL)
	if path, ok := cache.Path(key); ok {
		return path, nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", avatarURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	resp, err := network.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return "", &api.StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return cache.Write(key, data)
}
