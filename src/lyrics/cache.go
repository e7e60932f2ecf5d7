package lyrics

import (
	"context"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"
)

// A Source opens the raw lyric text for a locator.
type Source interface {
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// Cache loads and parses timelines, keeping them for the lifetime of the
// cache. Each locator is fetched at most once, concurrent requests for the
// same locator wait for the first one to complete.
type Cache struct {
	source Source

	lock    sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	ready    chan struct{}
	timeline Timeline
}

func NewCache(source Source) *Cache {
	return &Cache{
		source:  source,
		entries: map[string]*cacheEntry{},
	}
}

// Get returns the timeline for the locator. Lyrics that can not be loaded
// result in an empty timeline, which is cached like any other result. A load
// that was interrupted by the context is not cached.
func (cache *Cache) Get(ctx context.Context, locator string) Timeline {
	if locator == "" {
		return Timeline{}
	}

	cache.lock.Lock()
	entry, ok := cache.entries[locator]
	if !ok {
		entry = &cacheEntry{ready: make(chan struct{})}
		cache.entries[locator] = entry
	}
	cache.lock.Unlock()

	if ok {
		select {
		case <-entry.ready:
			return entry.timeline
		case <-ctx.Done():
			return Timeline{}
		}
	}

	tl, err := cache.load(ctx, locator)
	if err != nil {
		log.WithField("lyrics", locator).Warnf("Could not load lyrics: %v", err)
		tl = Timeline{}
		if ctx.Err() != nil {
			cache.lock.Lock()
			delete(cache.entries, locator)
			cache.lock.Unlock()
		}
	}
	entry.timeline = tl
	close(entry.ready)
	return tl
}

func (cache *Cache) load(ctx context.Context, locator string) (Timeline, error) {
	rc, err := cache.source.Open(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return Parse(string(b)), nil
}

// Len returns the number of locators that are cached or being loaded.
func (cache *Cache) Len() int {
	cache.lock.Lock()
	defer cache.lock.Unlock()
	return len(cache.entries)
}
