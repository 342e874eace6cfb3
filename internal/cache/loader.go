package cache

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the value for a key on a cache miss.
type LoadFunc[T any] func(ctx context.Context, key string) (T, error)

// Loader is a read-through cache. Concurrent misses for the same key share
// one call to load.
type Loader[T any] struct {
	cache *LRUCache[T]
	group singleflight.Group
	load  LoadFunc[T]
	// gen moves on every Invalidate so a load that raced with it is not cached.
	gen atomic.Uint64
}

func NewLoader[T any](maxSize int, ttl time.Duration, load LoadFunc[T]) *Loader[T] {
	return &Loader[T]{
		cache: NewLRUCache[T](maxSize, ttl),
		load:  load,
	}
}

// Get returns the cached value or loads it.
func (l *Loader[T]) Get(ctx context.Context, key string) (T, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
		gen := l.gen.Load()
		v, err := l.load(ctx, key)
		if err != nil {
			return v, err
		}
		if l.gen.Load() == gen {
			l.cache.Set(key, v)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops key so the next Get reloads it.
func (l *Loader[T]) Invalidate(key string) {
	l.gen.Add(1)
	l.group.Forget(key)
	l.cache.Delete(key)
}

// Cache exposes the backing LRU, e.g. to register it with a Manager.
func (l *Loader[T]) Cache() *LRUCache[T] {
	return l.cache
}
