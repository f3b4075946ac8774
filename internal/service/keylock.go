package service

import (
	"context"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

const defaultLockTTL = 2 * time.Minute

// KeyLock keeps at most one sync per name request number in flight.
// Locks expire after their TTL so a crashed holder never wedges a key.
type KeyLock interface {
	// Acquire returns false when the key is already held.
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// LocalKeyLock holds locks in process memory.
type LocalKeyLock struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewLocalKeyLock(ttl time.Duration) *LocalKeyLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &LocalKeyLock{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (l *LocalKeyLock) Acquire(ctx context.Context, key string) (bool, error) {
	// Add fails only when an unexpired item already exists.
	if err := l.cache.Add(lockKey(key), struct{}{}, l.ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (l *LocalKeyLock) Release(ctx context.Context, key string) error {
	l.cache.Delete(lockKey(key))
	return nil
}

// MemcacheKeyLock shares locks between feeder processes.
type MemcacheKeyLock struct {
	mc  *memcache.Client
	ttl time.Duration
}

func NewMemcacheKeyLock(mc *memcache.Client, ttl time.Duration) *MemcacheKeyLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &MemcacheKeyLock{mc: mc, ttl: ttl}
}

func (l *MemcacheKeyLock) Acquire(ctx context.Context, key string) (bool, error) {
	err := l.mc.Add(&memcache.Item{
		Key:        lockKey(key),
		Value:      []byte{1},
		Expiration: int32(l.ttl / time.Second),
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, memcache.ErrNotStored) {
		return false, nil
	}
	return false, errors.Wrap(err, "MemcacheKeyLock.Acquire: mc.Add failed")
}

func (l *MemcacheKeyLock) Release(ctx context.Context, key string) error {
	err := l.mc.Delete(lockKey(key))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return errors.Wrap(err, "MemcacheKeyLock.Release: mc.Delete failed")
	}
	return nil
}

// memcache keys may not contain spaces or control characters.
func lockKey(key string) string {
	b := []byte("solr-feeder:sync:" + key)
	for i, c := range b {
		if c <= ' ' || c == 0x7f {
			b[i] = '_'
		}
	}
	return string(b)
}

var (
	_ KeyLock = (*LocalKeyLock)(nil)
	_ KeyLock = (*MemcacheKeyLock)(nil)
)
