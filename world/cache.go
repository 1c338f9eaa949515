package world

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/replica/oerror"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
	"go.uber.org/atomic"
)

const cacheShards = 32

// Cache is a best-effort, read-mostly Source wrapper that remembers blocks by voxel coordinate. It is
// safe for concurrent use. Entries may be stale until invalidated.
type Cache struct {
	src      Source
	perShard int
	shards   [cacheShards]cacheShard

	hits   atomic.Uint64
	misses atomic.Uint64
}

type cacheShard struct {
	mu     sync.RWMutex
	blocks map[cube.Pos]Block
}

// NewCache wraps src. capacity bounds the amount of cached voxels; a shard that fills up is flushed.
func NewCache(src Source, capacity int) *Cache {
	c := &Cache{src: src, perShard: max(1, capacity/cacheShards)}
	for i := range c.shards {
		c.shards[i].blocks = make(map[cube.Pos]Block)
	}
	return c
}

func (c *Cache) Block(pos cube.Pos) Block {
	shard := c.shard(pos)
	shard.mu.RLock()
	b, ok := shard.blocks[pos]
	shard.mu.RUnlock()
	if ok {
		c.hits.Inc()
		return b
	}

	c.misses.Inc()
	b = c.src.Block(pos)
	shard.mu.Lock()
	if len(shard.blocks) >= c.perShard {
		clear(shard.blocks)
	}
	shard.blocks[pos] = b
	shard.mu.Unlock()
	return b
}

// Invalidate drops the cached block at pos, if any.
func (c *Cache) Invalidate(pos cube.Pos) {
	shard := c.shard(pos)
	shard.mu.Lock()
	delete(shard.blocks, pos)
	shard.mu.Unlock()
}

// Clear drops every cached block.
func (c *Cache) Clear() {
	for i := range c.shards {
		shard := &c.shards[i]
		shard.mu.Lock()
		clear(shard.blocks)
		shard.mu.Unlock()
	}
}

// Len returns the amount of cached voxels.
func (c *Cache) Len() (n int) {
	for i := range c.shards {
		shard := &c.shards[i]
		shard.mu.RLock()
		n += len(shard.blocks)
		shard.mu.RUnlock()
	}
	return n
}

// Stats returns the amount of lookups served from the cache and from the wrapped source.
func (c *Cache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// StartEviction clears the cache every interval until ctx is done.
func (c *Cache) StartEviction(ctx context.Context, interval time.Duration) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				hub := sentry.CurrentHub().Clone()
				hub.Recover(oerror.New("block cache eviction crashed: %v", err))
				hub.Flush(time.Second * 5)
			}
		}()

		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				logrus.Debugf("block cache eviction stopped")
				return
			case <-t.C:
				c.Clear()
			}
		}
	}()
}

func (c *Cache) shard(pos cube.Pos) *cacheShard {
	var buf [12]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(int32(pos[0])))
	binary.LittleEndian.PutUint32(buf[4:], uint32(int32(pos[1])))
	binary.LittleEndian.PutUint32(buf[8:], uint32(int32(pos[2])))
	return &c.shards[xxh3.Hash(buf[:])%cacheShards]
}
