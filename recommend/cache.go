package recommend

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rushteam/catalogrec/core"
	"github.com/rushteam/catalogrec/metrics"
	"github.com/rushteam/catalogrec/recall"
	"github.com/rushteam/catalogrec/vector"
)

// SpaceCache 按目录版本缓存拟合好的向量空间。
//
// 同一版本只拟合一次：并发的首批请求通过 singleflight 共享同一次拟合。
// 版本变化后旧空间被替换。版本为 0 的数据源不缓存，每次请求重新拟合。
// 缓存的 Space 发布后只读，可被任意请求并发使用。
type SpaceCache struct {
	tfidf *vector.TFIDF
	group singleflight.Group

	mu    sync.RWMutex
	entry *spaceEntry
}

type spaceEntry struct {
	version uint64
	ids     []string
	space   *vector.Space
}

// CacheResult 是一次查询的缓存结果，用于日志与指标。
type CacheResult string

const (
	CacheHit    CacheResult = "hit"
	CacheMiss   CacheResult = "miss"
	CacheBypass CacheResult = "bypass"
)

func NewSpaceCache(tfidf *vector.TFIDF) *SpaceCache {
	if tfidf == nil {
		tfidf = vector.NewTFIDF()
	}
	return &SpaceCache{tfidf: tfidf}
}

// Get 返回与 items 下标对齐的向量空间。
//
// 命中要求版本一致且物品 ID 序列一致；读版本与读目录之间若发生了变更，
// ID 序列不一致时按未缓存处理，保证向量与 items 对齐。
func (c *SpaceCache) Get(ctx context.Context, version uint64, items []core.CatalogItem) (*vector.Space, CacheResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, CacheMiss, err
	}
	if version == 0 {
		space, err := c.fit(ctx, items)
		return space, CacheBypass, err
	}

	c.mu.RLock()
	e := c.entry
	c.mu.RUnlock()
	if e != nil && e.version == version {
		if sameIDs(e.ids, items) {
			return e.space, CacheHit, nil
		}
		space, err := c.fit(ctx, items)
		return space, CacheBypass, err
	}

	// 共享拟合不随首个调用方取消，每个调用方各自等待自己的 ctx
	ids := itemIDs(items)
	ch := c.group.DoChan(strconv.FormatUint(version, 10), func() (any, error) {
		space, err := c.fit(context.WithoutCancel(ctx), items)
		if err != nil {
			return nil, err
		}
		fitted := &spaceEntry{version: version, ids: ids, space: space}
		c.store(fitted)
		return fitted, nil
	})

	select {
	case <-ctx.Done():
		return nil, CacheMiss, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, CacheMiss, r.Err
		}
		shared := r.Val.(*spaceEntry)
		if !sameIDs(shared.ids, items) {
			space, err := c.fit(ctx, items)
			return space, CacheBypass, err
		}
		return shared.space, CacheMiss, nil
	}
}

// Version 返回当前缓存的版本，未缓存时为 0。
func (c *SpaceCache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil {
		return 0
	}
	return c.entry.version
}

// Invalidate 丢弃缓存。
func (c *SpaceCache) Invalidate() {
	c.mu.Lock()
	c.entry = nil
	c.mu.Unlock()
}

func (c *SpaceCache) store(e *spaceEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// 不回退到更旧的版本
	if c.entry != nil && c.entry.version > e.version {
		return
	}
	c.entry = e
}

func (c *SpaceCache) fit(ctx context.Context, items []core.CatalogItem) (*vector.Space, error) {
	start := time.Now()
	space, err := c.tfidf.Fit(ctx, recall.BuildCorpus(items))
	if err != nil {
		return nil, err
	}
	metrics.RecordFit(time.Since(start), space.Dim())
	return space, nil
}

func itemIDs(items []core.CatalogItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func sameIDs(ids []string, items []core.CatalogItem) bool {
	if len(ids) != len(items) {
		return false
	}
	for i, it := range items {
		if ids[i] != it.ID {
			return false
		}
	}
	return true
}
