package catalog

import (
	"context"
	"sync"

	"github.com/rushteam/catalogrec/core"
)

// MemorySource 是内存数据源，用于测试/开发/单机部署。
// 每次目录变更都会递增版本号；交互变更不影响目录版本。
type MemorySource struct {
	mu           sync.RWMutex
	items        []core.CatalogItem
	index        map[string]int
	interactions map[string][]core.InteractionRecord
	version      uint64
}

func NewMemorySource(items ...core.CatalogItem) *MemorySource {
	s := &MemorySource{
		index:        make(map[string]int),
		interactions: make(map[string][]core.InteractionRecord),
	}
	for _, it := range items {
		s.putItem(it)
	}
	if len(items) > 0 {
		s.version = 1
	}
	return s
}

func (s *MemorySource) Items(_ context.Context) ([]core.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.CatalogItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemorySource) Interactions(_ context.Context, userID string) ([]core.InteractionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.interactions[userID]
	out := make([]core.InteractionRecord, len(records))
	copy(out, records)
	return out, nil
}

func (s *MemorySource) Version(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, nil
}

// PutItem 新增或替换物品。替换时保持原有语料位置。
func (s *MemorySource) PutItem(item core.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.putItem(item)
	s.version++
}

func (s *MemorySource) putItem(item core.CatalogItem) {
	if i, ok := s.index[item.ID]; ok {
		s.items[i] = item
		return
	}
	s.index[item.ID] = len(s.items)
	s.items = append(s.items, item)
}

// DeleteItem 删除物品，返回是否存在。已有交互保留，成为失效引用。
func (s *MemorySource) DeleteItem(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
	s.version++
	return true
}

// AddInteraction 记录一次交互；同一 (user, item, kind) 只保留一条。
func (s *MemorySource) AddInteraction(rec core.InteractionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hasInteraction(s.interactions[rec.UserID], rec) {
		return
	}
	s.interactions[rec.UserID] = append(s.interactions[rec.UserID], rec)
}

// RemoveInteraction 撤销一次交互（取消喜欢 / 取消收藏）。
func (s *MemorySource) RemoveInteraction(rec core.InteractionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.interactions[rec.UserID]
	out := records[:0]
	for _, r := range records {
		if r.ItemID == rec.ItemID && r.Kind == rec.Kind {
			continue
		}
		out = append(out, r)
	}
	s.interactions[rec.UserID] = out
}

var _ Source = (*MemorySource)(nil)
