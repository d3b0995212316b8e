package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/rushteam/catalogrec/core"
)

// StoreSource 把 core.KeyValueStore（内存 / Redis）适配为 Source。
//
// Key 布局：
//   - {prefix}:index               JSON 数组，物品 ID 的语料顺序
//   - {prefix}:items               Hash，field 为物品 ID，value 为 JSON
//   - {prefix}:interactions:{user} JSON 数组，用户交互
//   - {prefix}:version             计数器，目录变更时 INCR
//
// 写入方法假设单一写者（导入任务），多写者并发修改 index 需要外部协调。
type StoreSource struct {
	kv     core.KeyValueStore
	prefix string
}

func NewStoreSource(kv core.KeyValueStore, prefix string) *StoreSource {
	if prefix == "" {
		prefix = "catalogrec"
	}
	return &StoreSource{kv: kv, prefix: prefix}
}

func (s *StoreSource) indexKey() string   { return s.prefix + ":index" }
func (s *StoreSource) itemsKey() string   { return s.prefix + ":items" }
func (s *StoreSource) versionKey() string { return s.prefix + ":version" }
func (s *StoreSource) interactionsKey(userID string) string {
	return s.prefix + ":interactions:" + userID
}

func (s *StoreSource) Items(ctx context.Context) ([]core.CatalogItem, error) {
	ids, err := s.index(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	raw, err := s.kv.HGetAll(ctx, s.itemsKey())
	if err != nil {
		return nil, fmt.Errorf("catalog: load items: %w", err)
	}

	items := make([]core.CatalogItem, 0, len(ids))
	for _, id := range ids {
		data, ok := raw[id]
		if !ok {
			continue
		}
		var it core.CatalogItem
		if err := json.Unmarshal(data, &it); err != nil {
			return nil, fmt.Errorf("catalog: decode item %s: %w", id, err)
		}
		items = append(items, it)
	}
	return items, nil
}

func (s *StoreSource) Interactions(ctx context.Context, userID string) ([]core.InteractionRecord, error) {
	data, err := s.kv.Get(ctx, s.interactionsKey(userID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog: load interactions: %w", err)
	}
	var records []core.InteractionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("catalog: decode interactions: %w", err)
	}
	return records, nil
}

func (s *StoreSource) Version(ctx context.Context) (uint64, error) {
	data, err := s.kv.Get(ctx, s.versionKey())
	if err != nil {
		if core.IsStoreNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("catalog: load version: %w", err)
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("catalog: decode version: %w", err)
	}
	return v, nil
}

// PutItem 新增或替换物品并递增目录版本。
func (s *StoreSource) PutItem(ctx context.Context, item core.CatalogItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	ids, err := s.index(ctx)
	if err != nil {
		return err
	}
	if err := s.kv.HSet(ctx, s.itemsKey(), item.ID, data); err != nil {
		return fmt.Errorf("catalog: save item: %w", err)
	}
	found := false
	for _, id := range ids {
		if id == item.ID {
			found = true
			break
		}
	}
	if !found {
		if err := s.saveIndex(ctx, append(ids, item.ID)); err != nil {
			return err
		}
	}
	return s.bump(ctx)
}

// DeleteItem 删除物品并递增目录版本；不存在时无操作。
func (s *StoreSource) DeleteItem(ctx context.Context, id string) error {
	ids, err := s.index(ctx)
	if err != nil {
		return err
	}
	kept := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(ids) {
		return nil
	}
	if err := s.kv.HDel(ctx, s.itemsKey(), id); err != nil {
		return fmt.Errorf("catalog: delete item: %w", err)
	}
	if err := s.saveIndex(ctx, kept); err != nil {
		return err
	}
	return s.bump(ctx)
}

// AddInteraction 追加一条交互；同一 (user, item, kind) 只保留一条。
func (s *StoreSource) AddInteraction(ctx context.Context, rec core.InteractionRecord) error {
	records, err := s.Interactions(ctx, rec.UserID)
	if err != nil {
		return err
	}
	if hasInteraction(records, rec) {
		return nil
	}
	data, err := json.Marshal(append(records, rec))
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.interactionsKey(rec.UserID), data); err != nil {
		return fmt.Errorf("catalog: save interactions: %w", err)
	}
	return nil
}

func (s *StoreSource) index(ctx context.Context) ([]string, error) {
	data, err := s.kv.Get(ctx, s.indexKey())
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog: load index: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("catalog: decode index: %w", err)
	}
	return ids, nil
}

func (s *StoreSource) saveIndex(ctx context.Context, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.indexKey(), data); err != nil {
		return fmt.Errorf("catalog: save index: %w", err)
	}
	return nil
}

func (s *StoreSource) bump(ctx context.Context) error {
	if _, err := s.kv.Incr(ctx, s.versionKey()); err != nil {
		return fmt.Errorf("catalog: bump version: %w", err)
	}
	return nil
}

var _ Source = (*StoreSource)(nil)
