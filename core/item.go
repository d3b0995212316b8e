package core

import "github.com/rushteam/catalogrec/pkg/utils"

// Item 是推荐链路中的统一承载结构：分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type Item struct {
	ID       string
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// NewItemFromCatalog 用目录物品构造链路 Item，目录字段写入 Meta，数值字段写入 Features。
func NewItemFromCatalog(ci CatalogItem) *Item {
	it := NewItem(ci.ID)
	it.Meta["title"] = ci.Title
	it.Meta["category"] = ci.Category
	it.Meta["tags"] = ci.Tags
	it.Features["popularity_score"] = ci.PopularityScore
	it.Features["rating"] = ci.Rating
	return it
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// ItemIDs 返回 items 的 ID 列表，保持顺序。
func ItemIDs(items []*Item) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		ids = append(ids, it.ID)
	}
	return ids
}
