package filter

import (
	"context"

	"github.com/rushteam/catalogrec/core"
	"github.com/rushteam/catalogrec/pipeline"
	"github.com/rushteam/catalogrec/pkg/utils"
)

// DedupNode 按 ID 去重，保留首次出现的物品（即分数更高的那个）。
// 已见集合只存在于单次 Process 调用内，节点本身无状态，可在请求间复用。
type DedupNode struct{}

func (n *DedupNode) Name() string {
	return "filter.dedup"
}

func (n *DedupNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *DedupNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) < 2 {
		return items, nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if _, ok := seen[it.ID]; ok {
			it.PutLabel(utils.LabelFiltered, utils.Label{Value: "true", Source: n.Name()})
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out, nil
}
