package recall

import (
	"context"
	"sort"

	"github.com/rushteam/catalogrec/core"
	"github.com/rushteam/catalogrec/pipeline"
	"github.com/rushteam/catalogrec/pkg/utils"
)

// DefaultHotSize 是热门兜底默认返回条数。
const DefaultHotSize = 10

// Hot 是热门召回源，用于冷启动兜底。
// 按 (PopularityScore 降序, Rating 降序) 排序目录，相同时保持目录顺序，取前 N 个。
// 不做任何排除：没有历史的用户可以看到任何物品。目录为空时返回空结果。
type Hot struct {
	Items []core.CatalogItem

	// N 返回条数，<= 0 时使用 DefaultHotSize
	N int
}

func (r *Hot) Name() string        { return "recall.hot" }
func (r *Hot) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Hot) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *Hot) Recall(
	_ context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	n := r.N
	if n <= 0 {
		n = DefaultHotSize
	}

	idx := make([]int, len(r.Items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := r.Items[idx[a]], r.Items[idx[b]]
		if ia.PopularityScore != ib.PopularityScore {
			return ia.PopularityScore > ib.PopularityScore
		}
		return ia.Rating > ib.Rating
	})
	if len(idx) > n {
		idx = idx[:n]
	}

	out := make([]*core.Item, 0, len(idx))
	for _, i := range idx {
		it := core.NewItemFromCatalog(r.Items[i])
		it.Score = r.Items[i].PopularityScore
		it.PutLabel(utils.LabelRecallSource, utils.Label{Value: "hot", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
