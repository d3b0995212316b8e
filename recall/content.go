package recall

import (
	"context"
	"sort"

	"github.com/rushteam/catalogrec/core"
	"github.com/rushteam/catalogrec/pipeline"
	"github.com/rushteam/catalogrec/pkg/utils"
	"github.com/rushteam/catalogrec/vector"
)

// ContentRecall 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想："用户喜欢具有某些特征的物品，推荐具有相似特征的其他物品"
//
// 对目录中每个物品计算偏好向量与物品向量的余弦相似度，按分数降序输出；
// 分数相同保持目录顺序。排除已交互物品、截断由后续 Filter / TopN 节点完成。
// ContentRecall 同时实现 Source 和 Node 接口。
type ContentRecall struct {
	// Space 是在 Items 上拟合的向量空间，Vectors 与 Items 下标对齐
	Space *vector.Space

	// Items 目录快照
	Items []core.CatalogItem

	// Preference 偏好向量；为 nil 时从 rctx 的交互记录聚合
	Preference []float64
}

func (r *ContentRecall) Name() string        { return "recall.content" }
func (r *ContentRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *ContentRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *ContentRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Space == nil || len(r.Items) == 0 {
		return nil, nil
	}

	pref := r.Preference
	if pref == nil {
		if rctx == nil {
			return nil, nil
		}
		var ok bool
		pref, ok = AggregatePreference(rctx.PreferredItemIDs(), r.Items, r.Space.Vectors)
		if !ok {
			return nil, nil
		}
	}

	type scoredItem struct {
		idx   int
		score float64
	}
	scores := make([]scoredItem, 0, len(r.Items))
	for i := range r.Items {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if i >= len(r.Space.Vectors) {
			break
		}
		scores = append(scores, scoredItem{
			idx:   i,
			score: vector.Cosine(pref, r.Space.Vectors[i]),
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	out := make([]*core.Item, 0, len(scores))
	for _, s := range scores {
		it := core.NewItemFromCatalog(r.Items[s.idx])
		it.Score = s.score
		it.PutLabel(utils.LabelRecallSource, utils.Label{Value: "content", Source: "recall"})
		it.PutLabel(utils.LabelRecallMetric, utils.Label{Value: "cosine", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
