// Package rerank 提供排序后的重排与截断节点。
package rerank

import (
	"context"
	"strconv"

	"github.com/rushteam/catalogrec/core"
	"github.com/rushteam/catalogrec/pipeline"
	"github.com/rushteam/catalogrec/pkg/utils"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后截取前 N 个物品，
// 并为保留的物品写入 rank_position 标签（从 1 开始）。
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.ContentRecall{...},
//	        &filter.FilterNode{...},
//	        &rerank.TopNNode{N: 20},
//	    },
//	}
type TopNNode struct {
	// N 要保留的物品数量（Top N）
	// 如果 N <= 0，则返回所有物品（不截断）
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N > 0 && len(items) > n.N {
		items = items[:n.N]
	}
	for i, it := range items {
		if it.Labels == nil {
			it.Labels = make(map[string]utils.Label)
		}
		it.Labels[utils.LabelRankPosition] = utils.Label{Value: strconv.Itoa(i + 1), Source: n.Name()}
	}
	return items, nil
}
