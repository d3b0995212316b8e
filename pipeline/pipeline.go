package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/catalogrec/core"
)

// Pipeline 把推荐逻辑拆成可组合的 Node 链。
// 单次 Run 内各 Node 顺序执行，不共享跨请求状态。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}
