package recall

import (
	"context"

	"github.com/rushteam/catalogrec/core"
)

// Source 表示一个可复用的召回源（内容相似 / 热门）。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

var (
	_ Source = (*ContentRecall)(nil)
	_ Source = (*Hot)(nil)
)
