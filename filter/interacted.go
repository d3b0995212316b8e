package filter

import (
	"context"

	"github.com/rushteam/catalogrec/core"
)

// InteractedFilter 过滤掉用户 like/bookmark 过的物品。
// 集合取自 rctx.PreferredItemIDs()，每个请求只构建一次，单次判断为 O(1)。
// rating 类交互不参与排除。
type InteractedFilter struct{}

func NewInteractedFilter() *InteractedFilter {
	return &InteractedFilter{}
}

func (f *InteractedFilter) Name() string {
	return "filter.interacted"
}

func (f *InteractedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil {
		return false, nil
	}
	_, ok := rctx.PreferredItemIDs()[item.ID]
	return ok, nil
}
