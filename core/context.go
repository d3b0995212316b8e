package core

import "github.com/rushteam/catalogrec/pkg/utils"

// RecommendContext 承载用户/场景/交互快照，贯穿整个 Pipeline 透传。
// 每个请求独占一个实例，不在 goroutine 间共享。
type RecommendContext struct {
	UserID    string // 已认证的用户 ID，由上游鉴权保证非空
	RequestID string
	Scene     string

	// Interactions 是请求用户的交互快照
	Interactions []InteractionRecord

	// Labels 是用户级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数
	Params map[string]any

	preferred map[string]struct{}
}

// PreferredItemIDs 返回用户 like/bookmark 过的物品 ID 集合。
// 首次调用时计算并缓存；之后修改 Interactions 不会刷新结果。
func (rctx *RecommendContext) PreferredItemIDs() map[string]struct{} {
	if rctx.preferred == nil {
		rctx.preferred = PreferredItemIDs(rctx.UserID, rctx.Interactions)
	}
	return rctx.preferred
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
