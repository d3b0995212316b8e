// Package catalog 提供推荐引擎读取目录快照与用户交互的数据源。
//
// 目录 CRUD 与数据导入不在本包职责内，这里只提供读取接口以及
// 测试/开发需要的最小写入能力。
package catalog

import (
	"context"

	"github.com/rushteam/catalogrec/core"
)

// Source 是推荐引擎的数据协作者。
type Source interface {
	// Items 返回目录快照，顺序稳定（即语料顺序）。
	Items(ctx context.Context) ([]core.CatalogItem, error)

	// Interactions 返回指定用户的交互记录。
	Interactions(ctx context.Context, userID string) ([]core.InteractionRecord, error)

	// Version 返回目录版本号，目录变更后单调递增。
	// 返回 0 表示数据源不维护版本，调用方不应缓存基于目录的计算结果。
	Version(ctx context.Context) (uint64, error)
}

// ErrUnavailable 表示数据源暂不可用（连接失败、熔断打开等）。
var ErrUnavailable = core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, "catalog: source unavailable")

func hasInteraction(records []core.InteractionRecord, rec core.InteractionRecord) bool {
	for _, r := range records {
		if r.ItemID == rec.ItemID && r.Kind == rec.Kind {
			return true
		}
	}
	return false
}
