package recall

import (
	"github.com/rushteam/catalogrec/core"
	"github.com/rushteam/catalogrec/vector"
)

// AggregatePreference 把用户 like/bookmark 过、且仍在目录中的物品向量取均值，得到偏好向量。
//
// preferred 为空，或其中没有任何物品出现在 items 中（交互引用了已删除的物品）时，
// 返回 (nil, false) 表示“没有可用偏好”，由调用方走热门兜底。
// vectors 必须与 items 下标对齐。
func AggregatePreference(
	preferred map[string]struct{},
	items []core.CatalogItem,
	vectors [][]float64,
) ([]float64, bool) {
	if len(preferred) == 0 || len(items) == 0 {
		return nil, false
	}

	matched := make([][]float64, 0, len(preferred))
	for i, it := range items {
		if _, ok := preferred[it.ID]; !ok {
			continue
		}
		if i >= len(vectors) {
			break
		}
		matched = append(matched, vectors[i])
	}
	if len(matched) == 0 {
		return nil, false
	}
	return vector.Mean(matched), true
}

// HasPreferredItem 判断目录中是否存在至少一个用户偏好的物品，不需要向量空间。
func HasPreferredItem(preferred map[string]struct{}, items []core.CatalogItem) bool {
	if len(preferred) == 0 {
		return false
	}
	for _, it := range items {
		if _, ok := preferred[it.ID]; ok {
			return true
		}
	}
	return false
}
