package recall

import (
	"strings"

	"github.com/rushteam/catalogrec/core"
)

// BuildDocument 构造物品的文本表示：标题、描述、标签、分类名依次以单个空格拼接。
// 不做大小写、词干或去重处理，交给向量化阶段。缺失字段视为空串。
func BuildDocument(item core.CatalogItem) string {
	return strings.Join([]string{
		item.Title,
		item.Description,
		strings.Join(item.Tags, " "),
		item.Category,
	}, " ")
}

// BuildCorpus 按目录顺序构造全部文档。
func BuildCorpus(items []core.CatalogItem) []string {
	docs := make([]string, len(items))
	for i, it := range items {
		docs[i] = BuildDocument(it)
	}
	return docs
}
