// Package builders 注册内置的可配置 Node。
package builders

import (
	"fmt"

	"github.com/rushteam/catalogrec/config"
	"github.com/rushteam/catalogrec/filter"
	"github.com/rushteam/catalogrec/pipeline"
	"github.com/rushteam/catalogrec/pkg/conv"
	"github.com/rushteam/catalogrec/rerank"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("filter.dedup", BuildDedupNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// BuildFilterNode 构建组合过滤节点。
//
//	type: filter
//	config:
//	  fail_open: false
//	  filters:
//	    - type: blacklist
//	      item_ids: ["17", "42"]
//	    - type: expr
//	      expr: 'item.meta.category == "Hidden"'
//	    - type: interacted
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "blacklist":
			filters = append(filters, filter.NewBlacklistFilter(conv.SliceAnyToString(filterMap["item_ids"])))
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""))
			if err != nil {
				return nil, fmt.Errorf("filter expr: %w", err)
			}
			filters = append(filters, f)
		case "interacted":
			filters = append(filters, filter.NewInteractedFilter())
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{
		Filters:  filters,
		FailOpen: conv.ConfigGet(cfg, "fail_open", false),
	}, nil
}

func BuildDedupNode(_ map[string]any) (pipeline.Node, error) {
	return &filter.DedupNode{}, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt(cfg, "n", 0)
	if n < 0 {
		return nil, fmt.Errorf("rerank.topn: n must be >= 0, got %d", n)
	}
	return &rerank.TopNNode{N: n}, nil
}
