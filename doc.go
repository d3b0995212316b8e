// Package catalogrec 是一个基于内容的目录推荐引擎。
//
// 设计要点：
// - Pipeline-first: 排序路径由 Node 串联（内容召回 → 过滤 → 去重 → 附加阶段 → TopN）
// - Labels-first: 召回来源、过滤原因、排序位置以 Label 全链路透传，便于解释与观测
// - 版本化向量空间: TF-IDF 空间按目录版本拟合一次，请求间只读共享
// - 显式状态机: 空目录 / 热门兜底 / 内容排序三条路径各自可测
package catalogrec

import (
	"github.com/rushteam/catalogrec/pipeline"
	"github.com/rushteam/catalogrec/recommend"
)

// 轻量 facade：便于用户直接 import "catalogrec" 使用核心抽象。
type (
	Pipeline = pipeline.Pipeline
	Node     = pipeline.Node
	Kind     = pipeline.Kind
	Engine   = recommend.Engine
	Options  = recommend.Options
	Response = recommend.Response
)

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindReRank = pipeline.KindReRank
)

var (
	NewEngine      = recommend.NewEngine
	DefaultOptions = recommend.DefaultOptions
)
