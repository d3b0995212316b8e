package utils

// Label 是推荐链路中的一等公民：可解释、可追踪、可透传。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rerank / fallback ...
}

// 链路内置的 Label key。
const (
	LabelRecallSource = "recall_source" // content / hot
	LabelRecallMetric = "recall_metric" // cosine
	LabelFiltered     = "filtered"
	LabelRankPosition = "rank_position"
)

// MergeLabel 用于合并同名 Label，保留历史、可追踪：
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
