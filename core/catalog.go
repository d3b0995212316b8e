package core

// CatalogItem 是目录中的一个物品（只读快照），由外部目录存储维护。
type CatalogItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`

	// Category 为空表示没有分类
	Category string `json:"category,omitempty"`

	PopularityScore float64 `json:"popularity_score"`
	Rating          float64 `json:"rating"`
	NumberOfRatings int     `json:"number_of_ratings"`
}

// InteractionKind 是用户对物品的交互类型。
type InteractionKind string

const (
	InteractionLike     InteractionKind = "like"
	InteractionBookmark InteractionKind = "bookmark"
	InteractionRating   InteractionKind = "rating"
)

// InteractionRecord 是一条用户交互记录。
// 同一 (user, item, kind) 只会出现一次，由外部存储保证。
type InteractionRecord struct {
	UserID string          `json:"user_id"`
	ItemID string          `json:"item_id"`
	Kind   InteractionKind `json:"kind"`
}

// IsPreference 判断该交互是否表达了偏好（like / bookmark）。
// rating 不参与内容推荐的偏好聚合。
func (r InteractionRecord) IsPreference() bool {
	return r.Kind == InteractionLike || r.Kind == InteractionBookmark
}

// PreferredItemIDs 从交互记录中提取某个用户 like/bookmark 过的物品 ID 集合。
// userID 为空时不区分用户。
func PreferredItemIDs(userID string, records []InteractionRecord) map[string]struct{} {
	set := make(map[string]struct{}, len(records))
	for _, r := range records {
		if !r.IsPreference() {
			continue
		}
		if userID != "" && r.UserID != "" && r.UserID != userID {
			continue
		}
		set[r.ItemID] = struct{}{}
	}
	return set
}
