package recall

import (
	"context"
	"math"
	"testing"

	"github.com/rushteam/catalogrec/core"
	"github.com/rushteam/catalogrec/vector"
)

func heroCatalog() []core.CatalogItem {
	return []core.CatalogItem{
		{ID: "0", Title: "Batman Returns", Tags: []string{"batman", "dc"}},
		{ID: "1", Title: "Superman", Tags: []string{"superman", "dc"}},
		{ID: "2", Title: "Iron Man", Tags: []string{"marvel"}},
	}
}

func fitCatalog(t *testing.T, items []core.CatalogItem) *vector.Space {
	t.Helper()
	space, err := vector.NewTFIDF().Fit(context.Background(), BuildCorpus(items))
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	return space
}

func TestBuildDocument(t *testing.T) {
	tests := []struct {
		name string
		item core.CatalogItem
		want string
	}{
		{
			name: "all fields",
			item: core.CatalogItem{Title: "Watchmen", Description: "graphic novel", Tags: []string{"dc", "noir"}, Category: "Comics"},
			want: "Watchmen graphic novel dc noir Comics",
		},
		{
			name: "missing optional fields",
			item: core.CatalogItem{Title: "Iron Man", Tags: []string{"marvel"}},
			want: "Iron Man  marvel ",
		},
		{
			name: "empty item",
			item: core.CatalogItem{},
			want: "   ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildDocument(tt.item); got != tt.want {
				t.Errorf("BuildDocument() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAggregatePreference(t *testing.T) {
	items := heroCatalog()
	vectors := [][]float64{{1, 0}, {0, 1}, {1, 1}}

	tests := []struct {
		name      string
		preferred map[string]struct{}
		want      []float64
		wantOK    bool
	}{
		{name: "no preference", preferred: map[string]struct{}{}, wantOK: false},
		{name: "stale reference", preferred: map[string]struct{}{"deleted": {}}, wantOK: false},
		{name: "single item", preferred: map[string]struct{}{"0": {}}, want: []float64{1, 0}, wantOK: true},
		{name: "mean of two", preferred: map[string]struct{}{"0": {}, "1": {}, "deleted": {}}, want: []float64{0.5, 0.5}, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AggregatePreference(tt.preferred, items, vectors)
			if ok != tt.wantOK {
				t.Fatalf("AggregatePreference() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				if got != nil {
					t.Errorf("AggregatePreference() = %v, want nil", got)
				}
				return
			}
			for i := range tt.want {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("AggregatePreference()[%d] = %f, want %f", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestContentRecall_SharedTagRanksHigher(t *testing.T) {
	items := heroCatalog()
	r := &ContentRecall{Space: fitCatalog(t, items), Items: items}
	rctx := &core.RecommendContext{
		UserID: "u1",
		Interactions: []core.InteractionRecord{
			{UserID: "u1", ItemID: "0", Kind: core.InteractionLike},
		},
	}

	out, err := r.Recall(context.Background(), rctx)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len(Recall()) = %d, want 3", len(out))
	}
	// 偏好向量就是物品 0 的向量
	if out[0].ID != "0" || math.Abs(out[0].Score-1) > 1e-9 {
		t.Errorf("top item = %s (%f), want 0 with score 1", out[0].ID, out[0].Score)
	}
	if out[1].ID != "1" || out[2].ID != "2" {
		t.Errorf("order = %v, want [0 1 2]", core.ItemIDs(out))
	}
	if out[1].Score <= out[2].Score {
		t.Errorf("score(1)=%f should exceed score(2)=%f", out[1].Score, out[2].Score)
	}
	for _, it := range out {
		if it.Score < -1 || it.Score > 1 {
			t.Errorf("score %f out of [-1, 1]", it.Score)
		}
		if it.Labels["recall_source"].Value != "content" {
			t.Errorf("recall_source label = %q, want content", it.Labels["recall_source"].Value)
		}
	}
}

func TestContentRecall_TiesKeepCorpusOrder(t *testing.T) {
	items := []core.CatalogItem{
		{ID: "a", Title: "alpha"},
		{ID: "b", Title: "beta"},
		{ID: "c", Title: "gamma"},
		{ID: "d", Title: "delta"},
	}
	r := &ContentRecall{Space: fitCatalog(t, items), Items: items}
	rctx := &core.RecommendContext{
		UserID:       "u",
		Interactions: []core.InteractionRecord{{UserID: "u", ItemID: "a", Kind: core.InteractionBookmark}},
	}
	out, err := r.Recall(context.Background(), rctx)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	want := []string{"a", "b", "c", "d"}
	got := core.ItemIDs(out)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestContentRecall_NoPreference(t *testing.T) {
	items := heroCatalog()
	r := &ContentRecall{Space: fitCatalog(t, items), Items: items}
	rctx := &core.RecommendContext{
		UserID:       "u1",
		Interactions: []core.InteractionRecord{{UserID: "u1", ItemID: "0", Kind: core.InteractionRating}},
	}
	out, err := r.Recall(context.Background(), rctx)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Recall() = %v, want empty (rating is not a preference)", core.ItemIDs(out))
	}
}

func TestHot_Recall(t *testing.T) {
	items := make([]core.CatalogItem, 0, 12)
	for i := 0; i < 12; i++ {
		items = append(items, core.CatalogItem{
			ID:              string(rune('a' + i)),
			PopularityScore: float64(i % 4),
			Rating:          float64(i),
		})
	}

	out, err := (&Hot{Items: items}).Recall(context.Background(), nil)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if len(out) != DefaultHotSize {
		t.Fatalf("len(Recall()) = %d, want %d", len(out), DefaultHotSize)
	}
	// popularity 3: l(11) h(7) d(3); popularity 2: k(10) g(6) c(2); ...
	want := []string{"l", "h", "d", "k", "g", "c", "j", "f", "b", "i"}
	got := core.ItemIDs(out)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestHot_TiesAndEmpty(t *testing.T) {
	items := []core.CatalogItem{
		{ID: "x", PopularityScore: 1, Rating: 1},
		{ID: "y", PopularityScore: 1, Rating: 1},
	}
	out, _ := (&Hot{Items: items, N: 5}).Recall(context.Background(), nil)
	if got := core.ItemIDs(out); len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Errorf("order = %v, want [x y]", got)
	}

	out, err := (&Hot{}).Recall(context.Background(), nil)
	if err != nil || len(out) != 0 {
		t.Errorf("Recall() on empty catalog = %v, %v; want empty, nil", out, err)
	}
}
