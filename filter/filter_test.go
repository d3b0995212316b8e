package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/catalogrec/core"
	"github.com/rushteam/catalogrec/pkg/utils"
)

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.NewItem(id))
	}
	return out
}

type failingFilter struct{}

func (failingFilter) Name() string { return "filter.failing" }
func (failingFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return false, errors.New("boom")
}

func TestFilterNode_Interacted(t *testing.T) {
	rctx := &core.RecommendContext{
		UserID: "u1",
		Interactions: []core.InteractionRecord{
			{UserID: "u1", ItemID: "b", Kind: core.InteractionLike},
			{UserID: "u1", ItemID: "d", Kind: core.InteractionBookmark},
			{UserID: "u1", ItemID: "c", Kind: core.InteractionRating},
		},
	}
	in := items("a", "b", "c", "d", "e")
	node := &FilterNode{Filters: []Filter{NewInteractedFilter()}}

	out, err := node.Process(context.Background(), rctx, in)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	got := core.ItemIDs(out)
	want := []string{"a", "c", "e"}
	if len(got) != len(want) {
		t.Fatalf("Process() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Process() = %v, want %v", got, want)
		}
	}
	if lbl := in[1].Labels[utils.LabelFiltered]; lbl.Source != "filter.interacted" {
		t.Errorf("filtered label source = %q, want filter.interacted", lbl.Source)
	}
}

func TestFilterNode_Errors(t *testing.T) {
	in := items("a", "b")
	strict := &FilterNode{Filters: []Filter{failingFilter{}}}
	if _, err := strict.Process(context.Background(), nil, in); err == nil {
		t.Error("Process() should propagate filter error")
	}

	lenient := &FilterNode{Filters: []Filter{failingFilter{}, NewBlacklistFilter([]string{"a"})}, FailOpen: true}
	out, err := lenient.Process(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := core.ItemIDs(out); len(got) != 1 || got[0] != "b" {
		t.Errorf("Process() = %v, want [b]", got)
	}
}

func TestDedupNode(t *testing.T) {
	in := items("a", "b", "a", "c", "b")
	in[0].Score = 0.9
	in[2].Score = 0.1

	node := &DedupNode{}
	out, err := node.Process(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	got := core.ItemIDs(out)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("Process() = %v, want [a b c]", got)
	}
	if out[0].Score != 0.9 {
		t.Errorf("kept score = %f, want first occurrence 0.9", out[0].Score)
	}

	// 节点无状态，第二次调用不受第一次影响
	out, _ = node.Process(context.Background(), nil, items("a", "c"))
	if len(out) != 2 {
		t.Errorf("second Process() = %v, want [a c]", core.ItemIDs(out))
	}
}

func TestExprFilter(t *testing.T) {
	low := core.NewItemFromCatalog(core.CatalogItem{ID: "low", Rating: 1})
	high := core.NewItemFromCatalog(core.CatalogItem{ID: "high", Rating: 4.5})

	f, err := NewExprFilter(`item.features.rating < 2.0`)
	if err != nil {
		t.Fatalf("NewExprFilter() error = %v", err)
	}
	out, err := (&FilterNode{Filters: []Filter{f}}).Process(context.Background(), &core.RecommendContext{}, []*core.Item{low, high})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := core.ItemIDs(out); len(got) != 1 || got[0] != "high" {
		t.Errorf("Process() = %v, want [high]", got)
	}

	if _, err := NewExprFilter(`item.features.rating <`); err == nil {
		t.Error("NewExprFilter() should reject invalid expression")
	}
}

func TestExprFilter_EmptyExprRejected(t *testing.T) {
	for _, expr := range []string{"", "   "} {
		f, err := NewExprFilter(expr)
		if !errors.Is(err, ErrEmptyExpr) {
			t.Errorf("NewExprFilter(%q) error = %v, want ErrEmptyExpr", expr, err)
		}
		if f != nil {
			t.Errorf("NewExprFilter(%q) = %v, want nil", expr, f)
		}
		if !core.IsInvalidInput(err) {
			t.Errorf("NewExprFilter(%q) error should be INVALID_INPUT", expr)
		}
	}
}
