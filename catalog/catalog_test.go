package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/catalogrec/core"
	"github.com/rushteam/catalogrec/store"
)

func sampleItems() []core.CatalogItem {
	return []core.CatalogItem{
		{ID: "0", Title: "Batman Returns", Tags: []string{"batman", "dc"}, Category: "Movies", PopularityScore: 5, Rating: 4.2},
		{ID: "1", Title: "Superman", Tags: []string{"superman", "dc"}, PopularityScore: 3},
		{ID: "2", Title: "Iron Man", Tags: []string{"marvel"}, PopularityScore: 9, NumberOfRatings: 12},
	}
}

func assertIDs(t *testing.T, items []core.CatalogItem, want ...string) {
	t.Helper()
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %v", len(items), want)
	}
	for i, it := range items {
		if it.ID != want[i] {
			t.Fatalf("items[%d] = %s, want %v", i, it.ID, want)
		}
	}
}

func TestMemorySource(t *testing.T) {
	ctx := context.Background()
	src := NewMemorySource(sampleItems()...)

	v1, _ := src.Version(ctx)
	if v1 != 1 {
		t.Errorf("Version() = %d, want 1", v1)
	}

	src.PutItem(core.CatalogItem{ID: "1", Title: "Superman II"})
	items, _ := src.Items(ctx)
	assertIDs(t, items, "0", "1", "2")
	if items[1].Title != "Superman II" {
		t.Errorf("replaced title = %q", items[1].Title)
	}

	if !src.DeleteItem("0") || src.DeleteItem("missing") {
		t.Error("DeleteItem() returned unexpected result")
	}
	items, _ = src.Items(ctx)
	assertIDs(t, items, "1", "2")
	if v, _ := src.Version(ctx); v != 3 {
		t.Errorf("Version() = %d, want 3", v)
	}

	like := core.InteractionRecord{UserID: "u", ItemID: "2", Kind: core.InteractionLike}
	src.AddInteraction(like)
	src.AddInteraction(like)
	src.AddInteraction(core.InteractionRecord{UserID: "u", ItemID: "2", Kind: core.InteractionBookmark})
	recs, _ := src.Interactions(ctx, "u")
	if len(recs) != 2 {
		t.Fatalf("Interactions() = %v, want 2 records", recs)
	}
	src.RemoveInteraction(like)
	recs, _ = src.Interactions(ctx, "u")
	if len(recs) != 1 || recs[0].Kind != core.InteractionBookmark {
		t.Errorf("Interactions() after remove = %v", recs)
	}
	if v, _ := src.Version(ctx); v != 3 {
		t.Errorf("interactions should not bump version, got %d", v)
	}
}

func TestStoreSource(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()
	src := NewStoreSource(kv, "test")

	if items, err := src.Items(ctx); err != nil || len(items) != 0 {
		t.Fatalf("Items() on empty store = %v, %v", items, err)
	}
	if v, _ := src.Version(ctx); v != 0 {
		t.Errorf("Version() on empty store = %d, want 0", v)
	}

	for _, it := range sampleItems() {
		if err := src.PutItem(ctx, it); err != nil {
			t.Fatalf("PutItem() error = %v", err)
		}
	}
	items, err := src.Items(ctx)
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}
	assertIDs(t, items, "0", "1", "2")
	if items[0].Category != "Movies" || len(items[0].Tags) != 2 || items[2].NumberOfRatings != 12 {
		t.Errorf("round trip lost fields: %+v", items)
	}
	if v, _ := src.Version(ctx); v != 3 {
		t.Errorf("Version() = %d, want 3", v)
	}

	if err := src.DeleteItem(ctx, "1"); err != nil {
		t.Fatalf("DeleteItem() error = %v", err)
	}
	_ = src.DeleteItem(ctx, "missing")
	items, _ = src.Items(ctx)
	assertIDs(t, items, "0", "2")
	if v, _ := src.Version(ctx); v != 4 {
		t.Errorf("Version() = %d, want 4", v)
	}

	rec := core.InteractionRecord{UserID: "u", ItemID: "0", Kind: core.InteractionLike}
	_ = src.AddInteraction(ctx, rec)
	_ = src.AddInteraction(ctx, rec)
	recs, err := src.Interactions(ctx, "u")
	if err != nil || len(recs) != 1 || recs[0] != rec {
		t.Errorf("Interactions() = %v, %v", recs, err)
	}
	if recs, _ := src.Interactions(ctx, "nobody"); len(recs) != 0 {
		t.Errorf("Interactions(nobody) = %v, want empty", recs)
	}
}

func TestSQLSource(t *testing.T) {
	ctx := context.Background()
	src, err := OpenSQLSource(ctx, ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLSource() error = %v", err)
	}
	defer src.Close()

	if err := src.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if v, _ := src.Version(ctx); v != 0 {
		t.Errorf("Version() = %d, want 0", v)
	}

	for _, it := range sampleItems() {
		if err := src.UpsertItem(ctx, it); err != nil {
			t.Fatalf("UpsertItem() error = %v", err)
		}
	}
	if err := src.UpsertItem(ctx, core.CatalogItem{ID: "0", Title: "Batman Returns", Tags: []string{"batman"}}); err != nil {
		t.Fatalf("UpsertItem(update) error = %v", err)
	}
	items, err := src.Items(ctx)
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}
	assertIDs(t, items, "0", "1", "2")
	if len(items[0].Tags) != 1 || items[0].Category != "" {
		t.Errorf("update not applied: %+v", items[0])
	}
	if v, _ := src.Version(ctx); v != 4 {
		t.Errorf("Version() = %d, want 4", v)
	}

	_ = src.SetInteraction(ctx, core.InteractionRecord{UserID: "u", ItemID: "1", Kind: core.InteractionLike}, true)
	_ = src.SetInteraction(ctx, core.InteractionRecord{UserID: "u", ItemID: "1", Kind: core.InteractionBookmark}, true)
	_ = src.SetRating(ctx, "u", "2", 4)
	if err := src.SetRating(ctx, "u", "2", 9); !core.IsInvalidInput(err) {
		t.Errorf("SetRating(9) error = %v, want invalid input", err)
	}
	if err := src.SetInteraction(ctx, core.InteractionRecord{UserID: "u", ItemID: "2", Kind: core.InteractionRating}, true); err == nil {
		t.Error("SetInteraction(rating) should fail")
	}

	recs, err := src.Interactions(ctx, "u")
	if err != nil {
		t.Fatalf("Interactions() error = %v", err)
	}
	kinds := map[core.InteractionKind]string{}
	for _, r := range recs {
		kinds[r.Kind] = r.ItemID
	}
	if len(recs) != 3 || kinds[core.InteractionLike] != "1" || kinds[core.InteractionBookmark] != "1" || kinds[core.InteractionRating] != "2" {
		t.Errorf("Interactions() = %v", recs)
	}

	_ = src.SetInteraction(ctx, core.InteractionRecord{UserID: "u", ItemID: "1", Kind: core.InteractionLike}, false)
	recs, _ = src.Interactions(ctx, "u")
	if len(recs) != 2 {
		t.Errorf("Interactions() after unlike = %v", recs)
	}

	if err := src.DeleteItem(ctx, "1"); err != nil {
		t.Fatalf("DeleteItem() error = %v", err)
	}
	items, _ = src.Items(ctx)
	assertIDs(t, items, "0", "2")
	// 交互不级联删除
	recs, _ = src.Interactions(ctx, "u")
	if len(recs) != 2 {
		t.Errorf("interactions should survive item deletion, got %v", recs)
	}
}

type flakySource struct {
	*MemorySource
	err error
}

func (f *flakySource) Items(ctx context.Context) ([]core.CatalogItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.MemorySource.Items(ctx)
}

func TestBreakerSource(t *testing.T) {
	ctx := context.Background()
	inner := &flakySource{MemorySource: NewMemorySource(sampleItems()...)}
	src := NewBreakerSource(inner, BreakerConfig{Name: "test", FailureThreshold: 2, Timeout: time.Minute}, zerolog.Nop())

	items, err := src.Items(ctx)
	if err != nil || len(items) != 3 {
		t.Fatalf("Items() = %v, %v", items, err)
	}

	inner.err = errors.New("connection refused")
	for i := 0; i < 2; i++ {
		if _, err := src.Items(ctx); err == nil || errors.Is(err, ErrUnavailable) {
			t.Fatalf("call %d: error = %v, want pass-through failure", i, err)
		}
	}

	inner.err = nil
	_, err = src.Items(ctx)
	if !errors.Is(err, gobreaker.ErrOpenState) || !errors.Is(err, ErrUnavailable) {
		t.Errorf("Items() with open breaker error = %v, want open state", err)
	}
	if src.State() != gobreaker.StateOpen.String() {
		t.Errorf("State() = %s, want open", src.State())
	}
}

func TestBreakerSource_CallerContextNotCounted(t *testing.T) {
	inner := &flakySource{MemorySource: NewMemorySource(sampleItems()...)}
	src := NewBreakerSource(inner, BreakerConfig{Name: "ctx", FailureThreshold: 2, Timeout: time.Minute}, zerolog.Nop())

	for _, cause := range []error{context.Canceled, context.DeadlineExceeded} {
		inner.err = cause
		for i := 0; i < 3; i++ {
			if _, err := src.Items(context.Background()); !errors.Is(err, cause) {
				t.Fatalf("Items() error = %v, want %v", err, cause)
			}
		}
	}
	if src.State() != gobreaker.StateClosed.String() {
		t.Errorf("State() = %s, want closed", src.State())
	}

	inner.err = nil
	if _, err := src.Items(context.Background()); err != nil {
		t.Errorf("Items() error = %v", err)
	}
}
