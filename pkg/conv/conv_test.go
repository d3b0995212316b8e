package conv

import "testing"

func TestConfigGetInt(t *testing.T) {
	m := map[string]any{"n": 20, "f": 10.0, "s": "x"}
	if got := ConfigGetInt(m, "n", 1); got != 20 {
		t.Errorf("ConfigGetInt(n) = %d, want 20", got)
	}
	if got := ConfigGetInt(m, "f", 1); got != 10 {
		t.Errorf("ConfigGetInt(f) = %d, want 10", got)
	}
	if got := ConfigGetInt(m, "s", 7); got != 7 {
		t.Errorf("ConfigGetInt(s) = %d, want default 7", got)
	}
	if got := ConfigGetInt(nil, "n", 3); got != 3 {
		t.Errorf("ConfigGetInt(nil) = %d, want 3", got)
	}
}

func TestSliceAnyToString(t *testing.T) {
	got := SliceAnyToString([]any{"a", 12, 3.0, true})
	want := []string{"a", "12", "3"}
	if len(got) != len(want) {
		t.Fatalf("SliceAnyToString() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SliceAnyToString()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if SliceAnyToString("nope") != nil {
		t.Errorf("SliceAnyToString(non-slice) should be nil")
	}
}
