package merge

import (
	"reflect"
	"testing"
)

func TestClassifySuffixes(t *testing.T) {
	cases := []struct {
		key      string
		wantMode Mode
		wantName string
	}{
		{"sources=", Replace, "sources"},
		{"foo?", Cond, "foo"},
		{"sources+", Prepend, "sources"},
		{"sources!", Exclude, "sources"},
		{"sources", Auto, "sources"},
		{"foo%", Auto, "foo%"}, // '%' is not a merge suffix (it's the defaults marker)
	}
	for _, c := range cases {
		mode, name := Classify(c.key)
		if mode != c.wantMode || name != c.wantName {
			t.Errorf("Classify(%q) = (%v, %q), want (%v, %q)", c.key, mode, name, c.wantMode, c.wantName)
		}
	}
}

func TestMergeAutoObjectsRecurse(t *testing.T) {
	dst := map[string]any{"a": float64(1), "nested": map[string]any{"x": "1"}}
	src := map[string]any{"nested": map[string]any{"y": "2"}}

	got := Merge(dst, src, Auto)
	want := map[string]any{"a": float64(1), "nested": map[string]any{"x": "1", "y": "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestMergeAutoArraysAppend(t *testing.T) {
	dst := []any{"a.c"}
	src := []any{"b.c"}
	got := Merge(dst, src, Auto)
	want := []any{"a.c", "b.c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMergePrimitiveOverwriteIsIdempotent(t *testing.T) {
	dst := map[string]any{"b": "y"}
	src := map[string]any{"b": "y"}
	once := Merge(dst, src, Auto).(map[string]any)
	twice := Merge(once, src, Auto).(map[string]any)
	if once["b"] != twice["b"] {
		t.Fatalf("primitive overwrite under auto not idempotent: once=%v twice=%v", once["b"], twice["b"])
	}
}

func TestMergeReplaceArray(t *testing.T) {
	dst := []any{"old"}
	src := []any{"new"}
	got := Merge(dst, src, Replace)
	want := []any{"new"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMergePrependArray(t *testing.T) {
	dst := []any{"b"}
	src := []any{"a"}
	got := Merge(dst, src, Prepend)
	want := []any{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExcludeOfSelfIsEmpty(t *testing.T) {
	v := []any{"a", "b", "c"}
	got := Merge(v, v, Exclude)
	if len(got.([]any)) != 0 {
		t.Fatalf("exclude of self should be empty, got %v", got)
	}
}

func TestExcludeKeepsUnmatchedEntriesInOrder(t *testing.T) {
	dst := []any{"a", "b", "c"}
	src := []any{"b"}
	got := Merge(dst, src, Exclude)
	want := []any{"a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCondNoOpOnNonEmptyDestination(t *testing.T) {
	dst := []any{"existing"}
	src := []any{"new"}
	got := Merge(dst, src, Cond)
	if !reflect.DeepEqual(got, dst) {
		t.Fatalf("cond should be a no-op on non-empty dst, got %v", got)
	}
}

func TestCondAppliesOnEmptyDestination(t *testing.T) {
	var dst []any
	src := []any{"new"}
	got := Merge(dst, src, Cond)
	want := []any{"new"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMergeKindMismatchIsNoOp(t *testing.T) {
	dst := map[string]any{"a": 1.0}
	src := []any{"x"}
	got := Merge(dst, src, Auto)
	if !reflect.DeepEqual(got, dst) {
		t.Fatalf("kind mismatch should leave dst unchanged, got %v", got)
	}
}

func TestMergeNonContainerDestinationBecomesClone(t *testing.T) {
	got := Merge("old", "new", Auto)
	if got != "new" {
		t.Fatalf("got %v, want %v", got, "new")
	}
}

func TestCloneUnderRewritesNestedSuffixedKeys(t *testing.T) {
	src := map[string]any{"sources=": []any{"a.c"}}
	cloned := CloneUnder(Auto, src).(map[string]any)
	if _, stillSuffixed := cloned["sources="]; stillSuffixed {
		t.Fatalf("clone should rewrite suffixed keys, got raw key still present: %#v", cloned)
	}
	if _, ok := cloned["sources"]; !ok {
		t.Fatalf("expected stripped key 'sources' in clone: %#v", cloned)
	}
}

func TestStrictModeIgnoresSuffixes(t *testing.T) {
	dst := map[string]any{}
	src := map[string]any{"sources=": []any{"a.c"}}
	got := Merge(dst, src, Strict).(map[string]any)
	if _, ok := got["sources="]; !ok {
		t.Fatalf("strict mode should keep the literal suffixed key, got %#v", got)
	}
}
