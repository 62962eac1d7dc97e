package store

import (
	"reflect"
	"testing"
)

func TestQuerySetOrdersAndFilters(t *testing.T) {
	idx := Index[int, string]{7: "g", 2: "b", 5: "e", 1: "a"}
	got := NewQuerySet(idx).
		OrderBy(IntKeyAscending[string]).
		Filter(func(it Item[int, string]) bool { return it.Key < 6 }).
		All()
	if want := []string{"a", "b", "e"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	if len(idx) != 4 {
		t.Fatalf("index mutated: %v", idx)
	}
	if _, ok := Lookup(idx, 3); ok {
		t.Fatalf("unexpected lookup hit")
	}
}
