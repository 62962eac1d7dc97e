package store

import (
	"sort"
)

// Index is an id-keyed collection of records.
type Index[K comparable, V any] map[K]V

// Lookup returns the record stored under id.
func Lookup[K comparable, V any](idx Index[K, V], id K) (V, bool) {
	v, ok := idx[id]
	return v, ok
}

// Item pairs a record with the key it is indexed under.
type Item[K comparable, V any] struct {
	Key   K
	Value V
}

// QuerySet is an ordered, filterable view over an Index. Each operation
// returns a new QuerySet; the underlying index is never modified.
type QuerySet[K comparable, V any] struct {
	items []Item[K, V]
}

// NewQuerySet snapshots idx. Map iteration order is random, so callers that
// need a stable order should call OrderBy.
func NewQuerySet[K comparable, V any](idx Index[K, V]) *QuerySet[K, V] {
	items := make([]Item[K, V], 0, len(idx))
	for k, v := range idx {
		items = append(items, Item[K, V]{Key: k, Value: v})
	}
	return &QuerySet[K, V]{items: items}
}

// OrderBy sorts the items with less.
func (q *QuerySet[K, V]) OrderBy(less func(a, b Item[K, V]) bool) *QuerySet[K, V] {
	items := append([]Item[K, V](nil), q.items...)
	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i], items[j])
	})
	return &QuerySet[K, V]{items: items}
}

// Filter keeps the items for which keep returns true.
func (q *QuerySet[K, V]) Filter(keep func(Item[K, V]) bool) *QuerySet[K, V] {
	items := make([]Item[K, V], 0, len(q.items))
	for _, it := range q.items {
		if keep(it) {
			items = append(items, it)
		}
	}
	return &QuerySet[K, V]{items: items}
}

// All returns the records in query order.
func (q *QuerySet[K, V]) All() []V {
	out := make([]V, 0, len(q.items))
	for _, it := range q.items {
		out = append(out, it.Value)
	}
	return out
}

// Len returns the number of matching items.
func (q *QuerySet[K, V]) Len() int {
	return len(q.items)
}

// IntKeyAscending orders integer-keyed items by key.
func IntKeyAscending[V any](a, b Item[int, V]) bool {
	return a.Key < b.Key
}
