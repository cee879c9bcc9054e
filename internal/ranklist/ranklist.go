// Package ranklist provides the validated ranked-list type consumed by the
// similarity measures. A list is an ordered sequence of distinct items where
// position encodes rank: rank 0 is the most relevant result.
package ranklist

import (
	"net/http"
	"reflect"

	apperrors "github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/errors"
)

// List is an immutable ranked list. Construct one with New or FromAny; the
// zero value is an empty list.
type List[T comparable] struct {
	items []T
	ranks map[T]int
}

// New validates items and wraps them in a List. Every item must be distinct;
// a repeated item fails with errors.ErrDuplicateItem naming the item and both
// positions. An empty input is a valid (empty) list: emptiness is rejected by
// the measures themselves, not at construction.
func New[T comparable](items []T) (*List[T], error) {
	ranks := make(map[T]int, len(items))
	for i, item := range items {
		if first, ok := ranks[item]; ok {
			return nil, apperrors.Newf(apperrors.ErrDuplicateItem, http.StatusBadRequest,
				"item %v appears at ranks %d and %d", item, first, i)
		}
		ranks[item] = i
	}
	copied := make([]T, len(items))
	copy(copied, items)
	return &List[T]{items: copied, ranks: ranks}, nil
}

// FromAny adapts a dynamically typed value (a decoded JSON array, for
// example) into a List of any. The value must be a slice or array whose
// elements all have hashable (comparable) types; anything else fails with
// errors.ErrTypeMismatch.
func FromAny(v any) (*List[any], error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, apperrors.Newf(apperrors.ErrTypeMismatch, http.StatusBadRequest,
			"ranking must be a slice or array, got %T", v)
	}
	items := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if elem != nil && !reflect.TypeOf(elem).Comparable() {
			return nil, apperrors.Newf(apperrors.ErrTypeMismatch, http.StatusBadRequest,
				"item at rank %d has unhashable type %T", i, elem)
		}
		items[i] = elem
	}
	return New(items)
}

// Len returns the number of ranked items.
func (l *List[T]) Len() int {
	return len(l.items)
}

// At returns the item at the given rank. Ranks are 0-indexed; out-of-range
// ranks panic with the usual slice bounds error.
func (l *List[T]) At(rank int) T {
	return l.items[rank]
}

// Items returns a copy of the ranked items in rank order.
func (l *List[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// RankOf returns the rank of item and whether the list contains it.
func (l *List[T]) RankOf(item T) (int, bool) {
	rank, ok := l.ranks[item]
	return rank, ok
}

// Contains reports whether item appears anywhere in the list.
func (l *List[T]) Contains(item T) bool {
	_, ok := l.ranks[item]
	return ok
}
