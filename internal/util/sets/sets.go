package sets

import "slices"

// Set is a simple generic hash set for comparable keys.
// Usage: s := sets.New[string]("a","b"); s.Add("c"); if s.Has("b") {...}
type Set[T comparable] map[T]struct{}

// New creates a set pre-populated with the provided values.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts value into the set.
func (s Set[T]) Add(v T) { s[v] = struct{}{} }

// Has returns true if v is present.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Ordered is an insertion-ordered set with value semantics: With returns a
// new set and never mutates the receiver, so a value can be handed down a
// recursion without the callee affecting the caller's view.
type Ordered[T comparable] struct {
	items []T
	index map[T]int
}

// NewOrdered creates an ordered set from vals (duplicates are dropped).
func NewOrdered[T comparable](vals ...T) Ordered[T] {
	var o Ordered[T]
	for _, v := range vals {
		if !o.Has(v) {
			o = o.With(v)
		}
	}
	return o
}

// With returns a copy of o with v appended. Appending a present value
// returns o unchanged.
func (o Ordered[T]) With(v T) Ordered[T] {
	if o.Has(v) {
		return o
	}
	items := make([]T, len(o.items), len(o.items)+1)
	copy(items, o.items)
	items = append(items, v)
	index := make(map[T]int, len(items))
	for i, it := range items {
		index[it] = i
	}
	return Ordered[T]{items: items, index: index}
}

// Has reports whether v is in the set.
func (o Ordered[T]) Has(v T) bool {
	_, ok := o.index[v]
	return ok
}

// IndexOf returns the insertion position of v or -1.
func (o Ordered[T]) IndexOf(v T) int {
	if i, ok := o.index[v]; ok {
		return i
	}
	return -1
}

// Len returns the number of elements.
func (o Ordered[T]) Len() int { return len(o.items) }

// From returns the elements from position i (inclusive) to the end.
func (o Ordered[T]) From(i int) []T {
	if i < 0 || i >= len(o.items) {
		return nil
	}
	return slices.Clone(o.items[i:])
}
