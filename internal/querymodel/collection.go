package querymodel

import (
	"fmt"
	"iter"
	"slices"
)

// Collection is an ordered, mutable list of clauses, orderings, or result
// modifications.
//
// Iteration through All is change-resistant: the collection may be mutated
// while an iteration is in progress (by the loop body or a visitor it calls)
// and the iteration continues at the element that now follows the current
// one. Elements inserted at or before the current position shift it forward;
// removals at or before it shift it back. Nothing is skipped or visited
// twice because of a mutation made behind the cursor.
//
// A Collection is not safe for concurrent use.
type Collection[T any] struct {
	items   []T
	cursors []*cursor
}

// cursor tracks the index last yielded by one active iteration.
type cursor struct {
	pos int
}

// NewCollection creates a collection holding items in order.
func NewCollection[T any](items ...T) *Collection[T] {
	return &Collection[T]{items: slices.Clone(items)}
}

// Len returns the number of elements.
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// At returns the element at index i. It panics if i is out of range.
func (c *Collection[T]) At(i int) T {
	return c.items[i]
}

// Items returns a snapshot of the elements.
func (c *Collection[T]) Items() []T {
	return slices.Clone(c.items)
}

// Append adds item at the end.
func (c *Collection[T]) Append(item T) {
	c.items = append(c.items, item)
}

// Insert places item at index i, shifting later elements.
func (c *Collection[T]) Insert(i int, item T) error {
	if i < 0 || i > len(c.items) {
		return fmt.Errorf("insert index %d out of range [0, %d]", i, len(c.items))
	}
	c.items = slices.Insert(c.items, i, item)
	for _, cur := range c.cursors {
		if i <= cur.pos {
			cur.pos++
		}
	}
	return nil
}

// RemoveAt deletes the element at index i.
func (c *Collection[T]) RemoveAt(i int) error {
	if i < 0 || i >= len(c.items) {
		return fmt.Errorf("remove index %d out of range [0, %d)", i, len(c.items))
	}
	c.items = slices.Delete(c.items, i, i+1)
	for _, cur := range c.cursors {
		if i <= cur.pos {
			cur.pos--
		}
	}
	return nil
}

// Set replaces the element at index i.
func (c *Collection[T]) Set(i int, item T) error {
	if i < 0 || i >= len(c.items) {
		return fmt.Errorf("set index %d out of range [0, %d)", i, len(c.items))
	}
	c.items[i] = item
	return nil
}

// All iterates over (index, element) pairs.
//
// Each step re-reads the collection, so the index reported is the element's
// position at the time it is yielded.
func (c *Collection[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		cur := &cursor{pos: -1}
		c.cursors = append(c.cursors, cur)
		defer c.release(cur)

		for {
			next := cur.pos + 1
			if next >= len(c.items) {
				return
			}
			cur.pos = next
			if !yield(next, c.items[next]) {
				return
			}
		}
	}
}

func (c *Collection[T]) release(cur *cursor) {
	if i := slices.Index(c.cursors, cur); i >= 0 {
		c.cursors = slices.Delete(c.cursors, i, i+1)
	}
}
