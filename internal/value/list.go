package value

import "gsm/internal/errors"

// List is an ordered, 1-indexed sequence of owned Values (§3, §4.2). Every
// element's parentList points back at the owning List so that a shadow
// created by Subscript can find its originating slot again.
//
// Elements are stored as *Value so that slot identity is stable: Set
// mutates the slot in place instead of replacing the pointer, which is
// what lets a shadow's ShadowOf() pointer remain valid across repeated
// assignments to the same slot.
type List struct {
	elems []*Value
}

func NewList() *List { return &List{} }

func (l *List) Len() int { return len(l.elems) }

// Append takes ownership of v as a new last element.
func (l *List) Append(v Value) {
	owned := v
	owned.shadowOf = nil
	owned.parentList = l
	l.elems = append(l.elems, &owned)
}

// Get returns the slot at 1-based index i. The returned pointer is the
// live slot, not a copy — callers that want a value to push onto the
// stack must build a shadow or a Copy() of *slot, never hand the pointer
// itself out as a Value.
func (l *List) Get(i int) (*Value, error) {
	if i < 1 || i > len(l.elems) {
		return nil, errors.New(errors.IndexError, "index %d out of range [1,%d]", i, len(l.elems))
	}
	return l.elems[i-1], nil
}

// Set mutates the slot at 1-based index i in place with a copy of v.
func (l *List) Set(i int, v Value) error {
	if i < 1 || i > len(l.elems) {
		return errors.New(errors.IndexError, "index %d out of range [1,%d]", i, len(l.elems))
	}
	slot := l.elems[i-1]
	owned := v
	owned.shadowOf = nil
	owned.parentList = l
	*slot = owned
	return nil
}

// Find returns the 1-based index of slot within l, or 0 if slot does not
// belong to l. Used by shadow assignment (§4.2) to locate the originating
// element from a ShadowOf() back-reference.
func (l *List) Find(slot *Value) int {
	for i, e := range l.elems {
		if e == slot {
			return i + 1
		}
	}
	return 0
}

// Clone deep-copies the list and all of its elements. Destroying a list
// clears parentList on its elements before freeing them (§9) so that any
// in-flight shadow observing a freed slot never dereferences a dangling
// list; in Go this is simply a matter of never doing that in the other
// direction (a Clone never aliases the source list's slots).
func (l *List) Clone() *List {
	out := NewList()
	for _, e := range l.elems {
		out.Append(e.Copy())
	}
	return out
}

// Elements returns the live slot values, in order, for iteration
// (rendering, equality, etc). Callers must not retain the slice across a
// mutation of l.
func (l *List) Elements() []*Value {
	return l.elems
}
