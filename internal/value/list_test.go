package value

import "testing"

func TestListSetMutatesInPlace(t *testing.T) {
	l := NewList()
	l.Append(IntFromInt64(1))
	l.Append(IntFromInt64(2))

	slot, err := l.Get(1)
	if err != nil {
		t.Fatalf("Get(1): %v", err)
	}

	if err := l.Set(1, IntFromInt64(100)); err != nil {
		t.Fatalf("Set(1): %v", err)
	}

	// slot must still be the live element after Set, since Set mutates
	// in place rather than replacing the stored pointer — this is what
	// keeps a previously taken shadow valid.
	if slot.Int.Int64() != 100 {
		t.Fatalf("Set() did not mutate the existing slot in place; slot still holds %v", slot.Int)
	}
}

func TestListGetOutOfRange(t *testing.T) {
	l := NewList()
	l.Append(IntFromInt64(1))

	if _, err := l.Get(0); err == nil {
		t.Fatalf("Get(0) should fail: lists are 1-indexed")
	}
	if _, err := l.Get(2); err == nil {
		t.Fatalf("Get(2) should fail: list has only one element")
	}
}

func TestListFindByIdentity(t *testing.T) {
	l := NewList()
	l.Append(IntFromInt64(1))
	l.Append(IntFromInt64(2))

	slot2, _ := l.Get(2)
	if idx := l.Find(slot2); idx != 2 {
		t.Fatalf("Find(slot2) = %d, want 2", idx)
	}

	other := IntFromInt64(2)
	if idx := l.Find(&other); idx != 0 {
		t.Fatalf("Find() of a non-member pointer should be 0, got %d", idx)
	}
}

func TestListCloneIsIndependent(t *testing.T) {
	l := NewList()
	l.Append(IntFromInt64(1))

	clone := l.Clone()
	clone.Set(1, IntFromInt64(999))

	orig, _ := l.Get(1)
	if orig.Int.Int64() != 1 {
		t.Fatalf("Clone() aliased the source list: source mutated to %v", orig.Int)
	}
}
