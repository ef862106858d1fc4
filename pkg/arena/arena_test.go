package arena

import "testing"

type item struct {
	id int
}

func TestSlabPointersStable(t *testing.T) {
	s := NewSlab[item](4)

	first := s.New()
	first.id = 1
	var last *item
	for i := 0; i < 100; i++ {
		last = s.New()
		last.id = i + 2
	}

	if first.id != 1 {
		t.Errorf("first.id = %d after growth, want 1", first.id)
	}
	if s.At(0) != first {
		t.Error("At(0) does not return the first pointer")
	}
	if s.Len() != 101 {
		t.Errorf("Len() = %d, want 101", s.Len())
	}
	if last.id != 101 {
		t.Errorf("last.id = %d, want 101", last.id)
	}
}

func TestSlabResetZeroes(t *testing.T) {
	s := NewSlab[item](2)
	a := s.New()
	a.id = 7
	s.Reset()

	b := s.New()
	if b.id != 0 {
		t.Errorf("reused value id = %d, want 0", b.id)
	}
	if a != b {
		t.Error("Reset did not reuse the first chunk")
	}
}

func TestStackMarkRewind(t *testing.T) {
	s := NewStack[int](2)
	s.Push(1)
	mark := s.Mark()
	s.Push(2)
	s.Push(3)

	if got := s.Span(mark, 2); got[0] != 2 || got[1] != 3 {
		t.Errorf("Span = %v, want [2 3]", got)
	}

	s.Rewind(mark)
	if s.Len() != 1 {
		t.Errorf("Len() after rewind = %d, want 1", s.Len())
	}
}

func TestStackSpanIsCapped(t *testing.T) {
	s := NewStack[int](8)
	s.Push(1)
	s.Push(2)
	span := s.Span(0, 1)
	span = append(span, 99)
	if s.Span(1, 1)[0] != 2 {
		t.Error("append to a span overwrote the next value")
	}
	_ = span
}

func TestScopeResetsOnOutermostEnd(t *testing.T) {
	var a Arena
	slab := NewSlab[item](4)
	stack := NewStack[int](4)
	a.Register(slab, stack)

	outer := a.Begin()
	slab.New()
	stack.Push(1)

	inner := a.Begin()
	slab.New()
	inner.End()
	if slab.Len() != 2 {
		t.Errorf("inner End reset the slab: Len() = %d, want 2", slab.Len())
	}

	outer.End()
	if slab.Len() != 0 || stack.Len() != 0 {
		t.Errorf("outer End left slab=%d stack=%d, want 0 0", slab.Len(), stack.Len())
	}
	if a.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", a.Depth())
	}
}

func TestEndWithoutBeginPanics(t *testing.T) {
	var a Arena
	s := a.Begin()
	s.End()

	defer func() {
		if recover() == nil {
			t.Error("second End did not panic")
		}
	}()
	s.End()
}
