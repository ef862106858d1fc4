// Package arena provides per-frame storage that is released in bulk. Values
// are never freed one at a time; a Scope resets every registered pool when the
// outermost frame call returns.
package arena

// Resetter is a pool that can drop all of its values at once.
type Resetter interface {
	Reset()
}

// Arena groups the pools of one frame.
type Arena struct {
	pools []Resetter
	depth int
}

// Register adds pools to be reset when the outermost scope ends.
func (a *Arena) Register(pools ...Resetter) {
	a.pools = append(a.pools, pools...)
}

// Scope is an open use of the arena. End must be called exactly once.
type Scope struct {
	a *Arena
}

// Begin opens a scope. Scopes nest; only the outermost End resets the pools.
//
//	defer a.Begin().End()
func (a *Arena) Begin() Scope {
	a.depth++
	return Scope{a: a}
}

// Depth returns the number of open scopes.
func (a *Arena) Depth() int {
	return a.depth
}

// End closes the scope.
func (s Scope) End() {
	a := s.a
	if a.depth == 0 {
		panic("arena: End without Begin")
	}
	a.depth--
	if a.depth == 0 {
		for _, p := range a.pools {
			p.Reset()
		}
	}
}

// Slab hands out pointers to zeroed T values. Storage is allocated in
// fixed-size chunks so pointers stay valid until Reset; chunks are reused
// across resets.
type Slab[T any] struct {
	chunks [][]T
	size   int
	n      int
}

// NewSlab returns a slab allocating chunkSize values at a time.
func NewSlab[T any](chunkSize int) *Slab[T] {
	if chunkSize <= 0 {
		chunkSize = 64
	}
	return &Slab[T]{size: chunkSize}
}

// New returns a pointer to a zeroed value.
func (s *Slab[T]) New() *T {
	c, i := s.n/s.size, s.n%s.size
	if c == len(s.chunks) {
		s.chunks = append(s.chunks, make([]T, s.size))
	}
	s.n++
	p := &s.chunks[c][i]
	var zero T
	*p = zero
	return p
}

// Len returns the number of values handed out since the last Reset.
func (s *Slab[T]) Len() int {
	return s.n
}

// At returns the i-th value handed out.
func (s *Slab[T]) At(i int) *T {
	if i < 0 || i >= s.n {
		panic("arena: slab index out of range")
	}
	return &s.chunks[i/s.size][i%s.size]
}

// Reset invalidates every value.
func (s *Slab[T]) Reset() {
	s.n = 0
}

// Stack is a bump buffer. Callers address ranges by index so that growth of
// the backing array never leaves them pointing at stale memory.
type Stack[T any] struct {
	buf []T
}

// NewStack returns a stack with room for capacity values before it grows.
func NewStack[T any](capacity int) *Stack[T] {
	return &Stack[T]{buf: make([]T, 0, capacity)}
}

// Push appends v and returns its index.
func (s *Stack[T]) Push(v T) int {
	s.buf = append(s.buf, v)
	return len(s.buf) - 1
}

// Mark returns the current top for a later Rewind.
func (s *Stack[T]) Mark() int {
	return len(s.buf)
}

// Rewind drops every value pushed after mark.
func (s *Stack[T]) Rewind(mark int) {
	if mark < 0 || mark > len(s.buf) {
		panic("arena: rewind past stack bounds")
	}
	s.buf = s.buf[:mark]
}

// At returns the value at index i.
func (s *Stack[T]) At(i int) T {
	return s.buf[i]
}

// Span returns the values in [start, start+n).
func (s *Stack[T]) Span(start, n int) []T {
	return s.buf[start : start+n : start+n]
}

// Len returns the number of values on the stack.
func (s *Stack[T]) Len() int {
	return len(s.buf)
}

// Reset empties the stack.
func (s *Stack[T]) Reset() {
	s.buf = s.buf[:0]
}
