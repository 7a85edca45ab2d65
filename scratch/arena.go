// Package scratch implements the per-query linear allocator used for
// traversal-time scratch storage: KD-tree and QBVH traversal stacks, and
// any other array whose size is known at the start of a query but whose
// lifetime must not outlive it. Scratch is per query rather than
// process-wide: a global scratch area would make concurrent ray streams
// unsafe for no benefit.
package scratch

import (
	"fmt"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Arena is a bump allocator over a single backing buffer. It is not safe
// for concurrent use: a caller issuing concurrent ray queries must give
// each goroutine (or each ray stream) its own Arena, exactly as each needs
// its own mailbox instance.
type Arena struct {
	buf    []byte
	offset int
}

// NewArena allocates an arena with the given byte capacity. Capacity should
// be sized from the structure's recorded StackDepth (or similar) so no
// query ever needs to grow it.
func NewArena(capacity int) *Arena {
	return &Arena{buf: make([]byte, capacity)}
}

// Reset rewinds the arena to empty, invalidating every slice previously
// handed out by ScratchArray. Call it between queries that reuse the same
// Arena.
func (a *Arena) Reset() {
	a.offset = 0
}

// Mark returns a checkpoint that Release rewinds back to, letting nested
// scopes release their own scratch without clobbering an enclosing scope's
// allocations.
func (a *Arena) Mark() int {
	return a.offset
}

// Release rewinds the arena to a checkpoint previously returned by Mark.
// Slices handed out past the checkpoint alias memory the next ScratchArray
// will reuse and must not be touched again.
func (a *Arena) Release(mark int) {
	a.offset = mark
}

// ScratchArray reserves space for n values of T from the arena's backing
// buffer and returns it as a slice, plus a release function that must be
// called when the slice is no longer needed (typically via defer,
// guaranteeing release on every exit path including a panicking traversal
// overflow). The slice aliases the arena's buffer directly; its contents
// are whatever the previous occupant of that region left behind.
func ScratchArray[T any](a *Arena, n int) ([]T, func()) {
	mark := a.Mark()

	var zero T
	size := int(unsafe.Sizeof(zero))
	align := int(unsafe.Alignof(zero))

	start := (a.offset + align - 1) &^ (align - 1)
	end := start + size*n
	if end > len(a.buf) {
		panic(fmt.Sprintf("scratch: arena of %d bytes exhausted requesting %d bytes", len(a.buf), end-mark))
	}
	a.offset = end

	if n == 0 {
		return nil, func() { a.Release(mark) }
	}
	out := unsafe.Slice((*T)(unsafe.Pointer(&a.buf[start])), n)
	return out, func() { a.Release(mark) }
}

// Counter is a monotonically increasing tally typed over any integer width,
// used where a count accumulates across traversal callbacks (intersection
// calls per ray, stack pushes per query) without deciding int vs int32 at
// every call site.
type Counter[T constraints.Integer] struct {
	value T
}

// Add increments the counter by delta and returns the new value.
func (c *Counter[T]) Add(delta T) T {
	c.value += delta
	return c.value
}

// Value returns the counter's current value.
func (c *Counter[T]) Value() T {
	return c.value
}
