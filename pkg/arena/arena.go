// Package arena provides a typed bump allocator with scoped checkpoints.
//
// An Arena hands out windows of one fixed backing slice. Memory is released
// only by rolling back to a checkpoint (Begin/End), trimming the top
// allocation, or clearing the whole arena. Slices returned by Push carry a
// capped capacity, so appending past their length reallocates on the heap
// instead of overwriting the next allocation.
package arena

import (
	"errors"
	"fmt"
)

// ErrOutOfMemory is returned when an allocation does not fit.
var ErrOutOfMemory = errors.New("arena: out of memory")

// Arena is a bump allocator over a fixed buffer of T.
// It is not safe for concurrent use.
type Arena[T any] struct {
	buf []T
	top int
}

// Temp is a checkpoint returned by Begin.
type Temp struct {
	top int
}

// New creates an arena that can hold capacity values of T.
func New[T any](capacity int) *Arena[T] {
	return &Arena[T]{buf: make([]T, capacity)}
}

// Len returns the number of values currently allocated.
func (a *Arena[T]) Len() int {
	return a.top
}

// Cap returns the total capacity of the arena.
func (a *Arena[T]) Cap() int {
	return len(a.buf)
}

// Push allocates n values. The contents are whatever a previous allocation
// left behind; use PushZero for cleared memory.
func (a *Arena[T]) Push(n int) ([]T, error) {
	if n < 0 || a.top+n > len(a.buf) {
		return nil, fmt.Errorf("%w: push %d with %d/%d used", ErrOutOfMemory, n, a.top, len(a.buf))
	}
	s := a.buf[a.top : a.top+n : a.top+n]
	a.top += n
	return s, nil
}

// PushZero allocates n zeroed values.
func (a *Arena[T]) PushZero(n int) ([]T, error) {
	s, err := a.Push(n)
	if err != nil {
		return nil, err
	}
	clear(s)
	return s, nil
}

// Grow resizes s to n values. When s is the most recent allocation it grows
// in place, otherwise a new window is pushed and the old contents copied.
// Shrinking only reslices.
func (a *Arena[T]) Grow(s []T, n int) ([]T, error) {
	if n <= len(s) {
		return s[:n:n], nil
	}

	if a.isTop(s) {
		start := a.top - len(s)
		if start+n > len(a.buf) {
			return nil, fmt.Errorf("%w: grow %d to %d with %d/%d used", ErrOutOfMemory, len(s), n, a.top, len(a.buf))
		}
		a.top = start + n
		return a.buf[start : start+n : start+n], nil
	}

	grown, err := a.Push(n)
	if err != nil {
		return nil, err
	}
	copy(grown, s)
	return grown, nil
}

// Trim shrinks s to n values. When s is the most recent allocation the
// unused tail goes back to the arena.
func (a *Arena[T]) Trim(s []T, n int) []T {
	if n >= len(s) {
		return s
	}
	if a.isTop(s) {
		a.top -= len(s) - n
	}
	return s[:n:n]
}

// Begin records a checkpoint. Everything allocated after it is released by End.
func (a *Arena[T]) Begin() Temp {
	return Temp{top: a.top}
}

// End rolls the arena back to t. Slices allocated after t must not be used
// afterwards.
func (a *Arena[T]) End(t Temp) {
	if t.top <= a.top {
		a.top = t.top
	}
}

// Clear releases every allocation.
func (a *Arena[T]) Clear() {
	a.top = 0
}

// isTop reports whether s ends exactly at the current top.
func (a *Arena[T]) isTop(s []T) bool {
	if len(s) == 0 || len(s) > a.top {
		return false
	}
	return &a.buf[a.top-len(s)] == &s[0]
}
