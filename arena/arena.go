// Package arena implements a monotonic bump allocator over a pre-reserved
// block of memory. Nothing is freed individually; the whole block is released
// with Reset or when the owner drops it.
package arena

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"
)

// ErrExhausted is the panic value (wrapped) raised when a push does not fit.
var ErrExhausted = errors.New("arena: exhausted")

// ErrPointerType is the panic value (wrapped) raised when a typed push is
// asked for a type that holds Go pointers. Arena memory is a plain byte block
// and is never scanned by the garbage collector.
var ErrPointerType = errors.New("arena: type contains pointers")

const wordSize = int(unsafe.Sizeof(uintptr(0)))

// Arena hands out word-aligned regions of its base block in order.
type Arena struct {
	base []byte
	used int
}

// New reserves a zeroed block of size bytes.
func New(size int) *Arena {
	return NewFromBuffer(make([]byte, size))
}

// NewFromBuffer wraps a caller-owned zeroed block. Leading bytes are skipped
// when the block does not start on a word boundary.
func NewFromBuffer(base []byte) *Arena {
	if len(base) > 0 {
		addr := uintptr(unsafe.Pointer(unsafe.SliceData(base)))
		pad := int(-addr & uintptr(wordSize-1))
		if pad > len(base) {
			pad = len(base)
		}
		base = base[pad:]
	}
	return &Arena{base: base}
}

// Size returns the total number of bytes the arena can hand out.
func (a *Arena) Size() int {
	if a == nil {
		return 0
	}
	return len(a.base)
}

// Used returns the number of bytes handed out so far, including padding.
func (a *Arena) Used() int {
	if a == nil {
		return 0
	}
	return a.used
}

// Remaining returns Size() - Used().
func (a *Arena) Remaining() int {
	return a.Size() - a.Used()
}

// Reset releases every region at once and zeroes the memory that was in use.
// Slices and handles obtained before Reset must not be used afterwards.
func (a *Arena) Reset() {
	if a == nil {
		return
	}
	clear(a.base[:a.used])
	a.used = 0
}

// Push returns the next size bytes of the block and advances the used counter
// by size rounded up to the word size. The returned memory is zeroed.
// Push panics with ErrExhausted when the request does not fit.
func (a *Arena) Push(size int) []byte {
	if size < 0 {
		panic(fmt.Errorf("%w: negative size %d", ErrExhausted, size))
	}
	n := alignUp(size)
	if n > len(a.base)-a.used {
		panic(fmt.Errorf("%w: need %d bytes, %d of %d in use", ErrExhausted, n, a.used, len(a.base)))
	}
	p := a.base[a.used : a.used+size : a.used+size]
	a.used += n
	return p
}

func alignUp(n int) int {
	return (n + wordSize - 1) &^ (wordSize - 1)
}

// PushStruct carves a zeroed T out of the arena.
func PushStruct[T any](a *Arena) *T {
	t := reflect.TypeFor[T]()
	mustBePointerFree(t)
	if t.Size() == 0 {
		return new(T)
	}
	b := a.Push(int(t.Size()))
	return (*T)(unsafe.Pointer(unsafe.SliceData(b)))
}

// PushArray carves a zeroed []T of length n out of the arena.
func PushArray[T any](a *Arena, n int) []T {
	s, _ := PushArrayRef[T](a, n)
	return s
}

// Ref is a handle to an array pushed onto an arena. Unlike a slice it holds
// no Go pointer, so it may itself live in arena memory. The zero Ref refers
// to nothing.
type Ref struct {
	off uint32
	n   uint32
}

// Nil reports whether r refers to nothing.
func (r Ref) Nil() bool {
	return r.n == 0
}

// Len returns the element count of the referenced array.
func (r Ref) Len() int {
	return int(r.n)
}

// PushArrayRef is PushArray that also returns a handle to the new array.
// Pushing zero elements yields a nil slice and the zero Ref.
func PushArrayRef[T any](a *Arena, n int) ([]T, Ref) {
	t := reflect.TypeFor[T]()
	mustBePointerFree(t)
	if n <= 0 {
		return nil, Ref{}
	}
	size := int(t.Size())
	if size == 0 {
		return make([]T, n), Ref{}
	}
	off := a.used
	b := a.Push(n * size)
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), Ref{off: uint32(off), n: uint32(n)}
}

// Resolve returns the array r refers to. It panics when r points outside the
// region handed out so far; a nil Ref resolves to a nil slice.
func Resolve[T any](a *Arena, r Ref) []T {
	if r.Nil() {
		return nil
	}
	size := int(reflect.TypeFor[T]().Size())
	end := int(r.off) + int(r.n)*size
	if size == 0 || end > a.used {
		panic(fmt.Errorf("arena: ref [%d,%d) outside used region of %d bytes", r.off, end, a.used))
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&a.base[r.off])), int(r.n))
}

func mustBePointerFree(t reflect.Type) {
	if hasPointers(t) {
		panic(fmt.Errorf("%w: %s", ErrPointerType, t))
	}
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Slice,
		reflect.String, reflect.Chan, reflect.Func, reflect.Interface:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
