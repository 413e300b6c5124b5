// Package pool recycles the scratch memory of tokenizing and log rendering.
package pool

import (
	"math/bits"
	"sync"
)

// Pool is a typed wrapper around sync.Pool.
type Pool[T any] struct {
	p     sync.Pool
	clean func(*T)
}

// NewPool returns a pool that allocates with factory when empty.
func NewPool[T any](factory func() *T) *Pool[T] {
	return NewPoolWithReset(factory, nil)
}

// NewPoolWithReset is NewPool with a reset applied to every object handed
// back through Put, so pooled objects never pin the values they last held.
func NewPoolWithReset[T any](factory func() *T, reset func(*T)) *Pool[T] {
	pl := &Pool[T]{clean: reset}
	pl.p.New = func() any { return factory() }
	return pl
}

func (pl *Pool[T]) Get() *T {
	return pl.p.Get().(*T)
}

// Put ignores nil.
func (pl *Pool[T]) Put(obj *T) {
	if obj == nil {
		return
	}
	if pl.clean != nil {
		pl.clean(obj)
	}
	pl.p.Put(obj)
}

// Byte buffers come in four size classes: 64, 256, 1024 and 4096 bytes.
const (
	minClassShift = 6
	numClasses    = 4
	maxClassSize  = 1 << (minClassShift + 2*(numClasses-1))
)

// BufferPool hands out empty byte slices of at least a requested capacity.
// Requests above the largest class are served by a plain allocation.
type BufferPool struct {
	classes [numClasses]*Pool[[]byte]
}

func classSize(i int) int { return 1 << (minClassShift + 2*i) }

// classFor returns the smallest class holding n bytes.
func classFor(n int) int {
	if n <= 1<<minClassShift {
		return 0
	}
	// each class is four times the previous one
	return (bits.Len(uint(n-1)) - minClassShift + 1) / 2
}

func NewBufferPool() *BufferPool {
	bp := &BufferPool{}
	for i := range bp.classes {
		size := classSize(i)
		bp.classes[i] = NewPoolWithReset(
			func() *[]byte {
				b := make([]byte, 0, size)
				return &b
			},
			func(b *[]byte) { *b = (*b)[:0] },
		)
	}
	return bp
}

func (bp *BufferPool) Get(minCap int) *[]byte {
	if minCap > maxClassSize {
		b := make([]byte, 0, minCap)
		return &b
	}
	return bp.classes[classFor(minCap)].Get()
}

// Put files buf under the largest class it can fully serve. Buffers smaller
// than the first class or larger than the last are dropped.
func (bp *BufferPool) Put(buf *[]byte) {
	if buf == nil {
		return
	}
	c := cap(*buf)
	if c < classSize(0) || c > maxClassSize {
		return
	}
	i := classFor(c)
	if classSize(i) > c {
		i--
	}
	bp.classes[i].Put(buf)
}

// TokenPool recycles the token slices a command line is split into.
type TokenPool struct {
	*Pool[[]string]
}

func NewTokenPool(defaultCap int) *TokenPool {
	return &TokenPool{
		Pool: NewPoolWithReset(
			func() *[]string {
				s := make([]string, 0, defaultCap)
				return &s
			},
			func(s *[]string) {
				clear(*s)
				*s = (*s)[:0]
			},
		),
	}
}

var (
	buffers = NewBufferPool()
	tokens  = NewTokenPool(16)
)

func GetBuffer(minCap int) *[]byte { return buffers.Get(minCap) }

func PutBuffer(buf *[]byte) { buffers.Put(buf) }

func GetTokens() *[]string { return tokens.Get() }

func PutTokens(t *[]string) { tokens.Put(t) }
