package pool

import (
	"io"

	"github.com/karagenc/jsonwalk/internal/sync"
)

const (
	DefaultBufferSize  = 1024 * 16  // 16KiB
	MaxRetainedBufSize = 1024 * 256 // 256KiB
)

type Buffer struct {
	// B is the underlying byte slice.
	B []byte
}

func NewBuffer(size int) *Buffer {
	return &Buffer{B: make([]byte, 0, size)}
}

func (b *Buffer) Bytes() []byte { return b.B }

func (b *Buffer) Len() int { return len(b.B) }

// Reset empties the buffer, keeping the allocated memory.
func (b *Buffer) Reset() { b.B = b.B[:0] }

func (b *Buffer) Write(p []byte) (int, error) {
	b.B = append(b.B, p...)
	return len(p), nil
}

func (b *Buffer) WriteByte(c byte) error {
	b.B = append(b.B, c)
	return nil
}

func (b *Buffer) WriteString(s string) (int, error) {
	b.B = append(b.B, s...)
	return len(s), nil
}

func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.B)
	return int64(n), err
}

// BufferPool hands out Buffers backed by a sync.Pool. Buffers whose capacity
// grew beyond maxRetained are dropped instead of being pooled.
type BufferPool struct {
	pool        sync.Pool
	maxRetained int
}

func NewBufferPool(size, maxRetained int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewBuffer(size)
			},
		},
		maxRetained: maxRetained,
	}
}

func (p *BufferPool) Get() *Buffer {
	b, _ := p.pool.Get().(*Buffer)
	return b
}

// Put clears b and returns it to the pool.
func (p *BufferPool) Put(b *Buffer) {
	if b == nil {
		return
	}
	b.Reset()
	if p.maxRetained > 0 && cap(b.B) > p.maxRetained {
		return
	}
	p.pool.Put(b)
}

var defaultPool = NewBufferPool(DefaultBufferSize, MaxRetainedBufSize)

func Get() *Buffer { return defaultPool.Get() }

func Put(b *Buffer) { defaultPool.Put(b) }
