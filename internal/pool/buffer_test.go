package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferPoolPutClears(t *testing.T) {
	p := NewBufferPool(64, 0)
	b := p.Get()
	require.NotNil(t, b)
	b.WriteString("hello")
	b.WriteByte(' ')
	b.Write([]byte("world"))
	assert.Equal(t, "hello world", string(b.Bytes()))

	p.Put(b)
	assert.Equal(t, 0, b.Len())

	b2 := p.Get()
	assert.Equal(t, 0, b2.Len())
}

func TestBufferPoolDropsLargeBuffers(t *testing.T) {
	p := NewBufferPool(8, 16)
	b := p.Get()
	b.Write(make([]byte, 64))
	p.Put(b)
	assert.Equal(t, 0, b.Len())
}

func TestBufferWriteTo(t *testing.T) {
	b := NewBuffer(4)
	b.WriteString("abc")
	var out bytes.Buffer
	n, err := b.WriteTo(&out)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.Equal(t, "abc", out.String())
}

func TestPutNil(t *testing.T) {
	assert.NotPanics(t, func() { Put(nil) })
}
