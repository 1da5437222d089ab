package jsonwalk

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedSplit(t *testing.T, typ reflect.Type, data []byte, offset int, o *Options) reflect.Value {
	t.Helper()
	d, err := NewDeserializer(typ, o)
	require.NoError(t, err)

	first := append([]byte(nil), data[:offset]...)
	done, err := d.Feed(first, false)
	require.NoError(t, err, "offset %d", offset)
	require.False(t, done, "offset %d", offset)
	// The caller may reuse its block once Feed returned.
	for i := range first {
		first[i] = 'x'
	}

	done, err = d.Feed(data[offset:], true)
	require.NoError(t, err, "offset %d", offset)
	require.True(t, done, "offset %d", offset)
	require.True(t, d.Done())
	return d.Value()
}

func TestFeedSplitAtEveryOffset(t *testing.T) {
	data := []byte(` {"name" : "Ada \"the\" first","age":36,"score":1.5,"active":true,` +
		`"tags":["a","b"],"address":{"street":"Mainé"},"attrs":{"x":1,"y":2},"skip":[{"q":[null]}]} `)
	expected, err := Unmarshal[person](data, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ada \"the\" first", expected.Name)

	end := bytes.LastIndexByte(data, '}')
	for offset := 0; offset <= end; offset++ {
		v := feedSplit(t, reflect.TypeOf(person{}), data, offset, nil)
		assert.Equal(t, expected, v.Interface(), "offset %d", offset)
	}

	d, err := NewDeserializer(reflect.TypeOf(person{}), nil)
	require.NoError(t, err)
	_, err = d.Feed(data, true)
	require.NoError(t, err)
	// Trailing whitespace is checked but not consumed.
	assert.Equal(t, int64(end+1), d.BytesConsumed())
}

func TestFeedByteByByte(t *testing.T) {
	data := []byte(`[{"k":[1,2,{"z":"long string value"}]},true,null,-12.5e3]`)
	d, err := NewDeserializer(anyType, nil)
	require.NoError(t, err)
	last := len(data) - 1
	for i := 0; i < last; i++ {
		done, err := d.Feed(data[i:i+1], false)
		require.NoError(t, err)
		require.False(t, done)
	}
	done, err := d.Feed(data[last:], true)
	require.NoError(t, err)
	require.True(t, done)

	expected := []any{
		map[string]any{"k": []any{1.0, 2.0, map[string]any{"z": "long string value"}}},
		true,
		nil,
		-12500.0,
	}
	assert.Equal(t, expected, d.Value().Interface())
}

func TestFeedErrorIsSticky(t *testing.T) {
	d, err := NewDeserializer(reflect.TypeOf(person{}), nil)
	require.NoError(t, err)
	_, err = d.Feed([]byte(`{"age":"x"`), false)
	require.ErrorIs(t, err, ErrCannotConvert)

	_, err2 := d.Feed([]byte(`}`), true)
	assert.Equal(t, err, err2)
}

func TestFeedTruncatedFinalBlock(t *testing.T) {
	d, err := NewDeserializer(reflect.TypeOf(person{}), nil)
	require.NoError(t, err)
	_, err = d.Feed([]byte(`{"age":3`), false)
	require.NoError(t, err)
	_, err = d.Feed(nil, true)
	assert.Error(t, err)
}

func TestNewDeserializerNilType(t *testing.T) {
	_, err := NewDeserializer(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func nested(depth int) string {
	return strings.Repeat("[", depth) + strings.Repeat("]", depth)
}

func TestReadDepthLimit(t *testing.T) {
	_, err := Deserialize([]byte(nested(64)), anyType, nil)
	require.NoError(t, err)

	_, err = Deserialize([]byte(nested(65)), anyType, nil)
	require.ErrorIs(t, err, ErrDepthExceeded)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, ErrDepthExceeded, e.Kind)

	o, err := NewOptions(WithMaxDepth(2))
	require.NoError(t, err)
	_, err = Deserialize([]byte(`[[1]]`), anyType, o)
	require.NoError(t, err)
	_, err = Deserialize([]byte(`[[[1]]]`), anyType, o)
	assert.ErrorIs(t, err, ErrDepthExceeded)
}

type node struct {
	Value int   `json:"value"`
	Next  *node `json:"next"`
}

func TestWriteDepthLimit(t *testing.T) {
	o, err := NewOptions(WithMaxDepth(3))
	require.NoError(t, err)

	data, err := Marshal(&node{Value: 1, Next: &node{Value: 2, Next: &node{Value: 3}}}, o)
	require.NoError(t, err)
	assert.Equal(t, `{"value":1,"next":{"value":2,"next":{"value":3,"next":null}}}`, string(data))

	_, err = Marshal(&node{Next: &node{Next: &node{Next: &node{}}}}, o)
	assert.ErrorIs(t, err, ErrDepthExceeded)
}

func TestWriteCycleFails(t *testing.T) {
	n := &node{Value: 1}
	n.Next = n
	_, err := Marshal(n, nil)
	require.ErrorIs(t, err, ErrDepthExceeded)

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.True(t, strings.HasPrefix(e.Path, "$.next.next."), e.Path)
}

func TestSerializerChunks(t *testing.T) {
	values := make([]int, 100)
	for i := range values {
		values[i] = i * 1000
	}
	expected, err := Marshal(values, nil)
	require.NoError(t, err)

	o, err := NewOptions(WithDefaultBufferSize(8))
	require.NoError(t, err)
	s, err := NewSerializer(values, nil, o)
	require.NoError(t, err)
	defer s.Close()

	var (
		out    []byte
		chunks int
	)
	for {
		chunk, done, err := s.Next()
		require.NoError(t, err)
		out = append(out, chunk...)
		chunks++
		if done {
			break
		}
		// Pauses happen once the threshold is reached, after one more value at most.
		assert.GreaterOrEqual(t, len(chunk), 8)
		assert.Less(t, len(chunk), 8+len(",100000"))
	}
	assert.Equal(t, string(expected), string(out))
	assert.Greater(t, chunks, 10)

	chunk, done, err := s.Next()
	require.NoError(t, err)
	assert.True(t, done)
	assert.Empty(t, chunk)
}

func TestSerializerAfterClose(t *testing.T) {
	s, err := NewSerializer([]int{1}, nil, nil)
	require.NoError(t, err)
	s.Close()
	s.Close()
	_, _, err = s.Next()
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestSerializerErrorIsSticky(t *testing.T) {
	o, err := NewOptions(WithDefaultBufferSize(1))
	require.NoError(t, err)
	s, err := NewSerializer(map[string]any{"a": 1, "b": make(chan int)}, nil, o)
	require.NoError(t, err)
	defer s.Close()

	var last error
	for i := 0; i < 10 && last == nil; i++ {
		_, _, last = s.Next()
	}
	require.ErrorIs(t, last, ErrCannotConvert)
	_, _, err = s.Next()
	assert.Equal(t, last, err)
}

func TestSerializeLargeDocumentInChunks(t *testing.T) {
	doc := make(map[string][]person)
	for i := 0; i < 20; i++ {
		doc[fmt.Sprintf("group%02d", i)] = []person{newPerson(), {Name: "x"}}
	}
	expected, err := Marshal(doc, nil)
	require.NoError(t, err)

	o, err := NewOptions(WithDefaultBufferSize(64))
	require.NoError(t, err)
	s, err := NewSerializer(doc, nil, o)
	require.NoError(t, err)
	defer s.Close()
	var out []byte
	for {
		chunk, done, err := s.Next()
		require.NoError(t, err)
		out = append(out, chunk...)
		if done {
			break
		}
	}
	assert.Equal(t, string(expected), string(out))

	back, err := Unmarshal[map[string][]person](out, nil)
	require.NoError(t, err)
	assert.Equal(t, doc, back)
}
