package jsonwalk

import (
	"bytes"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/karagenc/jsonwalk/serializer/stdjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsDefaults(t *testing.T) {
	o, err := NewOptions()
	require.NoError(t, err)
	assert.Equal(t, 64, o.MaxDepth())
	assert.Equal(t, 16*1024, o.DefaultBufferSize())
	assert.False(t, o.IgnoreNullValues())
	assert.False(t, o.IgnoreReadOnlyProperties())
	assert.False(t, o.PropertyNameCaseInsensitive())
	assert.NotNil(t, o.Backend())
	assert.Equal(t, ReflectionMemberAccessor{}, o.MemberAccessor())
	assert.False(t, o.IsFrozen())
}

func TestOptionsFreezeOnFirstUse(t *testing.T) {
	o, err := NewOptions(WithMaxDepth(10))
	require.NoError(t, err)
	require.NoError(t, o.SetDefaultBufferSize(128))
	assert.False(t, o.IsFrozen())

	_, err = Marshal(1, o)
	require.NoError(t, err)
	assert.True(t, o.IsFrozen())

	setters := map[string]error{
		"max depth":      o.SetMaxDepth(3),
		"buffer size":    o.SetDefaultBufferSize(1),
		"ignore null":    o.SetIgnoreNullValues(true),
		"read only":      o.SetIgnoreReadOnlyProperties(true),
		"case":           o.SetPropertyNameCaseInsensitive(true),
		"naming":         o.SetPropertyNamingPolicy(SnakeCase),
		"use number":     o.SetUseNumber(true),
		"escape":         o.SetEscapeHTML(false),
		"unordered":      o.SetUnorderedMaps(true),
		"accessor":       o.SetMemberAccessor(ReflectionMemberAccessor{}),
		"backend":        o.SetBackend(stdjson.New()),
		"debugger":       o.SetDebugger(nil),
		"converter":      o.AddConverter(pointConverter),
		"factory":        o.RegisterCollectionFactory(func([]int) frozenInts { return frozenInts{} }),
		"implementation": o.RegisterImplementation(reflect.TypeOf((*shape)(nil)).Elem(), reflect.TypeOf(square{})),
	}
	for name, err := range setters {
		assert.ErrorIs(t, err, ErrOptionsImmutable, name)
	}
	assert.Equal(t, 10, o.MaxDepth())
	assert.Equal(t, 128, o.DefaultBufferSize())
}

func TestOptionsFreezeOnIntrospection(t *testing.T) {
	o, err := NewOptions()
	require.NoError(t, err)
	o.ClassTypeOf(reflect.TypeOf(0))
	assert.True(t, o.IsFrozen())

	o, err = NewOptions()
	require.NoError(t, err)
	_, err = o.Properties(reflect.TypeOf(person{}))
	require.NoError(t, err)
	assert.ErrorIs(t, o.SetMaxDepth(1), ErrOptionsImmutable)
}

func TestOptionsInvalidValues(t *testing.T) {
	tests := []Option{
		WithMaxDepth(0),
		WithDefaultBufferSize(-1),
		WithMemberAccessor(nil),
		WithBackend(nil),
		WithConverters(nil),
		WithImplementation(reflect.TypeOf(0), reflect.TypeOf(0)),
	}
	for _, test := range tests {
		_, err := NewOptions(test)
		assert.ErrorIs(t, err, ErrInvalidOption)
	}
}

func TestOptionsConcurrentUse(t *testing.T) {
	o, err := NewOptions()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				data, err := Marshal(newPerson(), o)
				if !assert.NoError(t, err) {
					return
				}
				_, err = Unmarshal[person](data, o)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestOptionsEscapeAndOrder(t *testing.T) {
	v := map[string]string{"b": "<x>", "a": "&"}
	data, err := Marshal(v, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"\u0026","b":"\u003cx\u003e"}`, string(data))

	o := mustOptions(t, WithEscapeHTML(false))
	data, err = Marshal(v, o)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"&","b":"<x>"}`, string(data))

	o = mustOptions(t, WithUnorderedMaps(true))
	data, err = Marshal(v, o)
	require.NoError(t, err)
	back, err := Unmarshal[map[string]string](data, o)
	require.NoError(t, err)
	assert.Equal(t, v, back)
}

func TestSnakeCasePolicy(t *testing.T) {
	type server struct {
		HTTPServer string
		UserID     int
	}
	o := mustOptions(t, WithPropertyNamingPolicy(SnakeCase))
	data, err := Marshal(server{HTTPServer: "h", UserID: 1}, o)
	require.NoError(t, err)
	assert.Equal(t, `{"http_server":"h","user_id":1}`, string(data))
}

func TestDebuggerTracesResolution(t *testing.T) {
	var buf bytes.Buffer
	o := mustOptions(t, WithDebugger(NewWriterDebugger(&buf).WithContext("jsonwalk")))
	_, err := Marshal(person{}, o)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "jsonwalk: options frozen")
	assert.Contains(t, out, "jsonwalk: resolved type: jsonwalk.person: object")
	assert.Equal(t, 1, strings.Count(out, "resolved type: jsonwalk.person:"))
}

func TestOptionsString(t *testing.T) {
	o := mustOptions(t)
	assert.Equal(t, "jsonwalk.Options{maxDepth: 64, frozen: false}", o.String())
}

func TestZeroOptions(t *testing.T) {
	var zero Options
	assert.Equal(t, 64, zero.MaxDepth())
	assert.Equal(t, 16*1024, zero.DefaultBufferSize())
	assert.NotNil(t, zero.Backend())
	assert.Equal(t, ReflectionMemberAccessor{}, zero.MemberAccessor())

	data, err := Marshal(struct{ A int }{1}, &Options{})
	require.NoError(t, err)
	assert.Equal(t, `{"A":1}`, string(data))

	data, err = Marshal([]string{"<"}, &Options{})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<")

	o := &Options{}
	require.NoError(t, o.RegisterImplementation(reflect.TypeOf((*shape)(nil)).Elem(), reflect.TypeOf(square{})))
	require.NoError(t, o.RegisterCollectionFactory(func(items []string) bag { return bag{items: items} }))
	require.NoError(t, o.SetEscapeHTML(false))

	out, err := Unmarshal[drawing]([]byte(`{"shape":{"side":2}}`), o)
	require.NoError(t, err)
	assert.Equal(t, drawing{Shape: square{Side: 2}}, out)

	b, err := Unmarshal[bag]([]byte(`["x"]`), o)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, b.items)

	data, err = Marshal([]string{"<"}, o)
	require.NoError(t, err)
	assert.Equal(t, `["<"]`, string(data))
	assert.ErrorIs(t, o.SetMaxDepth(3), ErrOptionsImmutable)
}
