// Package jsonwalk converts between Go values and JSON without recursion.
//
// Both directions keep an explicit stack of frames instead of using the call
// stack, which makes them resumable: a Deserializer accepts input in blocks
// of any size and keeps the frames of a partially read value between calls,
// and a Serializer pauses once enough output is pending. Deeply nested input
// is bounded by a configurable maximum depth rather than by the goroutine
// stack.
//
// Types are described once per Options and cached: structs become objects,
// slices, arrays and types with an All iterator become arrays, and maps with
// string keys become objects. Pointers are nullable. See Options for the
// available settings.
package jsonwalk

import (
	"reflect"
)

// Serialize writes v as JSON, treating it as a value of type t. A nil t uses
// the dynamic type of v.
func Serialize(v any, t reflect.Type, opts *Options) ([]byte, error) {
	return serialize(v, t, opts)
}

// Marshal writes v as JSON.
func Marshal[T any](v T, opts *Options) ([]byte, error) {
	return serialize(v, reflect.TypeOf((*T)(nil)).Elem(), opts)
}

// Deserialize reads data as a value of type t.
func Deserialize(data []byte, t reflect.Type, opts *Options) (any, error) {
	v, err := deserialize(data, t, opts)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// Unmarshal reads data as a value of type T.
func Unmarshal[T any](data []byte, opts *Options) (T, error) {
	var out T
	v, err := deserialize(data, reflect.TypeOf((*T)(nil)).Elem(), opts)
	if err != nil {
		return out, err
	}
	reflect.ValueOf(&out).Elem().Set(v)
	return out, nil
}

// DeserializeInto reads data into the value target points to.
func DeserializeInto(data []byte, target any, opts *Options) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newError(ErrInvalidTarget, reflect.TypeOf(target), "")
	}
	v, err := deserialize(data, rv.Type().Elem(), opts)
	if err != nil {
		return err
	}
	rv.Elem().Set(v)
	return nil
}

func deserialize(data []byte, t reflect.Type, opts *Options) (reflect.Value, error) {
	d, err := NewDeserializer(t, opts)
	if err != nil {
		return reflect.Value{}, err
	}
	if _, err := d.Feed(data, true); err != nil {
		return reflect.Value{}, err
	}
	return d.Value(), nil
}
