package jsonwalk

import (
	"encoding"
	"encoding/json"
	"reflect"

	"github.com/karagenc/jsonwalk/token"
)

var (
	marshalerType       = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	unmarshalerType     = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// addressable returns v or an addressable copy of it.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	c := reflect.New(v.Type()).Elem()
	c.Set(v)
	return c
}

// marshalerConverter hands values implementing json.Marshaler or
// json.Unmarshaler to the configured backend.
type marshalerConverter struct{}

func (marshalerConverter) CanConvert(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return t.Implements(marshalerType) || pt.Implements(marshalerType) || pt.Implements(unmarshalerType)
}

func (marshalerConverter) Read(r *token.Reader, t reflect.Type, o *Options) (reflect.Value, error) {
	raw, err := r.RawValue()
	if err != nil {
		return reflect.Value{}, err
	}
	ptr := reflect.New(t)
	if err := o.backend.Unmarshal(raw, ptr.Interface()); err != nil {
		return reflect.Value{}, &Error{Kind: ErrCannotConvert, Type: t, Err: err}
	}
	return ptr.Elem(), nil
}

func (marshalerConverter) Write(w *token.Writer, v reflect.Value, o *Options) error {
	x := v.Interface()
	if !v.Type().Implements(marshalerType) {
		x = addressable(v).Addr().Interface()
	}
	data, err := o.backend.Marshal(x)
	if err != nil {
		return &Error{Kind: ErrCannotConvert, Type: v.Type(), Err: err}
	}
	if !o.backend.Valid(data) {
		return newError(ErrCannotConvert, v.Type(), "%s produced invalid JSON", o.backend.Name())
	}
	w.WriteRawValue(data)
	return nil
}

// textConverter reads and writes values implementing encoding.TextMarshaler
// or encoding.TextUnmarshaler as JSON strings.
type textConverter struct{}

func (textConverter) CanConvert(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return t.Implements(textMarshalerType) || pt.Implements(textMarshalerType) || pt.Implements(textUnmarshalerType)
}

func (textConverter) Read(r *token.Reader, t reflect.Type, o *Options) (reflect.Value, error) {
	if r.Kind() != token.String {
		return reflect.Value{}, cannotConvert(t, r.Kind())
	}
	ptr := reflect.New(t)
	u, ok := ptr.Interface().(encoding.TextUnmarshaler)
	if !ok {
		return reflect.Value{}, newError(ErrCannotConvert, t, "type cannot unmarshal text")
	}
	s, err := r.String()
	if err != nil {
		return reflect.Value{}, err
	}
	if err := u.UnmarshalText([]byte(s)); err != nil {
		return reflect.Value{}, &Error{Kind: ErrCannotConvert, Type: t, Err: err}
	}
	return ptr.Elem(), nil
}

func (textConverter) Write(w *token.Writer, v reflect.Value, o *Options) error {
	m, ok := v.Interface().(encoding.TextMarshaler)
	if !ok {
		m, ok = addressable(v).Addr().Interface().(encoding.TextMarshaler)
	}
	if !ok {
		return newError(ErrCannotConvert, v.Type(), "type cannot marshal text")
	}
	text, err := m.MarshalText()
	if err != nil {
		return &Error{Kind: ErrCannotConvert, Type: v.Type(), Err: err}
	}
	w.WriteString(string(text))
	return nil
}
