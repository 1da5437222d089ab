package jsonwalk

import (
	"reflect"

	"github.com/karagenc/jsonwalk/token"
)

// Converter reads and writes values of the types it accepts. Converters are
// matched against types with their pointers stripped.
//
// Read is called with r positioned on the first token of the value. A value
// starting with '{' or '[' must be read up to and including its closing token,
// and it is guaranteed to be complete in the current block. Read must not
// move past a scalar. Write must write exactly one complete value.
type Converter interface {
	CanConvert(t reflect.Type) bool
	Read(r *token.Reader, t reflect.Type, o *Options) (reflect.Value, error)
	Write(w *token.Writer, v reflect.Value, o *Options) error
}

type typedConverter[T any] struct {
	typ   reflect.Type
	read  func(r *token.Reader, o *Options) (T, error)
	write func(w *token.Writer, v T, o *Options) error
}

// NewConverter returns a Converter for exactly the type T.
func NewConverter[T any](read func(r *token.Reader, o *Options) (T, error), write func(w *token.Writer, v T, o *Options) error) Converter {
	return &typedConverter[T]{
		typ:   reflect.TypeOf((*T)(nil)).Elem(),
		read:  read,
		write: write,
	}
}

func (c *typedConverter[T]) CanConvert(t reflect.Type) bool { return t == c.typ }

func (c *typedConverter[T]) Read(r *token.Reader, t reflect.Type, o *Options) (reflect.Value, error) {
	if c.read == nil {
		return reflect.Value{}, newError(ErrCannotConvert, t, "converter cannot read")
	}
	v, err := c.read(r, o)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(&v).Elem(), nil
}

func (c *typedConverter[T]) Write(w *token.Writer, v reflect.Value, o *Options) error {
	if c.write == nil {
		return newError(ErrCannotConvert, c.typ, "converter cannot write")
	}
	return c.write(w, v.Interface().(T), o)
}

func (o *Options) converterFor(t reflect.Type) Converter {
	if e, ok := o.convs.Load(t); ok {
		return e.(converterEntry).c
	}
	var found Converter
	for _, c := range o.converters {
		if c.CanConvert(t) {
			found = c
			break
		}
	}
	if found == nil && t.Kind() != reflect.Interface {
		for _, c := range builtinConverters {
			if c.CanConvert(t) {
				found = c
				break
			}
		}
	}
	e, _ := o.convs.LoadOrStore(t, converterEntry{c: found})
	return e.(converterEntry).c
}

// readConverted runs the converter of p and checks it left the reader where
// it should.
func (p *PropertyInfo) readConverted(r *token.Reader) (reflect.Value, error) {
	startKind := r.Kind()
	startDepth := r.Depth()
	startPos := r.BytesConsumed()

	v, err := p.converter.Read(r, p.runtimeType, p.options)
	if err != nil {
		return reflect.Value{}, err
	}

	switch startKind {
	case token.StartObject, token.StartArray:
		end := token.EndObject
		if startKind == token.StartArray {
			end = token.EndArray
		}
		if r.Kind() != end || r.Depth() != startDepth {
			return reflect.Value{}, newError(ErrConverterInvariant, p.runtimeType,
				"read of %s ended on %s at depth %d", startKind, r.Kind(), r.Depth())
		}
	default:
		if r.BytesConsumed() != startPos {
			return reflect.Value{}, newError(ErrConverterInvariant, p.runtimeType, "read moved past a scalar")
		}
	}

	if !v.IsValid() {
		return reflect.Zero(p.runtimeType), nil
	}
	if v.Type() != p.runtimeType {
		if !v.Type().AssignableTo(p.runtimeType) {
			return reflect.Value{}, newError(ErrCannotConvert, p.runtimeType, "converter returned %s", v.Type())
		}
		c := reflect.New(p.runtimeType).Elem()
		c.Set(v)
		v = c
	}
	return v, nil
}

func (p *PropertyInfo) writeConverted(w *token.Writer, v reflect.Value) error {
	depth := w.Depth()
	n := w.Len()
	if err := p.converter.Write(w, v, p.options); err != nil {
		return err
	}
	if err := w.Err(); err != nil {
		return &Error{Kind: ErrConverterInvariant, Type: v.Type(), Err: err}
	}
	if w.Depth() != depth || w.Len() == n {
		return newError(ErrConverterInvariant, v.Type(), "write left depth %d, expected %d", w.Depth(), depth)
	}
	return nil
}
