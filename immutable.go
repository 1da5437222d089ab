package jsonwalk

import (
	"reflect"

	"github.com/karagenc/jsonwalk/internal/sync"
)

// sequenceFactory builds a collection from its buffered elements.
type sequenceFactory struct {
	fn      reflect.Value
	recv    reflect.Value // set for discovered CreateRange methods
	in      reflect.Type
	coll    reflect.Type
	withErr bool
}

func newSequenceFactory(factory any) (*sequenceFactory, error) {
	fv := reflect.ValueOf(factory)
	if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, invalidOption("factory", factory)
	}
	ft := fv.Type()
	f := &sequenceFactory{fn: fv}
	if ft.NumIn() != 1 || !f.setResults(ft) {
		return nil, invalidOption("factory signature", ft)
	}
	f.in = ft.In(0)
	if !validBufferType(f.in) || f.coll.Kind() == reflect.Pointer || f.coll.Kind() == reflect.Interface {
		return nil, invalidOption("factory signature", ft)
	}
	return f, nil
}

func (f *sequenceFactory) setResults(ft reflect.Type) bool {
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
		f.withErr = true
	default:
		return false
	}
	f.coll = ft.Out(0)
	return true
}

func validBufferType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice:
		return true
	case reflect.Map:
		return t.Key() == stringType
	}
	return false
}

func (f *sequenceFactory) call(buf reflect.Value) (reflect.Value, error) {
	if buf.Type() != f.in {
		if !buf.Type().ConvertibleTo(f.in) {
			return reflect.Value{}, newError(ErrCannotConvert, f.coll, "factory takes %s, elements were read as %s", f.in, buf.Type())
		}
		buf = buf.Convert(f.in)
	}
	args := []reflect.Value{buf}
	if f.recv.IsValid() {
		args = []reflect.Value{f.recv, buf}
	}
	out := f.fn.Call(args)
	if f.withErr && !out[1].IsNil() {
		return reflect.Value{}, newError(ErrCannotConvert, f.coll, "factory: %w", out[1].Interface().(error))
	}
	return out[0], nil
}

// Factories of immutable collections are shared by every Options value and
// keyed by element and collection type.
var immutableFactories sync.Map // string -> *sequenceFactory

func immutableKey(in, coll reflect.Type) string {
	return in.PkgPath() + "." + in.String() + " -> " + coll.PkgPath() + "." + coll.String()
}

// RegisterImmutableFactory registers the factory building an immutable
// collection type C from its elements in read order. factory must be a
// func([]E) C or func(map[string]V) C and may return an error as second
// result. Immutable collections are types with an All iterator but no
// mutator method. Without a registered factory, a method
//
//	func (C) CreateRange([]E) C
//
// is used if C has one.
func RegisterImmutableFactory(factory any) error {
	f, err := newSequenceFactory(factory)
	if err != nil {
		return err
	}
	immutableFactories.Store(immutableKey(f.in, f.coll), f)
	return nil
}

func lookupImmutableFactory(s *collectionShape) (*sequenceFactory, error) {
	in := s.bufferType()
	key := immutableKey(in, s.typ)
	if f, ok := immutableFactories.Load(key); ok {
		return f.(*sequenceFactory), nil
	}
	if f := discoverCreateRange(s.typ, in); f != nil {
		actual, _ := immutableFactories.LoadOrStore(key, f)
		return actual.(*sequenceFactory), nil
	}
	return nil, newError(ErrMissingFactory, s.typ, "no factory from %s", in)
}

func discoverCreateRange(coll, in reflect.Type) *sequenceFactory {
	m, ok := coll.MethodByName("CreateRange")
	if !ok || m.Type.NumIn() != 2 || m.Type.In(1) != in {
		return nil
	}
	f := &sequenceFactory{fn: m.Func, recv: reflect.Zero(coll), in: in}
	if !f.setResults(m.Type) || f.coll != coll {
		return nil
	}
	return f
}
