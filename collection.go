package jsonwalk

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/karagenc/jsonwalk/internal/sync"
)

type shapeKind uint8

const (
	shapeSlice shapeKind = iota + 1
	shapeArray
	shapeMap
	// A type with an All iterator and an Add, Push or Append method on its
	// pointer.
	shapeAdder
	// A type with an All iterator over string keys and a Set method on its
	// pointer.
	shapeSetter
	// Types with an All iterator and no mutator. They are built by a factory
	// from the buffered elements.
	shapeImmutable
	shapeImmutableDict
)

var (
	adderNames = []string{"Add", "Push", "Append"}
	setterName = "Set"
)

// collectionShape describes how a collection type is enumerated and built.
type collectionShape struct {
	kind    shapeKind
	typ     reflect.Type
	elem    reflect.Type
	key     reflect.Type
	mutator int // method index on reflect.PointerTo(typ)
	err     error
}

// direct reports whether elements are added to the collection while they
// are read. Other shapes buffer elements and build the collection at the end.
func (s *collectionShape) direct() bool {
	switch s.kind {
	case shapeSlice, shapeMap, shapeAdder, shapeSetter:
		return true
	}
	return false
}

func (s *collectionShape) dictionary() bool {
	switch s.kind {
	case shapeMap, shapeSetter, shapeImmutableDict:
		return true
	}
	return false
}

// bufferType is the type elements are collected into for shapes that are
// not built directly.
func (s *collectionShape) bufferType() reflect.Type {
	if s.dictionary() {
		return reflect.MapOf(stringType, s.elem)
	}
	return reflect.SliceOf(s.elem)
}

var (
	stringType = reflect.TypeOf("")
	boolType   = reflect.TypeOf(true)
	errorType  = reflect.TypeOf((*error)(nil)).Elem()

	shapes  sync.Map // reflect.Type -> *collectionShape
	noShape = &collectionShape{}
)

// shapeOf returns the collection shape of t, or nil when t is not a
// collection.
func shapeOf(t reflect.Type) *collectionShape {
	if s, ok := shapes.Load(t); ok {
		if s == noShape {
			return nil
		}
		return s.(*collectionShape)
	}
	s := detectShape(t)
	if s == nil {
		s = noShape
	}
	actual, _ := shapes.LoadOrStore(t, s)
	if actual == noShape {
		return nil
	}
	return actual.(*collectionShape)
}

func detectShape(t reflect.Type) *collectionShape {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer:
		return nil
	case reflect.Slice:
		return &collectionShape{kind: shapeSlice, typ: t, elem: t.Elem()}
	case reflect.Array:
		return &collectionShape{kind: shapeArray, typ: t, elem: t.Elem()}
	case reflect.Map:
		s := &collectionShape{kind: shapeMap, typ: t, elem: t.Elem(), key: t.Key()}
		if t.Key().Kind() != reflect.String {
			s.err = fmt.Errorf("map key type %s is not a string type", t.Key())
		}
		return s
	}

	key, elem, ok := iteratorOf(t)
	if !ok {
		return nil
	}
	pt := reflect.PointerTo(t)
	if key == nil {
		s := &collectionShape{kind: shapeImmutable, typ: t, elem: elem}
		for _, name := range adderNames {
			m, ok := pt.MethodByName(name)
			if ok && m.Type.NumIn() == 2 && m.Type.NumOut() == 0 && m.Type.In(1) == elem {
				s.kind = shapeAdder
				s.mutator = m.Index
				break
			}
		}
		return s
	}
	s := &collectionShape{kind: shapeImmutableDict, typ: t, elem: elem, key: key}
	m, ok := pt.MethodByName(setterName)
	if ok && m.Type.NumIn() == 3 && m.Type.NumOut() == 0 && m.Type.In(1) == key && m.Type.In(2) == elem {
		s.kind = shapeSetter
		s.mutator = m.Index
	}
	return s
}

// iteratorOf inspects the All method of t, which must return a
// func(yield func(E) bool) or a func(yield func(K, V) bool) with K of
// string kind.
func iteratorOf(t reflect.Type) (key, elem reflect.Type, ok bool) {
	m, found := reflect.PointerTo(t).MethodByName("All")
	if !found || m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
		return nil, nil, false
	}
	seq := m.Type.Out(0)
	if seq.Kind() != reflect.Func || seq.NumIn() != 1 || seq.NumOut() != 0 {
		return nil, nil, false
	}
	yield := seq.In(0)
	if yield.Kind() != reflect.Func || yield.NumOut() != 1 || yield.Out(0).Kind() != reflect.Bool {
		return nil, nil, false
	}
	switch yield.NumIn() {
	case 1:
		return nil, yield.In(0), true
	case 2:
		if yield.In(0).Kind() != reflect.String {
			return nil, nil, false
		}
		return yield.In(0), yield.In(1), true
	}
	return nil, nil, false
}

// add appends v to the collection under construction.
func (s *collectionShape) add(coll, v reflect.Value) {
	switch s.kind {
	case shapeSlice:
		coll.Set(reflect.Append(coll, v))
	case shapeAdder:
		coll.Addr().Method(s.mutator).Call([]reflect.Value{v})
	}
}

func (s *collectionShape) addPair(coll reflect.Value, key string, v reflect.Value) {
	k := reflect.ValueOf(key).Convert(s.key)
	switch s.kind {
	case shapeMap:
		coll.SetMapIndex(k, v)
	case shapeSetter:
		coll.Addr().Method(s.mutator).Call([]reflect.Value{k, v})
	}
}

// elements snapshots the elements of a sequence for writing.
func (s *collectionShape) elements(v reflect.Value) []reflect.Value {
	switch s.kind {
	case shapeSlice, shapeArray:
		out := make([]reflect.Value, v.Len())
		for i := range out {
			out[i] = v.Index(i)
		}
		return out
	}
	var out []reflect.Value
	iterate(v, func(args []reflect.Value) {
		out = append(out, args[0])
	})
	return out
}

// entries snapshots the entries of a dictionary for writing. Map keys are
// sorted when sorted is set; iterator based dictionaries keep their order.
func (s *collectionShape) entries(v reflect.Value, sorted bool) ([]string, []reflect.Value) {
	if s.kind == shapeMap {
		keys := v.MapKeys()
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		if sorted {
			sort.Sort(byName{names, keys})
		}
		vals := make([]reflect.Value, len(keys))
		for i, k := range keys {
			vals[i] = v.MapIndex(k)
		}
		return names, vals
	}
	var (
		names []string
		vals  []reflect.Value
	)
	iterate(v, func(args []reflect.Value) {
		names = append(names, args[0].String())
		vals = append(vals, args[1])
	})
	return names, vals
}

type byName struct {
	names []string
	keys  []reflect.Value
}

func (b byName) Len() int           { return len(b.names) }
func (b byName) Less(i, j int) bool { return b.names[i] < b.names[j] }
func (b byName) Swap(i, j int) {
	b.names[i], b.names[j] = b.names[j], b.names[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// iterate calls the All iterator of v, passing every yielded tuple to fn.
func iterate(v reflect.Value, fn func(args []reflect.Value)) {
	recv := v
	if !recv.CanAddr() {
		recv = reflect.New(v.Type()).Elem()
		recv.Set(v)
	}
	seq := recv.Addr().MethodByName("All").Call(nil)[0]
	if seq.IsNil() {
		return
	}
	yieldType := seq.Type().In(0)
	cont := reflect.ValueOf(true).Convert(yieldType.Out(0))
	yield := reflect.MakeFunc(yieldType, func(args []reflect.Value) []reflect.Value {
		fn(args)
		return []reflect.Value{cont}
	})
	seq.Call([]reflect.Value{yield})
}
