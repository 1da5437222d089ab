package jsonwalk

import "reflect"

// MemberAccessor produces the functions used to construct values and to
// access struct members. Options use ReflectionMemberAccessor unless
// another one is configured.
type MemberAccessor interface {
	// CreateConstructor returns a function producing a new settable value of
	// type t, or nil when t cannot be constructed.
	CreateConstructor(t reflect.Type) func() reflect.Value
	// CreateGetter returns a function reading field from an owner value. It
	// reports false when the field is unreachable through a nil embedded
	// pointer.
	CreateGetter(owner reflect.Type, field reflect.StructField) func(obj reflect.Value) (reflect.Value, bool)
	// CreateSetter returns a function assigning field on an addressable owner
	// value, or nil when the field cannot be set.
	CreateSetter(owner reflect.Type, field reflect.StructField) func(obj, v reflect.Value)
}

type ReflectionMemberAccessor struct{}

func (ReflectionMemberAccessor) CreateConstructor(t reflect.Type) func() reflect.Value {
	switch t.Kind() {
	case reflect.Invalid, reflect.Interface, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return nil
	case reflect.Map:
		return func() reflect.Value {
			v := reflect.New(t).Elem()
			v.Set(reflect.MakeMap(t))
			return v
		}
	case reflect.Slice:
		return func() reflect.Value {
			v := reflect.New(t).Elem()
			v.Set(reflect.MakeSlice(t, 0, 0))
			return v
		}
	}
	return func() reflect.Value { return reflect.New(t).Elem() }
}

func (ReflectionMemberAccessor) CreateGetter(owner reflect.Type, field reflect.StructField) func(obj reflect.Value) (reflect.Value, bool) {
	index := field.Index
	if len(index) == 1 {
		i := index[0]
		return func(obj reflect.Value) (reflect.Value, bool) { return obj.Field(i), true }
	}
	return func(obj reflect.Value) (reflect.Value, bool) {
		v, err := obj.FieldByIndexErr(index)
		if err != nil {
			return reflect.Value{}, false
		}
		return v, true
	}
}

func (ReflectionMemberAccessor) CreateSetter(owner reflect.Type, field reflect.StructField) func(obj, v reflect.Value) {
	if !field.IsExported() {
		return nil
	}
	index := field.Index
	// Nil embedded pointers are allocated on the way, which is impossible
	// through an unexported embedded pointer.
	t := owner
	for _, i := range index[:len(index)-1] {
		sf := t.Field(i)
		if sf.Type.Kind() == reflect.Pointer {
			if !sf.IsExported() {
				return nil
			}
			t = sf.Type.Elem()
		} else {
			t = sf.Type
		}
	}
	if len(index) == 1 {
		i := index[0]
		return func(obj, v reflect.Value) { obj.Field(i).Set(v) }
	}
	return func(obj, v reflect.Value) {
		f := obj
		for n, i := range index {
			if n > 0 && f.Kind() == reflect.Pointer {
				if f.IsNil() {
					f.Set(reflect.New(f.Type().Elem()))
				}
				f = f.Elem()
			}
			f = f.Field(i)
		}
		f.Set(v)
	}
}
