package jsonwalk

import (
	"encoding/json"
	"reflect"

	"github.com/karagenc/jsonwalk/token"
)

// PropertyInfo describes one struct member, or, for a policy property, a
// root value or a collection element.
type PropertyInfo struct {
	options *Options
	owner   reflect.Type

	name       string
	wireName   string
	quotedName []byte

	declaredType    reflect.Type
	implementedType reflect.Type
	runtimeType     reflect.Type
	elementType     reflect.Type
	ptrDepth        int

	classType ClassType
	converter Converter

	get func(obj reflect.Value) (reflect.Value, bool)
	set func(obj, v reflect.Value)

	omitEmpty         bool
	readOnly          bool
	isPolicy          bool
	shouldSerialize   bool
	shouldDeserialize bool
	unsupported       error
}

// Name returns the Go name of the member.
func (p *PropertyInfo) Name() string { return p.name }

// WireName returns the JSON property name of the member.
func (p *PropertyInfo) WireName() string { return p.wireName }

func (p *PropertyInfo) DeclaredType() reflect.Type { return p.declaredType }

// RuntimeType returns the type values are built as, with pointers stripped
// and registered interface implementations applied.
func (p *PropertyInfo) RuntimeType() reflect.Type { return p.runtimeType }

// ElementType returns the element type of collection members.
func (p *PropertyInfo) ElementType() reflect.Type { return p.elementType }

func (p *PropertyInfo) ClassType() ClassType    { return p.classType }
func (p *PropertyInfo) ShouldSerialize() bool   { return p.shouldSerialize }
func (p *PropertyInfo) ShouldDeserialize() bool { return p.shouldDeserialize }
func (p *PropertyInfo) Unsupported() error      { return p.unsupported }

func (o *Options) implementationOf(declared reflect.Type) reflect.Type {
	if declared.Kind() == reflect.Interface {
		if impl, ok := o.implementations[declared]; ok {
			return impl
		}
	}
	return declared
}

func elementTypeOf(t reflect.Type) reflect.Type {
	if s := shapeOf(t); s != nil {
		return s.elem
	}
	return nil
}

func (o *Options) newMemberProperty(owner reflect.Type, field reflect.StructField, tag tagInfo) *PropertyInfo {
	implemented := o.implementationOf(field.Type)
	runtime, _ := stripPointers(implemented)
	p := &PropertyInfo{
		wireName:  tag.name,
		omitEmpty: tag.omitEmpty,
		readOnly:  tag.readOnly,
	}
	p.initialize(owner, field.Type, runtime, implemented, &field, elementTypeOf(runtime), o.converterFor(runtime), o)
	return p
}

// policyProperty returns the property used for root values and collection
// elements of the declared type.
func (o *Options) policyProperty(declared reflect.Type) *PropertyInfo {
	if p, ok := o.policies.Load(declared); ok {
		return p.(*PropertyInfo)
	}
	o.freeze()
	implemented := o.implementationOf(declared)
	runtime, _ := stripPointers(implemented)
	p := &PropertyInfo{}
	p.initialize(nil, declared, runtime, implemented, nil, elementTypeOf(runtime), o.converterFor(runtime), o)
	actual, _ := o.policies.LoadOrStore(declared, p)
	return actual.(*PropertyInfo)
}

func (p *PropertyInfo) initialize(owner, declaredType, runtimeType, implementedType reflect.Type, member *reflect.StructField, elementType reflect.Type, converter Converter, o *Options) {
	p.options = o
	p.owner = owner
	p.declaredType = declaredType
	p.runtimeType = runtimeType
	p.implementedType = implementedType
	p.elementType = elementType
	p.converter = converter
	_, p.ptrDepth = stripPointers(implementedType)
	p.classType = o.classify(runtimeType)

	if member == nil {
		p.isPolicy = true
		p.shouldSerialize = true
		p.shouldDeserialize = true
		return
	}

	p.name = member.Name
	if p.wireName == "" {
		p.wireName = member.Name
		if o.namingPolicy != nil {
			p.wireName = o.namingPolicy.ConvertName(member.Name)
		}
	}
	p.quotedName = token.AppendQuoted(nil, p.wireName, o.escapeHTML)

	p.get = o.accessor.CreateGetter(owner, *member)
	if !p.readOnly {
		p.set = o.accessor.CreateSetter(owner, *member)
	}
	hasGetter, hasSetter := p.get != nil, p.set != nil

	if p.classType&classTypeCollection == 0 {
		p.shouldSerialize = hasGetter && (hasSetter || !o.ignoreReadOnlyProperties)
		p.shouldDeserialize = hasSetter
		return
	}

	p.shouldSerialize = hasGetter
	p.shouldDeserialize = hasSetter
	if err := o.constructible(runtimeType); err != nil {
		p.unsupported = &Error{
			Kind:   ErrCollectionNotSupported,
			Type:   declaredType,
			Owner:  owner,
			Member: p.name,
			Err:    err,
		}
		o.debugger.Log("unsupported member", owner, p.name, err)
	}
}

// constructible reports why values of the collection type t cannot be built.
func (o *Options) constructible(t reflect.Type) error {
	s := shapeOf(t)
	if s == nil {
		return nil
	}
	if s.err != nil {
		return s.err
	}
	switch s.elem.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return newError(ErrCannotConvert, s.elem, "element type cannot be serialized")
	}
	if s.direct() && o.accessor.CreateConstructor(t) == nil {
		return newError(ErrCannotConvert, t, "no constructor")
	}
	return nil
}

func (p *PropertyInfo) class() *classInfo {
	return p.options.classInfo(p.runtimeType)
}

func (p *PropertyInfo) nullable() bool {
	if p.ptrDepth > 0 {
		return true
	}
	switch p.declaredType.Kind() {
	case reflect.Interface, reflect.Slice, reflect.Map, reflect.Pointer:
		return true
	}
	return false
}

// wrap turns a value of the runtime type into a value of the implemented
// type by allocating the pointers in between. Values read into an interface
// type are boxed first.
func (p *PropertyInfo) wrap(v reflect.Value) reflect.Value {
	if p.runtimeType.Kind() == reflect.Interface && v.Type() != p.runtimeType {
		iv := reflect.New(p.runtimeType).Elem()
		iv.Set(v)
		v = iv
	}
	switch p.ptrDepth {
	case 0:
		return v
	case 1:
		return addressable(v).Addr()
	}
	types := make([]reflect.Type, p.ptrDepth)
	t := p.implementedType
	for i := range types {
		types[i] = t
		t = t.Elem()
	}
	cur := v
	for i := len(types) - 1; i >= 0; i-- {
		ptr := reflect.New(types[i].Elem())
		ptr.Elem().Set(cur)
		cur = ptr
	}
	return cur
}

// readScalar reads the value of a scalar token. It reports false when the
// target must be left untouched.
func (p *PropertyInfo) readScalar(r *token.Reader) (reflect.Value, bool, error) {
	if r.Kind() == token.Null {
		if !p.nullable() {
			return reflect.Value{}, false, cannotConvert(p.declaredType, token.Null)
		}
		if p.options.ignoreNullValues && !p.isPolicy {
			return reflect.Value{}, false, nil
		}
		return reflect.Zero(p.declaredType), true, nil
	}
	if p.converter != nil {
		v, err := p.readConverted(r)
		if err != nil {
			return reflect.Value{}, false, err
		}
		return p.wrap(v), true, nil
	}
	if p.runtimeType.Kind() == reflect.Interface {
		v, err := p.readUntyped(r)
		if err != nil {
			return reflect.Value{}, false, err
		}
		return p.wrap(v), true, nil
	}
	return reflect.Value{}, false, cannotConvert(p.declaredType, r.Kind())
}

// readUntyped reads a scalar into an interface type.
func (p *PropertyInfo) readUntyped(r *token.Reader) (reflect.Value, error) {
	var x any
	switch r.Kind() {
	case token.String:
		s, err := r.String()
		if err != nil {
			return reflect.Value{}, err
		}
		x = s
	case token.Number:
		if p.options.useNumber {
			x = json.Number(r.Bytes())
			break
		}
		f, err := r.Float64()
		if err != nil {
			return reflect.Value{}, newError(ErrCannotConvert, p.declaredType, "number %s out of range", r.Bytes())
		}
		x = f
	case token.True, token.False:
		x = r.Kind() == token.True
	default:
		return reflect.Value{}, cannotConvert(p.declaredType, r.Kind())
	}
	v := reflect.ValueOf(x)
	if !v.Type().AssignableTo(p.runtimeType) {
		return reflect.Value{}, cannotConvert(p.declaredType, r.Kind())
	}
	return v, nil
}

// untypedClass returns the class values of an interface type are read as
// when the JSON value is a container.
func (p *PropertyInfo) untypedClass(kind token.Kind) (*classInfo, error) {
	t := sliceAnyType
	if kind == token.StartObject {
		t = mapStringAnyType
	}
	if !t.AssignableTo(p.runtimeType) {
		return nil, cannotConvert(p.declaredType, kind)
	}
	return p.options.classInfo(t), nil
}

// omit reports whether the member value v is left out on writing.
func (p *PropertyInfo) omit(v reflect.Value) bool {
	if p.omitEmpty && isEmptyValue(v) {
		return true
	}
	if p.options.ignoreNullValues {
		switch v.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
			return v.IsNil()
		}
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}
