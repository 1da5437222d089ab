package jsonwalk

import (
	"reflect"
	"strings"
)

// ClassType is the serialization category of a type. The values are bit
// flags so that groups of categories can be tested with a single mask.
type ClassType uint8

const (
	// ClassTypeUnknown is used for interface types and for types that cannot
	// be serialized at all. Failures for the latter are deferred until a value
	// of the type is actually read or written.
	ClassTypeUnknown ClassType = 1 << iota
	ClassTypeObject
	ClassTypeValue
	ClassTypeEnumerable
	ClassTypeDictionary
	// ClassTypeIDictionaryConstructible is a dictionary whose type has no
	// mutator, so it is built from buffered entries once they are all read.
	ClassTypeIDictionaryConstructible
)

const (
	classTypeDictionaryLike = ClassTypeDictionary | ClassTypeIDictionaryConstructible
	classTypeCollection     = ClassTypeEnumerable | classTypeDictionaryLike
)

func (c ClassType) String() string {
	var names []string
	if c&ClassTypeUnknown != 0 {
		names = append(names, "unknown")
	}
	if c&ClassTypeObject != 0 {
		names = append(names, "object")
	}
	if c&ClassTypeValue != 0 {
		names = append(names, "value")
	}
	if c&ClassTypeEnumerable != 0 {
		names = append(names, "enumerable")
	}
	if c&ClassTypeDictionary != 0 {
		names = append(names, "dictionary")
	}
	if c&ClassTypeIDictionaryConstructible != 0 {
		names = append(names, "constructible dictionary")
	}
	if len(names) == 0 {
		return "invalid"
	}
	return strings.Join(names, "|")
}

var (
	anyType          = reflect.TypeOf((*any)(nil)).Elem()
	mapStringAnyType = reflect.TypeOf(map[string]any(nil))
	sliceAnyType     = reflect.TypeOf([]any(nil))
)

// ClassTypeOf returns the category of t under o. Pointer types are
// classified by the type they point to.
func (o *Options) ClassTypeOf(t reflect.Type) ClassType {
	o = resolveOptions(o)
	o.freeze()
	t, _ = stripPointers(t)
	return o.classify(t)
}

func (o *Options) classify(t reflect.Type) ClassType {
	if ct, ok := o.classTypes.Load(t); ok {
		return ct.(ClassType)
	}
	ct, _ := o.classTypes.LoadOrStore(t, o.computeClassType(t))
	return ct.(ClassType)
}

func (o *Options) computeClassType(t reflect.Type) ClassType {
	if o.converterFor(t) != nil {
		return ClassTypeValue
	}
	if t.Kind() == reflect.Interface {
		if impl, ok := o.implementations[t]; ok {
			base, _ := stripPointers(impl)
			return o.classify(base)
		}
		return ClassTypeUnknown
	}
	if shape := shapeOf(t); shape != nil {
		switch shape.kind {
		case shapeMap, shapeSetter:
			return ClassTypeDictionary
		case shapeImmutableDict:
			return ClassTypeIDictionaryConstructible
		default:
			return ClassTypeEnumerable
		}
	}
	if t.Kind() == reflect.Struct && hasExportedMember(t) {
		return ClassTypeObject
	}
	return ClassTypeUnknown
}

// hasExportedMember reports whether t declares an exported field. Structs
// without one have nothing to map and fail on first use.
func hasExportedMember(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

func stripPointers(t reflect.Type) (reflect.Type, int) {
	n := 0
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
		n++
	}
	return t, n
}
