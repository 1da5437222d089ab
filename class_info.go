package jsonwalk

import (
	"reflect"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/fatih/structs"
)

// classInfo is the per-type metadata the engines work from. It is built
// once per type and Options and never changes afterwards.
type classInfo struct {
	typ       reflect.Type
	classType ClassType
	options   *Options
	create    func() reflect.Value

	properties []*PropertyInfo
	byName     map[string]*PropertyInfo
	byFold     map[string]*PropertyInfo

	shape *collectionShape

	// err is reported when a value of the type is read or written.
	err error
}

func (ci *classInfo) isObject() bool     { return ci.classType == ClassTypeObject }
func (ci *classInfo) isValue() bool      { return ci.classType == ClassTypeValue }
func (ci *classInfo) isEnumerable() bool { return ci.classType == ClassTypeEnumerable }
func (ci *classInfo) isDictionary() bool { return ci.classType&classTypeDictionaryLike != 0 }

func (ci *classInfo) isDictionaryConstructible() bool {
	return ci.classType == ClassTypeIDictionaryConstructible
}

func (o *Options) classInfo(t reflect.Type) *classInfo {
	if ci, ok := o.classes.Load(t); ok {
		return ci.(*classInfo)
	}
	o.freeze()
	ci, loaded := o.classes.LoadOrStore(t, o.newClassInfo(t))
	if !loaded {
		o.debugger.Log("resolved type", t, ci.(*classInfo).classType)
	}
	return ci.(*classInfo)
}

func (o *Options) newClassInfo(t reflect.Type) *classInfo {
	ci := &classInfo{
		typ:       t,
		classType: o.classify(t),
		options:   o,
	}
	switch {
	case ci.classType == ClassTypeObject:
		ci.create = o.accessor.CreateConstructor(t)
		ci.err = ci.addProperties()
	case ci.classType&classTypeCollection != 0:
		ci.shape = shapeOf(t)
		if ci.shape.err != nil {
			ci.err = &Error{Kind: ErrCollectionNotSupported, Type: t, Err: ci.shape.err}
			break
		}
		if ci.shape.direct() {
			ci.create = o.accessor.CreateConstructor(t)
		}
	}
	if ci.err != nil {
		o.debugger.Log("deferred failure", t, ci.err)
	}
	return ci
}

// addProperties collects the exported members of the struct, flattening
// untagged embedded structs. A member shadows members of the same name
// promoted from deeper embedded structs.
func (ci *classInfo) addProperties() error {
	o := ci.options
	ci.byName = make(map[string]*PropertyInfo)
	ci.byFold = make(map[string]*PropertyInfo)

	seen := mapset.NewThreadUnsafeSet[string]()
	visited := mapset.NewThreadUnsafeSet[reflect.Type]()
	var dup error

	var walk func(t reflect.Type)
	walk = func(t reflect.Type) {
		if !visited.Add(t) {
			return
		}
		s := structs.New(reflect.New(t).Interface())
		s.TagName = tagName

		var embedded []reflect.Type
		for _, f := range s.Fields() {
			if !f.IsExported() {
				continue
			}
			if f.IsEmbedded() && f.Tag(tagName) == "" {
				sf, _ := t.FieldByName(f.Name())
				if et, _ := stripPointers(sf.Type); et.Kind() == reflect.Struct {
					embedded = append(embedded, et)
					continue
				}
			}
			if !seen.Add(f.Name()) {
				continue
			}
			field, ok := ci.typ.FieldByName(f.Name())
			if !ok {
				// Ambiguous at the same depth.
				continue
			}
			tag := parseTag(field.Tag.Get(tagName))
			if tag.skip {
				continue
			}
			p := o.newMemberProperty(ci.typ, field, tag)
			if _, exists := ci.byName[p.wireName]; exists {
				if dup == nil {
					dup = newError(ErrDuplicateProperty, ci.typ, "%q", p.wireName)
				}
				continue
			}
			ci.properties = append(ci.properties, p)
			ci.byName[p.wireName] = p
			if _, exists := ci.byFold[strings.ToLower(p.wireName)]; !exists {
				ci.byFold[strings.ToLower(p.wireName)] = p
			}
		}
		for _, et := range embedded {
			walk(et)
		}
	}
	walk(ci.typ)
	return dup
}

// lookup finds the member for a property name read from the input.
func (ci *classInfo) lookup(name string) *PropertyInfo {
	if p, ok := ci.byName[name]; ok {
		return p
	}
	if ci.options.caseInsensitive {
		return ci.byFold[strings.ToLower(name)]
	}
	return nil
}

func (ci *classInfo) elementProperty() *PropertyInfo {
	return ci.options.policyProperty(ci.shape.elem)
}

// Properties returns the members of the struct type t in the order they are
// written.
func (o *Options) Properties(t reflect.Type) ([]*PropertyInfo, error) {
	o = resolveOptions(o)
	t, _ = stripPointers(t)
	ci := o.classInfo(t)
	if ci.err != nil {
		return nil, ci.err
	}
	if ci.classType != ClassTypeObject {
		return nil, newError(ErrCannotConvert, t, "not an object type (%s)", ci.classType)
	}
	return ci.properties, nil
}
