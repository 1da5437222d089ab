package jsonwalk

import (
	"math"
	"reflect"

	"github.com/karagenc/jsonwalk/internal/pool"
	"github.com/karagenc/jsonwalk/token"
)

// Serializer writes one value as JSON in chunks. The output of each call to
// Next is roughly the configured default buffer size, so arbitrarily large
// values are written with bounded memory.
type Serializer struct {
	opts      *Options
	root      *PropertyInfo
	value     reflect.Value
	stack     writeStack
	buf       *pool.Buffer
	w         *token.Writer
	threshold int
	member    *PropertyInfo

	started bool
	done    bool
	err     error
}

// NewSerializer returns a Serializer for v written as type t. A nil t uses
// the dynamic type of v. Close must be called once the Serializer is no
// longer used.
func NewSerializer(v any, t reflect.Type, opts *Options) (*Serializer, error) {
	o := resolveOptions(opts)
	return newSerializer(v, t, o, o.bufferSize)
}

func newSerializer(v any, t reflect.Type, o *Options, threshold int) (*Serializer, error) {
	rv := reflect.ValueOf(v)
	if t == nil {
		t = anyType
		if rv.IsValid() {
			t = rv.Type()
		}
	}
	if rv.IsValid() && !rv.Type().AssignableTo(t) {
		return nil, newError(ErrCannotConvert, t, "value of type %s", rv.Type())
	}
	s := &Serializer{
		opts:      o,
		root:      o.policyProperty(t),
		value:     rv,
		buf:       pool.Get(),
		threshold: threshold,
	}
	s.w = token.NewWriter(s.buf.B, o.escapeHTML)
	return s, nil
}

// Next writes the next chunk of output and returns it. The chunk is only
// valid until the next call of Next or Close. done is true with the last
// chunk.
func (s *Serializer) Next() (chunk []byte, done bool, err error) {
	if s.err != nil {
		return nil, false, s.err
	}
	if s.done {
		return nil, true, nil
	}
	if s.buf == nil {
		return nil, false, newError(ErrInvalidTarget, nil, "serializer closed")
	}
	s.w.Truncate(0)
	if err := s.step(); err != nil {
		s.err = annotate(err, s.stack.path(), s.member)
		return nil, false, s.err
	}
	s.buf.B = s.w.Bytes()
	return s.buf.B, s.done, nil
}

// Close returns the output buffer to the pool.
func (s *Serializer) Close() {
	if s.buf != nil {
		pool.Put(s.buf)
		s.buf = nil
	}
}

func (s *Serializer) step() error {
	if !s.started {
		s.started = true
		if err := s.writeValue(s.root, s.value); err != nil {
			return err
		}
	}
	for s.stack.depth > 0 {
		if s.w.Len() >= s.threshold {
			return nil
		}
		if err := s.writeNext(); err != nil {
			return err
		}
	}
	if err := s.w.Err(); err != nil {
		return err
	}
	s.done = true
	return nil
}

// writeNext writes the next member or element of the current frame, or
// closes it.
func (s *Serializer) writeNext() error {
	f := &s.stack.current
	ci := f.class
	s.member = nil

	switch {
	case ci.isObject():
		for f.index < len(ci.properties) {
			p := ci.properties[f.index]
			f.index++
			if !p.shouldSerialize {
				continue
			}
			if p.unsupported != nil {
				return p.unsupported
			}
			v, ok := p.get(f.value)
			if !ok || p.omit(v) {
				continue
			}
			f.name, f.hasName = p.wireName, true
			s.member = p
			s.w.WriteEscapedPropertyName(p.quotedName)
			return s.writeValue(p, v)
		}
		s.w.WriteEndObject()

	case ci.isDictionary():
		if f.index < len(f.keys) {
			i := f.index
			f.index++
			f.name, f.hasName = f.keys[i], true
			s.w.WritePropertyName(f.keys[i])
			return s.writeValue(ci.elementProperty(), f.elems[i])
		}
		s.w.WriteEndObject()

	default:
		if f.index < len(f.elems) {
			v := f.elems[f.index]
			f.index++
			return s.writeValue(ci.elementProperty(), v)
		}
		s.w.WriteEndArray()
	}
	s.stack.pop()
	return nil
}

// writeValue writes a scalar completely and opens a frame for a container.
func (s *Serializer) writeValue(p *PropertyInfo, v reflect.Value) error {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			s.w.WriteNull()
			return nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		s.w.WriteNull()
		return nil
	}
	if (v.Kind() == reflect.Map || v.Kind() == reflect.Slice) && v.IsNil() {
		s.w.WriteNull()
		return nil
	}
	if v.Type() != p.runtimeType {
		p = s.opts.policyProperty(v.Type())
	}
	if p.converter != nil {
		return p.writeConverted(s.w, v)
	}

	ci := p.class()
	if ci.err != nil {
		return ci.err
	}
	if ci.classType&(ClassTypeObject|classTypeCollection) == 0 {
		return newError(ErrCannotConvert, v.Type(), "type cannot be serialized")
	}
	if s.stack.depth >= s.opts.maxDepth {
		return newError(ErrDepthExceeded, v.Type(), "depth %d exceeds %d", s.stack.depth+1, s.opts.maxDepth)
	}

	s.stack.push()
	f := &s.stack.current
	f.class = ci
	f.value = v
	switch {
	case ci.isObject():
		s.w.WriteStartObject()
	case ci.isDictionary():
		f.keys, f.elems = ci.shape.entries(v, !s.opts.unorderedMaps)
		s.w.WriteStartObject()
	default:
		f.elems = ci.shape.elements(v)
		s.w.WriteStartArray()
	}
	return nil
}

// serialize writes v in one go.
func serialize(v any, t reflect.Type, opts *Options) ([]byte, error) {
	s, err := newSerializer(v, t, resolveOptions(opts), math.MaxInt)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	chunk, _, err := s.Next()
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), chunk...), nil
}
