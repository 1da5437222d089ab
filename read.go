package jsonwalk

import (
	"errors"
	"reflect"

	"github.com/karagenc/jsonwalk/token"
)

// errNeedMore stops the read loop when a value must be complete in the
// current block but is not.
var errNeedMore = errors.New("need more input")

// read consumes the tokens of r until the block is exhausted, the root value
// is complete with stopAtRoot set, or an error occurs.
func (s *readStack) read(r *token.Reader) error {
	for {
		if s.done && s.stopAtRoot {
			return nil
		}
		ok, err := r.Read()
		if err != nil {
			return s.annotate(err)
		}
		if !ok {
			return nil
		}

		if s.skipDepth >= 0 {
			if r.Kind().IsEnd() && r.Depth() == s.skipDepth {
				s.skipDepth = -1
				s.skipValue()
			}
			continue
		}

		switch kind := r.Kind(); {
		case kind == token.PropertyName:
			err = s.readName(r)
		case kind.IsStart():
			err = s.readStart(r)
		case kind.IsEnd():
			err = s.readEnd()
		default:
			err = s.readScalar(r)
		}
		if err == errNeedMore {
			return nil
		}
		if err != nil {
			return s.annotate(err)
		}
	}
}

func (s *readStack) readName(r *token.Reader) error {
	name, err := r.String()
	if err != nil {
		return err
	}
	f := &s.current
	f.key = name
	f.hasKey = true
	if !f.isObject() {
		return nil
	}
	f.member = nil
	p := f.class.lookup(name)
	if p == nil || !p.shouldDeserialize {
		return nil
	}
	if p.unsupported != nil {
		return p.unsupported
	}
	f.member = p
	return nil
}

func (s *readStack) readScalar(r *token.Reader) error {
	p, skip := s.target()
	if skip {
		s.skipValue()
		return nil
	}
	v, ok, err := p.readScalar(r)
	if err != nil {
		return err
	}
	if !ok {
		s.skipValue()
		return nil
	}
	s.deliver(v)
	return nil
}

func (s *readStack) readStart(r *token.Reader) error {
	p, skip := s.target()
	if skip {
		s.skipDepth = r.Depth()
		return nil
	}

	if p.converter != nil {
		if !r.ValueComplete() {
			r.Unread()
			return errNeedMore
		}
		v, err := p.readConverted(r)
		if err != nil {
			return err
		}
		s.deliver(p.wrap(v))
		return nil
	}

	var ci *classInfo
	if p.runtimeType.Kind() == reflect.Interface {
		var err error
		if ci, err = p.untypedClass(r.Kind()); err != nil {
			return err
		}
	} else {
		ci = p.class()
	}
	if ci.err != nil {
		return ci.err
	}

	object := r.Kind() == token.StartObject
	switch {
	case ci.isObject() && object:
	case ci.isDictionary() && object:
	case ci.isEnumerable() && !object:
	default:
		return cannotConvert(p.declaredType, r.Kind())
	}

	if (ci.isObject() || ci.shape.direct()) && ci.create == nil {
		return newError(ErrCannotConvert, ci.typ, "type cannot be constructed")
	}

	s.push()
	f := &s.current
	f.class = ci
	f.prop = p
	if ci.create != nil {
		f.value = ci.create()
	} else {
		buf := ci.shape.bufferType()
		if ci.shape.dictionary() {
			f.buffer = reflect.MakeMap(buf)
		} else {
			f.buffer = reflect.MakeSlice(buf, 0, 4)
		}
	}
	return nil
}

func (s *readStack) readEnd() error {
	f := &s.current
	f.ending = true
	v, err := f.class.complete(f)
	if err != nil {
		return err
	}
	p := f.prop
	s.pop()
	s.deliver(p.wrap(v))
	return nil
}

// complete returns the value built by the frame f once its container ended.
func (ci *classInfo) complete(f *readFrame) (reflect.Value, error) {
	if f.value.IsValid() {
		return f.value, nil
	}
	if ci.shape.kind == shapeArray {
		arr := reflect.New(ci.typ).Elem()
		reflect.Copy(arr, f.buffer)
		return arr, nil
	}
	if f.buffer.Type().ConvertibleTo(ci.typ) {
		return f.buffer.Convert(ci.typ), nil
	}
	if factory, ok := ci.options.factories[ci.typ]; ok {
		return factory.call(f.buffer)
	}
	factory, err := lookupImmutableFactory(ci.shape)
	if err != nil {
		return reflect.Value{}, err
	}
	return factory.call(f.buffer)
}

// Deserializer reads one JSON value of a given type from input supplied in
// blocks of any size.
type Deserializer struct {
	opts    *Options
	typ     reflect.Type
	stack   readStack
	state   token.State
	pending []byte
	err     error
}

func NewDeserializer(t reflect.Type, opts *Options) (*Deserializer, error) {
	if t == nil {
		return nil, newError(ErrInvalidTarget, nil, "nil type")
	}
	o := resolveOptions(opts)
	d := &Deserializer{
		opts:  o,
		typ:   t,
		state: token.NewState(o.maxDepth, false),
	}
	d.stack.init(o.policyProperty(t))
	return d, nil
}

// Feed processes the next block of input. final tells that no more input
// follows. Bytes of a token split across blocks are kept until the next
// call, so data may be reused by the caller once Feed returns. Feed reports
// true once the value is complete; trailing input other than whitespace is
// an error.
func (d *Deserializer) Feed(data []byte, final bool) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	buf := data
	carried := len(d.pending) > 0
	if carried {
		d.pending = append(d.pending, data...)
		buf = d.pending
	}

	r := token.NewReader(buf, final, d.state)
	if err := d.stack.read(r); err != nil {
		d.err = err
		return false, err
	}
	d.state = r.State()

	rest := buf[r.BytesConsumed():]
	if carried {
		d.pending = d.pending[:copy(d.pending, rest)]
	} else {
		d.pending = append(d.pending[:0], rest...)
	}
	return d.stack.done, nil
}

// Done reports whether the value is complete.
func (d *Deserializer) Done() bool { return d.stack.done }

// Value returns the value read. It is valid once Done reports true. Its type
// is the type given to NewDeserializer.
func (d *Deserializer) Value() reflect.Value { return d.stack.result }

// BytesConsumed returns the number of input bytes consumed so far.
func (d *Deserializer) BytesConsumed() int64 {
	return d.state.Consumed()
}
