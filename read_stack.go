package jsonwalk

import (
	"reflect"
	"strings"
)

// readFrame is the state of one open container while reading.
type readFrame struct {
	class *classInfo
	// prop describes the value the frame builds; it is delivered to the
	// parent frame once the container ends.
	prop   *PropertyInfo
	value  reflect.Value // objects and directly built collections
	buffer reflect.Value // elements of collections built at the end

	// Objects: the member the next value is assigned to, nil to skip it.
	member *PropertyInfo
	// Objects and dictionaries: the name of the property read last.
	key    string
	hasKey bool
	// Sequences: the index of the next element.
	index  int
	ending bool
}

func (f *readFrame) isObject() bool     { return f.class.isObject() }
func (f *readFrame) isValue() bool      { return f.class.isValue() }
func (f *readFrame) isEnumerable() bool { return f.class.isEnumerable() }
func (f *readFrame) isDictionary() bool { return f.class.isDictionary() }

func (f *readFrame) isDictionaryConstructible() bool {
	return f.class.isDictionaryConstructible()
}

// readStack holds every open frame. Slots of frames are reused by depth
// across values, so a Decoder reading a steady stream of documents
// allocates no frames once the deepest nesting was seen.
type readStack struct {
	current readFrame
	frames  []readFrame
	depth   int

	root   *PropertyInfo
	result reflect.Value
	done   bool

	// skipDepth is the depth of an ignored container being skipped, -1
	// otherwise.
	skipDepth  int
	stopAtRoot bool
}

func (s *readStack) init(root *PropertyInfo) {
	s.root = root
	s.skipDepth = -1
}

// reset prepares s for reading the next value of the same root, keeping the
// frame slots.
func (s *readStack) reset() {
	clear(s.frames)
	*s = readStack{frames: s.frames[:0:cap(s.frames)], root: s.root, skipDepth: -1}
}

// push makes a new empty frame current, saving the current one.
func (s *readStack) push() {
	if s.depth > 0 {
		if i := s.depth - 1; i == len(s.frames) {
			s.frames = append(s.frames, s.current)
		} else {
			s.frames[i] = s.current
		}
	}
	s.depth++
	s.current = readFrame{}
}

func (s *readStack) pop() {
	if s.depth == 0 {
		panic("jsonwalk: pop of an empty read stack")
	}
	s.depth--
	if s.depth > 0 {
		s.current = s.frames[s.depth-1]
		s.frames[s.depth-1] = readFrame{}
	} else {
		s.current = readFrame{}
	}
}

// target returns the property receiving the next value. It reports true
// when the value is ignored.
func (s *readStack) target() (*PropertyInfo, bool) {
	if s.depth == 0 {
		return s.root, false
	}
	f := &s.current
	if f.isObject() {
		return f.member, f.member == nil
	}
	return f.class.elementProperty(), false
}

// deliver stores a completed value into the current frame, or makes it the
// result when no frame is open.
func (s *readStack) deliver(v reflect.Value) {
	if s.depth == 0 {
		s.result = v
		s.done = true
		return
	}
	f := &s.current
	switch {
	case f.isObject():
		f.member.set(f.value, v)
		f.member = nil
		f.hasKey = false
	case f.isDictionary():
		if f.class.shape.direct() {
			f.class.shape.addPair(f.value, f.key, v)
		} else {
			f.buffer.SetMapIndex(reflect.ValueOf(f.key), v)
		}
		f.hasKey = false
	default:
		if f.class.shape.direct() {
			f.class.shape.add(f.value, v)
		} else {
			f.buffer = reflect.Append(f.buffer, v)
		}
		f.index++
	}
}

// skipValue discards the pending property of the current frame.
func (s *readStack) skipValue() {
	if s.depth > 0 {
		s.current.member = nil
		s.current.hasKey = false
	}
}

func (s *readStack) path() string {
	var b strings.Builder
	b.WriteByte('$')
	for i := 0; i < s.depth; i++ {
		f := &s.current
		if i < s.depth-1 {
			f = &s.frames[i]
		}
		switch {
		case f.ending:
		case f.isEnumerable():
			appendPathIndex(&b, f.index)
		case f.hasKey:
			appendPathName(&b, f.key)
		}
	}
	return b.String()
}

func (s *readStack) annotate(err error) error {
	var member *PropertyInfo
	if s.depth > 0 {
		member = s.current.member
	}
	return annotate(err, s.path(), member)
}
