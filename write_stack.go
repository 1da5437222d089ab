package jsonwalk

import (
	"reflect"
	"strings"
)

// writeFrame is the state of one open container while writing. Elements and
// keys are snapshotted when the container starts.
type writeFrame struct {
	class *classInfo
	value reflect.Value
	elems []reflect.Value
	keys  []string
	index int

	name    string
	hasName bool
}

type writeStack struct {
	current writeFrame
	frames  []writeFrame
	depth   int
}

func (s *writeStack) push() {
	if s.depth > 0 {
		if i := s.depth - 1; i == len(s.frames) {
			s.frames = append(s.frames, s.current)
		} else {
			s.frames[i] = s.current
		}
	}
	s.depth++
	s.current = writeFrame{}
}

func (s *writeStack) pop() {
	if s.depth == 0 {
		panic("jsonwalk: pop of an empty write stack")
	}
	s.depth--
	if s.depth > 0 {
		s.current = s.frames[s.depth-1]
		s.frames[s.depth-1] = writeFrame{}
	} else {
		s.current = writeFrame{}
	}
}

func (s *writeStack) path() string {
	var b strings.Builder
	b.WriteByte('$')
	for i := 0; i < s.depth; i++ {
		f := &s.current
		if i < s.depth-1 {
			f = &s.frames[i]
		}
		switch {
		case f.class.isEnumerable():
			if f.index > 0 {
				appendPathIndex(&b, f.index-1)
			}
		case f.hasName:
			appendPathName(&b, f.name)
		}
	}
	return b.String()
}
