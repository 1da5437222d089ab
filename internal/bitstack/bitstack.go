// Package bitstack implements a LIFO stack of single bits.
//
// The first 64 levels live inline in a uint64, deeper levels spill into a
// growable []uint64. The token reader and writer use it to remember whether
// each open container is an object (true) or an array (false).
package bitstack

const inlineBits = 64

type Stack struct {
	inline uint64
	spill  []uint64
	depth  int
}

// Push pushes b on top of the stack.
func (s *Stack) Push(b bool) {
	if s.depth < inlineBits {
		if b {
			s.inline |= 1 << uint(s.depth)
		} else {
			s.inline &^= 1 << uint(s.depth)
		}
		s.depth++
		return
	}

	i := s.depth - inlineBits
	word := i / 64
	for len(s.spill) <= word {
		s.spill = append(s.spill, 0)
	}
	if b {
		s.spill[word] |= 1 << uint(i%64)
	} else {
		s.spill[word] &^= 1 << uint(i%64)
	}
	s.depth++
}

// Pop removes the top bit and returns it. Popping an empty stack panics.
func (s *Stack) Pop() bool {
	if s.depth == 0 {
		panic("bitstack: pop on empty stack")
	}
	s.depth--
	return s.peekAt(s.depth)
}

// Peek returns the top bit without removing it. The result is false for an
// empty stack.
func (s *Stack) Peek() bool {
	if s.depth == 0 {
		return false
	}
	return s.peekAt(s.depth - 1)
}

func (s *Stack) peekAt(level int) bool {
	if level < inlineBits {
		return s.inline&(1<<uint(level)) != 0
	}
	i := level - inlineBits
	return s.spill[i/64]&(1<<uint(i%64)) != 0
}

// Len returns the number of bits on the stack.
func (s *Stack) Len() int { return s.depth }

// Reset empties the stack, keeping the spill storage.
func (s *Stack) Reset() {
	s.inline = 0
	s.depth = 0
	for i := range s.spill {
		s.spill[i] = 0
	}
}

// Clone returns a deep copy of s.
func (s *Stack) Clone() Stack {
	c := Stack{inline: s.inline, depth: s.depth}
	if len(s.spill) > 0 {
		c.spill = make([]uint64, len(s.spill))
		copy(c.spill, s.spill)
	}
	return c
}
