package token

import (
	"strconv"

	"github.com/karagenc/jsonwalk/internal/bitstack"
)

const DefaultMaxDepth = 64

// State is the part of a Reader that survives across input blocks.
type State struct {
	bits     bitstack.Stack
	prev     Kind
	rootDone bool
	consumed int64

	maxDepth       int
	multipleValues bool
}

// NewState returns the initial state of a token stream. A maxDepth below 1
// selects DefaultMaxDepth. With multipleValues set, the stream may hold any
// number of whitespace separated top-level values.
func NewState(maxDepth int, multipleValues bool) State {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	return State{maxDepth: maxDepth, multipleValues: multipleValues}
}

// Depth returns the number of containers open at the end of the last block.
func (s *State) Depth() int { return s.bits.Len() }

// RootDone reports whether a complete top-level value has been read.
func (s *State) RootDone() bool { return s.rootDone }

// Consumed returns the number of bytes consumed by the blocks read so far.
func (s *State) Consumed() int64 { return s.consumed }

type status uint8

const (
	statusOK status = iota
	statusPartial
	statusError
)

type Reader struct {
	buf   []byte
	pos   int
	final bool
	st    State
	err   error

	kind     Kind
	tokDepth int
	tokStart int
	valStart int
	valEnd   int
	escaped  bool

	errMsg string
	errAt  int

	undo undoInfo
}

type undoInfo struct {
	ok       bool
	pos      int
	prev     Kind
	rootDone bool
	kind     Kind
	tokDepth int
	tokStart int
	valStart int
	valEnd   int
	escaped  bool
}

// NewReader returns a Reader over data. The final flag tells the reader no
// more input follows data.
func NewReader(data []byte, final bool, st State) *Reader {
	if st.maxDepth < 1 {
		st.maxDepth = DefaultMaxDepth
	}
	return &Reader{buf: data, final: final, st: st}
}

// State returns the state to resume from on the next block. The unconsumed
// tail starts at BytesConsumed.
func (r *Reader) State() State {
	st := r.st
	st.consumed += int64(r.pos)
	return st
}

func (r *Reader) Kind() Kind { return r.kind }

// Depth returns the nesting depth of the current token. Container start and
// end tokens report the depth of the container itself, so the root object's
// braces are at depth 0 and its members at depth 1.
func (r *Reader) Depth() int { return r.tokDepth }

// BytesConsumed returns the number of bytes of the current block consumed so far.
func (r *Reader) BytesConsumed() int { return r.pos }

// TotalBytesConsumed returns the number of bytes consumed since the start of the stream.
func (r *Reader) TotalBytesConsumed() int64 { return r.st.consumed + int64(r.pos) }

// TokenStart returns the offset of the current token in the current block.
func (r *Reader) TokenStart() int { return r.tokStart }

// IsFinalBlock reports whether the reader was told no more input follows.
func (r *Reader) IsFinalBlock() bool { return r.final }

// ValueIsEscaped reports whether the current string or property name
// contains escape sequences.
func (r *Reader) ValueIsEscaped() bool { return r.escaped }

// Bytes returns the raw bytes of the current token. Strings and property
// names are returned without quotes and still escaped.
func (r *Reader) Bytes() []byte { return r.buf[r.valStart:r.valEnd] }

// Read advances to the next token. It returns false with a nil error when
// the current block holds no further complete token.
func (r *Reader) Read() (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	r.undo = undoInfo{
		pos:      r.pos,
		prev:     r.st.prev,
		rootDone: r.st.rootDone,
		kind:     r.kind,
		tokDepth: r.tokDepth,
		tokStart: r.tokStart,
		valStart: r.valStart,
		valEnd:   r.valEnd,
		escaped:  r.escaped,
	}

	i := skipWhitespace(r.buf, r.pos)
	if i >= len(r.buf) {
		return r.atEnd()
	}

	c := r.buf[i]
	if r.st.bits.Len() == 0 && r.st.rootDone {
		if !r.st.multipleValues {
			return false, r.syntaxError(i, "invalid character "+quoteChar(c)+" after top-level value")
		}
		r.st.rootDone = false
		r.st.prev = None
	}

	var st status
	switch r.st.prev {
	case None:
		st = r.readValue(i)
	case StartObject:
		switch c {
		case '}':
			st = r.readEnd(i, true)
		case '"':
			st = r.readName(i)
		default:
			return false, r.syntaxError(i, "expected property name or '}', found "+quoteChar(c))
		}
	case StartArray:
		if c == ']' {
			st = r.readEnd(i, false)
		} else {
			st = r.readValue(i)
		}
	case PropertyName:
		if c != ':' {
			return false, r.syntaxError(i, "expected ':' after property name, found "+quoteChar(c))
		}
		i = skipWhitespace(r.buf, i+1)
		if i >= len(r.buf) {
			st = statusPartial
			break
		}
		st = r.readValue(i)
	default:
		inObject := r.st.bits.Peek()
		switch {
		case c == ',':
			i = skipWhitespace(r.buf, i+1)
			if i >= len(r.buf) {
				st = statusPartial
				break
			}
			if inObject {
				if r.buf[i] != '"' {
					return false, r.syntaxError(i, "expected property name after ',', found "+quoteChar(r.buf[i]))
				}
				st = r.readName(i)
			} else {
				st = r.readValue(i)
			}
		case inObject && c == '}':
			st = r.readEnd(i, true)
		case !inObject && c == ']':
			st = r.readEnd(i, false)
		default:
			return false, r.syntaxError(i, "expected ',' or container end, found "+quoteChar(c))
		}
	}

	switch st {
	case statusPartial:
		if r.final {
			return false, r.fail(ErrUnexpectedEOF, len(r.buf), "truncated token")
		}
		return false, nil
	case statusError:
		return false, r.syntaxError(r.errAt, r.errMsg)
	}
	r.undo.ok = true
	return true, nil
}

func (r *Reader) atEnd() (bool, error) {
	if !r.final {
		return false, nil
	}
	if r.st.bits.Len() > 0 || !r.st.rootDone {
		if r.st.multipleValues && r.st.bits.Len() == 0 && r.st.prev == None {
			return false, nil
		}
		return false, r.fail(ErrUnexpectedEOF, len(r.buf), "input ended inside a value")
	}
	return false, nil
}

func (r *Reader) readValue(i int) status {
	c := r.buf[i]
	switch c {
	case '{', '[':
		depth := r.st.bits.Len()
		if depth >= r.st.maxDepth {
			r.fail(ErrMaxDepth, i, "depth "+strconv.Itoa(depth+1)+" exceeds "+strconv.Itoa(r.st.maxDepth))
			return statusError
		}
		r.st.bits.Push(c == '{')
		kind := StartArray
		if c == '{' {
			kind = StartObject
		}
		r.commit(kind, depth, i, i, i+1, i+1, false)
		return statusOK
	case '"':
		end, escaped, st := r.scanString(i)
		if st != statusOK {
			return st
		}
		r.commit(String, r.st.bits.Len(), i, i+1, end-1, end, escaped)
		r.valueDone()
		return statusOK
	case 't':
		return r.readLiteral(i, "true", True)
	case 'f':
		return r.readLiteral(i, "false", False)
	case 'n':
		return r.readLiteral(i, "null", Null)
	}
	if c == '-' || (c >= '0' && c <= '9') {
		end, st := r.scanNumber(i)
		if st != statusOK {
			return st
		}
		r.commit(Number, r.st.bits.Len(), i, i, end, end, false)
		r.valueDone()
		return statusOK
	}
	return r.setError(i, "invalid character "+quoteChar(c)+" looking for beginning of value")
}

func (r *Reader) readName(i int) status {
	end, escaped, st := r.scanString(i)
	if st != statusOK {
		return st
	}
	r.commit(PropertyName, r.st.bits.Len(), i, i+1, end-1, end, escaped)
	return statusOK
}

func (r *Reader) readEnd(i int, object bool) status {
	r.st.bits.Pop()
	kind := EndArray
	if object {
		kind = EndObject
	}
	r.commit(kind, r.st.bits.Len(), i, i, i+1, i+1, false)
	r.valueDone()
	return statusOK
}

func (r *Reader) readLiteral(i int, word string, kind Kind) status {
	for k := 0; k < len(word); k++ {
		if i+k >= len(r.buf) {
			return statusPartial
		}
		if r.buf[i+k] != word[k] {
			return r.setError(i+k, "invalid character "+quoteChar(r.buf[i+k])+" in literal "+word)
		}
	}
	end := i + len(word)
	r.commit(kind, r.st.bits.Len(), i, i, end, end, false)
	r.valueDone()
	return statusOK
}

func (r *Reader) commit(kind Kind, depth, tokStart, valStart, valEnd, pos int, escaped bool) {
	r.kind = kind
	r.tokDepth = depth
	r.tokStart = tokStart
	r.valStart = valStart
	r.valEnd = valEnd
	r.escaped = escaped
	r.pos = pos
	r.st.prev = kind
}

func (r *Reader) valueDone() {
	if r.st.bits.Len() == 0 {
		r.st.rootDone = true
	}
}

func (r *Reader) scanString(i int) (end int, escaped bool, st status) {
	j := i + 1
	for j < len(r.buf) {
		c := r.buf[j]
		switch {
		case c == '"':
			return j + 1, escaped, statusOK
		case c == '\\':
			escaped = true
			if j+1 >= len(r.buf) {
				return 0, false, statusPartial
			}
			switch r.buf[j+1] {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				j += 2
			case 'u':
				for k := 2; k < 6; k++ {
					if j+k >= len(r.buf) {
						return 0, false, statusPartial
					}
					if !isHex(r.buf[j+k]) {
						return 0, false, r.setError(j+k, "invalid character "+quoteChar(r.buf[j+k])+" in \\u escape")
					}
				}
				j += 6
			default:
				return 0, false, r.setError(j+1, "invalid escape character "+quoteChar(r.buf[j+1]))
			}
		case c < 0x20:
			return 0, false, r.setError(j, "invalid control character in string")
		default:
			j++
		}
	}
	return 0, false, statusPartial
}

func (r *Reader) scanNumber(i int) (int, status) {
	b := r.buf
	j := i
	if b[j] == '-' {
		j++
		if j >= len(b) {
			return 0, statusPartial
		}
	}
	switch {
	case b[j] == '0':
		j++
	case b[j] >= '1' && b[j] <= '9':
		j = skipDigits(b, j)
	default:
		return 0, r.setError(j, "invalid character "+quoteChar(b[j])+" in numeric literal")
	}

	if j < len(b) && b[j] == '.' {
		j++
		if j >= len(b) {
			return 0, statusPartial
		}
		if !isDigit(b[j]) {
			return 0, r.setError(j, "invalid character "+quoteChar(b[j])+" after decimal point")
		}
		j = skipDigits(b, j)
	}

	if j < len(b) && (b[j] == 'e' || b[j] == 'E') {
		j++
		if j >= len(b) {
			return 0, statusPartial
		}
		if b[j] == '+' || b[j] == '-' {
			j++
			if j >= len(b) {
				return 0, statusPartial
			}
		}
		if !isDigit(b[j]) {
			return 0, r.setError(j, "invalid character "+quoteChar(b[j])+" in exponent")
		}
		j = skipDigits(b, j)
	}

	if j >= len(b) {
		if !r.final {
			return 0, statusPartial
		}
		return j, statusOK
	}
	switch b[j] {
	case ' ', '\t', '\r', '\n', ',', ']', '}':
		return j, statusOK
	}
	return 0, r.setError(j, "invalid character "+quoteChar(b[j])+" after number")
}

func (r *Reader) setError(at int, msg string) status {
	r.errAt = at
	r.errMsg = msg
	return statusError
}

func (r *Reader) syntaxError(at int, msg string) error {
	if r.err != nil {
		return r.err
	}
	return r.fail(ErrSyntax, at, msg)
}

func (r *Reader) fail(kind error, at int, msg string) error {
	r.err = &SyntaxError{
		Offset: r.st.consumed + int64(at),
		msg:    msg,
		err:    kind,
	}
	return r.err
}

// Unread undoes the last successful Read so the next Read returns the same
// token again. Only one token can be unread.
func (r *Reader) Unread() {
	if !r.undo.ok || r.err != nil {
		return
	}
	switch {
	case r.kind.IsStart():
		r.st.bits.Pop()
	case r.kind.IsEnd():
		r.st.bits.Push(r.kind == EndObject)
	}
	u := r.undo
	r.pos = u.pos
	r.st.prev = u.prev
	r.st.rootDone = u.rootDone
	r.kind = u.kind
	r.tokDepth = u.tokDepth
	r.tokStart = u.tokStart
	r.valStart = u.valStart
	r.valEnd = u.valEnd
	r.escaped = u.escaped
	r.undo.ok = false
}

// ValueComplete reports whether the value starting at the current token is
// entirely contained in the current block. Scalars are always complete.
func (r *Reader) ValueComplete() bool {
	if !r.kind.IsStart() {
		return true
	}
	c := *r
	c.st.bits = r.st.bits.Clone()
	target := r.tokDepth
	for {
		ok, err := c.Read()
		if err != nil {
			return true
		}
		if !ok {
			return false
		}
		if c.kind.IsEnd() && c.tokDepth == target {
			return true
		}
	}
}

// Skip skips the children of the current container start token, leaving
// the reader on the matching end token. On a property name it skips the
// name's value. Scalars are left untouched. The whole value must be in the
// current block, see ValueComplete.
func (r *Reader) Skip() error {
	if r.kind == PropertyName {
		ok, err := r.Read()
		if err != nil {
			return err
		}
		if !ok {
			return ErrIncomplete
		}
	}
	if !r.kind.IsStart() {
		return nil
	}
	target := r.tokDepth
	for {
		ok, err := r.Read()
		if err != nil {
			return err
		}
		if !ok {
			return ErrIncomplete
		}
		if r.kind.IsEnd() && r.tokDepth == target {
			return nil
		}
	}
}

// RawValue returns the raw JSON text of the value at the current token and
// leaves the reader on its last token.
func (r *Reader) RawValue() ([]byte, error) {
	if r.kind == PropertyName || r.kind.IsEnd() || r.kind == None {
		return nil, ErrKind
	}
	start := r.tokStart
	if err := r.Skip(); err != nil {
		return nil, err
	}
	return r.buf[start:r.pos], nil
}

// String returns the unescaped value of a string or property name token.
func (r *Reader) String() (string, error) {
	if r.kind != String && r.kind != PropertyName {
		return "", ErrKind
	}
	if !r.escaped {
		return string(r.Bytes()), nil
	}
	return unescape(r.Bytes()), nil
}

func (r *Reader) Int64() (int64, error) {
	if r.kind != Number {
		return 0, ErrKind
	}
	return strconv.ParseInt(string(r.Bytes()), 10, 64)
}

func (r *Reader) Uint64() (uint64, error) {
	if r.kind != Number {
		return 0, ErrKind
	}
	return strconv.ParseUint(string(r.Bytes()), 10, 64)
}

func (r *Reader) Float64() (float64, error) {
	if r.kind != Number {
		return 0, ErrKind
	}
	return strconv.ParseFloat(string(r.Bytes()), 64)
}

func (r *Reader) Bool() (bool, error) {
	switch r.kind {
	case True:
		return true, nil
	case False:
		return false, nil
	}
	return false, ErrKind
}

func skipWhitespace(b []byte, i int) int {
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return i
		}
	}
	return i
}

func skipDigits(b []byte, i int) int {
	for i < len(b) && isDigit(b[i]) {
		i++
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func quoteChar(c byte) string {
	if c == '\'' {
		return `'\''`
	}
	if c == '"' {
		return `'"'`
	}
	return strconv.Quote(string(c))
}
