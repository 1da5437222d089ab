package token

import (
	"fmt"
	"math"
	"strconv"

	"github.com/karagenc/jsonwalk/internal/bitstack"
)

// Writer emits JSON tokens into a byte slice. Misuse (a closer without its
// opener, a value in an object without a name, NaN) records a sticky error
// returned by Err; later writes are ignored.
type Writer struct {
	buf        []byte
	bits       bitstack.Stack
	needComma  bool
	afterName  bool
	rootDone   bool
	escapeHTML bool
	err        error
}

func NewWriter(buf []byte, escapeHTML bool) *Writer {
	return &Writer{buf: buf[:0], escapeHTML: escapeHTML}
}

// Reset discards the writer state and starts writing into buf.
func (w *Writer) Reset(buf []byte) {
	w.buf = buf[:0]
	w.bits.Reset()
	w.needComma = false
	w.afterName = false
	w.rootDone = false
	w.err = nil
}

// Bytes returns the bytes written so far.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Truncate drops everything written except the first n bytes, keeping the
// token state. Callers use it after handing the pending bytes to a sink.
func (w *Writer) Truncate(n int) { w.buf = w.buf[:n] }

// Depth returns the number of open containers.
func (w *Writer) Depth() int { return w.bits.Len() }

func (w *Writer) Err() error { return w.err }

func (w *Writer) setErr(format string, args ...any) {
	if w.err == nil {
		w.err = fmt.Errorf("%w: "+format, append([]any{ErrInvalidWrite}, args...)...)
	}
}

func (w *Writer) beforeValue() bool {
	if w.err != nil {
		return false
	}
	if w.afterName {
		w.afterName = false
		return true
	}
	if w.bits.Len() == 0 {
		if w.rootDone {
			w.setErr("more than one top-level value")
			return false
		}
		return true
	}
	if w.bits.Peek() {
		w.setErr("value inside an object requires a property name")
		return false
	}
	if w.needComma {
		w.buf = append(w.buf, ',')
	}
	return true
}

func (w *Writer) afterValue() {
	w.needComma = true
	if w.bits.Len() == 0 {
		w.rootDone = true
	}
}

func (w *Writer) WriteStartObject() {
	if !w.beforeValue() {
		return
	}
	w.buf = append(w.buf, '{')
	w.bits.Push(true)
	w.needComma = false
}

func (w *Writer) WriteEndObject() {
	if w.err != nil {
		return
	}
	if w.bits.Len() == 0 || !w.bits.Peek() || w.afterName {
		w.setErr("unexpected end of object")
		return
	}
	w.bits.Pop()
	w.buf = append(w.buf, '}')
	w.afterValue()
}

func (w *Writer) WriteStartArray() {
	if !w.beforeValue() {
		return
	}
	w.buf = append(w.buf, '[')
	w.bits.Push(false)
	w.needComma = false
}

func (w *Writer) WriteEndArray() {
	if w.err != nil {
		return
	}
	if w.bits.Len() == 0 || w.bits.Peek() {
		w.setErr("unexpected end of array")
		return
	}
	w.bits.Pop()
	w.buf = append(w.buf, ']')
	w.afterValue()
}

func (w *Writer) beforeName() bool {
	if w.err != nil {
		return false
	}
	if w.bits.Len() == 0 || !w.bits.Peek() || w.afterName {
		w.setErr("property name outside of an object")
		return false
	}
	if w.needComma {
		w.buf = append(w.buf, ',')
	}
	return true
}

func (w *Writer) WritePropertyName(name string) {
	if !w.beforeName() {
		return
	}
	w.buf = AppendQuoted(w.buf, name, w.escapeHTML)
	w.buf = append(w.buf, ':')
	w.afterName = true
	w.needComma = false
}

// WriteEscapedPropertyName writes a name that is already quoted and escaped.
func (w *Writer) WriteEscapedPropertyName(quoted []byte) {
	if !w.beforeName() {
		return
	}
	w.buf = append(w.buf, quoted...)
	w.buf = append(w.buf, ':')
	w.afterName = true
	w.needComma = false
}

func (w *Writer) WriteString(s string) {
	if !w.beforeValue() {
		return
	}
	w.buf = AppendQuoted(w.buf, s, w.escapeHTML)
	w.afterValue()
}

func (w *Writer) WriteInt(v int64) {
	if !w.beforeValue() {
		return
	}
	w.buf = strconv.AppendInt(w.buf, v, 10)
	w.afterValue()
}

func (w *Writer) WriteUint(v uint64) {
	if !w.beforeValue() {
		return
	}
	w.buf = strconv.AppendUint(w.buf, v, 10)
	w.afterValue()
}

// WriteFloat writes f with the shortest representation that round-trips at
// the given bit size (32 or 64).
func (w *Writer) WriteFloat(f float64, bitSize int) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		w.setErr("unsupported float value %v", f)
		return
	}
	if !w.beforeValue() {
		return
	}
	w.buf = appendFloat(w.buf, f, bitSize)
	w.afterValue()
}

func (w *Writer) WriteBool(b bool) {
	if !w.beforeValue() {
		return
	}
	w.buf = strconv.AppendBool(w.buf, b)
	w.afterValue()
}

func (w *Writer) WriteNull() {
	if !w.beforeValue() {
		return
	}
	w.buf = append(w.buf, "null"...)
	w.afterValue()
}

// WriteRawValue writes one complete JSON value as is.
func (w *Writer) WriteRawValue(raw []byte) {
	if len(raw) == 0 {
		w.setErr("empty raw value")
		return
	}
	if !w.beforeValue() {
		return
	}
	w.buf = append(w.buf, raw...)
	w.afterValue()
}

func appendFloat(b []byte, f float64, bitSize int) []byte {
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 {
		if bitSize == 64 && (abs < 1e-6 || abs >= 1e21) || bitSize == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			format = 'e'
		}
	}
	b = strconv.AppendFloat(b, f, format, -1, bitSize)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(b)
		if n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	return b
}
