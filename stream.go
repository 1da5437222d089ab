package jsonwalk

import (
	"context"
	"io"
	"reflect"

	"github.com/karagenc/jsonwalk/token"
)

// Decoder reads a stream of whitespace separated JSON values, such as
// newline delimited JSON.
type Decoder struct {
	r       io.Reader
	opts    *Options
	buf     []byte
	state   token.State
	pending []byte
	eof     bool
	err     error

	// d is reused while values of one type are decoded.
	d *Deserializer
}

func NewDecoder(r io.Reader, opts *Options) *Decoder {
	o := resolveOptions(opts)
	return &Decoder{
		r:     r,
		opts:  o,
		buf:   make([]byte, o.bufferSize),
		state: token.NewState(o.maxDepth, true),
	}
}

// Decode reads the next value into the value target points to. It returns
// io.EOF when the stream holds no further value.
func (dec *Decoder) Decode(target any) error {
	return dec.DecodeContext(context.Background(), target)
}

// DecodeContext is like Decode, checking ctx between reads.
func (dec *Decoder) DecodeContext(ctx context.Context, target any) error {
	if dec.err != nil {
		return dec.err
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newError(ErrInvalidTarget, reflect.TypeOf(target), "")
	}

	d := dec.d
	if t := rv.Type().Elem(); d == nil || d.typ != t {
		var err error
		if d, err = NewDeserializer(t, dec.opts); err != nil {
			return err
		}
		dec.d = d
	} else {
		d.stack.reset()
	}
	d.state = dec.state
	d.pending = dec.pending
	d.stack.stopAtRoot = true

	done, err := d.Feed(nil, dec.eof)
	for err == nil && !done {
		if dec.eof {
			// A truncated value fails in Feed, so nothing but whitespace is left.
			err = io.EOF
			break
		}
		if err = ctx.Err(); err != nil {
			break
		}
		var n int
		n, err = dec.r.Read(dec.buf)
		if err == io.EOF {
			dec.eof = true
			err = nil
		} else if err != nil {
			break
		}
		done, err = d.Feed(dec.buf[:n], dec.eof)
	}
	if err != nil {
		if err != io.EOF {
			dec.err = err
		}
		return err
	}

	dec.state = d.state
	dec.pending = d.pending
	rv.Elem().Set(d.Value())
	return nil
}

// Encoder writes values to a stream, each followed by a newline.
type Encoder struct {
	w    io.Writer
	opts *Options
}

func NewEncoder(w io.Writer, opts *Options) *Encoder {
	return &Encoder{w: w, opts: resolveOptions(opts)}
}

func (enc *Encoder) Encode(v any) error {
	return enc.EncodeContext(context.Background(), v)
}

// EncodeContext writes v in chunks, checking ctx between them.
func (enc *Encoder) EncodeContext(ctx context.Context, v any) error {
	s, err := NewSerializer(v, nil, enc.opts)
	if err != nil {
		return err
	}
	defer s.Close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk, done, err := s.Next()
		if err != nil {
			return err
		}
		if _, err := enc.w.Write(chunk); err != nil {
			return err
		}
		if done {
			break
		}
	}
	_, err = enc.w.Write([]byte{'\n'})
	return err
}
