package jsonwalk

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/karagenc/jsonwalk/token"
)

// builtinConverters are consulted in order after the user converters.
var builtinConverters = []Converter{
	timeConverter{},
	numberConverter{},
	marshalerConverter{},
	textConverter{},
	bytesConverter{},
	boolConverter{},
	intConverter{},
	uintConverter{},
	floatConverter{},
	stringConverter{},
}

var (
	timeType   = reflect.TypeOf(time.Time{})
	numberType = reflect.TypeOf(json.Number(""))
)

type boolConverter struct{}

func (boolConverter) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.Bool }

func (boolConverter) Read(r *token.Reader, t reflect.Type, o *Options) (reflect.Value, error) {
	b, err := r.Bool()
	if err != nil {
		return reflect.Value{}, cannotConvert(t, r.Kind())
	}
	v := reflect.New(t).Elem()
	v.SetBool(b)
	return v, nil
}

func (boolConverter) Write(w *token.Writer, v reflect.Value, o *Options) error {
	w.WriteBool(v.Bool())
	return nil
}

type intConverter struct{}

func (intConverter) CanConvert(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func (intConverter) Read(r *token.Reader, t reflect.Type, o *Options) (reflect.Value, error) {
	if r.Kind() != token.Number {
		return reflect.Value{}, cannotConvert(t, r.Kind())
	}
	n, err := r.Int64()
	v := reflect.New(t).Elem()
	if err != nil || v.OverflowInt(n) {
		return reflect.Value{}, newError(ErrCannotConvert, t, "number %s out of range", r.Bytes())
	}
	v.SetInt(n)
	return v, nil
}

func (intConverter) Write(w *token.Writer, v reflect.Value, o *Options) error {
	w.WriteInt(v.Int())
	return nil
}

type uintConverter struct{}

func (uintConverter) CanConvert(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func (uintConverter) Read(r *token.Reader, t reflect.Type, o *Options) (reflect.Value, error) {
	if r.Kind() != token.Number {
		return reflect.Value{}, cannotConvert(t, r.Kind())
	}
	n, err := r.Uint64()
	v := reflect.New(t).Elem()
	if err != nil || v.OverflowUint(n) {
		return reflect.Value{}, newError(ErrCannotConvert, t, "number %s out of range", r.Bytes())
	}
	v.SetUint(n)
	return v, nil
}

func (uintConverter) Write(w *token.Writer, v reflect.Value, o *Options) error {
	w.WriteUint(v.Uint())
	return nil
}

type floatConverter struct{}

func (floatConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
}

func (floatConverter) Read(r *token.Reader, t reflect.Type, o *Options) (reflect.Value, error) {
	if r.Kind() != token.Number {
		return reflect.Value{}, cannotConvert(t, r.Kind())
	}
	f, err := strconv.ParseFloat(string(r.Bytes()), t.Bits())
	if err != nil {
		return reflect.Value{}, newError(ErrCannotConvert, t, "number %s out of range", r.Bytes())
	}
	v := reflect.New(t).Elem()
	v.SetFloat(f)
	return v, nil
}

func (floatConverter) Write(w *token.Writer, v reflect.Value, o *Options) error {
	f := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return newError(ErrCannotConvert, v.Type(), "unsupported value %v", f)
	}
	w.WriteFloat(f, v.Type().Bits())
	return nil
}

type stringConverter struct{}

func (stringConverter) CanConvert(t reflect.Type) bool { return t.Kind() == reflect.String }

func (stringConverter) Read(r *token.Reader, t reflect.Type, o *Options) (reflect.Value, error) {
	s, err := r.String()
	if err != nil || r.Kind() != token.String {
		return reflect.Value{}, cannotConvert(t, r.Kind())
	}
	v := reflect.New(t).Elem()
	v.SetString(s)
	return v, nil
}

func (stringConverter) Write(w *token.Writer, v reflect.Value, o *Options) error {
	w.WriteString(v.String())
	return nil
}

// bytesConverter reads and writes byte slices as base64 strings.
type bytesConverter struct{}

func (bytesConverter) CanConvert(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func (bytesConverter) Read(r *token.Reader, t reflect.Type, o *Options) (reflect.Value, error) {
	if r.Kind() != token.String {
		return reflect.Value{}, cannotConvert(t, r.Kind())
	}
	s, err := r.String()
	if err != nil {
		return reflect.Value{}, err
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return reflect.Value{}, &Error{Kind: ErrCannotConvert, Type: t, Err: err}
	}
	v := reflect.New(t).Elem()
	v.SetBytes(b)
	return v, nil
}

func (bytesConverter) Write(w *token.Writer, v reflect.Value, o *Options) error {
	w.WriteString(base64.StdEncoding.EncodeToString(v.Bytes()))
	return nil
}

// timeConverter uses RFC 3339 with nanoseconds, like time.Time.MarshalJSON.
type timeConverter struct{}

func (timeConverter) CanConvert(t reflect.Type) bool { return t == timeType }

func (timeConverter) Read(r *token.Reader, t reflect.Type, o *Options) (reflect.Value, error) {
	if r.Kind() != token.String {
		return reflect.Value{}, cannotConvert(t, r.Kind())
	}
	s, err := r.String()
	if err != nil {
		return reflect.Value{}, err
	}
	tm, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return reflect.Value{}, &Error{Kind: ErrCannotConvert, Type: t, Err: err}
	}
	return reflect.ValueOf(tm), nil
}

func (timeConverter) Write(w *token.Writer, v reflect.Value, o *Options) error {
	w.WriteString(v.Interface().(time.Time).Format(time.RFC3339Nano))
	return nil
}

// numberConverter keeps the literal text of numbers in json.Number values.
type numberConverter struct{}

func (numberConverter) CanConvert(t reflect.Type) bool { return t == numberType }

func (numberConverter) Read(r *token.Reader, t reflect.Type, o *Options) (reflect.Value, error) {
	var s string
	switch r.Kind() {
	case token.Number:
		s = string(r.Bytes())
	case token.String:
		str, err := r.String()
		if err != nil {
			return reflect.Value{}, err
		}
		if !isNumberLiteral(str) {
			return reflect.Value{}, newError(ErrCannotConvert, t, "invalid number %q", str)
		}
		s = str
	default:
		return reflect.Value{}, cannotConvert(t, r.Kind())
	}
	return reflect.ValueOf(json.Number(s)), nil
}

func (numberConverter) Write(w *token.Writer, v reflect.Value, o *Options) error {
	s := v.String()
	if s == "" {
		s = "0"
	}
	if !isNumberLiteral(s) {
		return newError(ErrCannotConvert, v.Type(), "invalid number %q", s)
	}
	w.WriteRawValue([]byte(s))
	return nil
}

// isNumberLiteral reports whether s is exactly one JSON number.
func isNumberLiteral(s string) bool {
	r := token.NewReader([]byte(s), true, token.NewState(1, false))
	ok, err := r.Read()
	if err != nil || !ok || r.Kind() != token.Number {
		return false
	}
	ok, err = r.Read()
	return err == nil && !ok
}
