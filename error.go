package jsonwalk

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/karagenc/jsonwalk/token"
)

var (
	ErrCannotConvert          = fmt.Errorf("jsonwalk: cannot convert value")
	ErrCollectionNotSupported = fmt.Errorf("jsonwalk: collection type not supported")
	ErrMissingFactory         = fmt.Errorf("jsonwalk: missing create-from-sequence factory")
	ErrConverterInvariant     = fmt.Errorf("jsonwalk: converter left the token stream inconsistent")
	ErrOptionsImmutable       = fmt.Errorf("jsonwalk: options are immutable once a type was resolved")
	ErrInvalidOption          = fmt.Errorf("jsonwalk: invalid option")
	ErrDuplicateProperty      = fmt.Errorf("jsonwalk: duplicate property name")
	ErrDepthExceeded          = fmt.Errorf("jsonwalk: maximum depth exceeded")
	ErrInvalidTarget          = fmt.Errorf("jsonwalk: target must be a non-nil pointer")
)

// Error is returned for every failure of a traversal. Kind is one of the
// sentinel errors of this package (nil for malformed input, in which case Err
// holds the token error). Path locates the failing value, for example
// $.items[3].name.
type Error struct {
	Kind   error
	Path   string
	Type   reflect.Type
	Owner  reflect.Type
	Member string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	switch {
	case e.Kind != nil:
		b.WriteString(e.Kind.Error())
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		b.WriteString("jsonwalk: error")
	}
	if e.Type != nil {
		b.WriteString(": type ")
		b.WriteString(e.Type.String())
	}
	if e.Owner != nil && e.Member != "" {
		b.WriteString(" (member ")
		b.WriteString(e.Owner.String())
		b.WriteByte('.')
		b.WriteString(e.Member)
		b.WriteByte(')')
	}
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Kind != nil && e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind error, t reflect.Type, format string, args ...any) *Error {
	e := &Error{Kind: kind, Type: t}
	if format != "" {
		e.Err = fmt.Errorf(format, args...)
	}
	return e
}

func cannotConvert(t reflect.Type, kind token.Kind) *Error {
	return newError(ErrCannotConvert, t, "from JSON %s", kind)
}

// annotate fills in the location of err. Errors that are not *Error values
// are wrapped. *Error values are copied, as some are cached in type metadata.
func annotate(err error, path string, member *PropertyInfo) error {
	var e *Error
	if errors.As(err, &e) {
		c := *e
		e = &c
	} else {
		e = &Error{Err: err}
		if errors.Is(err, token.ErrMaxDepth) {
			e.Kind = ErrDepthExceeded
		}
	}
	if e.Path == "" {
		e.Path = path
	}
	if member != nil && !member.isPolicy && e.Member == "" {
		e.Owner = member.owner
		e.Member = member.name
		if e.Type == nil {
			e.Type = member.declaredType
		}
	}
	return e
}
