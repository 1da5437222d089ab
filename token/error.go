package token

import "fmt"

var (
	ErrSyntax        = fmt.Errorf("token: syntax error")
	ErrUnexpectedEOF = fmt.Errorf("token: unexpected end of JSON input")
	ErrMaxDepth      = fmt.Errorf("token: maximum depth exceeded")
	ErrIncomplete    = fmt.Errorf("token: value is not complete in the current buffer")
	ErrKind          = fmt.Errorf("token: token is of the wrong kind")
	ErrInvalidWrite  = fmt.Errorf("token: invalid write")
)

// SyntaxError describes malformed input together with the absolute input
// offset it was found at.
type SyntaxError struct {
	Offset int64
	msg    string
	err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %s at offset %d", e.err, e.msg, e.Offset)
}

func (e *SyntaxError) Unwrap() error {
	return e.err
}
