package lexer

import (
	"errors"
	"fmt"

	"github.com/regexray/regexray/internal/conv"
)

// Sentinel categories for Error.Err, so callers can classify a failure with
// errors.Is without string-matching Message.
var (
	errUnterminated  = errors.New("unterminated construct")
	errInvalidEscape = errors.New("invalid escape sequence")
	errInvalidUTF8   = errors.New("invalid UTF-8 input")
)

// Error reports a lexical analysis failure at a specific byte offset in the
// pattern body.
type Error struct {
	Pos     uint32
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("lexer: %s (at byte %d)", e.Message, e.Pos)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(pos int, msg string, sentinel error) error {
	return &Error{Pos: conv.IntToUint32(pos), Message: msg, Err: sentinel}
}
