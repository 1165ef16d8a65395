package parser

import (
	"errors"
	"fmt"

	"github.com/regexray/regexray/internal/conv"
)

// Sentinel categories for Error.Err.
var (
	errSyntax            = errors.New("syntax error")
	errUnknownFlag       = errors.New("unknown regex flag")
	errBadQuantifier     = errors.New("invalid quantifier range")
	errBadConditional    = errors.New("invalid conditional")
	errBudgetExceeded    = errors.New("parser budget exceeded")
	errUnterminatedGroup = errors.New("unterminated group")
)

// Error reports a parse failure at a specific byte offset in the pattern
// source (including its delimiter).
type Error struct {
	Pos     uint32
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("parser: %s (at byte %d)", e.Message, e.Pos)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(pos int, msg string, sentinel error) error {
	return &Error{Pos: conv.IntToUint32(pos), Message: msg, Err: sentinel}
}

func newErrf(pos int, sentinel error, format string, args ...any) error {
	return &Error{Pos: conv.IntToUint32(pos), Message: fmt.Sprintf(format, args...), Err: sentinel}
}
