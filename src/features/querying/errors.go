package querying

import "fmt"

// ErrorKind classifies why a bang expression failed to parse.
type ErrorKind string

const (
	ErrUnterminatedPayload ErrorKind = "unterminated-payload"
	ErrUnknownBang         ErrorKind = "unknown-bang"
	ErrInvalidOperand      ErrorKind = "invalid-operand"
	ErrDanglingCombinator  ErrorKind = "dangling-combinator"
	ErrInvalidEscape       ErrorKind = "invalid-escape"
)

// ParseError reports a malformed bang expression with the byte offset of the
// offending input. It is returned to the caller and is never fatal.
type ParseError struct {
	Offset int
	Kind   ErrorKind
	Detail string
}

func (e *ParseError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Kind)
	}
	return fmt.Sprintf("parse error at offset %d: %s: %s", e.Offset, e.Kind, e.Detail)
}

func parseErr(offset int, kind ErrorKind, format string, args ...any) *ParseError {
	return &ParseError{Offset: offset, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
