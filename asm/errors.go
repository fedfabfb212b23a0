package asm

import "fmt"

// ErrorKind classifies an assembly failure. Every kind is fatal to the
// assembly that produced it.
type ErrorKind int

const (
	OversizedLiteral ErrorKind = iota + 1
	InvalidDecimal
	UnrecognizedToken
	MalformedHex
)

func (k ErrorKind) String() string {
	switch k {
	case OversizedLiteral:
		return "oversized literal"
	case InvalidDecimal:
		return "invalid decimal"
	case UnrecognizedToken:
		return "unrecognized token"
	case MalformedHex:
		return "malformed hex"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error lets a kind be used as an errors.Is target.
func (k ErrorKind) Error() string {
	return k.String()
}

type Error struct {
	Kind  ErrorKind
	Token string
	// Err is the underlying decode failure, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s -> %s: %s", e.Kind, e.Token, e.Err)
	}
	return fmt.Sprintf("%s -> %s", e.Kind, e.Token)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind ErrorKind, token string, err error) *Error {
	return &Error{Kind: kind, Token: token, Err: err}
}
