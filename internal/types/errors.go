package types

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	KindEmpty             ErrorKind = "empty"
	KindMissingType       ErrorKind = "missingType"
	KindMissingAIPrompt   ErrorKind = "missingAIPrompt"
	KindMissingSeed       ErrorKind = "missingSeed"
	KindInvalidRowCount   ErrorKind = "invalidRowCount"
	KindReferenceCycle    ErrorKind = "referenceCycle"
	KindOverlayFailed     ErrorKind = "overlayFailed"
	KindEncodeFailed      ErrorKind = "encodeFailed"
	KindUnsupportedFormat ErrorKind = "unsupportedFormat"
)

// Error is a generation failure that callers can tell apart by Kind.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"error"`
	Fields  []string  `json:"fields,omitempty"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Fields, ", "))
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrEmpty             = &Error{Kind: KindEmpty, Message: "schema has no fields"}
	ErrMissingType       = &Error{Kind: KindMissingType, Message: "fields have no type selected"}
	ErrMissingAIPrompt   = &Error{Kind: KindMissingAIPrompt, Message: "schema has AI-generated fields but no enhancement instruction"}
	ErrMissingSeed       = &Error{Kind: KindMissingSeed, Message: "deterministic seed is enabled but no seed was given"}
	ErrInvalidRowCount   = &Error{Kind: KindInvalidRowCount, Message: "row count out of range"}
	ErrReferenceCycle    = &Error{Kind: KindReferenceCycle, Message: "reference fields form a cycle"}
	ErrOverlayFailed     = &Error{Kind: KindOverlayFailed, Message: "AI enhancement failed"}
	ErrEncodeFailed      = &Error{Kind: KindEncodeFailed, Message: "failed to encode dataset"}
	ErrUnsupportedFormat = &Error{Kind: KindUnsupportedFormat, Message: "unsupported export format"}
)

func NewError(kind ErrorKind, message string, fields ...string) *Error {
	return &Error{Kind: kind, Message: message, Fields: fields}
}

func WrapError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind of a generation error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
