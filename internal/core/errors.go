package core

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindUpstream       ErrorKind = "upstream"         // model call failed or no credentials
	KindMalformed      ErrorKind = "malformed_output" // no parseable JSON in the reply
	KindNormalization  ErrorKind = "normalization"    // JSON had the wrong shape
	KindStorage        ErrorKind = "storage"          // object storage upload failed
	KindInvalidRequest ErrorKind = "invalid_request"  // missing required input
)

// Sentinels for errors.Is. A *Error matches the sentinel of its Kind.
var (
	ErrUpstream        = errors.New("upstream error")
	ErrMalformedOutput = errors.New("malformed output")
	ErrNormalization   = errors.New("normalization error")
	ErrStorage         = errors.New("storage error")
	ErrInvalidRequest  = errors.New("invalid request")
)

var sentinels = map[ErrorKind]error{
	KindUpstream:       ErrUpstream,
	KindMalformed:      ErrMalformedOutput,
	KindNormalization:  ErrNormalization,
	KindStorage:        ErrStorage,
	KindInvalidRequest: ErrInvalidRequest,
}

type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func upstreamErr(op string, err error) error      { return newError(KindUpstream, op, err) }
func malformedErr(op string, err error) error     { return newError(KindMalformed, op, err) }
func normalizationErr(op string, err error) error { return newError(KindNormalization, op, err) }
func storageErr(op string, err error) error       { return newError(KindStorage, op, err) }

func invalidRequest(format string, args ...any) error {
	return newError(KindInvalidRequest, "validate", fmt.Errorf(format, args...))
}

// KindOf reports the taxonomy kind of err, or "" when err is not a *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
