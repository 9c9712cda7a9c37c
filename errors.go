package simmsg

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFormat             = errors.New("simmsg: invalid format string")
	ErrArityMismatch             = errors.New("simmsg: format length differs from argument count")
	ErrUnsupportedPrimitiveType  = errors.New("simmsg: unsupported primitive type")
	ErrUnsupportedDataModelWidth = errors.New("simmsg: no native type matches data model width")
	ErrBufferUnderrun            = errors.New("simmsg: read past end of incoming buffer")
	ErrEncoding                  = errors.New("simmsg: string encoding error")
	ErrInvalidValue              = errors.New("simmsg: value not representable as field kind")
	ErrUnknownProfile            = errors.New("simmsg: unknown data model profile")
)

// FieldError locates a failure inside a schema. Pos is the byte offset of
// the offending letter in the schema, or -1 when the failure is not tied to
// a single field.
type FieldError struct {
	Schema string
	Pos    int
	Letter byte
	Err    error
}

func (e *FieldError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("%v (schema %q)", e.Err, e.Schema)
	}
	return fmt.Sprintf("%v: field %q at %d (schema %q)", e.Err, e.Letter, e.Pos, e.Schema)
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(schema string, pos int, err error) error {
	fe := &FieldError{Schema: schema, Pos: pos, Err: err}
	if pos >= 0 && pos < len(schema) {
		fe.Letter = schema[pos]
	}
	return fe
}
