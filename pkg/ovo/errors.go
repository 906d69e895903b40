package ovo

import (
	"errors"
	"fmt"
)

// OVO decode errors.
var (
	ErrTruncatedHeader     = errors.New("truncated chunk header")
	ErrTruncatedPayload    = errors.New("truncated chunk payload")
	ErrMalformedPrimitive  = errors.New("malformed primitive")
	ErrInvalidRecord       = errors.New("invalid record")
	ErrUnresolvedReference = errors.New("unresolved reference")
)

// MalformedPrimitiveError reports a primitive that could not be decoded.
// Offset is the absolute byte offset in the stream where the primitive started.
type MalformedPrimitiveError struct {
	Offset int64
	What   string
	Err    error
}

func (e *MalformedPrimitiveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s at offset %d: %v", e.What, e.Offset, e.Err)
	}
	return fmt.Sprintf("malformed %s at offset %d", e.What, e.Offset)
}

// Unwrap exposes both ErrMalformedPrimitive and the underlying cause.
func (e *MalformedPrimitiveError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedPrimitive}
	}
	return []error{ErrMalformedPrimitive, e.Err}
}

// InvalidRecordError reports a known chunk kind whose payload is inconsistent.
type InvalidRecordError struct {
	Kind   ChunkType
	Reason string
	Err    error
}

func (e *InvalidRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s record: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s record: %s", e.Kind, e.Reason)
}

func (e *InvalidRecordError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidRecord}
	}
	return []error{ErrInvalidRecord, e.Err}
}

// UnresolvedReferenceError reports a name lookup that missed, such as a
// mesh material or a node target. It is never fatal.
type UnresolvedReferenceError struct {
	Kind string // "material", "target", ...
	Name string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved %s reference %q", e.Kind, e.Name)
}

func (e *UnresolvedReferenceError) Unwrap() error {
	return ErrUnresolvedReference
}

func invalid(kind ChunkType, reason string, err error) error {
	return &InvalidRecordError{Kind: kind, Reason: reason, Err: err}
}
