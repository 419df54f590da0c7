package item

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against *DecodeError and *EncodeError.
var (
	ErrEmptyInput      = errors.New("item: empty input")
	ErrUnknownItemType = errors.New("item: unknown item type")
	ErrMalformedRecord = errors.New("item: malformed record")
	ErrInvalidPort     = errors.New("item: invalid port")
	ErrInvalidField    = errors.New("item: invalid field")
)

// DecodeErrorKind classifies line decoding errors.
type DecodeErrorKind int

const (
	// DecodeEmptyInput indicates a line with no content.
	DecodeEmptyInput DecodeErrorKind = iota
	// DecodeUnknownItemType indicates a type character outside the supported set.
	DecodeUnknownItemType
	// DecodeMalformedRecord indicates a missing required field or a stray
	// line terminator.
	DecodeMalformedRecord
	// DecodeInvalidPort indicates a non-numeric or out-of-range port field.
	DecodeInvalidPort
)

// String returns the snake_case kind name used in metrics and logs.
func (k DecodeErrorKind) String() string {
	switch k {
	case DecodeEmptyInput:
		return "empty_input"
	case DecodeUnknownItemType:
		return "unknown_item_type"
	case DecodeMalformedRecord:
		return "malformed_record"
	case DecodeInvalidPort:
		return "invalid_port"
	default:
		return fmt.Sprintf("decode_error(%d)", int(k))
	}
}

func (k DecodeErrorKind) sentinel() error {
	switch k {
	case DecodeEmptyInput:
		return ErrEmptyInput
	case DecodeUnknownItemType:
		return ErrUnknownItemType
	case DecodeMalformedRecord:
		return ErrMalformedRecord
	case DecodeInvalidPort:
		return ErrInvalidPort
	default:
		return nil
	}
}

// DecodeError is returned by DecodeLine.
type DecodeError struct {
	Kind DecodeErrorKind
	Msg  string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("item: %s: %v", e.Msg, e.Err)
	}
	return "item: " + e.Msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e's kind.
func (e *DecodeError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// EncodeErrorKind classifies encoding errors.
type EncodeErrorKind int

const (
	// EncodeInvalidField indicates a field that cannot be placed on the wire:
	// it contains a tab or line terminator, or a port is out of range.
	EncodeInvalidField EncodeErrorKind = iota
)

// String returns the snake_case kind name.
func (k EncodeErrorKind) String() string {
	if k == EncodeInvalidField {
		return "invalid_field"
	}
	return fmt.Sprintf("encode_error(%d)", int(k))
}

// EncodeError is returned by the encoder and by constructors that convert
// untyped input.
type EncodeError struct {
	Kind  EncodeErrorKind
	Field string
	Msg   string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("item: invalid %s: %s", e.Field, e.Msg)
}

// Is matches ErrInvalidField.
func (e *EncodeError) Is(target error) bool {
	return e.Kind == EncodeInvalidField && target == ErrInvalidField
}

func invalidField(field, format string, args ...any) *EncodeError {
	return &EncodeError{Kind: EncodeInvalidField, Field: field, Msg: fmt.Sprintf(format, args...)}
}

func decodeError(kind DecodeErrorKind, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// DecodeErrorKindOf returns the kind of a *DecodeError anywhere in err's
// chain.
func DecodeErrorKindOf(err error) (DecodeErrorKind, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}
