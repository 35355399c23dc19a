package recordkv

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownType is returned when an operation references a type id
	// that is not present in the registry.
	ErrUnknownType = errors.New("unknown record type")

	// ErrInvalidArgument is returned for malformed selector/prefix
	// combinations and unusable type-identifier arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCommitFailed is returned when the store reports that an atomic
	// multi-key transaction did not apply. The layer never retries.
	ErrCommitFailed = errors.New("commit failed")
)

// FieldError reports a record field that is missing or unusable as a key
// part for the declared type.
type FieldError struct {
	TypeID string
	Field  string
	Msg    string
}

func fieldErrf(typeID, field string, format string, args ...any) error {
	return &FieldError{typeID, field, fmt.Sprintf(format, args...)}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.TypeID, e.Field, e.Msg)
}

// KeyError reports a malformed physical key or value encountered during a
// scan.
type KeyError struct {
	Key []byte
	Msg string
	Err error
}

func (e *KeyError) Unwrap() error {
	return e.Err
}

func (e *KeyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %x", e.Msg, e.Err, e.Key)
	}
	return fmt.Sprintf("%s: %x", e.Msg, e.Key)
}
