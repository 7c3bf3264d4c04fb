package typeschema

import (
	"errors"
	"fmt"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeUnsupportedType = "unsupported_type"
	CodeInvalidConfig   = "invalid_config"
	// Diagnostics only; these never fail a build.
	CodeAmbiguousTag = "ambiguous_tag_field"
	CodeDuplicateTag = "duplicate_tag_value"
)

var (
	// ErrUnsupportedType matches errors raised for types that have no schema
	// mapping and no ExtraSchema override.
	ErrUnsupportedType = errors.New("typeschema: unsupported type")
	// ErrInvalidConfig matches errors raised for malformed declarations,
	// struct tags or options.
	ErrInvalidConfig = errors.New("typeschema: invalid configuration")
)

// Error is a compile or resolution failure.
type Error struct {
	Code    string // One of the codes listed above.
	Path    string // Location in the type graph (for example: /Polygon/vertices/items).
	Message string
	Cause   error // Optional: underlying error.
}

func (e *Error) Error() string {
	msg := e.Code
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the sentinel that corresponds to the error code.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnsupportedType:
		return e.Code == CodeUnsupportedType
	case ErrInvalidConfig:
		return e.Code == CodeInvalidConfig
	}
	return false
}

// Errorf builds an *Error with a formatted message.
func Errorf(code, path, format string, args ...any) *Error {
	return &Error{Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts an *Error using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
