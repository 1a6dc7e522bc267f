package standin

import (
	"errors"

	"github.com/tarmac-project/standin/field"
)

var (
	// ErrNotStruct is reported when a Mock is built for a type that is not a struct.
	ErrNotStruct = field.ErrNotStruct

	// ErrTypeMismatch is reported when a value cannot be stored in the field it is set up for.
	ErrTypeMismatch = errors.New("value does not fit field")

	// ErrNotFunc signals that a function type was required but something else was given.
	ErrNotFunc = errors.New("type is not a function")
)
