package native

import (
	"errors"
	"strconv"
)

var (
	ErrOverflow      = errors.New("integer overflow")
	ErrInvalidPolicy = errors.New("invalid overflow policy")
)

// Error represents an entry point failure with the offending input attached.
type Error struct {
	Op    string
	Value int32
	Err   error
}

func (e *Error) Error() string {
	return e.Op + " " + strconv.FormatInt(int64(e.Value), 10) + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
