package server

import (
	"errors"
	"fmt"
)

// Error carries a user facing message and a code sentinel for the transport layer,
// keeping the low level cause reachable through Unwrap.
type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func (e *Error) Code() error {
	return e.code
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

// CodeOf returns the code of the outermost *Error in err, or ErrInternalServerError
// when err carries none.
func CodeOf(err error) error {
	var serr *Error
	if errors.As(err, &serr) && serr.code != nil {
		return serr.code
	}
	return ErrInternalServerError
}

var (
	ErrInternalServerError = errors.New("internal server error")
	// ErrNotFound: requested layout, location or route does not exist
	ErrNotFound = errors.New("requested item is not found")
	// ErrConflict: the request clashes with existing state, e.g. a duplicate location id
	ErrConflict = errors.New("item already exists")
	// ErrBadParamInput: request body or params are not valid
	ErrBadParamInput = errors.New("given param is not valid")
)
