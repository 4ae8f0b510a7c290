package action

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParameterError is the user-facing error class: bad arguments, unreadable
// inputs and unwritable outputs all surface as a ParameterError.
type ParameterError struct {
	// Param names the offending parameter, if any.
	Param string

	Msg string

	// Err is the underlying cause, if any.
	Err error
}

func (e *ParameterError) Error() string {
	return e.Msg
}

func (e *ParameterError) Unwrap() error {
	return e.Err
}

// Errorf returns a ParameterError with a formatted message.
func Errorf(format string, args ...any) error {
	return &ParameterError{Msg: fmt.Sprintf(format, args...)}
}

// ParamErrorf returns a ParameterError attributed to param.
func ParamErrorf(param, format string, args ...any) error {
	return &ParameterError{Param: param, Msg: fmt.Sprintf(format, args...)}
}

// AsParameterError converts err into a ParameterError, keeping its message.
// A ParameterError anywhere in the chain is returned as is.
func AsParameterError(err error) *ParameterError {
	if err == nil {
		return nil
	}
	var pe *ParameterError
	if errors.As(err, &pe) {
		return pe
	}
	return &ParameterError{Msg: err.Error(), Err: err}
}

// Wrap annotates err with a message and reclassifies it as a ParameterError.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	pe := AsParameterError(err)
	return &ParameterError{Param: pe.Param, Msg: msg + ": " + pe.Msg, Err: errors.Wrap(err, msg)}
}

// IsParameterError reports whether err is or wraps a ParameterError.
func IsParameterError(err error) bool {
	var pe *ParameterError
	return errors.As(err, &pe)
}
