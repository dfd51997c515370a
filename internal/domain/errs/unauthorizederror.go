package errs

import (
	"errors"
	"fmt"
)

type UnauthorizedError struct {
	message string
}

func (v *UnauthorizedError) Error() string {
	return v.message
}

func UnauthorizedErrorf(format string, args ...any) *UnauthorizedError {
	return &UnauthorizedError{
		message: fmt.Sprintf(format, args...),
	}
}

// IsUnauthorized reports whether err is (or wraps) an UnauthorizedError.
func IsUnauthorized(err error) bool {
	var target *UnauthorizedError
	return errors.As(err, &target)
}

var _ error = &UnauthorizedError{}
