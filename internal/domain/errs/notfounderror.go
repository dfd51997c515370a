package errs

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	message string
}

func (v *NotFoundError) Error() string {
	return v.message
}

func NotFoundErrorf(format string, args ...any) *NotFoundError {
	return &NotFoundError{
		message: fmt.Sprintf(format, args...),
	}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

var _ error = &NotFoundError{}
