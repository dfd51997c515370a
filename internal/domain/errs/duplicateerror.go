package errs

import (
	"errors"
	"fmt"
)

type DuplicateError struct {
	message string
}

func (v *DuplicateError) Error() string {
	return v.message
}

func DuplicateErrorf(format string, args ...any) *DuplicateError {
	return &DuplicateError{
		message: fmt.Sprintf(format, args...),
	}
}

// IsDuplicate reports whether err is a DuplicateError.
func IsDuplicate(err error) bool {
	var duplicateErr *DuplicateError
	return errors.As(err, &duplicateErr)
}

var _ error = &DuplicateError{}
