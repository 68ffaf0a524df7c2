package booking

import (
	"errors"
	"strings"
)

// ErrFacultyMismatch reports a tampered hidden faculty id. It is a security
// rejection, not a validation error.
var ErrFacultyMismatch = errors.New("security error: faculty id mismatch")

// FieldErrors collects every format/required-field failure found in one
// validation pass.
type FieldErrors []string

func (e FieldErrors) Error() string {
	return strings.Join(e, "; ")
}

// QuotaError is a business-rule rejection from one of the active-appointment
// limits. Only the first violated limit is reported.
type QuotaError struct {
	msg string
}

func (e *QuotaError) Error() string { return e.msg }

func quotaErrorf(msg string) *QuotaError { return &QuotaError{msg: msg} }
