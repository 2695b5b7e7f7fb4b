package domain

import (
	"errors"
	"fmt"
)

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrOfficerNotFound    = errors.New("collection officer not found")
)

// Collection errors
var (
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrAmountTooLarge        = errors.New("amount exceeds the allowed ceiling")
	ErrDuplicateContribution = errors.New("contribution already recorded for this business day")
	ErrDuplicateSubmission   = errors.New("daily submission already exists for this business day")
	ErrSubmissionNotFound    = errors.New("daily submission not found")
)

// Loan errors
var (
	ErrLoanNotFound      = errors.New("loan not found")
	ErrInvalidLoanStatus = errors.New("invalid loan status transition")
	ErrOverpayment       = errors.New("repayment exceeds remaining balance")
)

// EligibilityError reports why a customer cannot take a loan. Exactly one
// reason is surfaced: the first check that fails.
type EligibilityError struct {
	Reason string
}

func (e *EligibilityError) Error() string {
	return fmt.Sprintf("customer not eligible for loan: %s", e.Reason)
}

// NewEligibilityError creates an eligibility error with the given reason.
func NewEligibilityError(format string, args ...interface{}) *EligibilityError {
	return &EligibilityError{Reason: fmt.Sprintf(format, args...)}
}

// IsEligibilityError reports whether err is an EligibilityError.
func IsEligibilityError(err error) bool {
	var e *EligibilityError
	return errors.As(err, &e)
}
