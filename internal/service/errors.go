package service

import (
	"errors"
	"fmt"
)

// ErrorKind identifies a business-rule failure of one of the auth flows.
// Flows return these as values so callers can branch deterministically;
// anything outside the closed set is an infrastructure fault.
type ErrorKind string

const (
	KindConflict           ErrorKind = "CONFLICT"
	KindUserNotFound       ErrorKind = "USER_NOT_FOUND"
	KindEmailNotVerified   ErrorKind = "EMAIL_NOT_VERIFIED"
	KindInvalidCredentials ErrorKind = "INVALID_CREDENTIALS"
	KindTokenNotFound      ErrorKind = "TOKEN_NOT_FOUND"
	KindInvalidToken       ErrorKind = "INVALID_TOKEN"
	KindTokenExpired       ErrorKind = "TOKEN_EXPIRED"
	KindExpiredToken       ErrorKind = "EXPIRED_TOKEN"
	KindEmailNotExist      ErrorKind = "EMAIL_NOT_EXIST"
	KindUpdateFailed       ErrorKind = "UPDATE_FAILED"
	KindEmailNotFound      ErrorKind = "EMAIL_NOT_FOUND"
	KindMissingToken       ErrorKind = "MISSING_TOKEN"
	KindInvalidPassword    ErrorKind = "INVALID_PASSWORD"
	KindPasswordMismatch   ErrorKind = "PASSWORD_MISMATCH"
	KindInternal           ErrorKind = "INTERNAL"
)

// FlowError carries an ErrorKind through the error chain
type FlowError struct {
	Kind ErrorKind
	Err  error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// NewFlowError creates a FlowError of the given kind
func NewFlowError(kind ErrorKind) *FlowError {
	return &FlowError{Kind: kind}
}

// WrapFlowError creates a FlowError of the given kind wrapping a cause
func WrapFlowError(kind ErrorKind, err error) *FlowError {
	return &FlowError{Kind: kind, Err: err}
}

// KindOf extracts the ErrorKind from an error chain. Errors that carry no
// kind are infrastructure faults and map to KindInternal.
func KindOf(err error) ErrorKind {
	var flowErr *FlowError
	if errors.As(err, &flowErr) {
		return flowErr.Kind
	}
	return KindInternal
}
