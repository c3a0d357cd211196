package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure surfaced to the caller.
type ErrorKind string

const (
	KindEmptyInput       ErrorKind = "empty_input"
	KindInvalidReference ErrorKind = "invalid_reference"
	KindFileTooLarge     ErrorKind = "file_too_large"
	KindUnsupportedType  ErrorKind = "unsupported_type"
	KindAuthRequired     ErrorKind = "auth_required"
	KindAuthInvalid      ErrorKind = "auth_invalid"
	KindRateLimited      ErrorKind = "rate_limited"
	KindEmptyResult      ErrorKind = "empty_result"
	KindEngineFailure    ErrorKind = "engine_failure"
)

// NeedsReauth reports whether the caller should prompt for a new credential.
func (k ErrorKind) NeedsReauth() bool {
	return k == KindAuthRequired || k == KindAuthInvalid
}

// Failure is the only error type returned across the resolver boundary.
type Failure struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	if f.Message != "" {
		return fmt.Sprintf("%s: %s", f.Kind, f.Message)
	}
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	return string(f.Kind)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Fail builds a Failure with a formatted message.
func Fail(kind ErrorKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a Failure that keeps cause in the chain and uses its text as the message.
func Wrap(kind ErrorKind, cause error) *Failure {
	f := &Failure{Kind: kind, Err: cause}
	if cause != nil {
		f.Message = cause.Error()
	}
	return f
}

// KindOf extracts the failure kind from err. Errors that are not a Failure
// are reported as engine failures.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindEngineFailure
}

// IsKind reports whether err is a Failure of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
