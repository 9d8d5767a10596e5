package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ValidationError rejects malformed input at the domain boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// CredentialMismatchError is a recoverable, user-facing condition. The
// caller may retry indefinitely; there is no lockout.
type CredentialMismatchError struct{}

func (e CredentialMismatchError) Error() string {
	return "credentials do not match"
}

func (e CredentialMismatchError) Is(target error) bool {
	_, ok := target.(CredentialMismatchError)
	if ok {
		return true
	}
	_, ok = target.(*CredentialMismatchError)
	return ok
}

// ErrCredentialMismatch is the sentinel for a failed credential challenge.
var ErrCredentialMismatch = CredentialMismatchError{}
