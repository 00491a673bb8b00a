package session

import (
	"errors"
	"fmt"
)

// Kind classifies an AuthError.
type Kind int

const (
	// Unauthenticated means no usable credential is stored.
	Unauthenticated Kind = iota + 1
	// ProfileFetchFailed means the credential is present but the profile
	// lookup failed; the credential is kept.
	ProfileFetchFailed
	// LogoutFailed means the server did not confirm the logout; the session
	// is unchanged and the call may be retried.
	LogoutFailed
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case ProfileFetchFailed:
		return "profile fetch failed"
	case LogoutFailed:
		return "logout failed"
	default:
		return "unknown"
	}
}

// AuthError is returned by every Provider operation that fails.
type AuthError struct {
	Kind Kind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "session: " + e.Kind.String()
	}
	return fmt.Sprintf("session: %s: %v", e.Kind, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Is matches another *AuthError of the same kind, so callers can write
// errors.Is(err, &AuthError{Kind: Unauthenticated}).
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Kind == e.Kind
}

// IsKind reports whether err is an AuthError of kind k.
func IsKind(err error, k Kind) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Kind == k
}
