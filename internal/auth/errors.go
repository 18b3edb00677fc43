package auth

import (
	"errors"
	"fmt"
)

// Kind classifies a rejection so the HTTP layer can pick a status code in
// one place. The three rejection categories never overlap: authentication
// failures mean the credential itself is no good, account-state rejections
// mean a valid credential for an unusable account, permission rejections
// mean a valid, active user lacking a capability.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthentication
	KindAccountState
	KindPermission
)

// ErrNotFound is returned by stores when a lookup matches zero rows.
var ErrNotFound = errors.New("auth: not found")

// Error is the tagged rejection type produced by the auth core.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// KindOf extracts the rejection kind from an error chain. Anything that is
// not a tagged auth error (database failures included) is internal and must
// never be reported as an invalid token.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func authenticationError(msg string) error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func accountStateError(msg string) error {
	return &Error{Kind: KindAccountState, Message: msg}
}

func permissionError(msg string) error {
	return &Error{Kind: KindPermission, Message: msg}
}

func internalError(msg string, cause error) error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}
