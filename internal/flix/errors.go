package flix

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the client. Callers branch on these with
// errors.Is rather than parsing messages.
var (
	// ErrInvalidCredential indicates signing was attempted without a secret.
	ErrInvalidCredential = errors.New("invalid credential: secret access key is empty")

	// ErrAuthenticationFailed indicates login was rejected or the
	// authentication response was malformed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrTokenRevoked indicates the server answered 401 to a signed request.
	// The access token is no longer valid; callers should re-login instead of
	// retrying.
	ErrTokenRevoked = errors.New("token revoked")
)

// StatusError reports a non-2xx HTTP response that is not a revoked token.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.Code)
}
