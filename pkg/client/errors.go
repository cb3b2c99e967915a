package client

import (
	"errors"
	"fmt"

	"github.com/valyala/fastjson"
)

var (
	// ErrUnauthorized - request was rejected even after re-authorization
	ErrUnauthorized = errors.New("unable to make request due failed authorization")
	// ErrMissingCredentials - neither a valid session nor credentials are available
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrNoChildren - the account has no children
	ErrNoChildren = errors.New("no children found on the account")
)

// AuthError - server refused the provided credentials
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("credentials have not been accepted by the server (%v)", e.Reason)
}

// StatusError - server responded with an unexpected status code
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded with unexpected status code %v", e.Code)
	}

	return fmt.Sprintf("server responded with unexpected status code %v: %v", e.Code, e.Message)
}

// IsNotFound - true if the error is a 404 response
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == 404
}

// errorMessage - extracts error.message from a Google API error body
func errorMessage(body []byte) string {
	v, err := fastjson.ParseBytes(body)
	if err != nil {
		return ""
	}

	return string(v.GetStringBytes("error", "message"))
}
