// Package apierr maps failed API calls to user-facing messages and the
// navigation they require.
package apierr

import (
	"errors"
	"net/http"
)

// Kind is the failure taxonomy surfaced to the UI.
type Kind int

const (
	UnknownFailure Kind = iota
	AuthenticationFailure
	AuthorizationFailure
	NotFound
	ValidationFailure
)

func (k Kind) String() string {
	switch k {
	case AuthenticationFailure:
		return "AuthenticationFailure"
	case AuthorizationFailure:
		return "AuthorizationFailure"
	case NotFound:
		return "NotFound"
	case ValidationFailure:
		return "ValidationFailure"
	default:
		return "UnknownFailure"
	}
}

// ScreenLogin is the screen a 401 sends the user back to.
const ScreenLogin = "Login"

// User-facing messages.
const (
	MsgSessionExpired = "Session expired. Please login again."
	MsgForbidden      = "You do not have permission to perform this action."
	MsgNotFound       = "Resource not found."
	MsgValidation     = "Please check your input and try again."
	MsgUnknown        = "Something went wrong. Please try again later."
)

// Classification is the outcome of classifying a status code.
// Navigate is empty unless the failure requires a screen change.
type Classification struct {
	Status   int
	Kind     Kind
	Message  string
	Navigate string
}

// RequiresSignOut reports whether the failure invalidates the session.
func (c Classification) RequiresSignOut() bool {
	return c.Kind == AuthenticationFailure
}

// Classify maps an HTTP status code to its classification.
func Classify(status int) Classification {
	c := Classification{Status: status}
	switch status {
	case http.StatusUnauthorized:
		c.Kind = AuthenticationFailure
		c.Message = MsgSessionExpired
		c.Navigate = ScreenLogin
	case http.StatusForbidden:
		c.Kind = AuthorizationFailure
		c.Message = MsgForbidden
	case http.StatusNotFound:
		c.Kind = NotFound
		c.Message = MsgNotFound
	case http.StatusUnprocessableEntity:
		c.Kind = ValidationFailure
		c.Message = MsgValidation
	default:
		c.Kind = UnknownFailure
		c.Message = MsgUnknown
	}
	return c
}

// statusCarrier is implemented by errors that know their HTTP status,
// such as *client.HTTPError.
type statusCarrier interface {
	HTTPStatus() int
}

// StatusOf returns the HTTP status carried by err, or 0 for transport
// and other errors.
func StatusOf(err error) int {
	var sc statusCarrier
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return 0
}

// FromError classifies err. Errors without a status are UnknownFailure.
func FromError(err error) Classification {
	return Classify(StatusOf(err))
}
