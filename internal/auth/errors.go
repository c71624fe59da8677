package auth

import (
	"errors"
	"fmt"
)

// Kind classifies an authentication failure.
type Kind string

const (
	KindUserNotFound  Kind = "user-not-found"
	KindWrongPassword Kind = "wrong-password"
	KindEmailInUse    Kind = "email-already-in-use"
	KindInvalidEmail  Kind = "invalid-email"
	KindWeakPassword  Kind = "weak-password"
	KindInvalidToken  Kind = "invalid-token"
	KindUnknown       Kind = "unknown"
)

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "auth: " + string(e.Kind)
	}
	return fmt.Sprintf("auth: %s: %s", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

var messages = map[Kind]string{
	KindUserNotFound:  "No account found with this email.",
	KindWrongPassword: "Incorrect password.",
	KindEmailInUse:    "An account with this email already exists.",
	KindInvalidEmail:  "Invalid email format.",
	KindWeakPassword:  "Password must be at least 6 characters.",
	KindInvalidToken:  "Your session has expired, please log in again.",
}

// Message maps err to the text shown to the user.
func Message(err error) string {
	if msg, ok := messages[KindOf(err)]; ok {
		return msg
	}
	return "Authentication failed, please try again."
}
