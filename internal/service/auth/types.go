package auth

import "context"

type ErrorCode string

const ErrorCodeUnauthorized ErrorCode = "unauthorized"

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Identity is what a verified token says about the connecting user.
type Identity struct {
	UserID       string
	Email        string
	CollectionID string
	DisplayName  string
}

type DisplayNameResolver interface {
	DisplayName(ctx context.Context, userID, email string) string
}
