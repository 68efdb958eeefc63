package call

import "errors"

type ErrorCode string

const (
	CodeRoomNotFound      ErrorCode = "room_not_found"
	CodeRoomAlreadyExists ErrorCode = "room_already_exists"
	CodeNotAuthorized     ErrorCode = "not_authorized"
	CodeUserOffline       ErrorCode = "user_offline"
	CodeNotParticipant    ErrorCode = "not_participant"
	CodeInvalidMessage    ErrorCode = "invalid_message"
	CodeInternal          ErrorCode = "internal_error"
)

// Error is returned by every room operation. It is reported to the calling
// connection only and never affects other participants.
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

// Is matches on Code so callers can compare against the sentinels below.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

var (
	ErrRoomNotFound      = NewError(CodeRoomNotFound, "room not found", nil)
	ErrRoomAlreadyExists = NewError(CodeRoomAlreadyExists, "room already exists", nil)
	ErrNotAuthorized     = NewError(CodeNotAuthorized, "not authorized", nil)
	ErrUserOffline       = NewError(CodeUserOffline, "user is offline", nil)
	ErrNotParticipant    = NewError(CodeNotParticipant, "not a participant of this room", nil)
)

// CodeOf extracts the error code, defaulting to internal_error for errors
// that did not originate here.
func CodeOf(err error) ErrorCode {
	var callErr *Error
	if errors.As(err, &callErr) {
		return callErr.Code
	}
	return CodeInternal
}
