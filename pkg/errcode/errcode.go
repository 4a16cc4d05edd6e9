package errcode

import (
	"errors"
	"fmt"
)

// Error represents a business error
type Error struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("errcode: %d, msg: %s", e.Code, e.Msg)
}

// New creates a new error with code and message
func New(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Wrap wraps an error with additional context
func (e *Error) Wrap(err error) *Error {
	if err == nil {
		return e
	}
	return &Error{
		Code: e.Code,
		Msg:  fmt.Sprintf("%s: %v", e.Msg, err),
	}
}

// Is matches by code so wrapped sentinels still satisfy errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// FromError extracts an *Error from err's chain
func FromError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Common error codes
var (
	// Common errors (1xxx)
	ErrInvalidParam = New(1001, "invalid parameter")
	ErrInternal     = New(1002, "internal error")
	ErrNetwork      = New(1003, "network error")

	// Auth errors (2xxx)
	ErrAuthRequired = New(2001, "not authenticated")
	ErrTokenInvalid = New(2002, "token invalid")

	// Conversation errors (3xxx)
	ErrBackendUnavailable = New(3001, "messaging backend not provisioned")
	ErrConvNotFound       = New(3002, "conversation not found")
	ErrEmptyGroupName     = New(3003, "group name is empty")
	ErrNoGroupMembers     = New(3004, "group needs at least one member")
	ErrGroupCreateFailed  = New(3005, "group creation failed")

	// Message errors (4xxx)
	ErrEmptyMessage    = New(4001, "message body is empty")
	ErrSendFailed      = New(4002, "message send failed")
	ErrSendTimeout     = New(4003, "message send timed out")
	ErrPullFailed      = New(4004, "message pull failed")
	ErrMessageNotFound = New(4005, "message not found")

	// Realtime errors (5xxx)
	ErrAlreadySubscribed  = New(5001, "realtime channel already subscribed")
	ErrSubscriptionClosed = New(5002, "realtime subscription closed")
	ErrInvalidEvent       = New(5003, "invalid realtime event")

	// Upload errors (6xxx)
	ErrUploadFailed = New(6001, "media upload failed")
)

// IsValidation reports whether err is a bad-input error the caller can fix
// by correcting the request
func IsValidation(err error) bool {
	e, ok := FromError(err)
	if !ok {
		return false
	}
	switch e.Code {
	case ErrInvalidParam.Code, ErrEmptyGroupName.Code, ErrNoGroupMembers.Code, ErrEmptyMessage.Code:
		return true
	}
	return false
}

// IsNetwork reports whether err is a transient transport failure,
// retryable by the user
func IsNetwork(err error) bool {
	e, ok := FromError(err)
	return ok && (e.Code == ErrNetwork.Code || e.Code == ErrSendTimeout.Code)
}

// IsBackendUnavailable reports whether the messaging feature is not
// provisioned for this deployment (distinct from empty data)
func IsBackendUnavailable(err error) bool {
	e, ok := FromError(err)
	return ok && e.Code == ErrBackendUnavailable.Code
}

// IsAuthRequired reports whether err means no signed-in session
func IsAuthRequired(err error) bool {
	e, ok := FromError(err)
	return ok && (e.Code == ErrAuthRequired.Code || e.Code == ErrTokenInvalid.Code)
}

// IsUpload reports whether err is an attachment storage failure
func IsUpload(err error) bool {
	e, ok := FromError(err)
	return ok && e.Code == ErrUploadFailed.Code
}
