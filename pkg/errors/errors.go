package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// DuplicateChatroom is returned when a chatroom already exists for an
// unordered pair of users. No write has been performed.
func DuplicateChatroom(err error) *AppError {
	return &AppError{
		Code:    "DUPLICATE_CHATROOM",
		Message: "Chatroom already exists for these users",
		Status:  http.StatusConflict,
		Err:     err,
	}
}

// SyncError wraps a subscription or one-shot read failure. Non-fatal: the
// caller keeps its last-known snapshot and flags the view as degraded.
func SyncError(message string, err error) *AppError {
	return &AppError{
		Code:    "SYNC_ERROR",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// WriteFailure wraps a failed remote write. Retry is left to the caller.
func WriteFailure(message string, err error) *AppError {
	return &AppError{
		Code:    "WRITE_FAILURE",
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func UploadFailed(err error) *AppError {
	return &AppError{
		Code:    "UPLOAD_FAILED",
		Message: "Failed to upload attachment",
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func UnsupportedType(contentType string) *AppError {
	return &AppError{
		Code:    "UNSUPPORTED_TYPE",
		Message: fmt.Sprintf("Unsupported attachment type %q, only images are allowed", contentType),
		Status:  http.StatusBadRequest,
		Err:     nil,
	}
}

func TooLarge(size, limit int64) *AppError {
	return &AppError{
		Code:    "TOO_LARGE",
		Message: fmt.Sprintf("Attachment of %d bytes exceeds the %d byte limit", size, limit),
		Status:  http.StatusRequestEntityTooLarge,
		Err:     nil,
	}
}

func TooManyRequests(message string, waitTime interface{}) *AppError {
	return &AppError{
		Code:    "TOO_MANY_REQUESTS",
		Message: message,
		Status:  http.StatusTooManyRequests,
		Err:     nil,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
