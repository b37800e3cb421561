// Package apperr maps domain and service failures to the error codes exposed
// by the API.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/service"
)

type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeInternal        Code = "INTERNAL_ERROR"
	CodeBadRequest      Code = "BAD_REQUEST"
)

func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is an error that carries a public code and message. Err is kept for
// logs and never shown to clients.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StatusCode() int {
	return e.Code.HTTPStatus()
}

// Extensions is picked up by the GraphQL executor and rendered under the
// error's "extensions" key.
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{
		"code":       string(e.Code),
		"statusCode": e.StatusCode(),
	}
	if len(e.Fields) > 0 {
		ext["fields"] = e.Fields
	}

	return ext
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Unauthenticated(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}

	return New(CodeUnauthenticated, message)
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = "Insufficient permissions"
	}

	return New(CodeUnauthorized, message)
}

func NotFound(resource string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func BadRequest(message string) *Error {
	return New(CodeBadRequest, message)
}

// Validation converts an ozzo validation result into a VALIDATION_ERROR with
// one message per invalid field.
func Validation(err error) *Error {
	e := &Error{Code: CodeValidation, Message: "Validation failed", Err: err}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		e.Fields = make(map[string]string, len(fieldErrs))
		for field, fieldErr := range fieldErrs {
			if fieldErr != nil {
				e.Fields[field] = fieldErr.Error()
			}
		}
		e.Message = "Validation failed: " + fieldErrs.Error()
		return e
	}

	if err != nil {
		e.Message = err.Error()
	}

	return e
}

func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "Internal server error", Err: err}
}

var mapping = []struct {
	target error
	code   Code
	msg    string
}{
	{service.ErrUnauthenticated, CodeUnauthenticated, "Authentication required"},
	{service.ErrForbidden, CodeUnauthorized, "Insufficient permissions"},
	{service.ErrNotOwner, CodeUnauthorized, "Unauthorized"},
	{service.ErrAdminSignupDisabled, CodeUnauthorized, "Admin accounts cannot be self-registered"},
	{service.ErrCannotDeleteSelf, CodeBadRequest, "You cannot delete your own account"},
	{service.ErrInvalidCredentials, CodeUnauthenticated, "Invalid credentials"},
	{service.ErrUserNotFound, CodeNotFound, "User not found"},
	{service.ErrEventNotFound, CodeNotFound, "Event not found"},
	{service.ErrRegistrationNotFound, CodeNotFound, "Registration not found"},
	{service.ErrCommentNotFound, CodeNotFound, "Comment not found"},
	{service.ErrUserEmailExists, CodeBadRequest, "User already exists with this email"},
	{service.ErrEventFull, CodeBadRequest, "Event is full"},
	{service.ErrEventNotOpen, CodeBadRequest, "Event is not open for registration"},
	{service.ErrAlreadyRegistered, CodeBadRequest, "Already registered for this event"},
	{service.ErrRegistrationChanged, CodeBadRequest, "Registration was changed by another request"},
	{service.ErrCapacityBelowRegistrations, CodeBadRequest, "Capacity cannot be lower than the current number of registrations"},
}

// From classifies err. Unknown errors become INTERNAL_ERROR and are logged
// with their full chain.
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return Validation(err)
	}

	for _, m := range mapping {
		if errors.Is(err, m.target) {
			return &Error{Code: m.code, Message: m.msg, Err: err}
		}
	}

	zap.L().Error("unexpected error", zap.Error(err))

	return Internal(err)
}
