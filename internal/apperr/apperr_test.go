package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yizeng/gab/gin/graphql/eventhub/internal/service"
)

func TestFrom(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   Code
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "unauthenticated",
			err:        service.ErrUnauthenticated,
			wantCode:   CodeUnauthenticated,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Authentication required",
		},
		{
			name:       "wrapped forbidden",
			err:        fmt.Errorf("s.UpdateEvent -> %w", service.ErrForbidden),
			wantCode:   CodeUnauthorized,
			wantStatus: http.StatusForbidden,
			wantMsg:    "Insufficient permissions",
		},
		{
			name:       "not owner",
			err:        service.ErrNotOwner,
			wantCode:   CodeUnauthorized,
			wantStatus: http.StatusForbidden,
			wantMsg:    "Unauthorized",
		},
		{
			name:       "missing event",
			err:        fmt.Errorf("s.repo.FindByID -> %w", service.ErrEventNotFound),
			wantCode:   CodeNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Event not found",
		},
		{
			name:       "full event",
			err:        service.ErrEventFull,
			wantCode:   CodeBadRequest,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Event is full",
		},
		{
			name:       "registration changed concurrently",
			err:        fmt.Errorf("s.repo.Update -> %w", service.ErrRegistrationChanged),
			wantCode:   CodeBadRequest,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Registration was changed by another request",
		},
		{
			name:       "capacity below registrations",
			err:        fmt.Errorf("s.repo.Update -> %w", service.ErrCapacityBelowRegistrations),
			wantCode:   CodeBadRequest,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Capacity cannot be lower than the current number of registrations",
		},
		{
			name:       "invalid credentials",
			err:        service.ErrInvalidCredentials,
			wantCode:   CodeUnauthenticated,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Invalid credentials",
		},
		{
			name:       "unknown failure is hidden",
			err:        errors.New("dial tcp: connection refused"),
			wantCode:   CodeInternal,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.StatusCode())
			assert.Equal(t, tt.wantMsg, got.Message)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestFrom_Nil(t *testing.T) {
	assert.Nil(t, From(nil))
}

func TestFrom_KeepsAppErrors(t *testing.T) {
	orig := NotFound("Widget")
	assert.Same(t, orig, From(fmt.Errorf("wrap -> %w", orig)))
}

func TestValidation(t *testing.T) {
	err := validation.Errors{
		"email": errors.New("must be a valid email address"),
	}

	got := From(err)
	assert.Equal(t, CodeValidation, got.Code)
	assert.Equal(t, http.StatusBadRequest, got.StatusCode())
	assert.Equal(t, map[string]string{"email": "must be a valid email address"}, got.Fields)
	assert.Contains(t, got.Message, "email")

	ext := got.Extensions()
	assert.Equal(t, "VALIDATION_ERROR", ext["code"])
	assert.Equal(t, http.StatusBadRequest, ext["statusCode"])
	assert.NotNil(t, ext["fields"])
}

func TestExtensions_OmitsEmptyFields(t *testing.T) {
	ext := Unauthenticated("").Extensions()
	assert.Equal(t, map[string]interface{}{"code": "UNAUTHENTICATED", "statusCode": 401}, ext)
}
