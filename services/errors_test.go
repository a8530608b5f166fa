package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	plain := NewDomainError(ErrorTypeNotFound, "agent not found", nil)
	assert.Equal(t, "not_found: agent not found", plain.Error())

	wrapped := NewDomainError(ErrorTypeInternal, "query failed", errors.New("connection reset"))
	assert.Equal(t, "internal: query failed (connection reset)", wrapped.Error())
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewDomainError(ErrorTypeInternal, "wrapped", cause)

	assert.ErrorIs(t, err, cause)
}

// errors.Is on DomainError matches by type, so a fmt-wrapped sentinel still
// answers the category question.
func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("fetching agent: %w", ErrAgentNotFound)

	assert.ErrorIs(t, wrapped, ErrAgentNotFound)
	assert.NotErrorIs(t, ErrAgentNotFound, errors.New("agent not found"))
}

func TestDomainError_WithDetail(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "invalid input", nil).
		WithDetail("field", "name").
		WithDetail("reason", "required")

	details := GetErrorDetails(err)
	assert.Equal(t, "name", details["field"])
	assert.Equal(t, "required", details["reason"])
}

func TestErrorTypeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", ErrAgentNotFound, IsNotFoundError},
		{"validation", ErrInvalidAction, IsValidationError},
		{"unauthorized", ErrTokenExpired, IsUnauthorizedError},
		{"forbidden", ErrSystemRoleProtected, IsForbiddenError},
		{"conflict", ErrDuplicateName, IsConflictError},
		{"internal", ErrDatabaseError, IsInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("context: %w", tt.err)), "helpers see through wrapping")
			assert.False(t, tt.check(errors.New("plain error")))
		})
	}
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, GetErrorType(ErrSiteNotFound))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
}

func TestWrapInternal(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapInternal("failed to persist", cause)

	assert.True(t, IsInternalError(err))
	assert.ErrorIs(t, err, cause)
}
