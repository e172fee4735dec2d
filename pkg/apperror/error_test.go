package apperror

import (
	"errors"
	"net/http"
	"testing"
)

func TestErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name: "without internal error",
			err: &Error{
				HTTPStatus: http.StatusNotFound,
				Code:       "not_found",
				Message:    "Resource not found",
			},
			expected: "not_found: Resource not found",
		},
		{
			name: "with internal error",
			err: &Error{
				HTTPStatus: http.StatusInternalServerError,
				Code:       "internal_error",
				Message:    "Something went wrong",
				Internal:   errors.New("database connection failed"),
			},
			expected: "internal_error: Something went wrong (database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("constraint failed")
	err := ErrDatabase.WithInternal(inner)

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped internal error")
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := ErrNotFound.WithMessage("entity 'abc' not found")

	if !errors.Is(err, ErrNotFound) {
		t.Error("WithMessage copy should still match ErrNotFound")
	}
	if errors.Is(err, ErrConflict) {
		t.Error("not_found should not match conflict")
	}
}

func TestWithDetails(t *testing.T) {
	details := map[string]any{"field": "attributes"}
	err := ErrValidation.WithDetails(details)

	if err.Details["field"] != "attributes" {
		t.Errorf("WithDetails() = %v, want field=attributes", err.Details)
	}
	if ErrValidation.Details != nil {
		t.Error("WithDetails must not mutate the sentinel")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("entity", "42")

	if err.Code != "not_found" {
		t.Errorf("Code = %q, want not_found", err.Code)
	}
	if err.Message != "entity '42' not found" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("HTTPStatus = %d, want %d", err.HTTPStatus, http.StatusNotFound)
	}
}
