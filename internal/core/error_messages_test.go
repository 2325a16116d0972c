package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "wrapped missing field maps by sentinel",
			err:         fmt.Errorf("upsert: %w", ErrMissingRequiredField),
			wantCode:    "VAL003",
			wantMessage: "Student name and class are required",
		},
		{
			name:        "form error unwraps to missing field",
			err:         &FormError{Errors: []ValidationError{{Field: "name", Message: "must not be empty"}}},
			wantCode:    "VAL003",
			wantMessage: "Student name and class are required",
		},
		{
			name:        "no table maps correctly",
			err:         ErrNoTable,
			wantCode:    "TBL001",
			wantMessage: "No table has been loaded yet",
		},
		{
			name:        "student not found maps correctly",
			err:         fmt.Errorf("%w: %q", ErrStudentNotFound, "Ann"),
			wantCode:    "TBL002",
			wantMessage: "Student not found",
		},
		{
			name:        "row issue unwraps to malformed row",
			err:         RowIssue{Row: 2, Err: ErrMalformedRow},
			wantCode:    "ROW001",
			wantMessage: "A row has fewer fields than the header",
		},
		{
			name:        "empty file maps correctly",
			err:         fmt.Errorf("import grades.txt: %w", ErrEmptyFile),
			wantCode:    "FILE005",
			wantMessage: "The uploaded file is empty",
		},
		{
			name:        "file too large by sentinel",
			err:         fmt.Errorf("import: %w", ErrFileTooLarge),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum size limit",
		},
		{
			name:        "request body too large by text",
			err:         &http.MaxBytesError{Limit: 10},
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum size limit",
		},
		{
			name:        "unknown export kind",
			err:         errors.New(`unknown export kind "pdf"`),
			wantCode:    "FILE006",
			wantMessage: "Unknown export format",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("NO FILE PROVIDED"),
			wantCode:    "FILE004",
			wantMessage: "No file was selected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrNoTable)

	expected := "No table has been loaded yet (Code: TBL001). Upload a file or add a student first"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrInvalidGrade,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("delete row: %w", ErrRowNotFound)
		userErr := NewUserError(techErr)

		if userErr.Error() != "The row no longer exists" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, ErrRowNotFound) {
			t.Error("Unwrap() should return original error")
		}
	})
}
