package core

// validation.go checks manual student entries before they touch the table.
//
// Manual add/update is the only user-blocking validation in the gradebook:
// an entry without a name or class is rejected as a whole and no partial
// record is created. Grade cells are not validated here; like imported data
// they are stored as entered and unparseable values simply do not count.

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrMissingRequiredField is returned when a manual entry lacks name or class.
var ErrMissingRequiredField = errors.New("required field is empty")

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string `json:"field"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// FormError collects every problem found in a StudentForm.
type FormError struct {
	Errors []ValidationError
}

func (e *FormError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return "required field is empty: " + strings.Join(msgs, "; ")
}

func (e *FormError) Unwrap() error {
	return ErrMissingRequiredField
}

// StudentForm is a manual add/update request. Grades are given as entered,
// one per subject in canonical order.
type StudentForm struct {
	Name   string              `json:"name" validate:"required"`
	Class  string              `json:"class" validate:"required"`
	Grades [NumSubjects]string `json:"grades"`
}

// Normalize trims surrounding whitespace from every field.
func (f StudentForm) Normalize() StudentForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Class = strings.TrimSpace(f.Class)
	for i := range f.Grades {
		f.Grades[i] = strings.TrimSpace(f.Grades[i])
	}
	return f
}

// Row renders the form as a content row.
func (f StudentForm) Row() []string {
	row := make([]string, 0, RecordColumns)
	row = append(row, f.Name, f.Class)
	return append(row, f.Grades[:]...)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateForm normalizes f and checks its required fields.
// The returned error wraps ErrMissingRequiredField.
func ValidateForm(f StudentForm) (StudentForm, error) {
	f = f.Normalize()

	err := formValidator().Struct(f)
	if err == nil {
		return f, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return f, fmt.Errorf("validate student form: %w", err)
	}

	out := &FormError{}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fe.Field(),
			Message: formatFieldError(fe),
		})
	}
	return f, out
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// ValidateHeader reports header problems that will keep rows out of the
// statistics. It never rejects the table; the result is advisory.
func ValidateHeader(header []string) []ValidationError {
	var problems []ValidationError
	if len(header) < RecordColumns {
		problems = append(problems, ValidationError{
			Message: fmt.Sprintf("header has %d columns, statistics need %d (name, class, %d subjects)",
				len(header), RecordColumns, NumSubjects),
		})
	}
	for i, label := range header {
		if strings.TrimSpace(label) == "" && i < RecordColumns {
			problems = append(problems, ValidationError{
				Field:   fmt.Sprintf("column %d", i+1),
				Message: "empty column label",
			})
		}
	}
	return problems
}
