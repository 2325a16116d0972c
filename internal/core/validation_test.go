package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateForm(t *testing.T) {
	tests := []struct {
		name       string
		form       StudentForm
		wantFields []string
	}{
		{
			name: "valid",
			form: StudentForm{Name: "Ann", Class: "10A"},
		},
		{
			name: "grades are not checked",
			form: StudentForm{Name: "Ann", Class: "10A", Grades: [NumSubjects]string{"x", "9", "", "", ""}},
		},
		{
			name:       "missing name",
			form:       StudentForm{Class: "10A"},
			wantFields: []string{"name"},
		},
		{
			name:       "whitespace class",
			form:       StudentForm{Name: "Ann", Class: " \t"},
			wantFields: []string{"class"},
		},
		{
			name:       "both missing",
			form:       StudentForm{},
			wantFields: []string{"name", "class"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateForm(tt.form)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingRequiredField))

			var formErr *FormError
			require.True(t, errors.As(err, &formErr))
			var fields []string
			for _, ve := range formErr.Errors {
				fields = append(fields, ve.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestValidateForm_Normalizes(t *testing.T) {
	form, err := ValidateForm(StudentForm{Name: "  Ann ", Class: "10A\n", Grades: [NumSubjects]string{" 5", "4 "}})
	require.NoError(t, err)
	assert.Equal(t, "Ann", form.Name)
	assert.Equal(t, "10A", form.Class)
	assert.Equal(t, []string{"Ann", "10A", "5", "4", "", "", ""}, form.Row())
}

func TestFormError_Message(t *testing.T) {
	_, err := ValidateForm(StudentForm{Name: "Ann"})
	require.Error(t, err)
	assert.Equal(t, "required field is empty: class: must not be empty", err.Error())
}

func TestValidateHeader(t *testing.T) {
	assert.Empty(t, ValidateHeader(DefaultHeader()))
	assert.Empty(t, ValidateHeader(append(DefaultHeader(), "")), "labels past the record columns are free")

	problems := ValidateHeader([]string{"Name", "", "Physics"})
	require.Len(t, problems, 2)
	assert.Contains(t, problems[0].Message, "header has 3 columns")
	assert.Equal(t, "column 2", problems[1].Field)
}
