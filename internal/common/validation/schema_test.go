// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemasCompile(t *testing.T) {
	schemas, err := loadSchemas()
	require.NoError(t, err)

	for _, name := range []string{
		SchemaSignup, SchemaLogin, SchemaJobCreate, SchemaJobUpdate,
		SchemaApplicationStatus, SchemaProfileUpdate, SchemaResumeAnalysis,
	} {
		assert.Contains(t, schemas, name)
	}
}

func TestValidate_Signup(t *testing.T) {
	tests := []struct {
		name        string
		input       map[string]interface{}
		valid       bool
		errorFields []string
	}{
		{
			name: "valid job seeker",
			input: map[string]interface{}{
				"firstName": "Ada",
				"lastName":  "Lovelace",
				"email":     "ada@example.com",
				"password":  "s3cret-pass",
				"role":      "Job Seeker",
				"resumeUrl": "https://cdn.example.com/ada.pdf",
			},
			valid: true,
		},
		{
			name: "missing names and bad role",
			input: map[string]interface{}{
				"email":    "ada@example.com",
				"password": "s3cret-pass",
				"role":     "Admin",
			},
			errorFields: []string{"firstName", "lastName", "role"},
		},
		{
			name: "short password and bad email",
			input: map[string]interface{}{
				"firstName": "Ada",
				"lastName":  "Lovelace",
				"email":     "not-an-email",
				"password":  "short",
				"role":      "Employer",
			},
			errorFields: []string{"email", "password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Validate(SchemaSignup, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, res.Valid, res.GetErrorMessages())
			for _, f := range tt.errorFields {
				assert.True(t, res.HasErrors(f), "expected error for %s, got %v", f, res.GetErrorMessages())
			}
		})
	}
}

func TestValidateJSON_JobUpdate(t *testing.T) {
	res, err := ValidateJSON(SchemaJobUpdate, []byte(`{"title":"Staff Engineer","salaryMin":null}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = ValidateJSON(SchemaJobUpdate, []byte(`{}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)

	res, err = ValidateJSON(SchemaJobUpdate, []byte(`{"type":"Freelance","salary_max":-1}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.True(t, res.HasErrors("type"))
	assert.True(t, res.HasErrors("salary_max"))
}

func TestValidateJSON_Malformed(t *testing.T) {
	res, err := ValidateJSON(SchemaLogin, []byte(`{"email":`))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "INVALID_JSON", res.Errors[0].Code)
}

func TestValidate_UnknownSchema(t *testing.T) {
	_, err := Validate("nope", map[string]interface{}{})
	assert.Error(t, err)
}

func TestValidateJSON_ResumeAnalysis(t *testing.T) {
	res, err := ValidateJSON(SchemaResumeAnalysis, []byte(`{"strengths":["Go"],"weaknesses":[],"suggestions":["Add metrics"]}`))
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = ValidateJSON(SchemaResumeAnalysis, []byte(`{"strengths":"Go"}`))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.GetErrorsForField("weaknesses"))
}

func TestValidateID(t *testing.T) {
	assert.True(t, ValidateID("0b6f7a4e-2a59-4f53-9a2e-2f8f3e1c9d10"))
	assert.False(t, ValidateID("42"))
	assert.False(t, ValidateID("0b6f7a4e-2a59-4f53-9a2e-2f8f3e1c9d1z"))
}
