// internal/common/validation/schema.go
package validation

import (
	"embed"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const (
	SchemaSignup            = "signup"
	SchemaLogin             = "login"
	SchemaJobCreate         = "job_create"
	SchemaJobUpdate         = "job_update"
	SchemaApplicationStatus = "application_status"
	SchemaProfileUpdate     = "profile_update"
	SchemaResumeAnalysis    = "resume_analysis"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	loadOnce sync.Once
	compiled map[string]*gojsonschema.Schema
	loadErr  error
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func loadSchemas() (map[string]*gojsonschema.Schema, error) {
	loadOnce.Do(func() {
		entries, err := schemaFS.ReadDir("schemas")
		if err != nil {
			loadErr = err
			return
		}

		compiled = make(map[string]*gojsonschema.Schema, len(entries))
		for _, e := range entries {
			raw, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
			if err != nil {
				loadErr = err
				return
			}
			schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
			if err != nil {
				loadErr = fmt.Errorf("compile schema %s: %w", e.Name(), err)
				return
			}
			compiled[strings.TrimSuffix(e.Name(), ".json")] = schema
		}
	})
	return compiled, loadErr
}

func schemaByName(name string) (*gojsonschema.Schema, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	schema, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	return schema, nil
}

// Validate checks a Go value against a named schema. The value is
// marshalled to JSON first, so struct json tags apply.
func Validate(schemaName string, document interface{}) (*ValidationResult, error) {
	return validate(schemaName, gojsonschema.NewGoLoader(document))
}

// ValidateJSON checks a raw JSON document against a named schema.
func ValidateJSON(schemaName string, raw []byte) (*ValidationResult, error) {
	return validate(schemaName, gojsonschema.NewBytesLoader(raw))
}

func validate(schemaName string, doc gojsonschema.JSONLoader) (*ValidationResult, error) {
	schema, err := schemaByName(schemaName)
	if err != nil {
		return nil, err
	}

	res, err := schema.Validate(doc)
	if err != nil {
		// malformed JSON ends up here
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_JSON",
			}},
		}, nil
	}

	result := &ValidationResult{Valid: res.Valid()}
	for _, e := range res.Errors() {
		field := e.Field()
		if e.Type() == "required" {
			if prop, ok := e.Details()["property"]; ok {
				field = fmt.Sprint(prop)
				if parent := e.Field(); parent != "(root)" {
					field = parent + "." + field
				}
			}
		}
		result.Errors = append(result.Errors, ValidationError{
			Field:   field,
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	sort.SliceStable(result.Errors, func(i, j int) bool {
		return result.Errors[i].Field < result.Errors[j].Field
	})
	return result, nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") || strings.HasPrefix(err.Field, field+"[") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// ValidateID reports whether id looks like a row identifier.
func ValidateID(id string) bool {
	return uuidPattern.MatchString(id)
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	emailPattern := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailPattern.MatchString(email)
}
