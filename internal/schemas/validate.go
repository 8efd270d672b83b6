// Package schemas validates JSON request payloads against embedded JSON Schemas.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed job.schema.json
var jobSchema string

var (
	jobOnce     sync.Once
	jobCompiled *gojsonschema.Schema
	jobErr      error
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err))
	}
	return sb.String()
}

// First returns the first violation as a single line, suitable for an API error message.
func (ve *ValidationError) First() string {
	if len(ve.Errors) == 0 {
		return "invalid payload"
	}
	return ve.Errors[0].String()
}

// JobSchema returns the raw JSON Schema for job write payloads.
func JobSchema() string {
	return jobSchema
}

// ValidateJob checks a job create/update payload against the job schema.
func ValidateJob(payload []byte) error {
	jobOnce.Do(func() {
		jobCompiled, jobErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(jobSchema))
	})
	if jobErr != nil {
		return &SchemaLoadError{Name: "job", Message: "invalid schema", Cause: jobErr}
	}
	return validate(jobCompiled, gojsonschema.NewBytesLoader(payload))
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaContent))
	if err != nil {
		return &SchemaLoadError{
			Name:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return validate(schema, gojsonschema.NewStringLoader(jsonContent))
}

func validate(schema *gojsonschema.Schema, document gojsonschema.JSONLoader) error {
	result, err := schema.Validate(document)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
