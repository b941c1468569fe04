package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
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

// Error joins the individual messages, sorted by field for stable output.
func (r *ValidationResult) Error() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// Schema is a compiled JSON schema.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// Compile parses a JSON schema document.
func Compile(name, document string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(document))
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

// MustCompile is Compile for package-level schemas.
func MustCompile(name, document string) *Schema {
	s, err := Compile(name, document)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Name() string { return s.name }

// ValidateBytes validates a raw JSON document.
func (s *Schema) ValidateBytes(doc []byte) (*ValidationResult, error) {
	return s.validate(gojsonschema.NewBytesLoader(doc))
}

// ValidateInput validates an already decoded value such as job variables.
func (s *Schema) ValidateInput(input interface{}) (*ValidationResult, error) {
	return s.validate(gojsonschema.NewGoLoader(input))
}

func (s *Schema) validate(loader gojsonschema.JSONLoader) (*ValidationResult, error) {
	res, err := s.schema.Validate(loader)
	if err != nil {
		return nil, fmt.Errorf("validate against %s: %w", s.name, err)
	}

	out := &ValidationResult{Valid: res.Valid()}
	for _, e := range res.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	return out, nil
}
