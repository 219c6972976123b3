// Package tools implements the operation registry and the single dispatch
// seam between the external caller and the Graph gateway: schema
// validation of untyped argument bags, handler routing, and uniform
// rendering of every failure kind.
package tools

import (
	"fmt"
	"strconv"

	"github.com/xeipuuv/gojsonschema"
)

// Param declares one input parameter of an operation.
type Param struct {
	Name        string
	Type        string // string, integer, number, boolean
	Description string
	Required    bool
	Default     any
	Enum        []string
	Minimum     *float64
	Maximum     *float64
}

// Float64 returns a pointer to v, for Minimum/Maximum declarations.
func Float64(v float64) *float64 {
	return &v
}

// ValidationError reports caller-supplied arguments that do not satisfy an
// operation's schema. It names the offending field and never reaches the
// downstream API.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid arguments: " + e.Reason
	}
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}

// Schema is a compiled input schema for one operation: an ordered
// parameter list plus the JSON Schema it translates to.
type Schema struct {
	params   []Param
	doc      map[string]any
	compiled *gojsonschema.Schema
}

// NewSchema compiles a schema from its parameter declarations.
func NewSchema(params ...Param) (*Schema, error) {
	for _, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("parameter name cannot be empty")
		}
		switch p.Type {
		case "string", "integer", "number", "boolean":
		default:
			return nil, fmt.Errorf("invalid type %q for parameter %s", p.Type, p.Name)
		}
	}

	doc := schemaDocument(params)
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{params: params, doc: doc, compiled: compiled}, nil
}

// MustSchema is NewSchema for static operation definitions.
func MustSchema(params ...Param) *Schema {
	s, err := NewSchema(params...)
	if err != nil {
		panic(err)
	}
	return s
}

// JSONSchema returns the JSON Schema document for this operation's input,
// suitable for advertising to callers.
func (s *Schema) JSONSchema() map[string]any {
	return s.doc
}

// Validate checks an untyped argument bag against the schema. It fills
// declared defaults for omitted parameters, coerces scalar types where the
// conversion is unambiguous, and enforces required, enum, and range
// constraints. The caller's map is never mutated.
func (s *Schema) Validate(args map[string]any) (Args, error) {
	out := make(Args, len(args)+len(s.params))
	for k, v := range args {
		out[k] = v
	}

	for _, p := range s.params {
		v, present := out[p.Name]
		if !present || v == nil {
			if p.Required {
				return nil, &ValidationError{Field: p.Name, Reason: "required parameter is missing"}
			}
			if p.Default != nil {
				out[p.Name] = p.Default
			} else {
				delete(out, p.Name)
			}
			continue
		}
		out[p.Name] = coerce(p.Type, v)
	}

	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(map[string]any(out)))
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	if !result.Valid() {
		first := result.Errors()[0]
		return nil, &ValidationError{Field: first.Field(), Reason: first.Description()}
	}
	return out, nil
}

// schemaDocument translates parameter declarations into a JSON Schema.
func schemaDocument(params []Param) map[string]any {
	properties := make(map[string]any, len(params))
	required := []string{}

	for _, p := range params {
		prop := map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		if len(p.Enum) > 0 {
			enum := make([]any, len(p.Enum))
			for i, e := range p.Enum {
				enum[i] = e
			}
			prop["enum"] = enum
		}
		if p.Minimum != nil {
			prop["minimum"] = *p.Minimum
		}
		if p.Maximum != nil {
			prop["maximum"] = *p.Maximum
		}
		properties[p.Name] = prop

		if p.Required {
			required = append(required, p.Name)
		}
	}

	doc := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

// coerce converts string-typed scalars to the declared type where the
// conversion is unambiguous. Values that cannot be coerced are returned
// unchanged so schema validation reports the type mismatch.
func coerce(declaredType string, v any) any {
	s, isString := v.(string)
	if !isString {
		return v
	}
	switch declaredType {
	case "integer":
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case "number":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case "boolean":
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return v
}
