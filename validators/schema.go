package validators

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-resources/core"
	"github.com/google/jsonschema-go/jsonschema"
)

// Schema validates payloads against a JSON Schema document. Partial updates
// are checked against a copy of the schema without top-level required
// properties. Failures of a top-level property are reported under its name,
// anything else under "$".
type Schema struct {
	full       *jsonschema.Resolved
	partial    *jsonschema.Resolved
	required   []string
	properties map[string]*jsonschema.Resolved
}

func NewSchema(raw []byte) (*Schema, error) {
	full, err := resolveSchema(raw, false)
	if err != nil {
		return nil, err
	}
	partial, err := resolveSchema(raw, true)
	if err != nil {
		return nil, err
	}
	var source jsonschema.Schema
	if err := json.Unmarshal(raw, &source); err != nil {
		return nil, fmt.Errorf("validators: failed to unmarshal schema: %w", err)
	}
	properties := make(map[string]*jsonschema.Resolved, len(source.Properties))
	for name, property := range source.Properties {
		if property == nil {
			continue
		}
		// Properties that reference the root document only resolve as part
		// of it; those failures land under "$".
		if resolved, err := property.Resolve(&jsonschema.ResolveOptions{}); err == nil {
			properties[name] = resolved
		}
	}
	return &Schema{
		full:       full,
		partial:    partial,
		required:   append([]string(nil), source.Required...),
		properties: properties,
	}, nil
}

func MustSchema(raw []byte) *Schema {
	schema, err := NewSchema(raw)
	if err != nil {
		panic(err)
	}
	return schema
}

func (s *Schema) Validate(_ context.Context, payload core.Record, action core.Action) (core.Record, error) {
	if s == nil || s.full == nil {
		return nil, core.NewConfigurationError("validators: schema is not initialized", nil)
	}
	resolved := s.full
	if action == core.ActionPartialUpdate {
		resolved = s.partial
	}

	// The validator expects JSON-decoded values.
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, core.NewValidationError("validators: payload is not JSON encodable", map[string][]string{
			"$": {err.Error()},
		})
	}
	var instance map[string]any
	if err := json.Unmarshal(encoded, &instance); err != nil {
		return nil, core.NewValidationError("validators: payload is not a JSON object", map[string][]string{
			"$": {err.Error()},
		})
	}
	if instance == nil {
		instance = map[string]any{}
	}

	fields := map[string][]string{}
	if action != core.ActionPartialUpdate {
		for _, name := range s.required {
			if _, ok := instance[name]; !ok {
				fields[name] = append(fields[name], "This field is required.")
			}
		}
	}
	for name, property := range s.properties {
		value, ok := instance[name]
		if !ok {
			continue
		}
		if err := property.Validate(value); err != nil {
			fields[name] = append(fields[name], err.Error())
		}
	}
	if len(fields) == 0 {
		if err := resolved.Validate(instance); err != nil {
			fields["$"] = []string{err.Error()}
		}
	}
	if len(fields) > 0 {
		return nil, core.NewValidationError("validators: payload does not match schema", fields)
	}
	return instance, nil
}

func resolveSchema(raw []byte, dropRequired bool) (*jsonschema.Resolved, error) {
	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("validators: failed to unmarshal schema: %w", err)
	}
	if dropRequired {
		schema.Required = nil
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil, fmt.Errorf("validators: failed to resolve schema: %w", err)
	}
	return resolved, nil
}

var _ core.Validator = (*Schema)(nil)
