package validators

import (
	"context"
	"testing"

	"github.com/goliatone/go-resources/core"
)

const productSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"price": {"type": "number", "minimum": 0}
	},
	"required": ["name", "price"]
}`

func TestSchema_Validate(t *testing.T) {
	schema, err := NewSchema([]byte(productSchema))
	if err != nil {
		t.Fatalf("new schema: %v", err)
	}

	normalized, err := schema.Validate(context.Background(), core.Record{"name": "Lamp", "price": 3}, core.ActionCreate)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if normalized["price"] != float64(3) {
		t.Fatalf("expected JSON-normalized number, got %#v", normalized["price"])
	}

	_, err = schema.Validate(context.Background(), core.Record{"wrong": "input"}, core.ActionCreate)
	if !core.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	messages := core.ValidationMessages(err)
	if len(messages["name"]) != 1 || len(messages["price"]) != 1 {
		t.Fatalf("expected missing properties to be named, got %#v", messages)
	}
}

func TestSchema_PropertyFailuresAreNamed(t *testing.T) {
	schema := MustSchema([]byte(productSchema))

	_, err := schema.Validate(context.Background(), core.Record{"name": "Lamp", "price": -1}, core.ActionCreate)
	messages := core.ValidationMessages(err)
	if len(messages["price"]) != 1 {
		t.Fatalf("expected failure under price, got %#v", messages)
	}
	if _, ok := messages["name"]; ok {
		t.Fatalf("expected valid name to carry no message, got %#v", messages)
	}
}

func TestSchema_DocumentFailuresUseRoot(t *testing.T) {
	schema := MustSchema([]byte(`{
		"type": "object",
		"properties": {"name": {"type": "string"}},
		"additionalProperties": false
	}`))

	_, err := schema.Validate(context.Background(), core.Record{"name": "Lamp", "color": "red"}, core.ActionCreate)
	messages := core.ValidationMessages(err)
	if len(messages["$"]) != 1 {
		t.Fatalf("expected root message, got %#v", messages)
	}
}

func TestSchema_PartialUpdateSkipsRequired(t *testing.T) {
	schema := MustSchema([]byte(productSchema))

	if _, err := schema.Validate(context.Background(), core.Record{"price": 4}, core.ActionPartialUpdate); err != nil {
		t.Fatalf("expected partial payload to pass: %v", err)
	}
	if _, err := schema.Validate(context.Background(), core.Record{"price": -4}, core.ActionPartialUpdate); err == nil {
		t.Fatalf("expected property constraints to still apply")
	}
}

func TestNewSchema_InvalidDocument(t *testing.T) {
	if _, err := NewSchema([]byte(`{"type": 12`)); err == nil {
		t.Fatalf("expected malformed schema to fail")
	}
}
