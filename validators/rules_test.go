package validators

import (
	"context"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-resources/core"
)

func productRules() *Rules {
	return NewRules(map[string][]validation.Rule{
		"name":  {validation.Required, validation.Length(1, 40)},
		"price": {validation.Required, validation.Min(0.0)},
	})
}

func TestRules_Create(t *testing.T) {
	rules := productRules().WithTrimmedStrings()

	normalized, err := rules.Validate(context.Background(), core.Record{"name": "  Lamp ", "price": 12.5}, core.ActionCreate)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if normalized["name"] != "Lamp" {
		t.Fatalf("expected trimmed name, got %#v", normalized["name"])
	}

	_, err = rules.Validate(context.Background(), core.Record{"wrong": "input"}, core.ActionCreate)
	if !core.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	messages := core.ValidationMessages(err)
	for _, field := range []string{"name", "price", "wrong"} {
		if len(messages[field]) == 0 {
			t.Fatalf("expected a message for %q, got %#v", field, messages)
		}
	}
}

func TestRules_ExtraKeys(t *testing.T) {
	rules := productRules().WithExtraKeys()
	if _, err := rules.Validate(context.Background(), core.Record{"name": "Lamp", "price": 1.0, "color": "red"}, core.ActionCreate); err != nil {
		t.Fatalf("expected extra keys to be allowed: %v", err)
	}
}

func TestRules_PartialUpdateChecksPresentKeys(t *testing.T) {
	rules := productRules()

	if _, err := rules.Validate(context.Background(), core.Record{"price": 3.0}, core.ActionPartialUpdate); err != nil {
		t.Fatalf("expected partial payload to pass: %v", err)
	}
	_, err := rules.Validate(context.Background(), core.Record{"price": -1.0}, core.ActionPartialUpdate)
	if !core.IsValidationError(err) {
		t.Fatalf("expected present key to be validated, got %v", err)
	}
	if _, err := rules.Validate(context.Background(), core.Record{"price": 3.0}, core.ActionUpdate); err == nil {
		t.Fatalf("expected full update to require name")
	}
}

func TestRules_ForAction(t *testing.T) {
	rules := productRules().ForAction(core.ActionSave, map[string][]validation.Rule{
		"id": {validation.Required},
	}).WithExtraKeys()

	if _, err := rules.Validate(context.Background(), core.Record{"id": 1.0, "name": "Lamp"}, core.ActionSave); err != nil {
		t.Fatalf("expected save rules to apply: %v", err)
	}
	if _, err := rules.Validate(context.Background(), core.Record{"name": "Lamp"}, core.ActionSave); err == nil {
		t.Fatalf("expected missing id to fail for save")
	}
}
