// Package validators provides core.Validator implementations backed by
// ozzo-validation rule sets and JSON Schema documents.
package validators

import (
	"context"
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-resources/core"
)

// Rules validates payload keys with ozzo-validation rules. Fields applies to
// every action unless ForAction registered a dedicated set. Partial updates
// only check the keys present in the payload.
type Rules struct {
	Fields         map[string][]validation.Rule
	Actions        map[core.Action]map[string][]validation.Rule
	AllowExtraKeys bool
	TrimStrings    bool
}

func NewRules(fields map[string][]validation.Rule) *Rules {
	return &Rules{
		Fields:  fields,
		Actions: map[core.Action]map[string][]validation.Rule{},
	}
}

func (r *Rules) ForAction(action core.Action, fields map[string][]validation.Rule) *Rules {
	if r.Actions == nil {
		r.Actions = map[core.Action]map[string][]validation.Rule{}
	}
	r.Actions[action] = fields
	return r
}

func (r *Rules) WithExtraKeys() *Rules {
	r.AllowExtraKeys = true
	return r
}

func (r *Rules) WithTrimmedStrings() *Rules {
	r.TrimStrings = true
	return r
}

func (r *Rules) Validate(_ context.Context, payload core.Record, action core.Action) (core.Record, error) {
	normalized := core.Record{}
	for key, value := range payload {
		if text, ok := value.(string); ok && r.TrimStrings {
			value = strings.TrimSpace(text)
		}
		normalized[key] = value
	}

	fields := r.rulesFor(action)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	keys := make([]*validation.KeyRules, 0, len(names))
	for _, name := range names {
		key := validation.Key(name, fields[name]...)
		if action == core.ActionPartialUpdate {
			key = key.Optional()
		}
		keys = append(keys, key)
	}
	rule := validation.Map(keys...)
	if r.AllowExtraKeys {
		rule = rule.AllowExtraKeys()
	}

	if err := validation.Validate(map[string]any(normalized), rule); err != nil {
		return nil, toValidationError(err)
	}
	return normalized, nil
}

func (r *Rules) rulesFor(action core.Action) map[string][]validation.Rule {
	lookup := action
	if action == core.ActionPartialUpdate {
		if _, ok := r.Actions[core.ActionPartialUpdate]; !ok {
			lookup = core.ActionUpdate
		}
	}
	if fields, ok := r.Actions[lookup]; ok {
		return fields
	}
	return r.Fields
}

func toValidationError(err error) error {
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return core.NewConfigurationError("validators: rule evaluation failed: "+internal.Error(), nil)
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return core.NewValidationError("validators: payload validation failed", map[string][]string{
			"$": {err.Error()},
		})
	}
	messages := map[string][]string{}
	flattenErrors("", fieldErrs, messages)
	return core.NewValidationError("validators: payload validation failed", messages)
}

func flattenErrors(prefix string, errs validation.Errors, out map[string][]string) {
	for field, fieldErr := range errs {
		if fieldErr == nil {
			continue
		}
		name := field
		if prefix != "" {
			name = prefix + "." + field
		}
		var nested validation.Errors
		if errors.As(fieldErr, &nested) {
			flattenErrors(name, nested, out)
			continue
		}
		out[name] = append(out[name], fieldErr.Error())
	}
}

var _ core.Validator = (*Rules)(nil)
