package core

import "context"

// NoopValidator accepts any payload and returns a shallow copy of it.
type NoopValidator struct{}

func (NoopValidator) Validate(_ context.Context, payload Record, _ Action) (Record, error) {
	return copyAnyMap(payload), nil
}

// RequiredFieldsValidator fails when any of the listed fields is absent or
// null. Partial updates only check the fields that are present.
type RequiredFieldsValidator struct {
	Fields []string
}

func (v RequiredFieldsValidator) Validate(_ context.Context, payload Record, action Action) (Record, error) {
	fields := map[string][]string{}
	for _, name := range v.Fields {
		value, present := payload[name]
		if action == ActionPartialUpdate && !present {
			continue
		}
		if !present || value == nil {
			fields[name] = append(fields[name], "This field is required.")
		}
	}
	if len(fields) > 0 {
		return nil, NewValidationError("core: payload validation failed", fields)
	}
	return copyAnyMap(payload), nil
}

var (
	_ Validator = NoopValidator{}
	_ Validator = RequiredFieldsValidator{}
	_ Validator = ValidatorFunc(nil)
)
