package core

import "context"

type ValueFunc func(value any) any

// Transformer renames fields and optionally rewrites their values. Fields
// without a mapping are dropped.
type Transformer struct {
	Mappings map[string]string
	Values   map[string]ValueFunc
}

func NewTransformer(mappings map[string]string) *Transformer {
	return &Transformer{
		Mappings: copyStringMap(mappings),
		Values:   map[string]ValueFunc{},
	}
}

func (t *Transformer) WithValue(field string, fn ValueFunc) *Transformer {
	if t.Values == nil {
		t.Values = map[string]ValueFunc{}
	}
	t.Values[field] = fn
	return t
}

func (t *Transformer) TransformRecord(record Record) Record {
	out := Record{}
	if t == nil {
		return out
	}
	for key, value := range record {
		target, ok := t.Mappings[key]
		if !ok {
			continue
		}
		if fn := t.Values[key]; fn != nil {
			value = fn(value)
		}
		out[target] = value
	}
	return out
}

// Transform accepts a single object or a list of objects. Non-object list
// items and other values are returned unchanged.
func (t *Transformer) Transform(data any) any {
	switch typed := data.(type) {
	case map[string]any:
		return t.TransformRecord(typed)
	case []any:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			if record, ok := item.(map[string]any); ok {
				out = append(out, t.TransformRecord(record))
				continue
			}
			out = append(out, item)
		}
		return out
	case []Record:
		out := make([]any, 0, len(typed))
		for _, record := range typed {
			out = append(out, t.TransformRecord(record))
		}
		return out
	default:
		return data
	}
}

// Mapper adapts the transformer to a ResponseMapper applied to every action.
func (t *Transformer) Mapper() ResponseMapper {
	return func(_ context.Context, data any, _ Action) any {
		return t.Transform(data)
	}
}
