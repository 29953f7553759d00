package core

import (
	"bytes"
	"encoding/json"
)

type BodyKind int

const (
	BodyRaw BodyKind = iota
	BodyJSON
)

func (k BodyKind) String() string {
	if k == BodyJSON {
		return "json"
	}
	return "raw"
}

// DecodedBody is the outcome of decoding a response body: either a JSON
// value or the raw text.
type DecodedBody struct {
	Kind  BodyKind
	Value any
	Raw   string
}

func (b DecodedBody) IsJSON() bool {
	return b.Kind == BodyJSON
}

// Data returns the JSON value, or the raw text when the body was not JSON.
func (b DecodedBody) Data() any {
	if b.Kind == BodyJSON {
		return b.Value
	}
	return b.Raw
}

// DecodeBody never fails: empty and non-JSON bodies come back as raw text.
// JSON numbers decode as json.Number so 64-bit ids keep every digit.
func DecodeBody(body []byte) DecodedBody {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return DecodedBody{Kind: BodyRaw, Raw: string(body)}
	}
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return DecodedBody{Kind: BodyRaw, Raw: string(body)}
	}
	return DecodedBody{Kind: BodyJSON, Value: value, Raw: string(body)}
}
