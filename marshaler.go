package cloudevents

import "encoding/json"

// Marshaler handles serialization and deserialization of event payloads in
// binary mode. The structured-mode envelope is always JSON per the
// CloudEvents JSON format and does not go through a Marshaler.
type Marshaler interface {
	// Marshal encodes a payload to bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes bytes into a payload.
	Unmarshal(data []byte, v any) error

	// DataContentType returns the content type the encoding produces.
	// Example: "application/json"
	DataContentType() string
}

// JSONMarshaler implements Marshaler using JSON encoding.
type JSONMarshaler struct{}

// NewJSONMarshaler creates a new JSON marshaler.
func NewJSONMarshaler() *JSONMarshaler {
	return &JSONMarshaler{}
}

// Marshal encodes a payload to JSON bytes.
func (m *JSONMarshaler) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes JSON bytes into a payload.
func (m *JSONMarshaler) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// DataContentType returns "application/json".
func (m *JSONMarshaler) DataContentType() string {
	return ContentTypeJSON
}
