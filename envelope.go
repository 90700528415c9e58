package cloudevents

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime"
	"strings"
)

// Shared codec for the two serialization modes. The bindings differ only in
// where the content-type marker and the property map live on their native
// message shapes; the attribute mapping itself is transport-neutral apart
// from the property prefix.

// EncodeStructured serializes the full event as a CloudEvents JSON envelope:
// all set attributes at the top level plus the payload under "data".
func EncodeStructured(e Event) ([]byte, error) {
	body, err := e.JSON()
	if err != nil {
		return nil, fmt.Errorf("cloudevents: encode structured: %w", err)
	}
	return body, nil
}

// DecodeStructured reconstructs an event from a structured-mode body.
// Returns ErrMalformedEnvelope when the body is not a JSON object and
// ErrAttributeDecode when the envelope lacks source or type.
func DecodeStructured(body []byte) (Event, error) {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if m == nil {
		return Event{}, fmt.Errorf("%w: null body", ErrMalformedEnvelope)
	}

	attrs := make(map[string]string, len(m))
	for k, v := range m {
		if k == "data" || k == "data_base64" {
			continue
		}
		switch s := v.(type) {
		case nil:
			continue
		case string:
			attrs[k] = s
		default:
			attrs[k] = fmt.Sprint(v)
		}
	}

	a, err := attributesFromMap(attrs)
	if err != nil {
		return Event{}, err
	}

	var data any
	if b64, ok := m["data_base64"].(string); ok {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return Event{}, fmt.Errorf("%w: data_base64: %v", ErrMalformedEnvelope, err)
		}
		data = raw
	} else {
		data = m["data"]
	}

	return NewEvent(a, data)
}

// EncodeBinaryAttributes maps every set attribute into the transport property
// mapping, each key prefixed to keep clear of protocol-native metadata.
func EncodeBinaryAttributes(a Attributes, prefix string) map[string]string {
	flat := a.Map()
	props := make(map[string]string, len(flat))
	for k, v := range flat {
		props[prefix+k] = v
	}
	return props
}

// DecodeBinaryAttributes recovers an attribute set from prefixed transport
// properties. Unprefixed keys are protocol-native metadata and are ignored.
// Returns ErrAttributeDecode when source or type cannot be recovered.
func DecodeBinaryAttributes(props map[string]string, prefix string) (Attributes, error) {
	attrs := make(map[string]string, len(props))
	for k, v := range props {
		if name, ok := strings.CutPrefix(k, prefix); ok && name != "" {
			attrs[name] = v
		}
	}
	return attributesFromMap(attrs)
}

// attributesFromMap builds an attribute set from decoded wire attributes,
// preserving id and time exactly as received. The construction invariant
// still holds: a missing id is generated and a missing specversion defaults.
func attributesFromMap(attrs map[string]string) (Attributes, error) {
	if attrs[AttrSource] == "" {
		return Attributes{}, fmt.Errorf("%w: source", ErrAttributeDecode)
	}
	if attrs[AttrType] == "" {
		return Attributes{}, fmt.Errorf("%w: type", ErrAttributeDecode)
	}

	a := Attributes{
		ID:              attrs[AttrID],
		Source:          attrs[AttrSource],
		SpecVersion:     attrs[AttrSpecVersion],
		Type:            attrs[AttrType],
		DataContentType: attrs[AttrDataContentType],
		Subject:         attrs[AttrSubject],
		Time:            attrs[AttrTime],
		CorrelationID:   attrs[AttrCorrelationID],
	}
	if a.ID == "" {
		a.ID = DefaultIDGenerator()
	}
	if a.SpecVersion == "" {
		a.SpecVersion = SpecVersion
	}
	if tok, ok := attrs[AttrOutcome]; ok {
		outcome, err := ParseOutcome(tok)
		if err != nil {
			return Attributes{}, err
		}
		a.Outcome = outcome
	}

	for k, v := range attrs {
		if isNamedAttribute(k) {
			continue
		}
		if a.Extensions == nil {
			a.Extensions = map[string]string{}
		}
		a.Extensions[k] = v
	}
	return a, nil
}

// EncodeBody serializes a binary-mode payload independently of the
// attributes: pre-encoded bytes pass through, anything else goes through the
// marshaler.
func EncodeBody(data any, m Marshaler) ([]byte, error) {
	switch v := data.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return v, nil
	case []byte:
		return v, nil
	default:
		body, err := m.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("cloudevents: encode payload: %w", err)
		}
		return body, nil
	}
}

// DecodeBody interprets a binary-mode body according to the declared content
// type: JSON content is unmarshaled into a structured value, anything else is
// returned as raw bytes.
func DecodeBody(body []byte, contentType string, m Marshaler) (any, error) {
	if len(body) == 0 {
		return nil, nil
	}
	if !isJSONContentType(contentType) {
		return body, nil
	}
	var data any
	if err := m.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrMalformedEnvelope, err)
	}
	return data, nil
}

// InferMode determines the serialization mode of a received message from its
// content-type indicator: the structured marker means structured, any other
// content type means binary, and with no content type at all the prefixed
// source/type properties decide. Returns ErrMissingContentType when nothing
// identifies the message.
func InferMode(contentType string, props map[string]string, prefix string) (Mode, error) {
	switch mt := mediaType(contentType); {
	case mt == ContentTypeStructured:
		return ModeStructured, nil
	case mt != "":
		return ModeBinary, nil
	}
	if props[prefix+AttrSource] != "" || props[prefix+AttrType] != "" {
		return ModeBinary, nil
	}
	return "", fmt.Errorf("%w: cannot infer message mode", ErrMissingContentType)
}

// mediaType strips parameters such as charset and lowercases the media type.
func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// isJSONContentType reports whether a content type declares JSON content.
// An empty content type defaults to JSON.
func isJSONContentType(contentType string) bool {
	mt := mediaType(contentType)
	return mt == "" || mt == ContentTypeJSON || strings.HasSuffix(mt, "+json")
}
