package cloudevents

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// Event pairs a validated attribute set with an opaque data payload.
// The payload is typically a map for structured content or a []byte for
// pre-encoded content; the event never inspects it.
//
// Events are values: constructed once on the producer side, or reconstructed
// once per received message by a binding, and never mutated in place.
type Event struct {
	attributes Attributes
	data       any
}

// NewEvent constructs an event from attributes and a payload. The attribute
// set must come from NewAttributes (or a binding); a zero or hand-rolled set
// missing source or type is rejected.
func NewEvent(attributes Attributes, data any) (Event, error) {
	if attributes.Source == "" {
		return Event{}, fmt.Errorf("%w: source", ErrMissingRequiredAttribute)
	}
	if attributes.Type == "" {
		return Event{}, fmt.Errorf("%w: type", ErrMissingRequiredAttribute)
	}
	return Event{attributes: attributes, data: data}, nil
}

// Attributes returns the event's context attributes.
func (e Event) Attributes() Attributes {
	return e.attributes
}

// Data returns the owned payload unchanged.
func (e Event) Data() any {
	return e.data
}

// EventTime parses the stored time attribute.
// Returns ErrTimeParse when a caller-supplied time string is malformed.
func (e Event) EventTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, e.attributes.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrTimeParse, e.attributes.Time)
	}
	return t, nil
}

// EventTimeMillis returns the event time as integer epoch milliseconds, the
// representation the Pulsar event-time field requires.
func (e Event) EventTimeMillis() (int64, error) {
	t, err := e.EventTime()
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// Success reports whether the event carries a successful outcome.
func (e Event) Success() bool {
	return e.attributes.Outcome == OutcomeSuccess
}

// Map returns the full-event projection: all set attributes plus the payload
// under "data". This is also the structured-mode envelope shape.
func (e Event) Map() map[string]any {
	attrs := e.attributes.Map()
	m := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		m[k] = v
	}
	m["data"] = e.data
	return m
}

// JSON returns the JSON encoding of the full-event projection, with
// attributes in CloudEvents order followed by the data field. Per the
// CloudEvents JSON format, a []byte payload is embedded verbatim when it is
// valid JSON and the content type says JSON, and carried as data_base64
// otherwise.
func (e Event) JSON() ([]byte, error) {
	attrs, err := json.Marshal(e.attributes)
	if err != nil {
		return nil, err
	}

	dataKey := "data"
	var data []byte
	switch v := e.data.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		if isJSONContentType(e.attributes.DataContentType) && json.Valid(v) {
			data = v
		} else {
			dataKey = "data_base64"
			data, err = json.Marshal(base64.StdEncoding.EncodeToString(v))
		}
	default:
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		data = []byte("null")
	}

	// Splice the data field into the attribute object to keep field order stable.
	out := make([]byte, 0, len(attrs)+len(data)+16)
	out = append(out, attrs[:len(attrs)-1]...)
	out = append(out, ',', '"')
	out = append(out, dataKey...)
	out = append(out, '"', ':')
	out = append(out, data...)
	out = append(out, '}')
	return out, nil
}

// Equal reports whether two events match in attributes and payload.
func (e Event) Equal(other Event) bool {
	return e.attributes.Equal(other.attributes) && reflect.DeepEqual(e.data, other.data)
}

// String returns a short diagnostic form combining attributes and data.
func (e Event) String() string {
	return fmt.Sprintf("Event(id=%s, type=%s, correlationid=%s, data=%v)",
		e.attributes.ID, e.attributes.Type, e.attributes.CorrelationID, e.data)
}
