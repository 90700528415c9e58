package cloudevents

// Mode selects how an event is laid out on the wire.
//
// In CloudEvents, two message modes exist:
//   - binary: context attributes travel as transport-level properties and the
//     payload travels as the raw message body
//   - structured: the entire event (attributes and data) is serialized as a
//     single self-describing body
type Mode string

const (
	ModeBinary     Mode = "binary"
	ModeStructured Mode = "structured"
)

// ContentTypeStructured marks a message body as a structured-mode
// CloudEvents JSON envelope.
const ContentTypeStructured = "application/cloudevents+json"

// ContentTypeJSON is the default content type for event payloads.
const ContentTypeJSON = "application/json"
