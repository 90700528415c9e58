// Package pulsar binds the event model to the Pulsar message shape.
//
// The binding works on the generic shape a Pulsar client exposes: a byte
// payload, a string property map, and an event-time field. It never connects,
// publishes or consumes; that stays with the caller's Pulsar client. The
// [Received] interface is deliberately narrow so a client's consumer message
// satisfies it without this module importing the client.
package pulsar

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/meemoo/cloudevents"
)

// AttributePrefix keeps CloudEvents attributes clear of Pulsar-native
// property names in binary mode.
const AttributePrefix = "ce_"

// PropContentType is the property key carrying the content-type indicator,
// since Pulsar has no first-class content-type field.
const PropContentType = "content-type"

// Message is the Pulsar-native message shape the binding produces and
// consumes.
type Message struct {
	// Payload is the message body: the raw event payload in binary mode,
	// the full JSON envelope in structured mode.
	Payload []byte

	// Properties carries the CloudEvents context attributes as transport
	// metadata, plus the content-type indicator.
	Properties map[string]string

	// EventTime mirrors the event's time attribute in the representation
	// Pulsar's event-time field requires.
	EventTime time.Time

	// Key is the partitioning key, set to the correlation id so related
	// events land on the same partition.
	Key string
}

// String returns a short diagnostic form.
func (m *Message) String() string {
	return fmt.Sprintf("pulsar.Message(id=%s, type=%s, correlationid=%s)",
		m.Properties[AttributePrefix+cloudevents.AttrID],
		m.Properties[AttributePrefix+cloudevents.AttrType],
		m.Properties[AttributePrefix+cloudevents.AttrCorrelationID])
}

// Received is the subset of a Pulsar consumer message the binding reads.
// Consumer messages from a Pulsar client satisfy it structurally.
type Received interface {
	Payload() []byte
	Properties() map[string]string
	EventTime() time.Time
}

// Config configures the binding.
type Config struct {
	// Marshaler encodes and decodes binary-mode payloads.
	// Defaults to the JSON marshaler.
	Marshaler cloudevents.Marshaler

	// Logger for glue-level diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

func (c Config) applyDefaults() Config {
	if c.Marshaler == nil {
		c.Marshaler = cloudevents.NewJSONMarshaler()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Binding translates events to and from Pulsar messages.
type Binding struct {
	config Config
}

var _ cloudevents.Binding[*Message] = (*Binding)(nil)

// NewBinding creates a Pulsar binding.
func NewBinding(config Config) *Binding {
	return &Binding{config: config.applyDefaults()}
}

// ToProtocol translates an event into a Pulsar message according to mode.
func (b *Binding) ToProtocol(e cloudevents.Event, mode cloudevents.Mode) (*Message, error) {
	props, err := b.GenerateAttributes(e.Attributes(), mode)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		Properties: props,
		Key:        e.Attributes().CorrelationID,
	}
	if t, err := e.EventTime(); err == nil {
		msg.EventTime = t
	}

	switch mode {
	case cloudevents.ModeBinary:
		body, err := cloudevents.EncodeBody(e.Data(), b.config.Marshaler)
		if err != nil {
			return nil, err
		}
		msg.Payload = body
	case cloudevents.ModeStructured:
		body, err := cloudevents.EncodeStructured(e)
		if err != nil {
			return nil, err
		}
		msg.Payload = body
	}
	return msg, nil
}

// FromProtocol reconstructs an event from a Pulsar message, inferring the
// mode from the content-type property.
func (b *Binding) FromProtocol(msg *Message) (cloudevents.Event, error) {
	mode, err := cloudevents.InferMode(msg.Properties[PropContentType], msg.Properties, AttributePrefix)
	if err != nil {
		return cloudevents.Event{}, err
	}

	if mode == cloudevents.ModeStructured {
		e, err := cloudevents.DecodeStructured(msg.Payload)
		if err != nil {
			return cloudevents.Event{}, err
		}
		b.flagMissingCorrelation(e.Attributes())
		return e, nil
	}

	attrs, err := cloudevents.DecodeBinaryAttributes(msg.Properties, AttributePrefix)
	if err != nil {
		return cloudevents.Event{}, err
	}
	b.flagMissingCorrelation(attrs)
	data, err := cloudevents.DecodeBody(msg.Payload, attrs.DataContentType, b.config.Marshaler)
	if err != nil {
		return cloudevents.Event{}, err
	}
	return cloudevents.NewEvent(attrs, data)
}

// flagMissingCorrelation logs the discouraged-but-permitted case of a
// received event without a correlation id.
func (b *Binding) flagMissingCorrelation(attrs cloudevents.Attributes) {
	if attrs.CorrelationID == "" {
		b.config.Logger.Warn("received event without correlation id",
			"id", attrs.ID, "type", attrs.Type)
	}
}

// FromReceived wraps a consumer message from a Pulsar client and
// reconstructs the event from it.
func (b *Binding) FromReceived(msg Received) (cloudevents.Event, error) {
	return b.FromProtocol(&Message{
		Payload:    msg.Payload(),
		Properties: msg.Properties(),
		EventTime:  msg.EventTime(),
	})
}

// GenerateAttributes produces the Pulsar property set for an attribute set
// and mode, without touching the payload. In binary mode every set attribute
// is prefixed; in structured mode the properties carry the structured marker.
func (b *Binding) GenerateAttributes(a cloudevents.Attributes, mode cloudevents.Mode) (map[string]string, error) {
	switch mode {
	case cloudevents.ModeBinary:
		props := cloudevents.EncodeBinaryAttributes(a, AttributePrefix)
		if a.DataContentType != "" {
			props[PropContentType] = a.DataContentType
		}
		return props, nil
	case cloudevents.ModeStructured:
		return map[string]string{PropContentType: cloudevents.ContentTypeStructured}, nil
	default:
		return nil, fmt.Errorf("%w: %q", cloudevents.ErrUnsupportedMode, mode)
	}
}
