// Package rabbit binds the event model to the AMQP 0.9.1 message shape.
//
// The binding produces and consumes a transport-neutral [Message]; the
// [ToPublishing] and [FromDelivery] converters bridge it to
// github.com/rabbitmq/amqp091-go so callers can hand the result straight to
// a channel's PublishWithContext or wrap a consumed delivery. Connection,
// exchange and queue handling stay with the caller's AMQP client.
package rabbit

import (
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/meemoo/cloudevents"
)

// AttributePrefix keeps CloudEvents attributes clear of AMQP-native header
// names in binary mode.
const AttributePrefix = "ce_"

// Message is the AMQP-native message shape the binding produces and consumes.
// Besides the body and headers it carries the AMQP properties the meemoo
// contract expects on every message, regardless of mode.
type Message struct {
	// Body is the message body: the raw event payload in binary mode, the
	// full JSON envelope in structured mode.
	Body []byte

	// Headers carries the CloudEvents context attributes in binary mode.
	Headers amqp.Table

	// ContentType is the AMQP content-type property: the payload content
	// type in binary mode, the structured marker in structured mode.
	ContentType string

	// CorrelationID, MessageID, Timestamp and Type mirror the event's
	// correlationid, id, time and type attributes as native AMQP
	// properties in both modes.
	CorrelationID string
	MessageID     string
	Timestamp     time.Time
	Type          string
}

// String returns a short diagnostic form.
func (m *Message) String() string {
	return fmt.Sprintf("rabbit.Message(id=%s, type=%s, correlationid=%s)",
		m.MessageID, m.Type, m.CorrelationID)
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

// Binding translates events to and from AMQP messages.
type Binding struct {
	config Config
}

var _ cloudevents.Binding[*Message] = (*Binding)(nil)

// NewBinding creates an AMQP binding.
func NewBinding(config Config) *Binding {
	return &Binding{config: config.applyDefaults()}
}

// ToProtocol translates an event into an AMQP message according to mode.
func (b *Binding) ToProtocol(e cloudevents.Event, mode cloudevents.Mode) (*Message, error) {
	props, err := b.GenerateAttributes(e.Attributes(), mode)
	if err != nil {
		return nil, err
	}

	attrs := e.Attributes()
	msg := &Message{
		CorrelationID: attrs.CorrelationID,
		MessageID:     attrs.ID,
		Type:          attrs.Type,
	}
	if t, err := e.EventTime(); err == nil {
		msg.Timestamp = t
	}

	switch mode {
	case cloudevents.ModeBinary:
		body, err := cloudevents.EncodeBody(e.Data(), b.config.Marshaler)
		if err != nil {
			return nil, err
		}
		msg.Body = body
		msg.ContentType = attrs.DataContentType
		msg.Headers = toTable(props)
	case cloudevents.ModeStructured:
		body, err := cloudevents.EncodeStructured(e)
		if err != nil {
			return nil, err
		}
		msg.Body = body
		msg.ContentType = cloudevents.ContentTypeStructured
	}
	return msg, nil
}

// FromProtocol reconstructs an event from an AMQP message, inferring the
// mode from the content-type property.
func (b *Binding) FromProtocol(msg *Message) (cloudevents.Event, error) {
	headers := fromTable(msg.Headers)
	mode, err := cloudevents.InferMode(msg.ContentType, headers, AttributePrefix)
	if err != nil {
		return cloudevents.Event{}, err
	}

	if mode == cloudevents.ModeStructured {
		e, err := cloudevents.DecodeStructured(msg.Body)
		if err != nil {
			return cloudevents.Event{}, err
		}
		b.flagMissingCorrelation(e.Attributes())
		return e, nil
	}

	attrs, err := cloudevents.DecodeBinaryAttributes(headers, AttributePrefix)
	if err != nil {
		return cloudevents.Event{}, err
	}
	if attrs.DataContentType == "" && msg.ContentType != "" {
		attrs.DataContentType = msg.ContentType
	}
	if attrs.CorrelationID == "" && msg.CorrelationID != "" {
		attrs.CorrelationID = msg.CorrelationID
	}
	b.flagMissingCorrelation(attrs)
	data, err := cloudevents.DecodeBody(msg.Body, attrs.DataContentType, b.config.Marshaler)
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

// GenerateAttributes produces the AMQP header set for an attribute set and
// mode, without touching the body. In binary mode every set attribute is
// prefixed; in structured mode the headers carry only the structured marker
// under "content-type" (the native property carries it on the wire).
func (b *Binding) GenerateAttributes(a cloudevents.Attributes, mode cloudevents.Mode) (map[string]string, error) {
	switch mode {
	case cloudevents.ModeBinary:
		return cloudevents.EncodeBinaryAttributes(a, AttributePrefix), nil
	case cloudevents.ModeStructured:
		return map[string]string{"content-type": cloudevents.ContentTypeStructured}, nil
	default:
		return nil, fmt.Errorf("%w: %q", cloudevents.ErrUnsupportedMode, mode)
	}
}

// ToPublishing converts a binding message to an amqp091 publishing, ready for
// a channel's PublishWithContext.
func ToPublishing(msg *Message) amqp.Publishing {
	return amqp.Publishing{
		Headers:       msg.Headers,
		ContentType:   msg.ContentType,
		CorrelationId: msg.CorrelationID,
		MessageId:     msg.MessageID,
		Timestamp:     msg.Timestamp,
		Type:          msg.Type,
		DeliveryMode:  amqp.Persistent,
		Body:          msg.Body,
	}
}

// FromDelivery wraps a consumed amqp091 delivery as a binding message.
func FromDelivery(d amqp.Delivery) *Message {
	return &Message{
		Body:          d.Body,
		Headers:       d.Headers,
		ContentType:   d.ContentType,
		CorrelationID: d.CorrelationId,
		MessageID:     d.MessageId,
		Timestamp:     d.Timestamp,
		Type:          d.Type,
	}
}

// toTable converts a string property map to an AMQP header table.
func toTable(props map[string]string) amqp.Table {
	t := make(amqp.Table, len(props))
	for k, v := range props {
		t[k] = v
	}
	return t
}

// fromTable converts an AMQP header table to a string property map,
// stringifying non-string header values.
func fromTable(t amqp.Table) map[string]string {
	props := make(map[string]string, len(t))
	for k, v := range t {
		switch s := v.(type) {
		case nil:
		case string:
			props[k] = s
		default:
			props[k] = fmt.Sprint(v)
		}
	}
	return props
}
