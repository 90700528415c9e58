// Package cloudevents implements the CloudEvents v1.0 data model used across
// the meemoo event pipeline, together with protocol bindings for the two
// supported transports.
//
// The package centers around [Event]: a validated set of context
// [Attributes] (the CloudEvents-mandated attributes plus the meemoo
// extensions outcome and correlationid) paired with an opaque payload.
// Producers construct an event, pick a binding and a [Mode], and ask the
// binding for a protocol-native message; consumers wrap a received transport
// message and ask the binding to reconstruct the event, with the mode
// inferred from the message's content-type indicator.
//
// # Serialization modes
//
// In binary mode the attributes travel as prefixed transport properties
// ("ce_source", "ce_type", ...) and the payload travels as the raw body.
// In structured mode the whole event is one CloudEvents JSON envelope and the
// content type is set to [ContentTypeStructured].
//
// # Subpackages
//
// pulsar: binding to the Pulsar message shape (payload + string properties)
//
// rabbit: binding to the AMQP 0.9.1 message shape, with converters for
// github.com/rabbitmq/amqp091-go publishings and deliveries
//
// compat: converters to and from github.com/cloudevents/sdk-go events
//
// # Quick start
//
//	attrs, _ := cloudevents.NewAttributes("/meemoo/sample-app", "be.meemoo.sample-event",
//		cloudevents.WithOutcome(cloudevents.OutcomeSuccess),
//	)
//	event, _ := cloudevents.NewEvent(attrs, map[string]any{"message": "Hello World!"})
//
//	binding := rabbit.NewBinding(rabbit.Config{})
//	msg, _ := binding.ToProtocol(event, cloudevents.ModeBinary)
//	ch.PublishWithContext(ctx, exchange, key, false, false, rabbit.ToPublishing(msg))
//
// All types are immutable values after construction; concurrent binding calls
// on disjoint inputs need no coordination.
package cloudevents
