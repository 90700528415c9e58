package cloudevents

import "errors"

var (
	// ErrMissingRequiredAttribute indicates a required CloudEvents context
	// attribute (source, type) was empty or absent at construction, or that
	// a required domain attribute was absent under a strict policy.
	ErrMissingRequiredAttribute = errors.New("cloudevents: missing required attribute")

	// ErrInvalidOutcome indicates an outcome token outside {fail, warning, success}.
	ErrInvalidOutcome = errors.New("cloudevents: invalid outcome")

	// ErrUnsupportedMode indicates a message mode other than binary or structured.
	ErrUnsupportedMode = errors.New("cloudevents: unsupported message mode")

	// ErrMissingContentType indicates the serialization mode of a received
	// message could not be determined from its content type or properties.
	ErrMissingContentType = errors.New("cloudevents: missing content type")

	// ErrMalformedEnvelope indicates a structured-mode body that is not a
	// CloudEvents JSON envelope.
	ErrMalformedEnvelope = errors.New("cloudevents: malformed envelope")

	// ErrAttributeDecode indicates a received message whose properties do not
	// yield the required context attributes.
	ErrAttributeDecode = errors.New("cloudevents: attribute decode")

	// ErrTimeParse indicates an event time that is not a valid RFC 3339 timestamp.
	ErrTimeParse = errors.New("cloudevents: time parse")
)
