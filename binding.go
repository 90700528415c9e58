package cloudevents

// Binding is the protocol binding contract: a pure, stateless translation
// between the event model and a transport's native message shape, generic
// over that shape. A binding never talks to the transport itself; publishing
// and consuming stay with the caller's transport client.
//
// Exactly two implementations exist, pulsar.Binding and rabbit.Binding.
// The set is closed: adding a transport means adding a binding package, not
// subclassing behavior.
type Binding[M any] interface {
	// ToProtocol translates an event into a protocol-native message
	// according to the given mode. Returns ErrUnsupportedMode for a mode
	// outside {binary, structured}.
	ToProtocol(e Event, mode Mode) (M, error)

	// FromProtocol reverses the translation, inferring the mode from the
	// message's content-type indicator.
	FromProtocol(msg M) (Event, error)
}
