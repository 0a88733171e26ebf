package serviceclient

import "fmt"

// ErrorEnvelope describes a message on a subscribed operation topic that
// could not be delivered as a typed event. The envelope carries the raw
// payload so the application can inspect what the service actually sent.
// Envelopes are handed to the subscription's event handler; the
// subscription itself stays active.
type ErrorEnvelope struct {
	// Operation name the subscription belongs to, eg "SubscribeToGetShadowAccepted"
	Operation string
	// Topic the message was received on
	Topic string
	// Payload with the raw message bytes as received
	Payload []byte
	// Err with the cause, usually a *codec.DecodeError
	Err error
}

// Error describes the operation, topic and cause
func (e *ErrorEnvelope) Error() string {
	return fmt.Sprintf("%s: cannot handle message on topic '%s': %s", e.Operation, e.Topic, e.Err)
}

// Unwrap returns the cause
func (e *ErrorEnvelope) Unwrap() error {
	return e.Err
}
