// Package api with the interface of the MQTT connection consumed by the
// service clients, and the token and result types it resolves.
package api

// QoS levels accepted by the service topics. The services only support
// at-most-once and at-least-once delivery. Exactly-once (QoS 2) is not
// supported and the connection must fail such requests rather than downgrade.
const (
	QosAtMostOnce  byte = 0
	QosAtLeastOnce byte = 1
)

// PublishResult holds the broker acknowledgement of a publish request.
// For QoS 0 the packet ID is 0 as the broker sends no acknowledgement.
type PublishResult struct {
	// PacketID of the PUBACK for QoS 1 publishes
	PacketID uint16
}

// Subscription holds the broker acknowledgement of a subscribe request
type Subscription struct {
	// Topic filter that was subscribed, including any wildcards
	Topic string
	// GrantedQos as confirmed by the broker in the SUBACK
	GrantedQos byte
}

// MessageHandler is invoked by the connection for each message received on a
// subscribed topic filter.
//
//	topic the message was published on, with placeholders resolved
//	payload raw message payload, not yet decoded
type MessageHandler func(topic string, payload []byte)

// IMqttToken tracks completion of an asynchronous connection operation.
// Done is closed once the operation completed, after which Error holds the
// outcome. Tokens resolve at most once.
type IMqttToken interface {
	// Done returns the channel that is closed on completion
	Done() <-chan struct{}

	// Error returns the operation error, or nil when it succeeded.
	// Only valid after Done is closed.
	Error() error
}

// IPublishToken tracks completion of a publish request
type IPublishToken interface {
	IMqttToken

	// Result returns the publish acknowledgement. Only valid after Done.
	Result() PublishResult
}

// ISubscribeToken tracks completion of a subscribe request.
// Messages on the subscribed topic can be delivered to the handler before
// this token resolves. Handlers must not wait on the token.
type ISubscribeToken interface {
	IMqttToken

	// Subscription returns the subscribe acknowledgement. Only valid after Done.
	Subscription() Subscription
}

// IMqttConnection is the connection to the MQTT broker as used by the service
// clients. The connection owns session state, reconnects and credentials.
// Service clients only publish, subscribe and unsubscribe through it.
type IMqttConnection interface {

	// Publish a message to a topic.
	// The request is handed to the transport and the returned token resolves
	// when the delivery guarantee of the chosen QoS is met.
	//  topic to publish on. Must be a full topic without wildcards.
	//  payload with the raw message content
	//  qos QosAtMostOnce or QosAtLeastOnce
	Publish(topic string, payload []byte, qos byte) IPublishToken

	// Subscribe a handler to a topic filter.
	// The handler is invoked for each message whose topic matches the filter,
	// possibly before the returned token resolves.
	// A second subscribe to the same filter replaces the handler.
	//  topic filter to subscribe to, MQTT wildcards + and # are allowed
	//  qos QosAtMostOnce or QosAtLeastOnce
	//  handler invoked on the connection's message dispatch routine
	Subscribe(topic string, qos byte, handler MessageHandler) ISubscribeToken

	// Unsubscribe the handler from a topic filter.
	// Messages in flight can still be delivered after the call returns.
	//  topic filter that was passed to Subscribe
	Unsubscribe(topic string) IMqttToken
}
