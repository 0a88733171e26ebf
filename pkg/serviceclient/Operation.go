// Package serviceclient with the generic machinery shared by the service
// clients: operation descriptors that map typed requests onto templated
// topics and typed events, and the error envelope for undecodable messages.
//
// A service client declares one descriptor per operation and delegates to
// it. The descriptors render the topic, encode or decode the payload and
// talk to the api.IMqttConnection. They hold no state, so a single
// package-level descriptor serves all clients and requests.
package serviceclient

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/api"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/codec"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/topics"
)

// TopicRequest is implemented by request types whose fields parameterize
// an operation's topic template.
type TopicRequest interface {
	// TopicParams returns the placeholder values for the topic template
	TopicParams() map[string]string
}

// EventHandler is invoked once per message received on a subscribed
// operation topic. Exactly one of event and failure is non-nil: event for a
// message that decoded into the operation's event type, failure for a
// message that did not. Handlers run on the connection's dispatch routine
// and must not block on connection tokens.
type EventHandler[Evt any] func(event *Evt, failure *ErrorEnvelope)

// PublishOperation describes a service operation that publishes a typed
// request to a templated topic.
type PublishOperation[Req TopicRequest] struct {
	// Name of the operation, used in logging and error envelopes
	Name string
	// Template of the topic to publish on
	Template string
}

// Publish renders the operation topic from the request, encodes the request
// as JSON and hands it to the connection.
// Render and encode failures are local and returned immediately without any
// I/O. Transport failures are reported through the returned token.
//
//	conn with the broker connection to publish on
//	request with topic parameters and payload fields
//	qos api.QosAtMostOnce or api.QosAtLeastOnce, passed through unchanged
func (op PublishOperation[Req]) Publish(
	conn api.IMqttConnection, request Req, qos byte) (api.IPublishToken, error) {

	topic, err := topics.Render(op.Template, request.TopicParams())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name, err)
	}
	payload, err := codec.Encode(request)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name, err)
	}
	logrus.Infof("%s: publish on topic=%s, qos=%d", op.Name, topic, qos)
	return conn.Publish(topic, payload, qos), nil
}

// SubscribeOperation describes a service operation that subscribes a typed
// event handler to a templated topic.
type SubscribeOperation[Req TopicRequest, Evt any] struct {
	// Name of the operation, used in logging and error envelopes
	Name string
	// Template of the topic to subscribe to
	Template string
}

// Subscribe renders the operation topic from the request and registers a
// handler adapter on the connection. The adapter decodes each inbound
// payload into the operation's event type and invokes the handler with
// either the event or an error envelope.
//
// The subscription is handed to the transport before its acknowledgement
// arrives, so the handler can receive messages before the returned token
// resolves. Handlers must therefore never wait on the token.
//
//	conn with the broker connection to subscribe on
//	request with the topic parameters
//	qos api.QosAtMostOnce or api.QosAtLeastOnce, passed through unchanged
//	handler invoked once per received message
func (op SubscribeOperation[Req, Evt]) Subscribe(
	conn api.IMqttConnection, request Req, qos byte, handler EventHandler[Evt]) (api.ISubscribeToken, error) {

	if handler == nil {
		return nil, fmt.Errorf("%s: handler must not be nil", op.Name)
	}
	topic, err := topics.Render(op.Template, request.TopicParams())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name, err)
	}
	logrus.Infof("%s: subscribe to topic=%s, qos=%d", op.Name, topic, qos)
	return conn.Subscribe(topic, qos, op.adapter(handler)), nil
}

// adapter wraps the typed handler into the connection's raw message handler.
// A panic in the handler is recovered here so a faulty handler cannot take
// down the connection's dispatch routine.
func (op SubscribeOperation[Req, Evt]) adapter(handler EventHandler[Evt]) api.MessageHandler {
	opName := op.Name
	return func(topic string, payload []byte) {
		defer func() {
			if r := recover(); r != nil {
				logrus.Errorf("%s: handler panic on topic '%s': %v", opName, topic, r)
			}
		}()
		event := new(Evt)
		if err := codec.Decode(payload, event); err != nil {
			logrus.Warningf("%s: message on topic '%s' cannot be decoded: %s", opName, topic, err)
			handler(nil, &ErrorEnvelope{
				Operation: opName,
				Topic:     topic,
				Payload:   payload,
				Err:       err,
			})
			return
		}
		handler(event, nil)
	}
}

// NewClientToken returns a unique token to correlate a request with the
// responses it triggers. Shadow and jobs requests carry it in their
// clientToken field and the service echoes it in the matching response.
func NewClientToken() string {
	return uuid.NewString()
}
