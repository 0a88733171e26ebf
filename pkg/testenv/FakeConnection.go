// Package testenv with helpers for testing the SDK without a live broker
// or service endpoint: an in-memory MQTT connection and a self-signed
// certificate bundle.
package testenv

import (
	"strings"
	"sync"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/api"
)

// PublishRecord holds one message published on the fake connection
type PublishRecord struct {
	Topic   string
	Payload []byte
	Qos     byte
}

type fakeSubscription struct {
	filter  string
	qos     byte
	handler api.MessageHandler
}

// FakeConnection implements api.IMqttConnection in memory.
//
// Publishes are recorded for inspection. Messages are injected with Deliver
// and routed to handlers whose filter matches, on the caller's routine.
// With HoldAcks the publish and subscribe tokens stay unresolved until
// ReleaseAcks, which is how tests exercise message arrival before the
// subscribe acknowledgement.
type FakeConnection struct {
	mutex         sync.Mutex
	published     []PublishRecord
	subscriptions map[string]*fakeSubscription
	pending       []*fakeToken
	holdAcks      bool
	nextPacketID  uint16
	publishErr    error
	subscribeErr  error
}

// NewFakeConnection creates an in-memory connection for testing
func NewFakeConnection() *FakeConnection {
	return &FakeConnection{
		published:     make([]PublishRecord, 0),
		subscriptions: make(map[string]*fakeSubscription),
		pending:       make([]*fakeToken, 0),
	}
}

// Publish records the message and returns a token.
// The token resolves immediately unless acks are held. QoS 2 and empty
// topics fail the token without recording, as a broker connection would
// refuse to send them.
func (fc *FakeConnection) Publish(topic string, payload []byte, qos byte) api.IPublishToken {
	token := newFakeToken()
	if topic == "" {
		token.complete(api.ErrEmptyTopic)
		return token
	}
	if qos > api.QosAtLeastOnce {
		token.complete(api.ErrInvalidQos)
		return token
	}

	fc.mutex.Lock()
	defer fc.mutex.Unlock()
	data := make([]byte, len(payload))
	copy(data, payload)
	fc.published = append(fc.published, PublishRecord{Topic: topic, Payload: data, Qos: qos})

	if fc.publishErr != nil {
		token.complete(fc.publishErr)
		return token
	}
	if qos == api.QosAtLeastOnce {
		fc.nextPacketID++
		token.result = api.PublishResult{PacketID: fc.nextPacketID}
	}
	if fc.holdAcks {
		fc.pending = append(fc.pending, token)
	} else {
		token.complete(nil)
	}
	return token
}

// Subscribe registers the handler under the topic filter, replacing an
// existing handler on the same filter. The handler is active right away,
// even while the returned token is still unresolved.
func (fc *FakeConnection) Subscribe(topic string, qos byte, handler api.MessageHandler) api.ISubscribeToken {
	token := newFakeToken()
	if topic == "" {
		token.complete(api.ErrEmptyTopic)
		return token
	}
	if qos > api.QosAtLeastOnce {
		token.complete(api.ErrInvalidQos)
		return token
	}

	fc.mutex.Lock()
	defer fc.mutex.Unlock()
	if fc.subscribeErr != nil {
		token.complete(fc.subscribeErr)
		return token
	}
	fc.subscriptions[topic] = &fakeSubscription{filter: topic, qos: qos, handler: handler}
	token.sub = api.Subscription{Topic: topic, GrantedQos: qos}
	if fc.holdAcks {
		fc.pending = append(fc.pending, token)
	} else {
		token.complete(nil)
	}
	return token
}

// Unsubscribe removes the handler registered under the topic filter
func (fc *FakeConnection) Unsubscribe(topic string) api.IMqttToken {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()
	delete(fc.subscriptions, topic)
	token := newFakeToken()
	token.complete(nil)
	return token
}

// Deliver injects a message as if the broker published it on the topic.
// All handlers whose filter matches are invoked synchronously on the
// caller's routine. Returns the number of handlers invoked.
func (fc *FakeConnection) Deliver(topic string, payload []byte) int {
	fc.mutex.Lock()
	handlers := make([]api.MessageHandler, 0)
	for _, sub := range fc.subscriptions {
		if TopicMatches(sub.filter, topic) {
			handlers = append(handlers, sub.handler)
		}
	}
	fc.mutex.Unlock()

	// invoke outside the lock, a handler may publish or subscribe
	for _, handler := range handlers {
		handler(topic, payload)
	}
	return len(handlers)
}

// HoldAcks keeps publish and subscribe tokens unresolved until ReleaseAcks
func (fc *FakeConnection) HoldAcks() {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()
	fc.holdAcks = true
}

// ReleaseAcks resolves all held tokens successfully
func (fc *FakeConnection) ReleaseAcks() {
	fc.mutex.Lock()
	pending := fc.pending
	fc.pending = nil
	fc.holdAcks = false
	fc.mutex.Unlock()

	for _, token := range pending {
		token.complete(nil)
	}
}

// SetPublishError fails every subsequent publish token with the given
// error. Use nil to restore normal behavior.
func (fc *FakeConnection) SetPublishError(err error) {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()
	fc.publishErr = err
}

// SetSubscribeError fails every subsequent subscribe token with the given
// error. Use nil to restore normal behavior.
func (fc *FakeConnection) SetSubscribeError(err error) {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()
	fc.subscribeErr = err
}

// Published returns a copy of all recorded publishes in order
func (fc *FakeConnection) Published() []PublishRecord {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()
	records := make([]PublishRecord, len(fc.published))
	copy(records, fc.published)
	return records
}

// HasSubscription returns whether a handler is registered under the filter
func (fc *FakeConnection) HasSubscription(filter string) bool {
	fc.mutex.Lock()
	defer fc.mutex.Unlock()
	_, found := fc.subscriptions[filter]
	return found
}

// TopicMatches reports whether an MQTT topic filter matches a topic.
// The filter can contain the + and # wildcards. Like brokers do, wildcards
// on the first level do not match topics starting with '$'.
func TopicMatches(filter string, topic string) bool {
	if filter == topic {
		return true
	}
	filterParts := strings.Split(filter, "/")
	topicParts := strings.Split(topic, "/")
	if (filterParts[0] == "#" || filterParts[0] == "+") && strings.HasPrefix(topic, "$") {
		return false
	}
	for i, part := range filterParts {
		if part == "#" {
			return i == len(filterParts)-1
		}
		if i >= len(topicParts) {
			return false
		}
		if part != "+" && part != topicParts[i] {
			return false
		}
	}
	return len(filterParts) == len(topicParts)
}

// fakeToken implements the publish and subscribe token interfaces
type fakeToken struct {
	mutex     sync.Mutex
	done      chan struct{}
	completed bool
	err       error
	result    api.PublishResult
	sub       api.Subscription
}

func newFakeToken() *fakeToken {
	return &fakeToken{done: make(chan struct{})}
}

// Done returns the channel that closes on completion
func (token *fakeToken) Done() <-chan struct{} {
	return token.done
}

// Error returns the outcome after Done is closed
func (token *fakeToken) Error() error {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	return token.err
}

// Result returns the publish acknowledgement
func (token *fakeToken) Result() api.PublishResult {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	return token.result
}

// Subscription returns the subscribe acknowledgement
func (token *fakeToken) Subscription() api.Subscription {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	return token.sub
}

func (token *fakeToken) complete(err error) {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	if token.completed {
		return
	}
	token.completed = true
	token.err = err
	close(token.done)
}
