package mqttclient

import (
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/api"
)

// completedToken is a token that resolved locally without reaching the broker
type completedToken struct {
	err  error
	done chan struct{}
}

func newCompletedToken(err error) *completedToken {
	token := &completedToken{err: err, done: make(chan struct{})}
	close(token.done)
	return token
}

func (token *completedToken) Done() <-chan struct{} { return token.done }

func (token *completedToken) Error() error { return token.err }

// failedPublishToken is a publish request that was rejected before it was
// handed to the broker
type failedPublishToken struct {
	completedToken
}

func newFailedPublishToken(err error) *failedPublishToken {
	return &failedPublishToken{completedToken{err: err, done: closedChannel()}}
}

func (token *failedPublishToken) Result() api.PublishResult {
	return api.PublishResult{}
}

// failedSubscribeToken is a subscribe request that was rejected before it was
// handed to the broker
type failedSubscribeToken struct {
	completedToken
	topic string
}

func newFailedSubscribeToken(topic string, err error) *failedSubscribeToken {
	return &failedSubscribeToken{
		completedToken: completedToken{err: err, done: closedChannel()},
		topic:          topic,
	}
}

func (token *failedSubscribeToken) Subscription() api.Subscription {
	return api.Subscription{Topic: token.topic}
}

func closedChannel() chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

// pahoTokenAdapter exposes a paho token through the connection token interface
type pahoTokenAdapter struct {
	inner pahomqtt.Token
}

func (token *pahoTokenAdapter) Done() <-chan struct{} { return token.inner.Done() }

func (token *pahoTokenAdapter) Error() error { return token.inner.Error() }

type pahoPublishToken struct {
	pahoTokenAdapter
}

func (token *pahoPublishToken) Result() api.PublishResult {
	if pubToken, ok := token.inner.(*pahomqtt.PublishToken); ok {
		return api.PublishResult{PacketID: pubToken.MessageID()}
	}
	return api.PublishResult{}
}

type pahoSubscribeToken struct {
	pahoTokenAdapter
	topic string
	qos   byte
}

func (token *pahoSubscribeToken) Subscription() api.Subscription {
	granted := token.qos
	if subToken, ok := token.inner.(*pahomqtt.SubscribeToken); ok {
		if qos, found := subToken.Result()[token.topic]; found {
			granted = qos
		}
	}
	return api.Subscription{Topic: token.topic, GrantedQos: granted}
}

// deferredSubscribeToken is returned for a subscribe made while the connection
// is down. It resolves once the subscription is restored on the next
// (re)connect, or fails when the subscription is cancelled first.
type deferredSubscribeToken struct {
	topic        string
	requestedQos byte

	mutex     sync.Mutex
	done      chan struct{}
	completed bool
	granted   byte
	err       error
}

func newDeferredSubscribeToken(topic string, qos byte) *deferredSubscribeToken {
	return &deferredSubscribeToken{
		topic:        topic,
		requestedQos: qos,
		granted:      qos,
		done:         make(chan struct{}),
	}
}

func (token *deferredSubscribeToken) Done() <-chan struct{} { return token.done }

func (token *deferredSubscribeToken) Error() error {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	return token.err
}

func (token *deferredSubscribeToken) Subscription() api.Subscription {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	return api.Subscription{Topic: token.topic, GrantedQos: token.granted}
}

// complete resolves the token once. Later calls are ignored.
func (token *deferredSubscribeToken) complete(granted byte, err error) {
	token.mutex.Lock()
	defer token.mutex.Unlock()
	if token.completed {
		return
	}
	token.completed = true
	token.granted = granted
	token.err = err
	close(token.done)
}
