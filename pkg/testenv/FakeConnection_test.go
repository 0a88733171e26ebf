package testenv_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/api"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/testenv"
)

func TestTopicMatches(t *testing.T) {
	logrus.Infof("--- TestTopicMatches ---")

	tests := []struct {
		filter  string
		topic   string
		matches bool
	}{
		{"a/b/c", "a/b/c", true},
		{"a/b/c", "a/b", false},
		{"a/b", "a/b/c", false},
		{"a/+/c", "a/b/c", true},
		{"a/+/c", "a/b/d", false},
		{"a/#", "a/b/c", true},
		{"a/#", "a", true},
		{"#", "a/b", true},
		{"#", "$aws/things/x", false},
		{"+/things", "$aws/things", false},
		{"$aws/things/+/shadow/get/accepted", "$aws/things/lamp1/shadow/get/accepted", true},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.matches, testenv.TopicMatches(tt.filter, tt.topic),
			"filter '%s' topic '%s'", tt.filter, tt.topic)
	}
}

func TestPublishRecorded(t *testing.T) {
	logrus.Infof("--- TestPublishRecorded ---")

	fc := testenv.NewFakeConnection()
	token := fc.Publish("things/lamp1/state", []byte("on"), api.QosAtLeastOnce)
	<-token.Done()
	require.NoError(t, token.Error())
	assert.NotZero(t, token.Result().PacketID)

	records := fc.Published()
	require.Len(t, records, 1)
	assert.Equal(t, "things/lamp1/state", records[0].Topic)
	assert.Equal(t, []byte("on"), records[0].Payload)
	assert.Equal(t, api.QosAtLeastOnce, records[0].Qos)
}

func TestPublishQos2Fails(t *testing.T) {
	logrus.Infof("--- TestPublishQos2Fails ---")

	fc := testenv.NewFakeConnection()
	token := fc.Publish("things/lamp1/state", []byte("on"), 2)
	<-token.Done()
	require.ErrorIs(t, token.Error(), api.ErrInvalidQos)
	// the message never left
	assert.Empty(t, fc.Published())
}

func TestPublishError(t *testing.T) {
	logrus.Infof("--- TestPublishError ---")

	fc := testenv.NewFakeConnection()
	wantErr := errors.New("broker gone")
	fc.SetPublishError(wantErr)
	token := fc.Publish("things/lamp1/state", []byte("on"), api.QosAtMostOnce)
	<-token.Done()
	assert.ErrorIs(t, token.Error(), wantErr)
}

func TestDeliverRouting(t *testing.T) {
	logrus.Infof("--- TestDeliverRouting ---")

	fc := testenv.NewFakeConnection()
	var rxMutex sync.Mutex
	var rx []string

	subToken := fc.Subscribe("things/+/state", api.QosAtLeastOnce, func(topic string, payload []byte) {
		rxMutex.Lock()
		defer rxMutex.Unlock()
		rx = append(rx, topic+"="+string(payload))
	})
	<-subToken.Done()
	require.NoError(t, subToken.Error())
	assert.Equal(t, "things/+/state", subToken.Subscription().Topic)
	assert.Equal(t, api.QosAtLeastOnce, subToken.Subscription().GrantedQos)

	count := fc.Deliver("things/lamp1/state", []byte("on"))
	assert.Equal(t, 1, count)
	count = fc.Deliver("things/lamp1/other", []byte("x"))
	assert.Equal(t, 0, count)

	rxMutex.Lock()
	assert.Equal(t, []string{"things/lamp1/state=on"}, rx)
	rxMutex.Unlock()
}

func TestSubscribeReplacesHandler(t *testing.T) {
	logrus.Infof("--- TestSubscribeReplacesHandler ---")

	fc := testenv.NewFakeConnection()
	var rxMutex sync.Mutex
	rx1 := 0
	rx2 := 0
	fc.Subscribe("test", api.QosAtMostOnce, func(topic string, payload []byte) {
		rxMutex.Lock()
		defer rxMutex.Unlock()
		rx1++
	})
	fc.Subscribe("test", api.QosAtMostOnce, func(topic string, payload []byte) {
		rxMutex.Lock()
		defer rxMutex.Unlock()
		rx2++
	})
	fc.Deliver("test", []byte("msg"))

	rxMutex.Lock()
	assert.Equal(t, 0, rx1, "replaced handler still invoked")
	assert.Equal(t, 1, rx2)
	rxMutex.Unlock()

	fc.Unsubscribe("test")
	assert.False(t, fc.HasSubscription("test"))
	assert.Equal(t, 0, fc.Deliver("test", []byte("msg")))
}

// With held acks the handler is live while the subscribe token is pending
func TestHoldAcks(t *testing.T) {
	logrus.Infof("--- TestHoldAcks ---")

	fc := testenv.NewFakeConnection()
	fc.HoldAcks()

	var rxMutex sync.Mutex
	rx := 0
	token := fc.Subscribe("test", api.QosAtLeastOnce, func(topic string, payload []byte) {
		rxMutex.Lock()
		defer rxMutex.Unlock()
		rx++
	})
	select {
	case <-token.Done():
		t.Fatal("token resolved while acks are held")
	default:
	}

	fc.Deliver("test", []byte("early"))
	rxMutex.Lock()
	assert.Equal(t, 1, rx, "message not delivered before the ack")
	rxMutex.Unlock()

	fc.ReleaseAcks()
	<-token.Done()
	assert.NoError(t, token.Error())
}
