package mqttclient_test

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/api"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/mqttclient"
)

// no endpoint is listening here, these tests cover the offline behavior
const testHostPort = "localhost:9999"

func TestPublishNotConnected(t *testing.T) {
	logrus.Infof("--- TestPublishNotConnected ---")
	client := mqttclient.NewMqttClient(testHostPort, "", 1)

	token := client.Publish("things/sensor-7/state", []byte("{}"), api.QosAtLeastOnce)
	<-token.Done()
	assert.ErrorIs(t, token.Error(), api.ErrNotConnected)
	assert.Equal(t, uint16(0), token.Result().PacketID)
}

func TestPublishInvalidQos(t *testing.T) {
	logrus.Infof("--- TestPublishInvalidQos ---")
	client := mqttclient.NewMqttClient(testHostPort, "", 1)

	token := client.Publish("things/sensor-7/state", []byte("{}"), 2)
	<-token.Done()
	assert.ErrorIs(t, token.Error(), api.ErrInvalidQos)
}

func TestPublishEmptyTopic(t *testing.T) {
	logrus.Infof("--- TestPublishEmptyTopic ---")
	client := mqttclient.NewMqttClient(testHostPort, "", 1)

	token := client.Publish("", []byte("{}"), api.QosAtLeastOnce)
	<-token.Done()
	assert.ErrorIs(t, token.Error(), api.ErrEmptyTopic)
}

func TestSubscribeInvalidQos(t *testing.T) {
	logrus.Infof("--- TestSubscribeInvalidQos ---")
	client := mqttclient.NewMqttClient(testHostPort, "", 1)

	token := client.Subscribe("things/+/state", 2, func(topic string, payload []byte) {})
	<-token.Done()
	assert.ErrorIs(t, token.Error(), api.ErrInvalidQos)
}

// a subscription made while disconnected stays pending until the connection
// comes up, or resolves with an error when the client is closed first
func TestSubscribePendingWhileDisconnected(t *testing.T) {
	logrus.Infof("--- TestSubscribePendingWhileDisconnected ---")
	client := mqttclient.NewMqttClient(testHostPort, "", 1)

	token := client.Subscribe("things/+/state", api.QosAtLeastOnce,
		func(topic string, payload []byte) {})
	require.NotNil(t, token)
	select {
	case <-token.Done():
		t.Fatal("subscribe token resolved without a connection")
	default:
	}
	assert.Equal(t, "things/+/state", token.Subscription().Topic)

	client.Close()
	select {
	case <-token.Done():
	case <-time.After(time.Second):
		t.Fatal("subscribe token not resolved by Close")
	}
	assert.ErrorIs(t, token.Error(), api.ErrConnectionClosed)
}

func TestUnsubscribeCancelsPendingSubscription(t *testing.T) {
	logrus.Infof("--- TestUnsubscribeCancelsPendingSubscription ---")
	client := mqttclient.NewMqttClient(testHostPort, "", 1)

	subToken := client.Subscribe("things/+/state", api.QosAtLeastOnce,
		func(topic string, payload []byte) {})
	unsubToken := client.Unsubscribe("things/+/state")
	<-unsubToken.Done()
	assert.NoError(t, unsubToken.Error())

	<-subToken.Done()
	assert.Error(t, subToken.Error())
}

func TestUnsubscribeWithoutSubscription(t *testing.T) {
	logrus.Infof("--- TestUnsubscribeWithoutSubscription ---")
	client := mqttclient.NewMqttClient(testHostPort, "", 1)

	token := client.Unsubscribe("things/+/state")
	<-token.Done()
	assert.NoError(t, token.Error())
}

// connecting to an endpoint that isn't there must give up after the timeout
func TestConnectNoEndpoint(t *testing.T) {
	logrus.Infof("--- TestConnectNoEndpoint ---")
	client := mqttclient.NewMqttClient(testHostPort, "", 1)

	err := client.ConnectWithPassword("client-1", "user", "password")
	require.Error(t, err)
	client.Close()
}
