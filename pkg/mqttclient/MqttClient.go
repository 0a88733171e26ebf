// Package mqttclient with the default MQTT connection for the service clients.
// This wraps the paho client and addresses problems with reconnect and auto
// resubscribe while using a clean session.
package mqttclient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/api"
)

// DefaultTimeoutSec constant with connection, reconnection and disconnection timeouts
const DefaultTimeoutSec = 3

// Time a keep alive ping is sent. This is the max wait time to discover a broken connection
const DefaultKeepAliveSec = 10

var errSubscriptionCancelled = errors.New("subscription cancelled before broker acknowledgement")

// MqttClient implements the connection the service clients publish and
// subscribe through. Subscriptions are tracked locally and restored after a
// reconnect as the clean session drops them on the broker.
type MqttClient struct {
	hostPort string // host:port of the endpoint to connect to
	timeout  int    // connection timeout in seconds before giving up

	pahoClient          pahomqtt.Client
	subscriptions       map[string]*topicSubscription // for re-subscribing after reconnect
	tlsVerifyServerCert bool                          // verify the server certificate, requires a root CA signed cert
	tlsCACertFile       string                        // path to the CA certificate
	updateMutex         *sync.Mutex                   // mutex for async updating of subscriptions
}

// topicSubscription holds a subscription to restore after disconnect
type topicSubscription struct {
	topic   string
	qos     byte
	handler api.MessageHandler
	token   *deferredSubscribeToken // pending broker ack, nil once resolved
}

// Connect to the MQTT endpoint.
// If a previous connection exists then it is disconnected first. If no
// connection is possible this keeps retrying until the timeout is expired.
// With each retry a backoff period is increased until 120 seconds.
//
//	clientID to connect as. Use "" to generate one from the hostname.
//	username to authenticate with. Use "" when authenticating with a certificate
//	password to authenticate with. Use "" to ignore
//	clientCert to authenticate with a client certificate. nil for username/password
func (mqttClient *MqttClient) Connect(clientID string, username string, password string, clientCert *tls.Certificate) error {
	logrus.Infof("MqttClient.Connect: clientID='%s', username='%s', hasClientCert=%v",
		clientID, username, clientCert != nil)

	if clientID == "" {
		hostName, _ := os.Hostname()
		clientID = fmt.Sprintf("%s-%d", hostName, time.Now().UnixNano()/1000000)
	}
	// close an existing connection first
	if mqttClient.pahoClient != nil && mqttClient.pahoClient.IsConnected() {
		mqttClient.pahoClient.Disconnect(1000 * DefaultTimeoutSec)
	}

	// certificate connections use raw TLS, password connections run over websocket
	brokerURL := fmt.Sprintf("tls://%s/", mqttClient.hostPort)
	if clientCert == nil {
		brokerURL = fmt.Sprintf("wss://%s/mqtt", mqttClient.hostPort)
	}
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	// CleanSession as not all brokers support persistence. The client restores
	// its own subscriptions on reconnect instead.
	opts.SetCleanSession(true)
	opts.SetKeepAlive(DefaultKeepAliveSec * time.Second)

	opts.SetOnConnectHandler(func(client pahomqtt.Client) {
		logrus.Warningf("MqttClient.onConnect: Connected to %s, clientID=%s", brokerURL, clientID)
		// restore subscriptions registered before the connect or during an outage
		mqttClient.resubscribe()
	})
	opts.SetConnectionLostHandler(func(client pahomqtt.Client, err error) {
		logrus.Warningf("MqttClient.onConnectionLost: Disconnected from %s: %s, clientID=%s",
			brokerURL, err, clientID)
	})

	// use TLS with the CA certificate when given
	var rootCA *x509.CertPool
	if mqttClient.tlsCACertFile != "" {
		rootCA = x509.NewCertPool()
		caCertPEM, err := os.ReadFile(mqttClient.tlsCACertFile)
		if err != nil {
			logrus.Errorf("MqttClient.Connect: Unable to read CA certificate '%s': %s. Ignored",
				mqttClient.tlsCACertFile, err)
		} else {
			rootCA.AppendCertsFromPEM(caCertPEM)
		}
	}
	tlsConfig := &tls.Config{
		InsecureSkipVerify: !mqttClient.tlsVerifyServerCert,
		RootCAs:            rootCA,
	}
	if clientCert != nil {
		tlsConfig.Certificates = []tls.Certificate{*clientCert}
	}
	opts.Username = username
	if password != "" {
		opts.Password = password
	}
	opts.SetTLSConfig(tlsConfig)

	logrus.Infof("MqttClient.Connect: Connecting to %s with clientID=%s", brokerURL, clientID)
	mqttClient.updateMutex.Lock()
	mqttClient.pahoClient = pahomqtt.NewClient(opts)
	mqttClient.updateMutex.Unlock()

	// auto reconnect does not kick in for the initial connection attempt,
	// so retry with backoff until the configured timeout expires
	retryDelaySec := 1
	elapsedSec := 0
	var err error
	for {
		token := mqttClient.pahoClient.Connect()
		token.Wait()
		err = token.Error()
		if err == nil {
			break
		}
		if mqttClient.timeout > 0 && elapsedSec >= mqttClient.timeout {
			logrus.Errorf("MqttClient.Connect: Connecting to %s failed: %s. Giving up", brokerURL, err)
			break
		}
		logrus.Errorf("MqttClient.Connect: Connecting to %s failed: %s. Retrying in %d seconds",
			brokerURL, err, retryDelaySec)
		time.Sleep(time.Duration(retryDelaySec) * time.Second)
		elapsedSec += retryDelaySec
		if retryDelaySec < 120 {
			retryDelaySec++
		}
	}
	return err
}

// ConnectWithPassword connects to the MQTT endpoint using password authentication
//
//	clientID to connect as. Use "" to generate one from the hostname
//	username to identify as
//	password credentials to identify with
func (mqttClient *MqttClient) ConnectWithPassword(clientID string, username string, password string) error {
	return mqttClient.Connect(clientID, username, password, nil)
}

// ConnectWithClientCert connects to the MQTT endpoint using mutual TLS with
// the device certificate, the norm for device connections.
//
//	clientID to connect as, usually the thing name
//	certFile with the device certificate in PEM format
//	keyFile with the device private key in PEM format
func (mqttClient *MqttClient) ConnectWithClientCert(clientID string, certFile string, keyFile string) error {
	logrus.Infof("MqttClient.ConnectWithClientCert: clientID='%s'", clientID)

	if certFile == "" || keyFile == "" {
		// no authentication, this will likely be rejected by the endpoint
		return mqttClient.Connect(clientID, "", "", nil)
	}
	clientCert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		logrus.Errorf("MqttClient.ConnectWithClientCert: Error loading certificate: %s", err)
		return err
	}
	return mqttClient.Connect(clientID, "", "", &clientCert)
}

// Close the connection to the MQTT endpoint.
// Pending subscribe tokens resolve with an error, registered subscriptions are
// dropped.
func (mqttClient *MqttClient) Close() {
	mqttClient.updateMutex.Lock()
	for _, subscription := range mqttClient.subscriptions {
		if subscription.token != nil {
			subscription.token.complete(subscription.qos, api.ErrConnectionClosed)
			subscription.token = nil
		}
	}
	mqttClient.subscriptions = make(map[string]*topicSubscription)
	pahoClient := mqttClient.pahoClient
	mqttClient.pahoClient = nil
	mqttClient.updateMutex.Unlock()

	if pahoClient != nil {
		opts := pahoClient.OptionsReader()
		logrus.Warningf("MqttClient.Close: Disconnecting client %s", opts.ClientID())
		// disconnect doesn't wait for all messages, a small delay ahead helps
		time.Sleep(time.Second / 10)
		pahoClient.Disconnect(DefaultTimeoutSec * 1000)
	}
}

// Publish a message to a topic.
// Requests made while the connection is down fail immediately with
// api.ErrNotConnected on the token. QoS 2 is not supported and is never
// downgraded, such requests fail with api.ErrInvalidQos.
func (mqttClient *MqttClient) Publish(topic string, payload []byte, qos byte) api.IPublishToken {
	if qos > api.QosAtLeastOnce {
		return newFailedPublishToken(api.ErrInvalidQos)
	}
	if topic == "" {
		return newFailedPublishToken(api.ErrEmptyTopic)
	}
	mqttClient.updateMutex.Lock()
	pahoClient := mqttClient.pahoClient
	mqttClient.updateMutex.Unlock()
	if pahoClient == nil || !pahoClient.IsConnected() {
		logrus.Warningf("MqttClient.Publish: Unable to publish on %s. No connection with the endpoint", topic)
		return newFailedPublishToken(api.ErrNotConnected)
	}
	logrus.Infof("MqttClient.Publish: topic=%s, qos=%d", topic, qos)
	pahoToken := pahoClient.Publish(topic, qos, false, payload)
	return &pahoPublishToken{pahoTokenAdapter{inner: pahoToken}}
}

// Subscribe a handler to a topic filter.
// A second subscribe to the same filter replaces the handler. When the
// connection is down the subscription is registered and made on the next
// (re)connect; the returned token resolves once the broker acknowledged it.
func (mqttClient *MqttClient) Subscribe(topic string, qos byte, handler api.MessageHandler) api.ISubscribeToken {
	if qos > api.QosAtLeastOnce {
		return newFailedSubscribeToken(topic, api.ErrInvalidQos)
	}
	if topic == "" {
		return newFailedSubscribeToken(topic, api.ErrEmptyTopic)
	}
	logrus.Infof("MqttClient.Subscribe: topic=%s, qos=%d", topic, qos)

	mqttClient.updateMutex.Lock()
	defer mqttClient.updateMutex.Unlock()

	subscription := &topicSubscription{topic: topic, qos: qos, handler: handler}
	if previous := mqttClient.subscriptions[topic]; previous != nil && previous.token != nil {
		previous.token.complete(qos, errSubscriptionCancelled)
	}
	mqttClient.subscriptions[topic] = subscription

	if mqttClient.pahoClient != nil && mqttClient.pahoClient.IsConnected() {
		pahoToken := mqttClient.pahoClient.Subscribe(topic, qos, mqttClient.messageAdapter(handler))
		return &pahoSubscribeToken{pahoTokenAdapter{inner: pahoToken}, topic, qos}
	}
	token := newDeferredSubscribeToken(topic, qos)
	subscription.token = token
	return token
}

// Unsubscribe a topic filter.
// A pending subscription that never reached the broker is cancelled.
func (mqttClient *MqttClient) Unsubscribe(topic string) api.IMqttToken {
	logrus.Infof("MqttClient.Unsubscribe: topic=%s", topic)

	mqttClient.updateMutex.Lock()
	defer mqttClient.updateMutex.Unlock()

	subscription := mqttClient.subscriptions[topic]
	if subscription == nil {
		logrus.Warningf("MqttClient.Unsubscribe: Subscription on topic %s didn't exist. Ignored", topic)
		return newCompletedToken(nil)
	}
	if subscription.token != nil {
		subscription.token.complete(subscription.qos, errSubscriptionCancelled)
		subscription.token = nil
	}
	delete(mqttClient.subscriptions, topic)

	if mqttClient.pahoClient != nil && mqttClient.pahoClient.IsConnected() {
		pahoToken := mqttClient.pahoClient.Unsubscribe(topic)
		return &pahoTokenAdapter{inner: pahoToken}
	}
	return newCompletedToken(nil)
}

// messageAdapter hands received messages to a subscription handler
func (mqttClient *MqttClient) messageAdapter(handler api.MessageHandler) pahomqtt.MessageHandler {
	return func(client pahomqtt.Client, msg pahomqtt.Message) {
		logrus.Infof("MqttClient.onMessage: topic=%s", msg.Topic())
		handler(msg.Topic(), msg.Payload())
	}
}

// resubscribe to registered topics after establishing a connection.
// The application can subscribe before the connection is established, and the
// broker drops subscriptions on disconnect as the session is clean.
func (mqttClient *MqttClient) resubscribe() {
	mqttClient.updateMutex.Lock()
	defer mqttClient.updateMutex.Unlock()

	// a connect can still fire while Close is underway
	if mqttClient.pahoClient == nil {
		return
	}
	logrus.Infof("MqttClient.resubscribe: Restoring %d subscriptions", len(mqttClient.subscriptions))
	for topic, subscription := range mqttClient.subscriptions {
		// clear a previous registration in case it is still there
		mqttClient.pahoClient.Unsubscribe(topic)

		logrus.Debugf("MqttClient.resubscribe: topic=%s", topic)
		pahoToken := mqttClient.pahoClient.Subscribe(
			topic, subscription.qos, mqttClient.messageAdapter(subscription.handler))
		if subscription.token != nil {
			go resolveDeferred(subscription.token, pahoToken)
			subscription.token = nil
		}
	}
}

// resolveDeferred completes a deferred subscribe token once the broker ack arrives
func resolveDeferred(deferred *deferredSubscribeToken, pahoToken pahomqtt.Token) {
	pahoToken.Wait()
	granted := deferred.requestedQos
	if subToken, ok := pahoToken.(*pahomqtt.SubscribeToken); ok {
		if qos, found := subToken.Result()[deferred.topic]; found {
			granted = qos
		}
	}
	deferred.complete(granted, pahoToken.Error())
}

// NewMqttClient creates a new MQTT connection instance.
// Use ConnectWithClientCert or ConnectWithPassword to connect, Close when done.
// To avoid hanging keep the timeout low. If 0 is provided the default of 3
// seconds is used.
//
//	hostPort of the endpoint to connect to
//	caCertFile is a PEM file with the CA that signed the endpoint certificate
//	timeoutSec to attempt connecting before it is considered failed
func NewMqttClient(hostPort string, caCertFile string, timeoutSec int) *MqttClient {
	if timeoutSec <= 0 {
		timeoutSec = DefaultTimeoutSec
	}
	mqttClient := &MqttClient{
		hostPort:      hostPort,
		timeout:       timeoutSec,
		subscriptions: make(map[string]*topicSubscription),
		tlsCACertFile: caCertFile,
		// without a CA file the system root pool verifies the endpoint
		tlsVerifyServerCert: true,
		updateMutex:         &sync.Mutex{},
	}
	return mqttClient
}
