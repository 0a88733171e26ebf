package identity

import (
	"github.com/giftedunicorn/aws-iot-device-sdk-go/api"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/serviceclient"
)

// MQTT topics of the fleet provisioning service. The certificate creation
// topics are global, only the register topic is parameterized.
const (
	TopicCreateKeysAndCertificate         = "$aws/certificates/create/json"
	TopicCreateKeysAndCertificateAccepted = TopicCreateKeysAndCertificate + "/accepted"
	TopicCreateKeysAndCertificateRejected = TopicCreateKeysAndCertificate + "/rejected"

	TopicCreateCertificateFromCsr         = "$aws/certificates/create-from-csr/json"
	TopicCreateCertificateFromCsrAccepted = TopicCreateCertificateFromCsr + "/accepted"
	TopicCreateCertificateFromCsrRejected = TopicCreateCertificateFromCsr + "/rejected"

	TopicRegisterThing         = "$aws/provisioning-templates/{templateName}/provision/json"
	TopicRegisterThingAccepted = TopicRegisterThing + "/accepted"
	TopicRegisterThingRejected = TopicRegisterThing + "/rejected"
)

// operation descriptors, one per topic
var (
	opCreateKeys    = serviceclient.PublishOperation[*CreateKeysAndCertificateRequest]{Name: "PublishCreateKeysAndCertificate", Template: TopicCreateKeysAndCertificate}
	opCreateFromCsr = serviceclient.PublishOperation[*CreateCertificateFromCsrRequest]{Name: "PublishCreateCertificateFromCsr", Template: TopicCreateCertificateFromCsr}
	opRegisterThing = serviceclient.PublishOperation[*RegisterThingRequest]{Name: "PublishRegisterThing", Template: TopicRegisterThing}

	opCreateKeysAccepted    = serviceclient.SubscribeOperation[*CreateKeysAndCertificateSubscriptionRequest, CreateKeysAndCertificateResponse]{Name: "SubscribeToCreateKeysAndCertificateAccepted", Template: TopicCreateKeysAndCertificateAccepted}
	opCreateKeysRejected    = serviceclient.SubscribeOperation[*CreateKeysAndCertificateSubscriptionRequest, ErrorResponse]{Name: "SubscribeToCreateKeysAndCertificateRejected", Template: TopicCreateKeysAndCertificateRejected}
	opCreateFromCsrAccepted = serviceclient.SubscribeOperation[*CreateCertificateFromCsrSubscriptionRequest, CreateCertificateFromCsrResponse]{Name: "SubscribeToCreateCertificateFromCsrAccepted", Template: TopicCreateCertificateFromCsrAccepted}
	opCreateFromCsrRejected = serviceclient.SubscribeOperation[*CreateCertificateFromCsrSubscriptionRequest, ErrorResponse]{Name: "SubscribeToCreateCertificateFromCsrRejected", Template: TopicCreateCertificateFromCsrRejected}
	opRegisterThingAccepted = serviceclient.SubscribeOperation[*RegisterThingSubscriptionRequest, RegisterThingResponse]{Name: "SubscribeToRegisterThingAccepted", Template: TopicRegisterThingAccepted}
	opRegisterThingRejected = serviceclient.SubscribeOperation[*RegisterThingSubscriptionRequest, ErrorResponse]{Name: "SubscribeToRegisterThingRejected", Template: TopicRegisterThingRejected}
)

// IdentityClient publishes provisioning requests and subscribes handlers
// to the response topics of the fleet provisioning service.
// The provisioning flow is create (keys or CSR), store the returned
// credentials, then register the thing with the ownership token.
type IdentityClient struct {
	conn api.IMqttConnection
}

// NewIdentityClient creates a fleet provisioning client on an established
// connection. The connection is typically authenticated with claim
// credentials and remains owned by the caller.
func NewIdentityClient(conn api.IMqttConnection) *IdentityClient {
	return &IdentityClient{conn: conn}
}

// PublishCreateKeysAndCertificate asks the service to generate and return
// a key pair and certificate. The service replies on the create accepted
// or rejected topic.
//
//	request has no fields, the payload is an empty JSON document
//	qos api.QosAtMostOnce or api.QosAtLeastOnce
func (client *IdentityClient) PublishCreateKeysAndCertificate(
	request *CreateKeysAndCertificateRequest, qos byte) (api.IPublishToken, error) {
	return opCreateKeys.Publish(client.conn, request, qos)
}

// PublishCreateCertificateFromCsr asks the service to sign a certificate
// from the device's CSR, keeping the private key on the device
func (client *IdentityClient) PublishCreateCertificateFromCsr(
	request *CreateCertificateFromCsrRequest, qos byte) (api.IPublishToken, error) {
	return opCreateFromCsr.Publish(client.conn, request, qos)
}

// PublishRegisterThing registers the thing through a provisioning
// template, activating the certificate of the ownership token
func (client *IdentityClient) PublishRegisterThing(
	request *RegisterThingRequest, qos byte) (api.IPublishToken, error) {
	return opRegisterThing.Publish(client.conn, request, qos)
}

// SubscribeToCreateKeysAndCertificateAccepted subscribes a handler to the
// accepted responses of certificate creation.
// Messages can reach the handler before the returned token resolves.
func (client *IdentityClient) SubscribeToCreateKeysAndCertificateAccepted(
	request *CreateKeysAndCertificateSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[CreateKeysAndCertificateResponse]) (api.ISubscribeToken, error) {
	return opCreateKeysAccepted.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToCreateKeysAndCertificateRejected subscribes a handler to the
// rejected responses of certificate creation
func (client *IdentityClient) SubscribeToCreateKeysAndCertificateRejected(
	request *CreateKeysAndCertificateSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[ErrorResponse]) (api.ISubscribeToken, error) {
	return opCreateKeysRejected.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToCreateCertificateFromCsrAccepted subscribes a handler to the
// accepted responses of CSR signing
func (client *IdentityClient) SubscribeToCreateCertificateFromCsrAccepted(
	request *CreateCertificateFromCsrSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[CreateCertificateFromCsrResponse]) (api.ISubscribeToken, error) {
	return opCreateFromCsrAccepted.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToCreateCertificateFromCsrRejected subscribes a handler to the
// rejected responses of CSR signing
func (client *IdentityClient) SubscribeToCreateCertificateFromCsrRejected(
	request *CreateCertificateFromCsrSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[ErrorResponse]) (api.ISubscribeToken, error) {
	return opCreateFromCsrRejected.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToRegisterThingAccepted subscribes a handler to the accepted
// responses of thing registration for the template in the request
func (client *IdentityClient) SubscribeToRegisterThingAccepted(
	request *RegisterThingSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[RegisterThingResponse]) (api.ISubscribeToken, error) {
	return opRegisterThingAccepted.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToRegisterThingRejected subscribes a handler to the rejected
// responses of thing registration for the template in the request
func (client *IdentityClient) SubscribeToRegisterThingRejected(
	request *RegisterThingSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[ErrorResponse]) (api.ISubscribeToken, error) {
	return opRegisterThingRejected.Subscribe(client.conn, request, qos, handler)
}
