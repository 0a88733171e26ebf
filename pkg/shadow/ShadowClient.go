package shadow

import (
	"github.com/giftedunicorn/aws-iot-device-sdk-go/api"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/serviceclient"
)

// MQTT topics of the shadow service. The named shadow topics insert
// "name/{shadowName}" between the shadow root and the operation.
const (
	TopicShadowRoot      = "$aws/things/{thingName}/shadow"
	TopicNamedShadowRoot = TopicShadowRoot + "/name/{shadowName}"

	// classic shadow
	TopicGet             = TopicShadowRoot + "/get"
	TopicGetAccepted     = TopicShadowRoot + "/get/accepted"
	TopicGetRejected     = TopicShadowRoot + "/get/rejected"
	TopicUpdate          = TopicShadowRoot + "/update"
	TopicUpdateAccepted  = TopicShadowRoot + "/update/accepted"
	TopicUpdateRejected  = TopicShadowRoot + "/update/rejected"
	TopicUpdateDelta     = TopicShadowRoot + "/update/delta"
	TopicUpdateDocuments = TopicShadowRoot + "/update/documents"
	TopicDelete          = TopicShadowRoot + "/delete"
	TopicDeleteAccepted  = TopicShadowRoot + "/delete/accepted"
	TopicDeleteRejected  = TopicShadowRoot + "/delete/rejected"

	// named shadows
	TopicNamedGet             = TopicNamedShadowRoot + "/get"
	TopicNamedGetAccepted     = TopicNamedShadowRoot + "/get/accepted"
	TopicNamedGetRejected     = TopicNamedShadowRoot + "/get/rejected"
	TopicNamedUpdate          = TopicNamedShadowRoot + "/update"
	TopicNamedUpdateAccepted  = TopicNamedShadowRoot + "/update/accepted"
	TopicNamedUpdateRejected  = TopicNamedShadowRoot + "/update/rejected"
	TopicNamedUpdateDelta     = TopicNamedShadowRoot + "/update/delta"
	TopicNamedUpdateDocuments = TopicNamedShadowRoot + "/update/documents"
	TopicNamedDelete          = TopicNamedShadowRoot + "/delete"
	TopicNamedDeleteAccepted  = TopicNamedShadowRoot + "/delete/accepted"
	TopicNamedDeleteRejected  = TopicNamedShadowRoot + "/delete/rejected"
)

// operation descriptors, one per topic
var (
	opGetShadow         = serviceclient.PublishOperation[*GetShadowRequest]{Name: "PublishGetShadow", Template: TopicGet}
	opGetNamedShadow    = serviceclient.PublishOperation[*GetNamedShadowRequest]{Name: "PublishGetNamedShadow", Template: TopicNamedGet}
	opUpdateShadow      = serviceclient.PublishOperation[*UpdateShadowRequest]{Name: "PublishUpdateShadow", Template: TopicUpdate}
	opUpdateNamedShadow = serviceclient.PublishOperation[*UpdateNamedShadowRequest]{Name: "PublishUpdateNamedShadow", Template: TopicNamedUpdate}
	opDeleteShadow      = serviceclient.PublishOperation[*DeleteShadowRequest]{Name: "PublishDeleteShadow", Template: TopicDelete}
	opDeleteNamedShadow = serviceclient.PublishOperation[*DeleteNamedShadowRequest]{Name: "PublishDeleteNamedShadow", Template: TopicNamedDelete}

	opGetShadowAccepted    = serviceclient.SubscribeOperation[*ShadowSubscriptionRequest, GetShadowResponse]{Name: "SubscribeToGetShadowAccepted", Template: TopicGetAccepted}
	opGetShadowRejected    = serviceclient.SubscribeOperation[*ShadowSubscriptionRequest, ErrorResponse]{Name: "SubscribeToGetShadowRejected", Template: TopicGetRejected}
	opUpdateShadowAccepted = serviceclient.SubscribeOperation[*ShadowSubscriptionRequest, UpdateShadowResponse]{Name: "SubscribeToUpdateShadowAccepted", Template: TopicUpdateAccepted}
	opUpdateShadowRejected = serviceclient.SubscribeOperation[*ShadowSubscriptionRequest, ErrorResponse]{Name: "SubscribeToUpdateShadowRejected", Template: TopicUpdateRejected}
	opDeleteShadowAccepted = serviceclient.SubscribeOperation[*ShadowSubscriptionRequest, DeleteShadowResponse]{Name: "SubscribeToDeleteShadowAccepted", Template: TopicDeleteAccepted}
	opDeleteShadowRejected = serviceclient.SubscribeOperation[*ShadowSubscriptionRequest, ErrorResponse]{Name: "SubscribeToDeleteShadowRejected", Template: TopicDeleteRejected}
	opShadowDeltaUpdated   = serviceclient.SubscribeOperation[*ShadowSubscriptionRequest, ShadowDeltaUpdatedEvent]{Name: "SubscribeToShadowDeltaUpdatedEvents", Template: TopicUpdateDelta}
	opShadowUpdated        = serviceclient.SubscribeOperation[*ShadowSubscriptionRequest, ShadowUpdatedEvent]{Name: "SubscribeToShadowUpdatedEvents", Template: TopicUpdateDocuments}

	opGetNamedShadowAccepted    = serviceclient.SubscribeOperation[*NamedShadowSubscriptionRequest, GetShadowResponse]{Name: "SubscribeToGetNamedShadowAccepted", Template: TopicNamedGetAccepted}
	opGetNamedShadowRejected    = serviceclient.SubscribeOperation[*NamedShadowSubscriptionRequest, ErrorResponse]{Name: "SubscribeToGetNamedShadowRejected", Template: TopicNamedGetRejected}
	opUpdateNamedShadowAccepted = serviceclient.SubscribeOperation[*NamedShadowSubscriptionRequest, UpdateShadowResponse]{Name: "SubscribeToUpdateNamedShadowAccepted", Template: TopicNamedUpdateAccepted}
	opUpdateNamedShadowRejected = serviceclient.SubscribeOperation[*NamedShadowSubscriptionRequest, ErrorResponse]{Name: "SubscribeToUpdateNamedShadowRejected", Template: TopicNamedUpdateRejected}
	opDeleteNamedShadowAccepted = serviceclient.SubscribeOperation[*NamedShadowSubscriptionRequest, DeleteShadowResponse]{Name: "SubscribeToDeleteNamedShadowAccepted", Template: TopicNamedDeleteAccepted}
	opDeleteNamedShadowRejected = serviceclient.SubscribeOperation[*NamedShadowSubscriptionRequest, ErrorResponse]{Name: "SubscribeToDeleteNamedShadowRejected", Template: TopicNamedDeleteRejected}
	opNamedShadowDeltaUpdated   = serviceclient.SubscribeOperation[*NamedShadowSubscriptionRequest, ShadowDeltaUpdatedEvent]{Name: "SubscribeToNamedShadowDeltaUpdatedEvents", Template: TopicNamedUpdateDelta}
	opNamedShadowUpdated        = serviceclient.SubscribeOperation[*NamedShadowSubscriptionRequest, ShadowUpdatedEvent]{Name: "SubscribeToNamedShadowUpdatedEvents", Template: TopicNamedUpdateDocuments}
)

// ShadowClient publishes shadow requests and subscribes handlers to the
// response and event topics of the shadow service.
// The client does not wait for responses itself: a get or update is a
// publish whose accepted, rejected and delta messages arrive on the
// subscription topics. Subscribe before publishing to not miss them.
type ShadowClient struct {
	conn api.IMqttConnection
}

// NewShadowClient creates a shadow service client on an established
// connection. The connection remains owned by the caller.
func NewShadowClient(conn api.IMqttConnection) *ShadowClient {
	return &ShadowClient{conn: conn}
}

// PublishGetShadow requests the classic shadow document of a thing.
// The service replies on the get/accepted or get/rejected topic.
//
//	request identifies the thing, and optionally carries a client token
//	 to correlate the response
//	qos api.QosAtMostOnce or api.QosAtLeastOnce
//
// Returns an error if the topic or payload cannot be built. Transport
// failures are reported through the token.
func (client *ShadowClient) PublishGetShadow(
	request *GetShadowRequest, qos byte) (api.IPublishToken, error) {
	return opGetShadow.Publish(client.conn, request, qos)
}

// PublishGetNamedShadow requests a named shadow document of a thing
func (client *ShadowClient) PublishGetNamedShadow(
	request *GetNamedShadowRequest, qos byte) (api.IPublishToken, error) {
	return opGetNamedShadow.Publish(client.conn, request, qos)
}

// PublishUpdateShadow updates the desired or reported state of the classic
// shadow. Keys absent from the request state are left untouched, keys with
// a null value are removed. The service replies on update/accepted or
// update/rejected and fans out update/delta and update/documents events.
func (client *ShadowClient) PublishUpdateShadow(
	request *UpdateShadowRequest, qos byte) (api.IPublishToken, error) {
	return opUpdateShadow.Publish(client.conn, request, qos)
}

// PublishUpdateNamedShadow updates the state of a named shadow
func (client *ShadowClient) PublishUpdateNamedShadow(
	request *UpdateNamedShadowRequest, qos byte) (api.IPublishToken, error) {
	return opUpdateNamedShadow.Publish(client.conn, request, qos)
}

// PublishDeleteShadow deletes the classic shadow document of a thing.
// The service replies on delete/accepted or delete/rejected.
func (client *ShadowClient) PublishDeleteShadow(
	request *DeleteShadowRequest, qos byte) (api.IPublishToken, error) {
	return opDeleteShadow.Publish(client.conn, request, qos)
}

// PublishDeleteNamedShadow deletes a named shadow document of a thing
func (client *ShadowClient) PublishDeleteNamedShadow(
	request *DeleteNamedShadowRequest, qos byte) (api.IPublishToken, error) {
	return opDeleteNamedShadow.Publish(client.conn, request, qos)
}

// SubscribeToGetShadowAccepted subscribes a handler to the response topic
// of accepted get requests.
// Messages can reach the handler before the returned token resolves.
//
//	request identifies the thing whose topic to subscribe to
//	qos api.QosAtMostOnce or api.QosAtLeastOnce
//	handler invoked with the response, or with an error envelope when a
//	 message cannot be decoded
func (client *ShadowClient) SubscribeToGetShadowAccepted(
	request *ShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[GetShadowResponse]) (api.ISubscribeToken, error) {
	return opGetShadowAccepted.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToGetShadowRejected subscribes a handler to the response topic
// of rejected get requests
func (client *ShadowClient) SubscribeToGetShadowRejected(
	request *ShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[ErrorResponse]) (api.ISubscribeToken, error) {
	return opGetShadowRejected.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToUpdateShadowAccepted subscribes a handler to the response
// topic of accepted update requests
func (client *ShadowClient) SubscribeToUpdateShadowAccepted(
	request *ShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[UpdateShadowResponse]) (api.ISubscribeToken, error) {
	return opUpdateShadowAccepted.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToUpdateShadowRejected subscribes a handler to the response
// topic of rejected update requests
func (client *ShadowClient) SubscribeToUpdateShadowRejected(
	request *ShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[ErrorResponse]) (api.ISubscribeToken, error) {
	return opUpdateShadowRejected.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToDeleteShadowAccepted subscribes a handler to the response
// topic of accepted delete requests
func (client *ShadowClient) SubscribeToDeleteShadowAccepted(
	request *ShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[DeleteShadowResponse]) (api.ISubscribeToken, error) {
	return opDeleteShadowAccepted.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToDeleteShadowRejected subscribes a handler to the response
// topic of rejected delete requests
func (client *ShadowClient) SubscribeToDeleteShadowRejected(
	request *ShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[ErrorResponse]) (api.ISubscribeToken, error) {
	return opDeleteShadowRejected.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToShadowDeltaUpdatedEvents subscribes a handler to the delta
// events of the classic shadow. A delta is sent whenever desired and
// reported state differ, with only the differing keys.
func (client *ShadowClient) SubscribeToShadowDeltaUpdatedEvents(
	request *ShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[ShadowDeltaUpdatedEvent]) (api.ISubscribeToken, error) {
	return opShadowDeltaUpdated.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToShadowUpdatedEvents subscribes a handler to the document
// events of the classic shadow, sent after each accepted update with the
// previous and current document
func (client *ShadowClient) SubscribeToShadowUpdatedEvents(
	request *ShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[ShadowUpdatedEvent]) (api.ISubscribeToken, error) {
	return opShadowUpdated.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToGetNamedShadowAccepted subscribes a handler to the response
// topic of accepted named shadow get requests
func (client *ShadowClient) SubscribeToGetNamedShadowAccepted(
	request *NamedShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[GetShadowResponse]) (api.ISubscribeToken, error) {
	return opGetNamedShadowAccepted.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToGetNamedShadowRejected subscribes a handler to the response
// topic of rejected named shadow get requests
func (client *ShadowClient) SubscribeToGetNamedShadowRejected(
	request *NamedShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[ErrorResponse]) (api.ISubscribeToken, error) {
	return opGetNamedShadowRejected.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToUpdateNamedShadowAccepted subscribes a handler to the
// response topic of accepted named shadow update requests
func (client *ShadowClient) SubscribeToUpdateNamedShadowAccepted(
	request *NamedShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[UpdateShadowResponse]) (api.ISubscribeToken, error) {
	return opUpdateNamedShadowAccepted.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToUpdateNamedShadowRejected subscribes a handler to the
// response topic of rejected named shadow update requests
func (client *ShadowClient) SubscribeToUpdateNamedShadowRejected(
	request *NamedShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[ErrorResponse]) (api.ISubscribeToken, error) {
	return opUpdateNamedShadowRejected.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToDeleteNamedShadowAccepted subscribes a handler to the
// response topic of accepted named shadow delete requests
func (client *ShadowClient) SubscribeToDeleteNamedShadowAccepted(
	request *NamedShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[DeleteShadowResponse]) (api.ISubscribeToken, error) {
	return opDeleteNamedShadowAccepted.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToDeleteNamedShadowRejected subscribes a handler to the
// response topic of rejected named shadow delete requests
func (client *ShadowClient) SubscribeToDeleteNamedShadowRejected(
	request *NamedShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[ErrorResponse]) (api.ISubscribeToken, error) {
	return opDeleteNamedShadowRejected.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToNamedShadowDeltaUpdatedEvents subscribes a handler to the
// delta events of a named shadow
func (client *ShadowClient) SubscribeToNamedShadowDeltaUpdatedEvents(
	request *NamedShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[ShadowDeltaUpdatedEvent]) (api.ISubscribeToken, error) {
	return opNamedShadowDeltaUpdated.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToNamedShadowUpdatedEvents subscribes a handler to the document
// events of a named shadow
func (client *ShadowClient) SubscribeToNamedShadowUpdatedEvents(
	request *NamedShadowSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[ShadowUpdatedEvent]) (api.ISubscribeToken, error) {
	return opNamedShadowUpdated.Subscribe(client.conn, request, qos, handler)
}
