package jobs

import (
	"github.com/giftedunicorn/aws-iot-device-sdk-go/api"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/serviceclient"
)

// MQTT topics of the jobs service
const (
	TopicJobsRoot = "$aws/things/{thingName}/jobs"

	TopicGetPending          = TopicJobsRoot + "/get"
	TopicGetPendingAccepted  = TopicJobsRoot + "/get/accepted"
	TopicGetPendingRejected  = TopicJobsRoot + "/get/rejected"
	TopicStartNext           = TopicJobsRoot + "/start-next"
	TopicStartNextAccepted   = TopicJobsRoot + "/start-next/accepted"
	TopicStartNextRejected   = TopicJobsRoot + "/start-next/rejected"
	TopicDescribeJob         = TopicJobsRoot + "/{jobId}/get"
	TopicDescribeJobAccepted = TopicJobsRoot + "/{jobId}/get/accepted"
	TopicDescribeJobRejected = TopicJobsRoot + "/{jobId}/get/rejected"
	TopicUpdateJob           = TopicJobsRoot + "/{jobId}/update"
	TopicUpdateJobAccepted   = TopicJobsRoot + "/{jobId}/update/accepted"
	TopicUpdateJobRejected   = TopicJobsRoot + "/{jobId}/update/rejected"
	TopicNotify              = TopicJobsRoot + "/notify"
	TopicNotifyNext          = TopicJobsRoot + "/notify-next"
)

// operation descriptors, one per topic
var (
	opGetPending = serviceclient.PublishOperation[*GetPendingJobExecutionsRequest]{Name: "PublishGetPendingJobExecutions", Template: TopicGetPending}
	opStartNext  = serviceclient.PublishOperation[*StartNextPendingJobExecutionRequest]{Name: "PublishStartNextPendingJobExecution", Template: TopicStartNext}
	opDescribe   = serviceclient.PublishOperation[*DescribeJobExecutionRequest]{Name: "PublishDescribeJobExecution", Template: TopicDescribeJob}
	opUpdate     = serviceclient.PublishOperation[*UpdateJobExecutionRequest]{Name: "PublishUpdateJobExecution", Template: TopicUpdateJob}

	opGetPendingAccepted = serviceclient.SubscribeOperation[*JobsSubscriptionRequest, GetPendingJobExecutionsResponse]{Name: "SubscribeToGetPendingJobExecutionsAccepted", Template: TopicGetPendingAccepted}
	opGetPendingRejected = serviceclient.SubscribeOperation[*JobsSubscriptionRequest, RejectedError]{Name: "SubscribeToGetPendingJobExecutionsRejected", Template: TopicGetPendingRejected}
	opStartNextAccepted  = serviceclient.SubscribeOperation[*JobsSubscriptionRequest, StartNextJobExecutionResponse]{Name: "SubscribeToStartNextPendingJobExecutionAccepted", Template: TopicStartNextAccepted}
	opStartNextRejected  = serviceclient.SubscribeOperation[*JobsSubscriptionRequest, RejectedError]{Name: "SubscribeToStartNextPendingJobExecutionRejected", Template: TopicStartNextRejected}
	opDescribeAccepted   = serviceclient.SubscribeOperation[*JobExecutionSubscriptionRequest, DescribeJobExecutionResponse]{Name: "SubscribeToDescribeJobExecutionAccepted", Template: TopicDescribeJobAccepted}
	opDescribeRejected   = serviceclient.SubscribeOperation[*JobExecutionSubscriptionRequest, RejectedError]{Name: "SubscribeToDescribeJobExecutionRejected", Template: TopicDescribeJobRejected}
	opUpdateAccepted     = serviceclient.SubscribeOperation[*JobExecutionSubscriptionRequest, UpdateJobExecutionResponse]{Name: "SubscribeToUpdateJobExecutionAccepted", Template: TopicUpdateJobAccepted}
	opUpdateRejected     = serviceclient.SubscribeOperation[*JobExecutionSubscriptionRequest, RejectedError]{Name: "SubscribeToUpdateJobExecutionRejected", Template: TopicUpdateJobRejected}
	opNotify             = serviceclient.SubscribeOperation[*JobsSubscriptionRequest, JobExecutionsChangedEvent]{Name: "SubscribeToJobExecutionsChangedEvents", Template: TopicNotify}
	opNotifyNext         = serviceclient.SubscribeOperation[*JobsSubscriptionRequest, NextJobExecutionChangedEvent]{Name: "SubscribeToNextJobExecutionChangedEvents", Template: TopicNotifyNext}
)

// JobsClient publishes job requests and subscribes handlers to the
// response and notification topics of the jobs service.
// The usual device loop subscribes to notify-next, starts the next pending
// execution and updates its status until it is terminal.
type JobsClient struct {
	conn api.IMqttConnection
}

// NewJobsClient creates a jobs service client on an established connection.
// The connection remains owned by the caller.
func NewJobsClient(conn api.IMqttConnection) *JobsClient {
	return &JobsClient{conn: conn}
}

// PublishGetPendingJobExecutions requests the lists of queued and
// in-progress executions for a thing. The service replies on the
// jobs get/accepted or get/rejected topic.
//
//	request identifies the thing, and optionally carries a client token
//	qos api.QosAtMostOnce or api.QosAtLeastOnce
//
// Returns an error if the topic or payload cannot be built. Transport
// failures are reported through the token.
func (client *JobsClient) PublishGetPendingJobExecutions(
	request *GetPendingJobExecutionsRequest, qos byte) (api.IPublishToken, error) {
	return opGetPending.Publish(client.conn, request, qos)
}

// PublishStartNextPendingJobExecution starts the next queued execution,
// marking it IN_PROGRESS. The response carries the execution with its job
// document, or no execution when the queue is empty.
func (client *JobsClient) PublishStartNextPendingJobExecution(
	request *StartNextPendingJobExecutionRequest, qos byte) (api.IPublishToken, error) {
	return opStartNext.Publish(client.conn, request, qos)
}

// PublishDescribeJobExecution requests the details of one job execution
func (client *JobsClient) PublishDescribeJobExecution(
	request *DescribeJobExecutionRequest, qos byte) (api.IPublishToken, error) {
	return opDescribe.Publish(client.conn, request, qos)
}

// PublishUpdateJobExecution reports progress or the final status of a job
// execution
func (client *JobsClient) PublishUpdateJobExecution(
	request *UpdateJobExecutionRequest, qos byte) (api.IPublishToken, error) {
	return opUpdate.Publish(client.conn, request, qos)
}

// SubscribeToGetPendingJobExecutionsAccepted subscribes a handler to the
// response topic of accepted get requests.
// Messages can reach the handler before the returned token resolves.
func (client *JobsClient) SubscribeToGetPendingJobExecutionsAccepted(
	request *JobsSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[GetPendingJobExecutionsResponse]) (api.ISubscribeToken, error) {
	return opGetPendingAccepted.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToGetPendingJobExecutionsRejected subscribes a handler to the
// response topic of rejected get requests
func (client *JobsClient) SubscribeToGetPendingJobExecutionsRejected(
	request *JobsSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[RejectedError]) (api.ISubscribeToken, error) {
	return opGetPendingRejected.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToStartNextPendingJobExecutionAccepted subscribes a handler to
// the response topic of accepted start-next requests
func (client *JobsClient) SubscribeToStartNextPendingJobExecutionAccepted(
	request *JobsSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[StartNextJobExecutionResponse]) (api.ISubscribeToken, error) {
	return opStartNextAccepted.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToStartNextPendingJobExecutionRejected subscribes a handler to
// the response topic of rejected start-next requests
func (client *JobsClient) SubscribeToStartNextPendingJobExecutionRejected(
	request *JobsSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[RejectedError]) (api.ISubscribeToken, error) {
	return opStartNextRejected.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToDescribeJobExecutionAccepted subscribes a handler to the
// response topic of accepted describe requests for the job in the request
func (client *JobsClient) SubscribeToDescribeJobExecutionAccepted(
	request *JobExecutionSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[DescribeJobExecutionResponse]) (api.ISubscribeToken, error) {
	return opDescribeAccepted.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToDescribeJobExecutionRejected subscribes a handler to the
// response topic of rejected describe requests for the job in the request
func (client *JobsClient) SubscribeToDescribeJobExecutionRejected(
	request *JobExecutionSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[RejectedError]) (api.ISubscribeToken, error) {
	return opDescribeRejected.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToUpdateJobExecutionAccepted subscribes a handler to the
// response topic of accepted update requests for the job in the request
func (client *JobsClient) SubscribeToUpdateJobExecutionAccepted(
	request *JobExecutionSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[UpdateJobExecutionResponse]) (api.ISubscribeToken, error) {
	return opUpdateAccepted.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToUpdateJobExecutionRejected subscribes a handler to the
// response topic of rejected update requests for the job in the request
func (client *JobsClient) SubscribeToUpdateJobExecutionRejected(
	request *JobExecutionSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[RejectedError]) (api.ISubscribeToken, error) {
	return opUpdateRejected.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToJobExecutionsChangedEvents subscribes a handler to the notify
// topic, sent whenever a pending execution is added to or removed from the
// thing's queues
func (client *JobsClient) SubscribeToJobExecutionsChangedEvents(
	request *JobsSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[JobExecutionsChangedEvent]) (api.ISubscribeToken, error) {
	return opNotify.Subscribe(client.conn, request, qos, handler)
}

// SubscribeToNextJobExecutionChangedEvents subscribes a handler to the
// notify-next topic, sent whenever the next queued execution changed
func (client *JobsClient) SubscribeToNextJobExecutionChangedEvents(
	request *JobsSubscriptionRequest, qos byte,
	handler serviceclient.EventHandler[NextJobExecutionChangedEvent]) (api.ISubscribeToken, error) {
	return opNotifyNext.Subscribe(client.conn, request, qos, handler)
}
