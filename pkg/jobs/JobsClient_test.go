package jobs_test

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/api"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/jobs"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/serviceclient"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/testenv"
)

const testThing = "sensor-7"

func TestJobsTopics(t *testing.T) {
	logrus.Infof("--- TestJobsTopics ---")

	fc := testenv.NewFakeConnection()
	client := jobs.NewJobsClient(fc)

	_, err := client.PublishGetPendingJobExecutions(
		&jobs.GetPendingJobExecutionsRequest{ThingName: testThing}, api.QosAtLeastOnce)
	require.NoError(t, err)
	_, err = client.PublishStartNextPendingJobExecution(
		&jobs.StartNextPendingJobExecutionRequest{ThingName: testThing}, api.QosAtLeastOnce)
	require.NoError(t, err)
	_, err = client.PublishDescribeJobExecution(
		&jobs.DescribeJobExecutionRequest{ThingName: testThing, JobID: "job42"}, api.QosAtLeastOnce)
	require.NoError(t, err)
	_, err = client.PublishUpdateJobExecution(
		&jobs.UpdateJobExecutionRequest{ThingName: testThing, JobID: "job42", Status: jobs.JobStatusInProgress}, api.QosAtLeastOnce)
	require.NoError(t, err)

	records := fc.Published()
	require.Len(t, records, 4)
	assert.Equal(t, "$aws/things/sensor-7/jobs/get", records[0].Topic)
	assert.Equal(t, "$aws/things/sensor-7/jobs/start-next", records[1].Topic)
	assert.Equal(t, "$aws/things/sensor-7/jobs/job42/get", records[2].Topic)
	assert.Equal(t, "$aws/things/sensor-7/jobs/job42/update", records[3].Topic)

	onNotify := func(event *jobs.JobExecutionsChangedEvent, failure *serviceclient.ErrorEnvelope) {}
	token, err := client.SubscribeToJobExecutionsChangedEvents(
		&jobs.JobsSubscriptionRequest{ThingName: testThing}, api.QosAtLeastOnce, onNotify)
	require.NoError(t, err)
	assert.Equal(t, "$aws/things/sensor-7/jobs/notify", token.Subscription().Topic)

	onNotifyNext := func(event *jobs.NextJobExecutionChangedEvent, failure *serviceclient.ErrorEnvelope) {}
	token, err = client.SubscribeToNextJobExecutionChangedEvents(
		&jobs.JobsSubscriptionRequest{ThingName: testThing}, api.QosAtLeastOnce, onNotifyNext)
	require.NoError(t, err)
	assert.Equal(t, "$aws/things/sensor-7/jobs/notify-next", token.Subscription().Topic)
}

func TestUpdateJobExecutionPayload(t *testing.T) {
	logrus.Infof("--- TestUpdateJobExecutionPayload ---")

	fc := testenv.NewFakeConnection()
	client := jobs.NewJobsClient(fc)

	request := &jobs.UpdateJobExecutionRequest{
		ThingName:       testThing,
		JobID:           "job42",
		Status:          jobs.JobStatusSucceeded,
		StatusDetails:   map[string]string{"progress": "100"},
		ExpectedVersion: 3,
		ClientToken:     "token-9",
	}
	_, err := client.PublishUpdateJobExecution(request, api.QosAtLeastOnce)
	require.NoError(t, err)

	records := fc.Published()
	require.Len(t, records, 1)
	assert.JSONEq(t,
		`{"thingName":"sensor-7","jobId":"job42","status":"SUCCEEDED",
		  "statusDetails":{"progress":"100"},"expectedVersion":3,"clientToken":"token-9"}`,
		string(records[0].Payload))
}

func TestStartNextResponseDecoded(t *testing.T) {
	logrus.Infof("--- TestStartNextResponseDecoded ---")

	fc := testenv.NewFakeConnection()
	client := jobs.NewJobsClient(fc)

	var rxMutex sync.Mutex
	var responses []*jobs.StartNextJobExecutionResponse
	_, err := client.SubscribeToStartNextPendingJobExecutionAccepted(
		&jobs.JobsSubscriptionRequest{ThingName: testThing}, api.QosAtLeastOnce,
		func(event *jobs.StartNextJobExecutionResponse, failure *serviceclient.ErrorEnvelope) {
			rxMutex.Lock()
			defer rxMutex.Unlock()
			require.Nil(t, failure)
			responses = append(responses, event)
		})
	require.NoError(t, err)

	payload := `{
		"execution": {
			"jobId": "job42",
			"thingName": "sensor-7",
			"status": "IN_PROGRESS",
			"jobDocument": {"operation": "firmware", "url": "https://example/fw.bin"},
			"queuedAt": 1723400000,
			"startedAt": 1723400100,
			"versionNumber": 2,
			"executionNumber": 1
		},
		"timestamp": 1723400100,
		"clientToken": "tok-3"
	}`
	fc.Deliver("$aws/things/sensor-7/jobs/start-next/accepted", []byte(payload))

	rxMutex.Lock()
	require.Len(t, responses, 1)
	execution := responses[0].Execution
	require.NotNil(t, execution)
	assert.Equal(t, "job42", execution.JobID)
	assert.Equal(t, jobs.JobStatusInProgress, execution.Status)
	assert.Equal(t, "firmware", execution.JobDocument["operation"])
	rxMutex.Unlock()

	// empty queue: the accepted response has no execution
	fc.Deliver("$aws/things/sensor-7/jobs/start-next/accepted", []byte(`{"timestamp":1723400200}`))

	rxMutex.Lock()
	defer rxMutex.Unlock()
	require.Len(t, responses, 2)
	assert.Nil(t, responses[1].Execution)
}

func TestNotifyEventDecoded(t *testing.T) {
	logrus.Infof("--- TestNotifyEventDecoded ---")

	fc := testenv.NewFakeConnection()
	client := jobs.NewJobsClient(fc)

	var rxMutex sync.Mutex
	var events []*jobs.JobExecutionsChangedEvent
	_, err := client.SubscribeToJobExecutionsChangedEvents(
		&jobs.JobsSubscriptionRequest{ThingName: testThing}, api.QosAtLeastOnce,
		func(event *jobs.JobExecutionsChangedEvent, failure *serviceclient.ErrorEnvelope) {
			rxMutex.Lock()
			defer rxMutex.Unlock()
			events = append(events, event)
		})
	require.NoError(t, err)

	payload := `{"jobs":{"QUEUED":[{"jobId":"job43","queuedAt":1723400300,"versionNumber":1}]},"timestamp":1723400300}`
	fc.Deliver("$aws/things/sensor-7/jobs/notify", []byte(payload))

	rxMutex.Lock()
	defer rxMutex.Unlock()
	require.Len(t, events, 1)
	queued := events[0].Jobs[jobs.JobStatusQueued]
	require.Len(t, queued, 1)
	assert.Equal(t, "job43", queued[0].JobID)
}

func TestJobsRejectedError(t *testing.T) {
	logrus.Infof("--- TestJobsRejectedError ---")

	fc := testenv.NewFakeConnection()
	client := jobs.NewJobsClient(fc)

	var rxMutex sync.Mutex
	var rejections []*jobs.RejectedError
	_, err := client.SubscribeToUpdateJobExecutionRejected(
		&jobs.JobExecutionSubscriptionRequest{ThingName: testThing, JobID: "job42"}, api.QosAtLeastOnce,
		func(event *jobs.RejectedError, failure *serviceclient.ErrorEnvelope) {
			rxMutex.Lock()
			defer rxMutex.Unlock()
			require.Nil(t, failure)
			rejections = append(rejections, event)
		})
	require.NoError(t, err)

	payload := `{"code":"VersionMismatch","message":"Expected version 3, have 4","timestamp":1723400400,"clientToken":"token-9"}`
	fc.Deliver("$aws/things/sensor-7/jobs/job42/update/rejected", []byte(payload))

	rxMutex.Lock()
	defer rxMutex.Unlock()
	require.Len(t, rejections, 1)
	assert.Equal(t, "VersionMismatch", rejections[0].Code)
	var asErr error = rejections[0]
	assert.Contains(t, asErr.Error(), "VersionMismatch")
}

// A wildcard job id subscribes to the responses for every job
func TestDescribeWildcardJobID(t *testing.T) {
	logrus.Infof("--- TestDescribeWildcardJobID ---")

	fc := testenv.NewFakeConnection()
	client := jobs.NewJobsClient(fc)

	var rxMutex sync.Mutex
	var responses []*jobs.DescribeJobExecutionResponse
	token, err := client.SubscribeToDescribeJobExecutionAccepted(
		&jobs.JobExecutionSubscriptionRequest{ThingName: testThing, JobID: "+"}, api.QosAtLeastOnce,
		func(event *jobs.DescribeJobExecutionResponse, failure *serviceclient.ErrorEnvelope) {
			rxMutex.Lock()
			defer rxMutex.Unlock()
			responses = append(responses, event)
		})
	require.NoError(t, err)
	assert.Equal(t, "$aws/things/sensor-7/jobs/+/get/accepted", token.Subscription().Topic)

	fc.Deliver("$aws/things/sensor-7/jobs/job42/get/accepted",
		[]byte(`{"execution":{"jobId":"job42","status":"QUEUED"}}`))
	fc.Deliver("$aws/things/sensor-7/jobs/job43/get/accepted",
		[]byte(`{"execution":{"jobId":"job43","status":"QUEUED"}}`))

	rxMutex.Lock()
	defer rxMutex.Unlock()
	require.Len(t, responses, 2)
	assert.Equal(t, "job42", responses[0].Execution.JobID)
	assert.Equal(t, "job43", responses[1].Execution.JobID)
}
