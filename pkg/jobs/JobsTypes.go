// Package jobs with the client for the jobs service. Jobs are remote
// operations, eg a firmware update, that the service queues per thing.
// A device fetches its pending executions, starts the next one and reports
// progress until the execution reaches a terminal status.
package jobs

import "fmt"

// JobStatus of a job execution
type JobStatus string

// Job execution statuses. A device moves an execution from QUEUED through
// IN_PROGRESS to one of the terminal statuses.
const (
	JobStatusQueued     JobStatus = "QUEUED"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusSucceeded  JobStatus = "SUCCEEDED"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusTimedOut   JobStatus = "TIMED_OUT"
	JobStatusRejected   JobStatus = "REJECTED"
	JobStatusRemoved    JobStatus = "REMOVED"
	JobStatusCanceled   JobStatus = "CANCELED"
)

// JobExecutionData describes one job execution in full, including the job
// document with the work to perform
type JobExecutionData struct {
	JobID         string                 `json:"jobId,omitempty"`
	ThingName     string                 `json:"thingName,omitempty"`
	JobDocument   map[string]interface{} `json:"jobDocument,omitempty"`
	Status        JobStatus              `json:"status,omitempty"`
	StatusDetails map[string]string      `json:"statusDetails,omitempty"`
	// QueuedAt, StartedAt and LastUpdatedAt in epoch seconds
	QueuedAt      int64 `json:"queuedAt,omitempty"`
	StartedAt     int64 `json:"startedAt,omitempty"`
	LastUpdatedAt int64 `json:"lastUpdatedAt,omitempty"`
	// VersionNumber increments on each update of the execution
	VersionNumber   int64 `json:"versionNumber,omitempty"`
	ExecutionNumber int64 `json:"executionNumber,omitempty"`
}

// JobExecutionSummary describes one job execution without its document
type JobExecutionSummary struct {
	JobID           string `json:"jobId,omitempty"`
	QueuedAt        int64  `json:"queuedAt,omitempty"`
	StartedAt       int64  `json:"startedAt,omitempty"`
	LastUpdatedAt   int64  `json:"lastUpdatedAt,omitempty"`
	VersionNumber   int64  `json:"versionNumber,omitempty"`
	ExecutionNumber int64  `json:"executionNumber,omitempty"`
}

// JobExecutionState with the mutable part of a job execution
type JobExecutionState struct {
	Status        JobStatus         `json:"status,omitempty"`
	StatusDetails map[string]string `json:"statusDetails,omitempty"`
	VersionNumber int64             `json:"versionNumber,omitempty"`
}

// GetPendingJobExecutionsRequest lists the queued and in-progress
// executions of a thing
type GetPendingJobExecutionsRequest struct {
	ThingName   string `json:"thingName"`
	ClientToken string `json:"clientToken,omitempty"`
}

// TopicParams returns the topic placeholder values
func (request *GetPendingJobExecutionsRequest) TopicParams() map[string]string {
	return map[string]string{"thingName": request.ThingName}
}

// GetPendingJobExecutionsResponse received on jobs/get/accepted
type GetPendingJobExecutionsResponse struct {
	InProgressJobs []JobExecutionSummary `json:"inProgressJobs,omitempty"`
	QueuedJobs     []JobExecutionSummary `json:"queuedJobs,omitempty"`
	Timestamp      int64                 `json:"timestamp,omitempty"`
	ClientToken    string                `json:"clientToken,omitempty"`
}

// StartNextPendingJobExecutionRequest starts the next queued execution and
// marks it IN_PROGRESS in one step
type StartNextPendingJobExecutionRequest struct {
	ThingName     string            `json:"thingName"`
	StatusDetails map[string]string `json:"statusDetails,omitempty"`
	// StepTimeoutInMinutes after which the service times the step out.
	// 0 to keep the job's own timeout.
	StepTimeoutInMinutes int64  `json:"stepTimeoutInMinutes,omitempty"`
	ClientToken          string `json:"clientToken,omitempty"`
}

// TopicParams returns the topic placeholder values
func (request *StartNextPendingJobExecutionRequest) TopicParams() map[string]string {
	return map[string]string{"thingName": request.ThingName}
}

// StartNextJobExecutionResponse received on jobs/start-next/accepted.
// Execution is nil when no execution was queued.
type StartNextJobExecutionResponse struct {
	Execution   *JobExecutionData `json:"execution,omitempty"`
	Timestamp   int64             `json:"timestamp,omitempty"`
	ClientToken string            `json:"clientToken,omitempty"`
}

// DescribeJobExecutionRequest fetches one job execution of a thing.
// JobID can be the id of a job or "$next" for the next queued execution.
type DescribeJobExecutionRequest struct {
	ThingName       string `json:"thingName"`
	JobID           string `json:"jobId"`
	ExecutionNumber int64  `json:"executionNumber,omitempty"`
	// IncludeJobDocument to return the job document with the execution
	IncludeJobDocument bool   `json:"includeJobDocument,omitempty"`
	ClientToken        string `json:"clientToken,omitempty"`
}

// TopicParams returns the topic placeholder values
func (request *DescribeJobExecutionRequest) TopicParams() map[string]string {
	return map[string]string{"thingName": request.ThingName, "jobId": request.JobID}
}

// DescribeJobExecutionResponse received on jobs/{jobId}/get/accepted
type DescribeJobExecutionResponse struct {
	Execution   *JobExecutionData `json:"execution,omitempty"`
	Timestamp   int64             `json:"timestamp,omitempty"`
	ClientToken string            `json:"clientToken,omitempty"`
}

// UpdateJobExecutionRequest reports progress or the final status of a job
// execution
type UpdateJobExecutionRequest struct {
	ThingName     string            `json:"thingName"`
	JobID         string            `json:"jobId"`
	Status        JobStatus         `json:"status"`
	StatusDetails map[string]string `json:"statusDetails,omitempty"`
	// ExpectedVersion the update applies to. The service rejects the
	// update if the execution was changed elsewhere. 0 to skip the check.
	ExpectedVersion int64 `json:"expectedVersion,omitempty"`
	ExecutionNumber int64 `json:"executionNumber,omitempty"`
	// IncludeJobExecutionState to receive the resulting state in the response
	IncludeJobExecutionState bool `json:"includeJobExecutionState,omitempty"`
	// IncludeJobDocument to receive the job document in the response
	IncludeJobDocument   bool   `json:"includeJobDocument,omitempty"`
	StepTimeoutInMinutes int64  `json:"stepTimeoutInMinutes,omitempty"`
	ClientToken          string `json:"clientToken,omitempty"`
}

// TopicParams returns the topic placeholder values
func (request *UpdateJobExecutionRequest) TopicParams() map[string]string {
	return map[string]string{"thingName": request.ThingName, "jobId": request.JobID}
}

// UpdateJobExecutionResponse received on jobs/{jobId}/update/accepted
type UpdateJobExecutionResponse struct {
	ExecutionState *JobExecutionState     `json:"executionState,omitempty"`
	JobDocument    map[string]interface{} `json:"jobDocument,omitempty"`
	Timestamp      int64                  `json:"timestamp,omitempty"`
	ClientToken    string                 `json:"clientToken,omitempty"`
}

// RejectedError is sent by the jobs service on the rejected topics
type RejectedError struct {
	ClientToken string `json:"clientToken,omitempty"`
	// Code with the failure code, eg "InvalidRequest" or "VersionMismatch"
	Code string `json:"code"`
	// Message describing the failure
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp,omitempty"`
	// ExecutionState of the execution at the time of rejection, if any
	ExecutionState *JobExecutionState `json:"executionState,omitempty"`
}

// Error makes a rejected response usable as a Go error
func (response *RejectedError) Error() string {
	return fmt.Sprintf("jobs service error %s: %s", response.Code, response.Message)
}

// JobExecutionsChangedEvent is sent on jobs/notify when the set of pending
// executions of the thing changed. Jobs maps each status to its executions.
type JobExecutionsChangedEvent struct {
	Jobs      map[JobStatus][]JobExecutionSummary `json:"jobs,omitempty"`
	Timestamp int64                               `json:"timestamp,omitempty"`
}

// NextJobExecutionChangedEvent is sent on jobs/notify-next when the next
// queued execution changed. A nil Execution means the queue is empty.
type NextJobExecutionChangedEvent struct {
	Execution *JobExecutionData `json:"execution,omitempty"`
	Timestamp int64             `json:"timestamp,omitempty"`
}

// JobsSubscriptionRequest parameterizes the thing-level subscription
// topics. Subscription requests are never serialized.
type JobsSubscriptionRequest struct {
	ThingName string
}

// TopicParams returns the topic placeholder values
func (request *JobsSubscriptionRequest) TopicParams() map[string]string {
	return map[string]string{"thingName": request.ThingName}
}

// JobExecutionSubscriptionRequest parameterizes the per-job subscription
// topics. JobID can be a job id, "$next", or "+" for all jobs.
type JobExecutionSubscriptionRequest struct {
	ThingName string
	JobID     string
}

// TopicParams returns the topic placeholder values
func (request *JobExecutionSubscriptionRequest) TopicParams() map[string]string {
	return map[string]string{"thingName": request.ThingName, "jobId": request.JobID}
}
