// jobs-sample runs a minimal job worker for a thing. It starts the next
// pending job execution, logs the job document as stand-in for the actual
// work and reports the execution as succeeded. New queued jobs are picked
// up through the notify-next events.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/deviceconfig"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/jobs"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/mqttclient"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/serviceclient"
)

func main() {
	config, err := deviceconfig.LoadCommandlineConfig("", "jobs-sample")
	if err != nil {
		logrus.Fatalf("jobs-sample: invalid configuration: %s", err)
	}
	certFile, keyFile, caFile := config.CertFiles()
	qos := byte(config.Qos)

	conn := mqttclient.NewMqttClient(config.HostPort(), caFile, config.Timeout)
	err = conn.ConnectWithClientCert(config.ClientID, certFile, keyFile)
	if err != nil {
		logrus.Fatalf("jobs-sample: unable to connect to %s: %s", config.HostPort(), err)
	}
	defer conn.Close()

	jobsClient := jobs.NewJobsClient(conn)
	subscription := &jobs.JobsSubscriptionRequest{ThingName: config.ThingName}

	startNext := func() {
		request := &jobs.StartNextPendingJobExecutionRequest{
			ThingName:   config.ThingName,
			ClientToken: serviceclient.NewClientToken(),
		}
		_, err := jobsClient.PublishStartNextPendingJobExecution(request, qos)
		if err != nil {
			logrus.Errorf("jobs-sample: start-next request failed: %s", err)
		}
	}

	// runJob stands in for the actual work. Real devices dispatch on the
	// job document here, eg download and apply a firmware image.
	runJob := func(execution *jobs.JobExecutionData) {
		logrus.Infof("jobs-sample: running job %s with document %v",
			execution.JobID, execution.JobDocument)
		request := &jobs.UpdateJobExecutionRequest{
			ThingName:       config.ThingName,
			JobID:           execution.JobID,
			Status:          jobs.JobStatusSucceeded,
			ExpectedVersion: execution.VersionNumber,
			ClientToken:     serviceclient.NewClientToken(),
		}
		_, err := jobsClient.PublishUpdateJobExecution(request, qos)
		if err != nil {
			logrus.Errorf("jobs-sample: update of job %s failed: %s", execution.JobID, err)
		}
	}

	_, err = jobsClient.SubscribeToStartNextPendingJobExecutionAccepted(subscription, qos,
		func(response *jobs.StartNextJobExecutionResponse, failure *serviceclient.ErrorEnvelope) {
			if failure != nil {
				logrus.Errorf("jobs-sample: start-next response failed: %s", failure)
				return
			}
			if response.Execution == nil {
				logrus.Infof("jobs-sample: no pending jobs, waiting")
				return
			}
			runJob(response.Execution)
		})
	if err != nil {
		logrus.Fatalf("jobs-sample: subscribing to start-next accepted failed: %s", err)
	}

	_, err = jobsClient.SubscribeToStartNextPendingJobExecutionRejected(subscription, qos,
		func(response *jobs.RejectedError, failure *serviceclient.ErrorEnvelope) {
			if failure != nil {
				logrus.Errorf("jobs-sample: start-next rejection failed: %s", failure)
				return
			}
			logrus.Warningf("jobs-sample: start-next rejected: %s", response)
		})
	if err != nil {
		logrus.Fatalf("jobs-sample: subscribing to start-next rejected failed: %s", err)
	}

	// a changed next execution means a new job was queued
	_, err = jobsClient.SubscribeToNextJobExecutionChangedEvents(subscription, qos,
		func(event *jobs.NextJobExecutionChangedEvent, failure *serviceclient.ErrorEnvelope) {
			if failure != nil {
				logrus.Errorf("jobs-sample: notify-next event failed: %s", failure)
				return
			}
			if event.Execution == nil {
				logrus.Infof("jobs-sample: job queue is empty")
				return
			}
			if event.Execution.Status == jobs.JobStatusQueued {
				startNext()
			}
		})
	if err != nil {
		logrus.Fatalf("jobs-sample: subscribing to notify-next events failed: %s", err)
	}

	// kick off the first job if one is already queued
	startNext()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logrus.Infof("jobs-sample: shutting down")
}
