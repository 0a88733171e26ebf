// shadow-sample keeps the reported state of a thing shadow in sync with its
// desired state. It subscribes to the delta events, fetches the current
// document and echoes every desired change back as reported state.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/deviceconfig"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/mqttclient"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/serviceclient"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/shadow"
)

func main() {
	config, err := deviceconfig.LoadCommandlineConfig("", "shadow-sample")
	if err != nil {
		logrus.Fatalf("shadow-sample: invalid configuration: %s", err)
	}
	certFile, keyFile, caFile := config.CertFiles()
	qos := byte(config.Qos)

	conn := mqttclient.NewMqttClient(config.HostPort(), caFile, config.Timeout)
	err = conn.ConnectWithClientCert(config.ClientID, certFile, keyFile)
	if err != nil {
		logrus.Fatalf("shadow-sample: unable to connect to %s: %s", config.HostPort(), err)
	}
	defer conn.Close()

	shadowClient := shadow.NewShadowClient(conn)
	subscription := &shadow.ShadowSubscriptionRequest{ThingName: config.ThingName}

	// mirror each desired change back as reported state
	_, err = shadowClient.SubscribeToShadowDeltaUpdatedEvents(subscription, qos,
		func(event *shadow.ShadowDeltaUpdatedEvent, failure *serviceclient.ErrorEnvelope) {
			if failure != nil {
				logrus.Errorf("shadow-sample: delta event failed: %s", failure)
				return
			}
			logrus.Infof("shadow-sample: desired state changed, mirroring %d values (version %d)",
				len(event.State), event.Version)
			request := &shadow.UpdateShadowRequest{
				ThingName:   config.ThingName,
				State:       &shadow.ShadowState{Reported: event.State},
				ClientToken: serviceclient.NewClientToken(),
			}
			shadowClient.PublishUpdateShadow(request, qos)
		})
	if err != nil {
		logrus.Fatalf("shadow-sample: subscribing to delta events failed: %s", err)
	}

	_, err = shadowClient.SubscribeToGetShadowAccepted(subscription, qos,
		func(response *shadow.GetShadowResponse, failure *serviceclient.ErrorEnvelope) {
			if failure != nil {
				logrus.Errorf("shadow-sample: get response failed: %s", failure)
				return
			}
			logrus.Infof("shadow-sample: shadow document at version %d", response.Version)
			if response.State != nil && response.State.Delta != nil {
				request := &shadow.UpdateShadowRequest{
					ThingName:   config.ThingName,
					State:       &shadow.ShadowState{Reported: response.State.Delta},
					ClientToken: serviceclient.NewClientToken(),
				}
				shadowClient.PublishUpdateShadow(request, qos)
			}
		})
	if err != nil {
		logrus.Fatalf("shadow-sample: subscribing to get accepted failed: %s", err)
	}

	_, err = shadowClient.SubscribeToGetShadowRejected(subscription, qos,
		func(response *shadow.ErrorResponse, failure *serviceclient.ErrorEnvelope) {
			if failure != nil {
				logrus.Errorf("shadow-sample: get rejection failed: %s", failure)
				return
			}
			// 404 just means no shadow document exists yet
			logrus.Warningf("shadow-sample: get rejected: %s", response)
		})
	if err != nil {
		logrus.Fatalf("shadow-sample: subscribing to get rejected failed: %s", err)
	}

	// fetch the current document to catch up on offline changes
	getToken, err := shadowClient.PublishGetShadow(&shadow.GetShadowRequest{
		ThingName:   config.ThingName,
		ClientToken: serviceclient.NewClientToken(),
	}, qos)
	if err != nil {
		logrus.Fatalf("shadow-sample: get request failed: %s", err)
	}
	<-getToken.Done()
	if getToken.Error() != nil {
		logrus.Errorf("shadow-sample: get request not delivered: %s", getToken.Error())
	}

	// run until interrupted
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logrus.Infof("shadow-sample: shutting down")
}
