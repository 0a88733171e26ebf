// provision-sample provisions a device through fleet provisioning. It
// connects with the bootstrap claim certificate, requests a device
// certificate and key, registers the thing through a provisioning template
// and stores the returned credentials for use by the other samples.
package main

import (
	"flag"
	"os"
	"path"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/api"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/credstore"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/deviceconfig"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/identity"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/mqttclient"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/serviceclient"
)

// responseTimeout is the time to wait for each provisioning response
const responseTimeout = 30 * time.Second

func main() {
	templateName := flag.String("template", "", "Provisioning template `name`")
	config, err := deviceconfig.LoadCommandlineConfig("", "provision-sample")
	if err != nil {
		logrus.Fatalf("provision-sample: invalid configuration: %s", err)
	}
	if *templateName == "" {
		logrus.Fatalf("provision-sample: missing -template with the provisioning template name")
	}
	certFile, keyFile, caFile := config.CertFiles()
	qos := byte(config.Qos)

	conn := mqttclient.NewMqttClient(config.HostPort(), caFile, config.Timeout)
	err = conn.ConnectWithClientCert(config.ClientID, certFile, keyFile)
	if err != nil {
		logrus.Fatalf("provision-sample: unable to connect to %s: %s", config.HostPort(), err)
	}
	defer conn.Close()

	identityClient := identity.NewIdentityClient(conn)
	createChan := make(chan *identity.CreateKeysAndCertificateResponse, 1)
	registerChan := make(chan *identity.RegisterThingResponse, 1)
	rejectChan := make(chan *identity.ErrorResponse, 2)

	// wait for a subscription to be granted before publishing its request
	wait := func(token api.IMqttToken, err error, what string) {
		if err == nil {
			<-token.Done()
			err = token.Error()
		}
		if err != nil {
			logrus.Fatalf("provision-sample: subscribing to %s failed: %s", what, err)
		}
	}

	createSubscription := &identity.CreateKeysAndCertificateSubscriptionRequest{}
	token, err := identityClient.SubscribeToCreateKeysAndCertificateAccepted(createSubscription, qos,
		func(response *identity.CreateKeysAndCertificateResponse, failure *serviceclient.ErrorEnvelope) {
			if failure != nil {
				logrus.Errorf("provision-sample: create response failed: %s", failure)
				return
			}
			createChan <- response
		})
	wait(token, err, "create accepted")

	token, err = identityClient.SubscribeToCreateKeysAndCertificateRejected(createSubscription, qos,
		func(response *identity.ErrorResponse, failure *serviceclient.ErrorEnvelope) {
			if failure != nil {
				logrus.Errorf("provision-sample: create rejection failed: %s", failure)
				return
			}
			rejectChan <- response
		})
	wait(token, err, "create rejected")

	registerSubscription := &identity.RegisterThingSubscriptionRequest{TemplateName: *templateName}
	token, err = identityClient.SubscribeToRegisterThingAccepted(registerSubscription, qos,
		func(response *identity.RegisterThingResponse, failure *serviceclient.ErrorEnvelope) {
			if failure != nil {
				logrus.Errorf("provision-sample: register response failed: %s", failure)
				return
			}
			registerChan <- response
		})
	wait(token, err, "register accepted")

	token, err = identityClient.SubscribeToRegisterThingRejected(registerSubscription, qos,
		func(response *identity.ErrorResponse, failure *serviceclient.ErrorEnvelope) {
			if failure != nil {
				logrus.Errorf("provision-sample: register rejection failed: %s", failure)
				return
			}
			rejectChan <- response
		})
	wait(token, err, "register rejected")

	// step 1: create the device certificate and key pair
	_, err = identityClient.PublishCreateKeysAndCertificate(
		&identity.CreateKeysAndCertificateRequest{}, qos)
	if err != nil {
		logrus.Fatalf("provision-sample: create request failed: %s", err)
	}
	var created *identity.CreateKeysAndCertificateResponse
	select {
	case created = <-createChan:
		logrus.Infof("provision-sample: received certificate %s", created.CertificateID)
	case rejected := <-rejectChan:
		logrus.Fatalf("provision-sample: certificate creation rejected: %s", rejected)
	case <-time.After(responseTimeout):
		logrus.Fatalf("provision-sample: no response to certificate creation")
	}

	// step 2: register the thing, activating the new certificate
	_, err = identityClient.PublishRegisterThing(&identity.RegisterThingRequest{
		TemplateName:              *templateName,
		CertificateOwnershipToken: created.CertificateOwnershipToken,
		Parameters:                map[string]string{"SerialNumber": config.ThingName},
	}, qos)
	if err != nil {
		logrus.Fatalf("provision-sample: register request failed: %s", err)
	}
	select {
	case registered := <-registerChan:
		logrus.Infof("provision-sample: registered as thing %s", registered.ThingName)
	case rejected := <-rejectChan:
		logrus.Fatalf("provision-sample: thing registration rejected: %s", rejected)
	case <-time.After(responseTimeout):
		logrus.Fatalf("provision-sample: no response to thing registration")
	}

	// step 3: store the credentials next to the claim certificates. The CA
	// is carried over from the claim bundle.
	caPem, _ := os.ReadFile(caFile)
	store := credstore.NewCredStore(path.Join(config.CertsFolder, "provisioned"))
	err = store.Save(&credstore.DeviceCredentials{
		CertificateID:  created.CertificateID,
		CertificatePem: created.CertificatePem,
		PrivateKeyPem:  created.PrivateKey,
		RootCAPem:      string(caPem),
	})
	if err != nil {
		logrus.Fatalf("provision-sample: unable to store the credentials: %s", err)
	}
	logrus.Infof("provision-sample: credentials stored, connect with -certsFolder %s",
		path.Join(config.CertsFolder, "provisioned"))
}
