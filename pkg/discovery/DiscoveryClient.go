// Package discovery with the HTTPS client that asks the discovery endpoint
// which cores a device may connect through. Discovery uses mutual TLS with the
// same credentials as the MQTT connection.
package discovery

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/codec"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/credstore"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/topics"
)

// TopicDiscoverThing is the request path of the discovery endpoint
const TopicDiscoverThing = "/greengrass/discover/thing/{thingName}"

const defaultTimeout = time.Second * 10

// DiscoveryClient is a TLS client for the core discovery endpoint
type DiscoveryClient struct {
	address    string // host:port of the discovery endpoint
	certFolder string
	httpClient *http.Client
	timeout    time.Duration
}

// Discover asks the endpoint for the cores the given thing may connect through.
//
//	thingName of the device to discover cores for
//
// Returns the discovery document, a *DiscoveryError when the endpoint answers
// with an HTTP error status, or a decode error when the body is not valid JSON.
func (cl *DiscoveryClient) Discover(thingName string) (*DiscoverResponse, error) {
	if cl == nil || cl.httpClient == nil {
		logrus.Errorf("DiscoveryClient.Discover: client is not started")
		return nil, errors.New("discovery client is not started")
	}
	discoverPath, err := topics.Render(TopicDiscoverThing, map[string]string{
		"thingName": thingName,
	})
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("https://%s%s", cl.address, discoverPath)
	logrus.Infof("DiscoveryClient.Discover: GET %s", discoverPath)

	resp, err := cl.httpClient.Get(url)
	if err != nil {
		logrus.Errorf("DiscoveryClient.Discover: %s: %s", discoverPath, err)
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		discErr := &DiscoveryError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       respBody,
		}
		logrus.Errorf("DiscoveryClient.Discover: %s", discErr)
		return nil, discErr
	}

	response := &DiscoverResponse{}
	err = codec.Decode(respBody, response)
	if err != nil {
		return nil, err
	}
	return response, nil
}

// Start the client.
// 1. If a CA certificate is not available then insecure-skip-verify is used to
// allow connection to an unverified endpoint (leap of faith)
// 2. Mutual TLS authentication is used when both CA and client certificates
// are available
func (cl *DiscoveryClient) Start() (err error) {
	var clientCertList = []tls.Certificate{}
	var checkServerCert = false

	// Use the CA certificate for server authentication if it exists
	caCertPEM, err := os.ReadFile(path.Join(cl.certFolder, credstore.CaCertFile))
	caCertPool := x509.NewCertPool()
	if err == nil {
		logrus.Infof("DiscoveryClient.Start: Using CA certificate '%s' for server verification", credstore.CaCertFile)
		caCertPool.AppendCertsFromPEM(caCertPEM)
		checkServerCert = true
	} else {
		logrus.Infof("DiscoveryClient.Start: No CA certificate in '%s'. InsecureSkipVerify used", cl.certFolder)
	}

	// Use the client certificate for mutual authentication with the endpoint
	clientCertFile := path.Join(cl.certFolder, credstore.CertFile)
	clientKeyFile := path.Join(cl.certFolder, credstore.KeyFile)
	clientCert, err := tls.LoadX509KeyPair(clientCertFile, clientKeyFile)
	if err == nil {
		logrus.Infof("DiscoveryClient.Start: Using client certificate '%s' for mutual auth", credstore.CertFile)
		clientCertList = append(clientCertList, clientCert)
	} else {
		logrus.Infof("DiscoveryClient.Start: No client certificate in '%s'. Mutual auth disabled", cl.certFolder)
	}

	tlsConfig := &tls.Config{
		RootCAs:            caCertPool,
		Certificates:       clientCertList,
		InsecureSkipVerify: !checkServerCert,
	}
	cl.httpClient = &http.Client{
		Transport: &http.Transport{TLSClientConfig: tlsConfig},
		Timeout:   cl.timeout,
	}
	return nil
}

// Stop the discovery client
func (cl *DiscoveryClient) Stop() {
	logrus.Infof("DiscoveryClient.Stop: Stopping discovery client")
	if cl.httpClient != nil {
		cl.httpClient.CloseIdleConnections()
		cl.httpClient = nil
	}
}

// NewDiscoveryClient creates a discovery client for the given endpoint.
// If the certFolder contains a CA certificate then server authentication is
// used. If it also contains a client certificate and key then the client is
// configured for mutual authentication.
// Use Start/Stop to run and close connections.
//
//	address with host:port of the discovery endpoint
//	certFolder with the CA and client certificate files (credstore filenames)
func NewDiscoveryClient(address string, certFolder string) *DiscoveryClient {
	cl := &DiscoveryClient{
		address:    address,
		certFolder: certFolder,
		timeout:    defaultTimeout,
	}
	return cl
}
