package discovery_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/discovery"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/testenv"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/topics"
)

const discoverDocument = `{
	"GGGroups": [{
		"GGGroupId": "group-1234",
		"Cores": [{
			"thingArn": "arn:aws:iot:region:acct:thing/core-1",
			"Connectivity": [
				{"Id": "lan", "HostAddress": "192.168.1.4", "PortNumber": 8883},
				{"Id": "wan", "HostAddress": "core.example", "PortNumber": 8883}
			]
		}],
		"CAs": ["-----BEGIN CERTIFICATE-----\nabc\n-----END CERTIFICATE-----\n"]
	}]
}`

// startDiscoveryServer runs a mutual TLS discovery endpoint that knows one thing
func startDiscoveryServer(t *testing.T, bundle *testenv.CertBundle) *httptest.Server {
	router := mux.NewRouter()
	router.HandleFunc("/greengrass/discover/thing/{thingName}",
		func(resp http.ResponseWriter, req *http.Request) {
			thingName := mux.Vars(req)["thingName"]
			if thingName != "sensor-7" {
				http.Error(resp, "thing not found", http.StatusNotFound)
				return
			}
			resp.Write([]byte(discoverDocument))
		})

	serverCert, err := bundle.ServerTLSCert()
	require.NoError(t, err)
	server := httptest.NewUnstartedServer(router)
	server.TLS = &tls.Config{
		Certificates: []tls.Certificate{serverCert},
		ClientCAs:    bundle.CaCertPool(),
		ClientAuth:   tls.RequireAndVerifyClientCert,
	}
	server.StartTLS()
	return server
}

func TestDiscoverCores(t *testing.T) {
	logrus.Infof("--- TestDiscoverCores ---")
	certFolder := t.TempDir()
	bundle, err := testenv.CreateCertBundle("", "device-1")
	require.NoError(t, err)
	require.NoError(t, bundle.SaveClientCerts(certFolder))

	server := startDiscoveryServer(t, bundle)
	defer server.Close()
	address := strings.TrimPrefix(server.URL, "https://")

	client := discovery.NewDiscoveryClient(address, certFolder)
	err = client.Start()
	require.NoError(t, err)
	defer client.Stop()

	response, err := client.Discover("sensor-7")
	require.NoError(t, err)
	require.Len(t, response.GGGroups, 1)

	group := response.GGGroups[0]
	assert.Equal(t, "group-1234", group.GGGroupID)
	require.Len(t, group.Cores, 1)
	assert.Equal(t, "arn:aws:iot:region:acct:thing/core-1", group.Cores[0].ThingArn)
	require.Len(t, group.Cores[0].Connectivity, 2)
	assert.Equal(t, "192.168.1.4", group.Cores[0].Connectivity[0].HostAddress)
	assert.Equal(t, 8883, group.Cores[0].Connectivity[0].PortNumber)
	require.Len(t, group.CAs, 1)
	assert.Contains(t, group.CAs[0], "BEGIN CERTIFICATE")
}

func TestDiscoverUnknownThing(t *testing.T) {
	logrus.Infof("--- TestDiscoverUnknownThing ---")
	certFolder := t.TempDir()
	bundle, err := testenv.CreateCertBundle("", "device-1")
	require.NoError(t, err)
	require.NoError(t, bundle.SaveClientCerts(certFolder))

	server := startDiscoveryServer(t, bundle)
	defer server.Close()
	address := strings.TrimPrefix(server.URL, "https://")

	client := discovery.NewDiscoveryClient(address, certFolder)
	require.NoError(t, client.Start())
	defer client.Stop()

	response, err := client.Discover("other-thing")
	require.Error(t, err)
	assert.Nil(t, response)

	var discErr *discovery.DiscoveryError
	require.ErrorAs(t, err, &discErr)
	assert.Equal(t, http.StatusNotFound, discErr.StatusCode)
	assert.Contains(t, string(discErr.Body), "thing not found")
}

func TestDiscoverEmptyThingName(t *testing.T) {
	logrus.Infof("--- TestDiscoverEmptyThingName ---")
	client := discovery.NewDiscoveryClient("localhost:9999", t.TempDir())
	require.NoError(t, client.Start())
	defer client.Stop()

	response, err := client.Discover("")
	require.Error(t, err)
	assert.Nil(t, response)

	var tplErr *topics.TemplateError
	assert.ErrorAs(t, err, &tplErr)
}

func TestDiscoverNotStarted(t *testing.T) {
	logrus.Infof("--- TestDiscoverNotStarted ---")
	client := discovery.NewDiscoveryClient("localhost:9999", t.TempDir())

	response, err := client.Discover("sensor-7")
	require.Error(t, err)
	assert.Nil(t, response)
}
