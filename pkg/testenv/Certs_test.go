package testenv_test

import (
	"crypto/x509"
	"encoding/pem"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/credstore"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/testenv"
)

func TestCreateCertBundle(t *testing.T) {
	bundle, err := testenv.CreateCertBundle("test.local", "device-1")
	require.NoError(t, err)

	// the client certificate must verify against the bundle CA
	block, _ := pem.Decode(bundle.ClientCertPEM)
	require.NotNil(t, block)
	clientCert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	assert.Equal(t, "device-1", clientCert.Subject.CommonName)

	_, err = clientCert.Verify(x509.VerifyOptions{
		Roots:     bundle.CaCertPool(),
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	})
	assert.NoError(t, err)

	_, err = bundle.ServerTLSCert()
	assert.NoError(t, err)
}

func TestSaveClientCerts(t *testing.T) {
	folder := t.TempDir()
	bundle, err := testenv.CreateCertBundle("", "device-1")
	require.NoError(t, err)

	err = bundle.SaveClientCerts(folder)
	require.NoError(t, err)

	assert.FileExists(t, path.Join(folder, credstore.CertFile))
	assert.FileExists(t, path.Join(folder, credstore.KeyFile))
	assert.FileExists(t, path.Join(folder, credstore.CaCertFile))
}
