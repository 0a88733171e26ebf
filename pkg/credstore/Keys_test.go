package credstore_test

import (
	"crypto/x509"
	"encoding/pem"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/credstore"
)

func TestPrivateKeyPEM(t *testing.T) {
	privKey := credstore.CreateECDSAKeys()

	pemEncoded, err := credstore.PrivateKeyToPEM(privKey)
	assert.NoError(t, err)
	assert.NotEmpty(t, pemEncoded)

	privKey2, err := credstore.PrivateKeyFromPEM(pemEncoded)
	assert.NoError(t, err)
	require.NotNil(t, privKey2)

	isEqual := privKey.Equal(privKey2)
	assert.True(t, isEqual)
}

func TestPublicKeyPEM(t *testing.T) {
	privKey := credstore.CreateECDSAKeys()

	pemEncoded, err := credstore.PublicKeyToPEM(&privKey.PublicKey)
	assert.NoError(t, err)
	assert.NotEmpty(t, pemEncoded)

	pubKey, err := credstore.PublicKeyFromPEM(pemEncoded)
	assert.NoError(t, err)
	require.NotNil(t, pubKey)

	isEqual := privKey.PublicKey.Equal(pubKey)
	assert.True(t, isEqual)
}

func TestSaveLoadPrivKey(t *testing.T) {
	keyFile := path.Join(t.TempDir(), "privKey.pem")
	privKey := credstore.CreateECDSAKeys()

	err := credstore.SavePrivateKeyToPEM(privKey, keyFile)
	assert.NoError(t, err)

	// the key must not be world readable
	info, err := os.Stat(keyFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	privKey2, err := credstore.LoadPrivateKeyFromPEM(keyFile)
	assert.NoError(t, err)
	assert.NotNil(t, privKey2)
}

func TestSaveLoadPrivKeyNotFound(t *testing.T) {
	privKey := credstore.CreateECDSAKeys()
	err := credstore.SavePrivateKeyToPEM(privKey, "/not/a/folder/privKey.pem")
	assert.Error(t, err)

	privKey2, err := credstore.LoadPrivateKeyFromPEM("/not/a/folder/privKey.pem")
	assert.Error(t, err)
	assert.Nil(t, privKey2)
}

func TestInvalidPEM(t *testing.T) {
	privKey, err := credstore.PrivateKeyFromPEM("PRIVATE KEY")
	assert.Error(t, err)
	assert.Nil(t, privKey)

	pubKey, err := credstore.PublicKeyFromPEM("PUBLIC KEY")
	assert.Error(t, err)
	assert.Nil(t, pubKey)
}

func TestCreateCSR(t *testing.T) {
	privKey := credstore.CreateECDSAKeys()

	csrPEM, err := credstore.CreateCSR(privKey, "sensor-7")
	require.NoError(t, err)

	block, _ := pem.Decode(csrPEM)
	require.NotNil(t, block)
	assert.Equal(t, "CERTIFICATE REQUEST", block.Type)

	csr, err := x509.ParseCertificateRequest(block.Bytes)
	require.NoError(t, err)
	assert.Equal(t, "sensor-7", csr.Subject.CommonName)
	assert.NoError(t, csr.CheckSignature())
}
