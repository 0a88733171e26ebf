package testenv

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"time"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/credstore"
)

// short lived test certificates
const caValidity = time.Hour * 24 * 3
const certValidity = time.Hour * 24

// CertBundle holds a self signed CA with a server and a client certificate,
// all in PEM format. Intended for mutual TLS tests without touching real
// credentials.
type CertBundle struct {
	CaCertPEM     []byte
	CaKeyPEM      []byte
	ServerCertPEM []byte
	ServerKeyPEM  []byte
	ClientCertPEM []byte
	ClientKeyPEM  []byte
}

// CaCertPool returns a certificate pool holding the bundle CA
func (bundle *CertBundle) CaCertPool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(bundle.CaCertPEM)
	return pool
}

// ServerTLSCert returns the server certificate as a TLS key pair for use in a
// test HTTPS or MQTT server
func (bundle *CertBundle) ServerTLSCert() (tls.Certificate, error) {
	return tls.X509KeyPair(bundle.ServerCertPEM, bundle.ServerKeyPEM)
}

// SaveClientCerts writes the CA and client certificate files into the given
// folder using the standard credential store filenames, so a client under test
// picks them up the same way it would pick up provisioned credentials.
func (bundle *CertBundle) SaveClientCerts(folder string) error {
	store := credstore.NewCredStore(folder)
	return store.Save(&credstore.DeviceCredentials{
		CertificatePem: string(bundle.ClientCertPEM),
		PrivateKeyPem:  string(bundle.ClientKeyPEM),
		RootCAPem:      string(bundle.CaCertPEM),
	})
}

// CreateCertBundle creates a CA and signs a server and a client certificate
// with it. The server certificate covers localhost and the loopback addresses
// plus the given hostname.
//
//	hostname is added to the server certificate DNS names, "" to skip
//	clientID is used as the client certificate CommonName
func CreateCertBundle(hostname string, clientID string) (*CertBundle, error) {
	caKey := credstore.CreateECDSAKeys()
	caTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"IoT Test"},
			CommonName:   "IoT Test CA",
		},
		NotBefore:             time.Now().Add(-10 * time.Second),
		NotAfter:              time.Now().Add(caValidity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            0,
		MaxPathLenZero:        true,
	}
	caDer, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		return nil, err
	}
	caCert, err := x509.ParseCertificate(caDer)
	if err != nil {
		return nil, err
	}

	serverKey := credstore.CreateECDSAKeys()
	serverTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject: pkix.Name{
			Organization: []string{"IoT Test"},
			CommonName:   "IoT Test Server",
		},
		NotBefore:   time.Now().Add(-10 * time.Second),
		NotAfter:    time.Now().Add(certValidity),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:    []string{"localhost"},
	}
	if hostname != "" {
		serverTemplate.DNSNames = append(serverTemplate.DNSNames, hostname)
	}
	serverDer, err := x509.CreateCertificate(rand.Reader, serverTemplate, caCert, &serverKey.PublicKey, caKey)
	if err != nil {
		return nil, err
	}

	clientKey := credstore.CreateECDSAKeys()
	clientTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(3),
		Subject: pkix.Name{
			Organization: []string{"IoT Test"},
			CommonName:   clientID,
		},
		NotBefore:             time.Now().Add(-10 * time.Second),
		NotAfter:              time.Now().Add(certValidity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}
	clientDer, err := x509.CreateCertificate(rand.Reader, clientTemplate, caCert, &clientKey.PublicKey, caKey)
	if err != nil {
		return nil, err
	}

	bundle := &CertBundle{
		CaCertPEM:     certDerToPEM(caDer),
		ServerCertPEM: certDerToPEM(serverDer),
		ClientCertPEM: certDerToPEM(clientDer),
	}
	if bundle.CaKeyPEM, err = keyToPEM(caKey); err != nil {
		return nil, err
	}
	if bundle.ServerKeyPEM, err = keyToPEM(serverKey); err != nil {
		return nil, err
	}
	if bundle.ClientKeyPEM, err = keyToPEM(clientKey); err != nil {
		return nil, err
	}
	return bundle, nil
}

func certDerToPEM(derBytes []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
}

func keyToPEM(key *ecdsa.PrivateKey) ([]byte, error) {
	pemEncoded, err := credstore.PrivateKeyToPEM(key)
	return []byte(pemEncoded), err
}
