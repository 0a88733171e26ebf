package credstore

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"os"
)

//---------------------------------------------------------------------------------
// ECDSA key management for device identities
//---------------------------------------------------------------------------------

// CreateECDSAKeys creates an asymmetric key set for a device identity.
// Returns a private key that contains its associated public key
func CreateECDSAKeys() *ecdsa.PrivateKey {
	rng := rand.Reader
	curve := elliptic.P256()
	privKey, _ := ecdsa.GenerateKey(curve, rng)
	return privKey
}

// CreateCSR creates a certificate signing request from the device private key.
// The CSR is submitted on the create-from-csr provisioning topic so the service
// signs a certificate without ever seeing the private key.
//
//	privKey is the private key of the device
//	thingName is used as the CommonName of the request subject
//
// Returns the CSR in PEM format
func CreateCSR(privKey *ecdsa.PrivateKey, thingName string) (csrPEM []byte, err error) {
	template := &x509.CertificateRequest{
		Subject: pkix.Name{
			CommonName: thingName,
		},
		SignatureAlgorithm: x509.ECDSAWithSHA256,
	}
	csrDer, err := x509.CreateCertificateRequest(rand.Reader, template, privKey)
	if err != nil {
		return nil, err
	}
	csrPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: csrDer})
	return csrPEM, nil
}

// LoadPrivateKeyFromPEM loads an ECDSA private key from a PEM file
//
//	path is the path to the PEM file
func LoadPrivateKeyFromPEM(path string) (privateKey *ecdsa.PrivateKey, err error) {
	pemEncoded, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return PrivateKeyFromPEM(string(pemEncoded))
}

// PrivateKeyFromPEM converts a PEM encoded private key into an ECDSA key object.
// See also PrivateKeyToPEM for the opposite.
func PrivateKeyFromPEM(pemEncodedPriv string) (privateKey *ecdsa.PrivateKey, err error) {
	block, _ := pem.Decode([]byte(pemEncodedPriv))
	if block == nil {
		return nil, errors.New("not a valid PEM string")
	}
	rawPrivateKey, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	privateKey, ok := rawPrivateKey.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("PEM is not an ECDSA key")
	}
	return privateKey, nil
}

// PrivateKeyToPEM converts a private key into its PEM encoded ascii format
//
//	privateKey contains the private key to encode
func PrivateKeyToPEM(privateKey *ecdsa.PrivateKey) (string, error) {
	x509Encoded, err := x509.MarshalPKCS8PrivateKey(privateKey)
	pemEncoded := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: x509Encoded})
	return string(pemEncoded), err
}

// PublicKeyFromPEM converts a PEM encoded public key into an ECDSA public key object
func PublicKeyFromPEM(pemEncodedPub string) (publicKey *ecdsa.PublicKey, err error) {
	blockPub, _ := pem.Decode([]byte(pemEncodedPub))
	if blockPub == nil {
		return nil, errors.New("not a valid PEM string")
	}
	genericPublicKey, err := x509.ParsePKIXPublicKey(blockPub.Bytes)
	if err != nil {
		return nil, err
	}
	publicKey, ok := genericPublicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("PEM is not an ECDSA public key")
	}
	return publicKey, nil
}

// PublicKeyToPEM converts a public key into PEM encoded format.
// See also PublicKeyFromPEM for its counterpart
func PublicKeyToPEM(publicKey *ecdsa.PublicKey) (string, error) {
	x509EncodedPub, err := x509.MarshalPKIXPublicKey(publicKey)
	pemEncodedPub := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: x509EncodedPub})
	return string(pemEncodedPub), err
}

// SavePrivateKeyToPEM saves a private key to a PEM file with 0600 permissions
//
//	privKey contains the private key to save
//	path is the path to the PEM file
func SavePrivateKeyToPEM(privKey *ecdsa.PrivateKey, path string) error {
	pemEncoded, err := PrivateKeyToPEM(privKey)
	if err == nil {
		err = os.WriteFile(path, []byte(pemEncoded), 0600)
	}
	return err
}
