// Package credstore with persistence of the device credentials that fleet
// provisioning returns. The store only holds credentials issued to it, it never
// creates or signs certificates itself.
package credstore

import (
	"errors"
	"os"
	"path"
	"time"

	"github.com/juju/fslock"
	"github.com/sirupsen/logrus"
)

// Standard credential filenames, all stored in PEM format
const (
	CaCertFile = "rootCA.pem"      // CA of the endpoint, used for server verification
	CertFile   = "certificate.pem" // device certificate issued by provisioning
	KeyFile    = "privateKey.pem"  // device private key
)

// lock file guarding concurrent bundle writes, eg a provisioning run racing a
// credential rotation
const lockFile = ".credstore.lock"

const lockTimeout = time.Second * 3

// DeviceCredentials is the PEM bundle a device needs to connect
type DeviceCredentials struct {
	CertificateID  string // ID assigned by the service, empty when loaded from disk
	CertificatePem string
	PrivateKeyPem  string
	RootCAPem      string // optional, server verification falls back to the system pool
}

// CredStore saves and loads a device credential bundle in a folder.
// Writes take a file lock so two processes cannot interleave a partial bundle.
type CredStore struct {
	folder string
	lock   *fslock.Lock
}

// CertFiles returns the paths of the stored certificate, key and CA files.
// Intended to wire stored credentials into an MQTT connection.
func (store *CredStore) CertFiles() (certFile string, keyFile string, caFile string) {
	certFile = path.Join(store.folder, CertFile)
	keyFile = path.Join(store.folder, KeyFile)
	caFile = path.Join(store.folder, CaCertFile)
	return
}

// Load reads the credential bundle from the store folder.
// The certificate and key must both exist. The CA file is optional.
func (store *CredStore) Load() (*DeviceCredentials, error) {
	certFile, keyFile, caFile := store.CertFiles()
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return nil, err
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, err
	}
	// missing CA just means leap of faith or system pool
	caPEM, _ := os.ReadFile(caFile)

	creds := &DeviceCredentials{
		CertificatePem: string(certPEM),
		PrivateKeyPem:  string(keyPEM),
		RootCAPem:      string(caPEM),
	}
	return creds, nil
}

// Save writes the credential bundle to the store folder.
// The private key is written with 0600 permissions.
//
//	creds must carry at least the certificate and private key PEM
func (store *CredStore) Save(creds *DeviceCredentials) error {
	if creds == nil || creds.CertificatePem == "" || creds.PrivateKeyPem == "" {
		return errors.New("credstore: missing certificate or private key")
	}
	err := store.lock.LockWithTimeout(lockTimeout)
	if err != nil {
		logrus.Errorf("CredStore.Save: unable to lock store in '%s': %s", store.folder, err)
		return err
	}
	defer store.lock.Unlock()

	certFile, keyFile, caFile := store.CertFiles()
	err = os.WriteFile(keyFile, []byte(creds.PrivateKeyPem), 0600)
	if err != nil {
		logrus.Errorf("CredStore.Save: writing private key failed: %s", err)
		return err
	}
	err = os.WriteFile(certFile, []byte(creds.CertificatePem), 0644)
	if err != nil {
		logrus.Errorf("CredStore.Save: writing certificate failed: %s", err)
		return err
	}
	if creds.RootCAPem != "" {
		err = os.WriteFile(caFile, []byte(creds.RootCAPem), 0644)
	}
	if err == nil {
		logrus.Infof("CredStore.Save: saved credential bundle, certificateId=%s, folder=%s",
			creds.CertificateID, store.folder)
	}
	return err
}

// NewCredStore creates a credential store in the given folder.
// The folder is created if it does not exist.
func NewCredStore(folder string) *CredStore {
	_ = os.MkdirAll(folder, 0755)
	store := &CredStore{
		folder: folder,
		lock:   fslock.New(path.Join(folder, lockFile)),
	}
	return store
}
