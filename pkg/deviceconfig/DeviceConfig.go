// Package deviceconfig with the device configuration struct and methods
package deviceconfig

import (
	"fmt"
	"os"
	"path"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/api"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/credstore"
)

// DeviceConfigName the configuration file name of a device
const DeviceConfigName = "device.yaml"

// DeviceLogFile the default file name of the device logging
const DeviceLogFile = "device.log"

// DefaultCertsFolder with the location of device credentials
const DefaultCertsFolder = "./certs"

// DefaultPort for MQTT over TLS
const DefaultPort = 8883

// DeviceConfig with the configuration of a device connection.
// Intended for the sample programs and for devices built on them.
type DeviceConfig struct {
	// logging
	Loglevel string `yaml:"logLevel"` // debug, info, warning, error. Default is warning
	LogFile  string `yaml:"logFile"`  // device logging to file

	// endpoint
	Endpoint string `yaml:"endpoint"`          // hostname of the MQTT endpoint
	Port     int    `yaml:"port,omitempty"`    // MQTT TLS port, default is 8883
	Timeout  int    `yaml:"timeout,omitempty"` // connection timeout in seconds. 0 for indefinite retries

	// identity
	ThingName string `yaml:"thingName"`          // thing name of this device
	ClientID  string `yaml:"clientId,omitempty"` // MQTT client ID. Default is the thing name
	Qos       int    `yaml:"qos,omitempty"`      // publish and subscribe QoS, 0 or 1

	// folders
	Home         string `yaml:"home"`         // application home directory. Default is parent of executable
	CertsFolder  string `yaml:"certsFolder"`  // folder with the CA and device certificate. Default is {home}/certs
	ConfigFolder string `yaml:"configFolder"` // location of configuration files. Default is {home}/config
}

// CertFiles returns the paths of the device certificate, key and CA files
// in the certificate folder, using the credential store filenames.
func (config *DeviceConfig) CertFiles() (certFile string, keyFile string, caFile string) {
	certFile = path.Join(config.CertsFolder, credstore.CertFile)
	keyFile = path.Join(config.CertsFolder, credstore.KeyFile)
	caFile = path.Join(config.CertsFolder, credstore.CaCertFile)
	return
}

// HostPort returns the endpoint address to connect to
func (config *DeviceConfig) HostPort() string {
	return fmt.Sprintf("%s:%d", config.Endpoint, config.Port)
}

// CreateDefaultDeviceConfig with default values.
// homeFolder is the home of the application, log and configuration folders.
// Use "" for the default: parent of the application binary.
// When a relative path is given, it is relative to the application binary.
func CreateDefaultDeviceConfig(homeFolder string) *DeviceConfig {
	appBin, _ := os.Executable()
	binFolder := path.Dir(appBin)
	if homeFolder == "" {
		homeFolder = path.Dir(binFolder)
	} else if !path.IsAbs(homeFolder) {
		homeFolder = path.Join(binFolder, homeFolder)
	}
	config := &DeviceConfig{
		Home:         homeFolder,
		ConfigFolder: path.Join(homeFolder, "config"),
		CertsFolder:  path.Join(homeFolder, DefaultCertsFolder),
		Port:         DefaultPort,
		Qos:          int(api.QosAtLeastOnce),
		Timeout:      0,
		Loglevel:     "warning",
		LogFile:      path.Join(homeFolder, "./logs/"+DeviceLogFile),
	}
	return config
}

// LoadConfig loads a configuration from file into the given config
//
//	configFile path to the yaml configuration file
//	config interface to a typed structure matching the config. Must have yaml tags
//
// Returns nil if successful
func LoadConfig(configFile string, config interface{}) error {
	rawConfig, err := os.ReadFile(configFile)
	if err != nil {
		logrus.Infof("LoadConfig: Unable to load config file: %s", err)
		return err
	}
	logrus.Infof("LoadConfig: Loaded config file '%s'", configFile)

	err = yaml.Unmarshal(rawConfig, config)
	if err != nil {
		logrus.Errorf("LoadConfig: Error parsing config file '%s': %s", configFile, err)
		return err
	}
	return nil
}

// LoadDeviceConfig loads the device configuration from {home}/config/device.yaml.
// This checks the following commandline arguments without the flag package, so
// programs with their own commandlines can still use the base configuration:
//
//   - Commandline "-c" specifies an alternative device configuration file
//   - Commandline "--home" sets the home folder as the base of the config,
//     logs and certs directories
//
// homeFolder overrides the default home folder. Leave empty to use the parent
// of the application binary.
// Returns the device configuration and an error when the file cannot be loaded.
func LoadDeviceConfig(homeFolder string) (*DeviceConfig, error) {
	args := os.Args[1:]
	if homeFolder == "" {
		for index, arg := range args {
			if arg == "--home" || arg == "-home" {
				homeFolder = args[index+1]
				if !path.IsAbs(homeFolder) {
					cwd, _ := os.Getwd()
					homeFolder = path.Join(cwd, homeFolder)
				}
				break
			}
		}
	}

	config := CreateDefaultDeviceConfig(homeFolder)
	configFile := path.Join(config.ConfigFolder, DeviceConfigName)

	for index, arg := range args {
		if arg == "-c" {
			configFile = args[index+1]
			if !path.IsAbs(configFile) {
				configFile = path.Join(config.Home, configFile)
			}
			break
		}
	}
	logrus.Infof("LoadDeviceConfig: Using %s as device config file", configFile)
	err := LoadConfig(configFile, config)
	if err != nil {
		return config, err
	}

	// make sure folders have an absolute path
	if !path.IsAbs(config.CertsFolder) {
		config.CertsFolder = path.Join(config.Home, config.CertsFolder)
	}
	return config, nil
}

// ValidateConfig checks if the values in the device configuration are usable.
// Returns an error if the config is invalid
func ValidateConfig(config *DeviceConfig) error {
	if config.Endpoint == "" {
		err := fmt.Errorf("device endpoint not provided")
		logrus.Error(err)
		return err
	}
	if config.Port <= 0 {
		err := fmt.Errorf("invalid endpoint port %d", config.Port)
		logrus.Error(err)
		return err
	}
	if config.Qos > int(api.QosAtLeastOnce) || config.Qos < 0 {
		logrus.Errorf("QoS %d is not supported", config.Qos)
		return api.ErrInvalidQos
	}
	if config.CertsFolder != "" {
		if _, err := os.Stat(config.CertsFolder); os.IsNotExist(err) {
			logrus.Errorf("Certificate folder '%s' not found", config.CertsFolder)
			return err
		}
	}
	return nil
}
