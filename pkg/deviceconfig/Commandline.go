// Package deviceconfig with commandline configuration handling
package deviceconfig

import (
	"flag"
	"os"
	"path"

	"github.com/sirupsen/logrus"
)

// flags cannot be defined twice. Tests invoke the loader multiple times, so
// prevent redefining them just like testing.Init does.
var flagsAreSet bool = false

// SetDeviceCommandlineArgs creates the common device commandline flags for
// parsing commandlines:
//
//	-c            /path/to/device.yaml optional alt configuration, default is {home}/config/device.yaml
//	-home         /path/to/app/home    optional alternative application home folder
//	-endpoint     host                 endpoint hostname to connect to
//	-port         8883                 optional alternative port
//	-thingName    name                 thing name of this device
//	-clientId     id                   optional MQTT client ID, default is the thing name
//	-certsFolder  /path/to/alt/certs   optional certificate folder. Default is {home}/certs
//	-qos          1                    optional quality of service, 0 or 1
//	-logFile      /path/to/device.log  optional logfile
//	-logLevel     warning              for extra logging
func SetDeviceCommandlineArgs(config *DeviceConfig) {
	if flagsAreSet {
		return
	}
	flagsAreSet = true
	// Flags -c and --home are handled in LoadDeviceConfig before parsing.
	// They are added here to avoid a flag parse error.
	flag.String("c", DeviceConfigName, "Set the device configuration file")
	flag.StringVar(&config.Home, "home", config.Home, "Application working `folder`")

	flag.StringVar(&config.Endpoint, "endpoint", config.Endpoint, "Endpoint hostname to connect to")
	flag.IntVar(&config.Port, "port", config.Port, "Endpoint port")
	flag.StringVar(&config.ThingName, "thingName", config.ThingName, "Thing name of this device")
	flag.StringVar(&config.ClientID, "clientId", config.ClientID, "MQTT client ID. Default is the thing name")
	flag.StringVar(&config.CertsFolder, "certsFolder", config.CertsFolder, "Certificates `folder` for TLS")
	flag.IntVar(&config.Qos, "qos", config.Qos, "Quality of service, 0 or 1")
	flag.StringVar(&config.LogFile, "logFile", config.LogFile, "Log to file")
	flag.StringVar(&config.Loglevel, "logLevel", config.Loglevel, "Loglevel: {error|`warning`|info|debug}")
}

// LoadCommandlineConfig loads the device configuration and applies commandline
// parameters to allow modifying the configuration from the commandline.
// A missing configuration file is not an error, the samples can run on flags
// alone. Validation still catches a missing endpoint.
//
//	homeFolder overrides the default home folder. Leave empty to use the parent
//	of the application binary.
//	programName is used for the program's log file in the logging folder, "" to
//	log to the configured device log file.
//
// Returns the device configuration and an error code in case of error
func LoadCommandlineConfig(homeFolder string, programName string) (*DeviceConfig, error) {
	config, err := LoadDeviceConfig(homeFolder)
	if err != nil && !os.IsNotExist(err) {
		return config, err
	}

	SetDeviceCommandlineArgs(config)
	// catch parsing errors, in case flag.ErrorHandling = flag.ContinueOnError
	err = flag.CommandLine.Parse(os.Args[1:])
	if err != nil {
		return config, err
	}

	if config.ClientID == "" {
		config.ClientID = config.ThingName
	}
	err = ValidateConfig(config)
	if err != nil {
		return config, err
	}

	// last set the program logging
	if programName != "" && config.LogFile != "" {
		logFolder := path.Dir(config.LogFile)
		logFileName := path.Join(logFolder, programName+".log")
		SetLogging(config.Loglevel, logFileName)
	} else {
		SetLogging(config.Loglevel, config.LogFile)
	}
	logrus.Infof("LoadCommandlineConfig: endpoint=%s, thingName=%s, clientID=%s",
		config.HostPort(), config.ThingName, config.ClientID)
	return config, nil
}
