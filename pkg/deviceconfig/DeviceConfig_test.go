package deviceconfig_test

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/api"
	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/deviceconfig"
)

const testConfigYaml = `
endpoint: data.iot.example
port: 8884
thingName: sensor-7
clientId: sensor-7-client
qos: 0
logLevel: info
`

func TestDefaultConfig(t *testing.T) {
	home := t.TempDir()
	config := deviceconfig.CreateDefaultDeviceConfig(home)
	require.NotNil(t, config)

	assert.Equal(t, home, config.Home)
	assert.Equal(t, deviceconfig.DefaultPort, config.Port)
	assert.Equal(t, int(api.QosAtLeastOnce), config.Qos)
	assert.Equal(t, path.Join(home, "certs"), config.CertsFolder)
	assert.Equal(t, "warning", config.Loglevel)
}

func TestLoadConfig(t *testing.T) {
	home := t.TempDir()
	configFile := path.Join(home, "device.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(testConfigYaml), 0644))

	config := deviceconfig.CreateDefaultDeviceConfig(home)
	err := deviceconfig.LoadConfig(configFile, config)
	require.NoError(t, err)

	assert.Equal(t, "data.iot.example", config.Endpoint)
	assert.Equal(t, "data.iot.example:8884", config.HostPort())
	assert.Equal(t, "sensor-7", config.ThingName)
	assert.Equal(t, "sensor-7-client", config.ClientID)
	assert.Equal(t, 0, config.Qos)
	assert.Equal(t, "info", config.Loglevel)
}

func TestLoadConfigNotFound(t *testing.T) {
	config := deviceconfig.CreateDefaultDeviceConfig(t.TempDir())
	err := deviceconfig.LoadConfig("/not/a/folder/device.yaml", config)
	assert.Error(t, err)
}

func TestLoadConfigYamlError(t *testing.T) {
	home := t.TempDir()
	configFile := path.Join(home, "device.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("endpoint: [not closed"), 0644))

	config := deviceconfig.CreateDefaultDeviceConfig(home)
	err := deviceconfig.LoadConfig(configFile, config)
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(path.Join(home, "certs"), 0755))
	config := deviceconfig.CreateDefaultDeviceConfig(home)
	config.Endpoint = "data.iot.example"
	assert.NoError(t, deviceconfig.ValidateConfig(config))

	badConfig := *config
	badConfig.Endpoint = ""
	assert.Error(t, deviceconfig.ValidateConfig(&badConfig))

	badConfig = *config
	badConfig.Port = 0
	assert.Error(t, deviceconfig.ValidateConfig(&badConfig))

	badConfig = *config
	badConfig.Qos = 2
	err := deviceconfig.ValidateConfig(&badConfig)
	assert.ErrorIs(t, err, api.ErrInvalidQos)

	badConfig = *config
	badConfig.CertsFolder = "/not/a/folder"
	assert.Error(t, deviceconfig.ValidateConfig(&badConfig))
}

func TestCertFiles(t *testing.T) {
	config := deviceconfig.CreateDefaultDeviceConfig(t.TempDir())
	certFile, keyFile, caFile := config.CertFiles()
	assert.Equal(t, path.Join(config.CertsFolder, "certificate.pem"), certFile)
	assert.Equal(t, path.Join(config.CertsFolder, "privateKey.pem"), keyFile)
	assert.Equal(t, path.Join(config.CertsFolder, "rootCA.pem"), caFile)
}
