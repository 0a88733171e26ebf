package deviceconfig_test

import (
	"path"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/deviceconfig"
)

func TestLogging(t *testing.T) {
	logFile := path.Join(t.TempDir(), "TestLogging.log")

	err := deviceconfig.SetLogging("info", logFile)
	assert.NoError(t, err)
	logrus.Info("Hello info")
	deviceconfig.SetLogging("debug", logFile)
	logrus.Debug("Hello debug")
	deviceconfig.SetLogging("warning", logFile)
	logrus.Warn("Hello warn")
	deviceconfig.SetLogging("error", logFile)
	logrus.Error("Hello error")
	assert.FileExists(t, logFile)

	// restore for the remaining tests
	deviceconfig.SetLogging("info", "")
}

func TestLoggingBadLevel(t *testing.T) {
	err := deviceconfig.SetLogging("notalevel", "")
	assert.Error(t, err)
	deviceconfig.SetLogging("info", "")
}

func TestLoggingBadFile(t *testing.T) {
	err := deviceconfig.SetLogging("info", "/not/a/folder/cantloghere.log")
	assert.Error(t, err)
}
