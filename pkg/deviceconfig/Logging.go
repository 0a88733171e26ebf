package deviceconfig

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// SetLogging sets the logging level and output file.
// Intended for setting the logging of the sample programs.
//
//	levelName is the requested logging level: error, warning, info, debug
//	filename is the output log file including folder, "" for stderr only
//
// Returns an error when the log file cannot be opened, logging then continues
// on stderr.
func SetLogging(levelName string, filename string) error {
	loggingLevel := logrus.WarnLevel
	var err error

	if levelName != "" {
		switch strings.ToLower(levelName) {
		case "error":
			loggingLevel = logrus.ErrorLevel
		case "warn", "warning":
			loggingLevel = logrus.WarnLevel
		case "info":
			loggingLevel = logrus.InfoLevel
		case "debug":
			loggingLevel = logrus.DebugLevel
		default:
			err = fmt.Errorf("unknown logging level '%s'", levelName)
			logrus.Warningf("SetLogging: %s. Using warning level instead", err)
		}
	}

	var logOut io.Writer = os.Stderr
	if filename != "" {
		logFileHandle, err2 := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0640)
		if err2 != nil {
			err = fmt.Errorf("unable to open logfile '%s': %s", filename, err2)
			logrus.Warningf("SetLogging: %s", err)
		} else {
			logOut = io.MultiWriter(logOut, logFileHandle)
		}
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000-0700",
	})
	logrus.SetOutput(logOut)
	logrus.SetLevel(loggingLevel)
	return err
}
