package topics_test

import (
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giftedunicorn/aws-iot-device-sdk-go/pkg/topics"
)

func TestRenderSingleParam(t *testing.T) {
	logrus.Infof("--- TestRenderSingleParam ---")

	topic, err := topics.Render("$aws/things/{thingName}/shadow/get",
		map[string]string{"thingName": "lamp1"})
	require.NoError(t, err)
	assert.Equal(t, "$aws/things/lamp1/shadow/get", topic)
}

func TestRenderMultipleParams(t *testing.T) {
	logrus.Infof("--- TestRenderMultipleParams ---")

	topic, err := topics.Render("$aws/things/{thingName}/shadow/name/{shadowName}/update/accepted",
		map[string]string{"thingName": "lamp1", "shadowName": "config"})
	require.NoError(t, err)
	assert.Equal(t, "$aws/things/lamp1/shadow/name/config/update/accepted", topic)
}

func TestRenderNoPlaceholders(t *testing.T) {
	logrus.Infof("--- TestRenderNoPlaceholders ---")

	// the certificate creation topics have no placeholders at all
	topic, err := topics.Render("$aws/certificates/create/json", nil)
	require.NoError(t, err)
	assert.Equal(t, "$aws/certificates/create/json", topic)
}

func TestRenderRepeatedPlaceholder(t *testing.T) {
	logrus.Infof("--- TestRenderRepeatedPlaceholder ---")

	topic, err := topics.Render("a/{x}/b/{x}", map[string]string{"x": "1"})
	require.NoError(t, err)
	assert.Equal(t, "a/1/b/1", topic)
}

func TestRenderErrors(t *testing.T) {
	logrus.Infof("--- TestRenderErrors ---")

	tests := []struct {
		name     string
		template string
		params   map[string]string
		param    string
	}{
		{"missing value", "things/{thingName}/get", map[string]string{}, "thingName"},
		{"empty value", "things/{thingName}/get", map[string]string{"thingName": ""}, "thingName"},
		{"brace in value", "things/{thingName}/get", map[string]string{"thingName": "a{b"}, "thingName"},
		{"unterminated", "things/{thingName/get", map[string]string{"thingName": "x"}, ""},
		{"empty placeholder", "things/{}/get", map[string]string{"thingName": "x"}, ""},
		{"nested placeholder", "things/{a{b}/get", map[string]string{"a{b": "x"}, "a{b"},
		{"stray close", "things/thingName}/get", map[string]string{"thingName": "x"}, ""},
		{"stray close before open", "things}/{thingName}/get", map[string]string{"thingName": "x"}, ""},
	}
	for _, tt := range tests {
		topic, err := topics.Render(tt.template, tt.params)
		require.Errorf(t, err, "case '%s' expected an error", tt.name)
		assert.Emptyf(t, topic, "case '%s' returned a partial topic", tt.name)

		var tplErr *topics.TemplateError
		require.ErrorAsf(t, err, &tplErr, "case '%s' is not a TemplateError", tt.name)
		assert.Equalf(t, tt.template, tplErr.Template, "case '%s'", tt.name)
		assert.Equalf(t, tt.param, tplErr.Param, "case '%s'", tt.name)
	}
}

// Every successful render is free of braces, no matter the template shape
func TestRenderedTopicHasNoBraces(t *testing.T) {
	logrus.Infof("--- TestRenderedTopicHasNoBraces ---")

	params := map[string]string{
		"thingName":    "device-01",
		"shadowName":   "lighting",
		"jobId":        "job42",
		"templateName": "fleet",
	}
	templates := []string{
		"$aws/things/{thingName}/shadow/get/accepted",
		"$aws/things/{thingName}/shadow/name/{shadowName}/update/delta",
		"$aws/things/{thingName}/jobs/{jobId}/update/rejected",
		"$aws/provisioning-templates/{templateName}/provision/json",
		"$aws/certificates/create-from-csr/json",
		"{thingName}",
		"{thingName}/{shadowName}/{jobId}/{templateName}",
	}
	for _, template := range templates {
		topic, err := topics.Render(template, params)
		require.NoErrorf(t, err, "template '%s'", template)
		assert.Falsef(t, strings.ContainsAny(topic, "{}"),
			"template '%s' rendered topic '%s' with a brace", template, topic)
	}
}

func TestPlaceholders(t *testing.T) {
	logrus.Infof("--- TestPlaceholders ---")

	names := topics.Placeholders("$aws/things/{thingName}/shadow/name/{shadowName}/get")
	assert.Equal(t, []string{"thingName", "shadowName"}, names)

	assert.Empty(t, topics.Placeholders("$aws/certificates/create/json"))
	assert.Equal(t, []string{"a"}, topics.Placeholders("x/{a}/y/{unterminated"))
}
