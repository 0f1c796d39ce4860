package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestModels(t *testing.T) {
	var buf bytes.Buffer
	Models(&buf, []string{"gpt-4", "gpt-3.5-turbo"})
	assert.Equal(t, "Models: \ngpt-4\ngpt-3.5-turbo\n", buf.String())
}

func TestModelsEmpty(t *testing.T) {
	var buf bytes.Buffer
	Models(&buf, nil)
	assert.Equal(t, "Models: \n", buf.String())
}

func TestMessages(t *testing.T) {
	var buf bytes.Buffer
	Success(&buf, "Config successfully created in %s", "/tmp/gpto.yaml")
	Error(&buf, errors.New("boom"))
	Notice(&buf, "update")

	assert.Equal(t, "Config successfully created in /tmp/gpto.yaml\nboom\nupdate\n", buf.String())
}

func TestBanner(t *testing.T) {
	b := Banner("gpt-4")
	assert.Contains(t, b, "Conversation with gpt-4")
	assert.Contains(t, b, "quit")
}
