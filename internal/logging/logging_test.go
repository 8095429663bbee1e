package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWriter(t *testing.T) {
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.InfoLevel)
		log.SetFormatter(&log.TextFormatter{})
	})

	var buf bytes.Buffer
	require.NoError(t, SetupWriter(&buf, "debug", "json"))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	log.WithField("stage", "pos").Debug("tagged")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "tagged", entry["msg"])
	assert.Equal(t, "pos", entry["stage"])

	assert.Error(t, SetupWriter(&buf, "chatty", "text"))
	assert.Error(t, SetupWriter(&buf, "info", "xml"))
}
