package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		log, err := New(level, "console")
		require.NoError(t, err, level)
		assert.NotNil(t, log)
	}

	_, err := New("loud", "console")
	assert.Error(t, err)
	_, err = New("info", "xml")
	assert.Error(t, err)
}

func TestNewWithOutput_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	log, err := NewWithOutput("info", "json", path)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("stream created")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"stream created"`)
	assert.NotContains(t, string(data), "hidden")
}
