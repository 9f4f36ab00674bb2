package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	opts, err := cfg.Stream.Options()
	require.NoError(t, err)
	assert.Equal(t, jelly.SmallStrict(), opts)
}

func TestLoad(t *testing.T) {
	t.Setenv("JELLY_TEST_DIR", "/tmp/jelly-test")
	path := filepath.Join(t.TempDir(), "jelly.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: ${JELLY_TEST_DIR}/data
logging:
  level: debug
stream:
  preset: big_rdf_star
  max_name_table_size: 1000
  logical_type: flat_quads
  stream_name: demo
frames:
  max_rows: 64
  compression: none
metrics:
  enabled: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/jelly-test/data", cfg.DataDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format, "unset keys keep their default")
	assert.Equal(t, 64, cfg.Frames.MaxRows)
	assert.True(t, cfg.Metrics.Enabled)

	opts, err := cfg.Stream.Options()
	require.NoError(t, err)
	assert.Equal(t, uint32(1000), opts.MaxNameTableSize)
	assert.Equal(t, uint32(150), opts.MaxPrefixTableSize)
	assert.True(t, opts.RdfStar)
	assert.Equal(t, jelly.LogicalFlatQuads, opts.LogicalType)
	assert.Equal(t, "demo", opts.StreamName)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown preset", "stream: {preset: huge}"},
		{"unknown logical type", "stream: {logical_type: trees}"},
		{"name table too small", "stream: {max_name_table_size: 4}"},
		{"bad compression", "frames: {compression: lz4}"},
		{"zero frame size", "frames: {max_rows: 0}"},
		{"empty data dir", "data_dir: ''"},
		{"not yaml", "stream: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("JELLY_A", "x")
	assert.Equal(t, "x/x/", substituteEnvVars("${JELLY_A}/${JELLY_A}/${JELLY_UNSET_VAR}"))
	assert.Equal(t, "open ${", substituteEnvVars("open ${"))
}
