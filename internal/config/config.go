// Package config loads the YAML configuration of the jelly command.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aleksaelezovic/jelly/pkg/jelly"
	"github.com/aleksaelezovic/jelly/pkg/store"
)

// Config is the top-level configuration
type Config struct {
	DataDir string  `yaml:"data_dir"`
	Logging Logging `yaml:"logging"`
	Stream  Stream  `yaml:"stream"`
	Frames  Frames  `yaml:"frames"`
	Metrics Metrics `yaml:"metrics"`
}

// Logging configures the zap logger
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Stream holds the options of streams written by the command. Table sizes
// of 0 keep the preset value.
type Stream struct {
	Preset                string `yaml:"preset"`
	MaxNameTableSize      uint32 `yaml:"max_name_table_size"`
	MaxPrefixTableSize    uint32 `yaml:"max_prefix_table_size"`
	MaxDatatypeTableSize  uint32 `yaml:"max_datatype_table_size"`
	NamespaceDeclarations bool   `yaml:"namespace_declarations"`
	LogicalType           string `yaml:"logical_type"`
	StreamName            string `yaml:"stream_name"`
}

// Frames configures framing and frame storage
type Frames struct {
	MaxRows     int    `yaml:"max_rows"`
	Compression string `yaml:"compression"`
}

// Metrics toggles the Prometheus collectors
type Metrics struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./jelly_data",
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
		Stream: Stream{
			Preset: "small_strict",
		},
		Frames: Frames{
			MaxRows:     store.DefaultMaxRows,
			Compression: string(store.CompressionZstd),
		},
	}
}

// Load reads the configuration at path on top of the defaults. ${VAR}
// references are replaced with environment variables before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.Frames.MaxRows < 1 {
		return fmt.Errorf("frames.max_rows must be positive, got %d", c.Frames.MaxRows)
	}
	if _, err := store.ParseCompression(c.Frames.Compression); err != nil {
		return fmt.Errorf("frames.compression: %w", err)
	}
	if _, err := c.Stream.Options(); err != nil {
		return fmt.Errorf("stream: %w", err)
	}
	return nil
}

// Options builds the stream options described by s. The physical type is
// left unset for the encoder to choose.
func (s Stream) Options() (*jelly.StreamOptions, error) {
	opts, err := jelly.PresetByName(s.Preset)
	if err != nil {
		return nil, err
	}
	if s.MaxNameTableSize != 0 {
		opts.MaxNameTableSize = s.MaxNameTableSize
	}
	if s.MaxPrefixTableSize != 0 {
		opts.MaxPrefixTableSize = s.MaxPrefixTableSize
	}
	if s.MaxDatatypeTableSize != 0 {
		opts.MaxDatatypeTableSize = s.MaxDatatypeTableSize
	}
	if opts.LogicalType, err = jelly.ParseLogicalStreamType(s.LogicalType); err != nil {
		return nil, err
	}
	opts.StreamName = s.StreamName
	if opts.MaxNameTableSize < jelly.MinNameTableSize {
		return nil, fmt.Errorf("max_name_table_size must be at least %d, got %d", jelly.MinNameTableSize, opts.MaxNameTableSize)
	}
	return opts, nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}
