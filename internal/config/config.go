// The config package loads the configuration of the ldmlfmt command.
package config

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/writingsystems/ldmlfile/ldml"
)

// Config holds the options of the ldmlfmt command. Unset fields take their
// default values.
type Config struct {
	// Compatibility is the name of the encoder compatibility mode: "strict"
	// or "flex7v0".
	Compatibility string `yaml:"compatibility"`

	// Indent is written once per nesting level. It must consist of spaces
	// and tabs.
	Indent string `yaml:"indent"`

	// Backup enables the backup taken before a file is overwritten.
	Backup *bool `yaml:"backup"`

	// LogLevel is the minimum level of logged events.
	LogLevel string `yaml:"logLevel"`
}

// Default returns the default configuration.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Compatibility == "" {
		c.Compatibility = ldml.Strict.String()
	}
	if c.Indent == "" {
		c.Indent = "\t"
	}
	if c.Backup == nil {
		b := true
		c.Backup = &b
	}
	if c.LogLevel == "" {
		c.LogLevel = zapcore.WarnLevel.String()
	}
}

// Load reads a configuration file. An empty path returns the default
// configuration.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a configuration from YAML.
func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the value of each field.
func (c Config) Validate() error {
	if _, ok := ldml.ParseCompatibility(c.Compatibility); !ok {
		return fmt.Errorf("unknown compatibility mode %q", c.Compatibility)
	}
	if strings.Trim(c.Indent, " \t") != "" {
		return fmt.Errorf("indent %q must consist of spaces and tabs", c.Indent)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// CompatibilityMode returns the encoder compatibility mode.
func (c Config) CompatibilityMode() ldml.Compatibility {
	mode, _ := ldml.ParseCompatibility(c.Compatibility)
	return mode
}

// BackupEnabled returns whether files are backed up before being
// overwritten.
func (c Config) BackupEnabled() bool {
	return c.Backup == nil || *c.Backup
}

// Level returns the minimum log level.
func (c Config) Level() (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
