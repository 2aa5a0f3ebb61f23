package logger

import "fmt"

// Levels lists the accepted values of Config.Level.
var Levels = []string{"debug", "info", "warn", "error", "fatal", "trace", "disabled"}

// Formats lists the accepted values of Config.Format.
var Formats = []string{"json", "console", FormatPretty}

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults applies default values to logging configuration.
// A library logs to stderr at info level unless told otherwise, so the
// engine's debug events stay quiet by default.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
	c.Timestamp = true
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	if !contains(Levels, c.Level) {
		return fmt.Errorf("logging.level must be one of %v (got: %s)", Levels, c.Level)
	}
	if !contains(Formats, c.Format) {
		return fmt.Errorf("logging.format must be one of %v (got: %s)", Formats, c.Format)
	}
	return nil
}

func contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
