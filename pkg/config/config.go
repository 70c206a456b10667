// pkg/config/config.go
package config

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
	"github.com/spf13/pflag"

	"shareable/pkg/shareable"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
)

// LogConfig serializes log related config in toml.
type LogConfig struct {
	// Log level, one of debug, info, warn, error, fatal.
	Level string `toml:"level"`
	// Log format, one of json, text or console.
	Format string `toml:"format"`
	// Log filename, leave empty to log to stderr.
	File string `toml:"file"`
}

// Config is the configuration of the shareable binary.
type Config struct {
	// Capacity is the bucket capacity of every tree.
	Capacity int `toml:"capacity"`
	// History is how many committed versions the shell keeps, 0 for all.
	History int `toml:"history"`
	// Prompt of the interactive shell.
	Prompt string    `toml:"prompt"`
	Log    LogConfig `toml:"log"`

	// WarningMsgs collects problems that are reported once the logger is up.
	WarningMsgs []string `toml:"-"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Capacity: shareable.DefaultCapacity,
		Prompt:   "shareable> ",
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

// Load decodes a TOML file over the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if err := c.decodeFile(path); err != nil {
		return nil, err
	}
	return c, c.Validate()
}

func (c *Config) decodeFile(path string) error {
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Annotatef(err, "load config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		c.WarningMsgs = append(c.WarningMsgs, "config contains undefined item: "+strings.Join(keys, ", "))
	}
	return nil
}

// Parse loads the file named by the "config" flag, if any, then applies
// the flags that were set explicitly on the command line.
func (c *Config) Parse(flagSet *pflag.FlagSet) error {
	if path, _ := flagSet.GetString("config"); path != "" {
		if err := c.decodeFile(path); err != nil {
			return err
		}
	}

	if f := flagSet.Lookup("capacity"); f != nil && f.Changed {
		n, err := flagSet.GetInt("capacity")
		if err != nil {
			return errors.Trace(err)
		}
		c.Capacity = n
	}
	if f := flagSet.Lookup("log-level"); f != nil && f.Changed {
		c.Log.Level, _ = flagSet.GetString("log-level")
	}
	if f := flagSet.Lookup("log-file"); f != nil && f.Changed {
		c.Log.File, _ = flagSet.GetString("log-file")
	}
	return c.Validate()
}

// Validate checks the values that the trees would otherwise panic on.
func (c *Config) Validate() error {
	if c.Capacity < shareable.MinCapacity || c.Capacity%2 != 0 {
		return errors.Errorf("capacity %d must be even and at least %d", c.Capacity, shareable.MinCapacity)
	}
	if c.History < 0 {
		return errors.Errorf("history %d must not be negative", c.History)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return errors.Errorf("unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text", "console":
	default:
		return errors.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
