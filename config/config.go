package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

type (
	Proxy struct {
		// Trusted lists networks (in CIDR notation) or single addresses of proxies which are
		// allowed to report the client address. A single "*" trusts anybody, whereas no
		// entries make forwarding headers ignored.
		Trusted []string `yaml:"trusted" test:"nullable"`
	}

	Headers struct {
		// Default headers are included into every new response, unless explicitly overridden.
		Default map[string]string `yaml:"default" test:"nullable"`
	}

	Body struct {
		// MaxSize is the maximal number of bytes of the request body read from the input.
		MaxSize int64 `yaml:"max_size"`
	}

	Log struct {
		// Level is one of logrus levels: panic, fatal, error, warn, info, debug or trace.
		Level string `yaml:"level"`
	}
)

// Config holds settings of message envelopes.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	Proxy   Proxy   `yaml:"proxy"`
	Headers Headers `yaml:"headers"`
	Body    Body    `yaml:"body"`
	Log     Log     `yaml:"log"`
	// Logger receives warnings, e.g. about malformed bodies.
	Logger logrus.FieldLogger `yaml:"-"`
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Headers: Headers{
			Default: make(map[string]string),
		},
		Body: Body{
			MaxSize: 512 * 1024 * 1024, // 512 megabytes
		},
		Log: Log{
			Level: logrus.InfoLevel.String(),
		},
		Logger: logrus.StandardLogger(),
	}
}

// Load reads the YAML file over the defaults.
func Load(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return Parse(content)
}

// Parse reads the YAML document over the defaults. Omitted settings keep their default
// values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if level != logrus.InfoLevel {
		logger := logrus.New()
		logger.SetLevel(level)
		cfg.Logger = logger
	}

	return cfg, nil
}
