package phantom

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override values from a config file.
const (
	EnvServerAddress = "PHANTOM_SERVER_ADDRESS"
	EnvAuthToken     = "PHANTOM_AUTH_TOKEN"
)

// Config is the on-disk client configuration.
//
//	server_address: https://phantom.local
//	auth_token: "..."
//	insecure_skip_verify: true
//	timeout: 30s
//	poll:
//	  interval: 1s
//	  max_attempts: 10
type Config struct {
	ServerAddress      string        `yaml:"server_address"`
	AuthToken          string        `yaml:"auth_token"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	Timeout            time.Duration `yaml:"timeout"`
	UserAgent          string        `yaml:"user_agent"`

	Poll struct {
		Interval    time.Duration `yaml:"interval"`
		MaxAttempts int           `yaml:"max_attempts"`
	} `yaml:"poll"`
}

// LoadConfig reads a YAML config file and applies environment overrides.
// An empty path skips the file and uses the environment alone.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("phantom: reading config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("phantom: parsing config %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvServerAddress); v != "" {
		cfg.ServerAddress = v
	}
	if v := os.Getenv(EnvAuthToken); v != "" {
		cfg.AuthToken = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the required settings are present.
func (c *Config) Validate() error {
	if c.ServerAddress == "" {
		return ErrNoBaseURL
	}
	if c.AuthToken == "" {
		return ErrNoAuthToken
	}
	return nil
}

// Options converts the config into client options. Unset values keep the
// client defaults.
func (c *Config) Options() []ClientOption {
	opts := []ClientOption{
		WithBaseURL(c.ServerAddress),
		WithAuthToken(c.AuthToken),
		WithInsecureSkipVerify(c.InsecureSkipVerify),
	}
	if c.Timeout > 0 {
		opts = append(opts, WithTimeout(c.Timeout))
	}
	if c.UserAgent != "" {
		opts = append(opts, WithUserAgent(c.UserAgent))
	}
	if c.Poll.Interval > 0 {
		opts = append(opts, WithPollInterval(c.Poll.Interval))
	}
	if c.Poll.MaxAttempts > 0 {
		opts = append(opts, WithPollAttempts(c.Poll.MaxAttempts))
	}
	return opts
}

// NewClientFromConfig builds a client from cfg. Extra options are applied
// after the config and win over it.
func NewClientFromConfig(cfg *Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		return nil, ErrNoBaseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewClient(append(cfg.Options(), opts...)...)
}
