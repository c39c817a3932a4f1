package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

var (
	ErrInvalidRetries = errors.New("workflow.retries must be >= 0")
	ErrInvalidTimeout = errors.New("workflow.timeout must be > 0")
)

// ---- Root ----

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Log       LogConfig       `mapstructure:"log"`
	Workflow  WorkflowConfig  `mapstructure:"workflow"`
	Website   WebsiteConfig   `mapstructure:"website"`
	Referral  ReferralConfig  `mapstructure:"referral"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// WorkflowConfig describes the external workflow service and how calls to it are made.
type WorkflowConfig struct {
	BaseURL         string            `mapstructure:"base_url"`
	APIKey          string            `mapstructure:"api_key"`
	WebhookSecret   string            `mapstructure:"webhook_secret"`
	Environment     string            `mapstructure:"environment"`
	Debug           bool              `mapstructure:"debug"`
	PlaceholderHost string            `mapstructure:"placeholder_host"`
	Routes          map[string]string `mapstructure:"routes"`
	Timeout         time.Duration     `mapstructure:"timeout"`
	Retries         int               `mapstructure:"retries"`
	InitialBackoff  time.Duration     `mapstructure:"initial_backoff"`
	Breaker         BreakerConfig     `mapstructure:"breaker"`
}

type BreakerConfig struct {
	FailThreshold int           `mapstructure:"fail_threshold"`
	OpenFor       time.Duration `mapstructure:"open_for"`
}

type WebsiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type ReferralConfig struct {
	Template string `mapstructure:"template"`
	From     string `mapstructure:"from"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type RateLimitConfig struct {
	RPS int `mapstructure:"rps"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (WFRELAY_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, fmt.Errorf("read defaults: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			// a missing --config file is fine, defaults + env still apply
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("merge %s: %w", path, err)
			}
		}
	}

	// env override (WFRELAY_WORKFLOW_API_KEY, ...)
	v.SetEnvPrefix("WFRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise break the relay loop.
func (c Config) Validate() error {
	if c.Workflow.Retries < 0 {
		return ErrInvalidRetries
	}
	if c.Workflow.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}
