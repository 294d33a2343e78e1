package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "SKILLMATRIX_"
	envFileVar = "SKILLMATRIX_CONFIG"
)

// LoadOption adjusts how Load finds its sources.
type LoadOption func(*loadSettings)

type loadSettings struct {
	path string
}

// WithFile loads the given YAML file instead of the one named by SKILLMATRIX_CONFIG.
func WithFile(path string) LoadOption {
	return func(s *loadSettings) {
		if path != "" {
			s.path = path
		}
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) from WithFile or SKILLMATRIX_CONFIG
//  3. env (prefix SKILLMATRIX_)
func Load(ctx context.Context, opts ...LoadOption) (*Config, error) {
	st := loadSettings{path: os.Getenv(envFileVar)}
	for _, opt := range opts {
		opt(&st)
	}

	base := New(ctx)
	k := koanf.New(".")

	if st.path != "" {
		if err := k.Load(file.Provider(st.path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, st.path, err)
		}
	}

	// SKILLMATRIX_BASE_URL -> base_url. Underscores stay to match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(envPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}
	// The config file path itself is not a setting.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: base_url must be an absolute URL: %q", ErrInvalidConfig, c.BaseURL)
	}
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.CompareMinSkills < 1 {
		return fmt.Errorf("%w: compare_min_skills must be >= 1", ErrInvalidConfig)
	}
	if c.ChartLabelMax < 1 {
		return fmt.Errorf("%w: chart_label_max must be >= 1", ErrInvalidConfig)
	}
	if c.RefreshQueueSize < 1 || c.RefreshWorkers < 1 {
		return fmt.Errorf("%w: refresh_queue_size and refresh_workers must be >= 1", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}
