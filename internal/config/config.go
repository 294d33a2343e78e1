// Package config defines client configuration and its loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - Load layers a YAML file and SKILLMATRIX_* env vars over the defaults.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// BaseURL is the root of the HR backend, e.g. "http://localhost:5000".
	BaseURL string `koanf:"base_url"`

	// Addr configures the status server listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RequestTimeoutMS bounds every backend call.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// NotifyDurationMS is the auto-dismiss interval of a notification.
	NotifyDurationMS int `koanf:"notify_duration_ms"`

	// NotifyDedupWindowMS suppresses identical notifications shown within it.
	NotifyDedupWindowMS int `koanf:"notify_dedup_window_ms"`

	// NotifyPosition is a placement hint for surfaces that draw toasts.
	NotifyPosition string `koanf:"notify_position"`

	// ChartRefreshDelayMS delays the chart refresh after a successful rating.
	ChartRefreshDelayMS int `koanf:"chart_refresh_delay_ms"`

	// ChartLabelMax truncates radar point labels to this many runes.
	ChartLabelMax int `koanf:"chart_label_max"`

	// CompareMinSkills is the minimum number of doubly rated skills for a comparison radar.
	CompareMinSkills int `koanf:"compare_min_skills"`

	// SearchDebounceMS is the quiet period after the last keystroke before searching.
	SearchDebounceMS int `koanf:"search_debounce_ms"`

	// SearchMinChars is the shortest query sent to the backend.
	SearchMinChars int `koanf:"search_min_chars"`

	// RefreshQueueSize bounds the chart refresh job queue.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// RefreshWorkers sets the number of chart refresh workers.
	RefreshWorkers int `koanf:"refresh_workers"`
}

// New creates a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		BaseURL:             "http://localhost:5000",
		Addr:                ":9080",
		RequestTimeoutMS:    10_000,
		NotifyDurationMS:    3_000,
		NotifyDedupWindowMS: 3_000,
		NotifyPosition:      "top-right",
		ChartRefreshDelayMS: 300,
		ChartLabelMax:       20,
		CompareMinSkills:    3,
		SearchDebounceMS:    300,
		SearchMinChars:      2,
		RefreshQueueSize:    64,
		RefreshWorkers:      2,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration { return ms(c.RequestTimeoutMS) }

// NotifyDuration returns NotifyDurationMS as a duration.
func (c *Config) NotifyDuration() time.Duration { return ms(c.NotifyDurationMS) }

// NotifyDedupWindow returns NotifyDedupWindowMS as a duration.
func (c *Config) NotifyDedupWindow() time.Duration { return ms(c.NotifyDedupWindowMS) }

// ChartRefreshDelay returns ChartRefreshDelayMS as a duration.
func (c *Config) ChartRefreshDelay() time.Duration { return ms(c.ChartRefreshDelayMS) }

// SearchDebounce returns SearchDebounceMS as a duration.
func (c *Config) SearchDebounce() time.Duration { return ms(c.SearchDebounceMS) }

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
