// Package config loads tracker configuration from YAML and validates it
// against the embedded CUE schema before the engine sees it.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config is the full tracker configuration. Zero values fall back to the
// per-tracker defaults, so an empty config is a valid config.
type Config struct {
	// Threshold lists, all strictly ascending.
	ScrollThresholds []int `yaml:"scroll_thresholds" json:"scroll_thresholds,omitempty"`
	TimeThresholds   []int `yaml:"time_thresholds" json:"time_thresholds,omitempty"`
	DwellMilestones  []int `yaml:"dwell_milestones" json:"dwell_milestones,omitempty"`
	IdleIntervals    []int `yaml:"idle_intervals" json:"idle_intervals,omitempty"`

	// Interaction classifier tuning.
	DeadClickThrottleMS int `yaml:"dead_click_throttle_ms" json:"dead_click_throttle_ms,omitempty"`
	RageThreshold       int `yaml:"rage_threshold" json:"rage_threshold,omitempty"`
	RageWindowMS        int `yaml:"rage_window_ms" json:"rage_window_ms,omitempty"`
	RageRadiusPX        int `yaml:"rage_radius_px" json:"rage_radius_px,omitempty"`
	MinFieldDwellMS     int `yaml:"min_field_dwell_ms" json:"min_field_dwell_ms,omitempty"`

	// Exit-intent gates.
	ExitMinDwellMS int `yaml:"exit_min_dwell_ms" json:"exit_min_dwell_ms,omitempty"`
	ExitDebounceMS int `yaml:"exit_debounce_ms" json:"exit_debounce_ms,omitempty"`

	// Watched elements and attribution.
	CTAIDs          []string `yaml:"cta_ids" json:"cta_ids,omitempty"`
	PrelandingHosts []string `yaml:"prelanding_hosts" json:"prelanding_hosts,omitempty"`

	// Observer availability. A missing browser API is modeled by turning
	// the observer off: the dependent trackers simply do not initialize.
	IntersectionObserver bool `yaml:"intersection_observer" json:"intersection_observer"`
	PerformanceObserver  bool `yaml:"performance_observer" json:"performance_observer"`
}

// Default returns the configuration used when no file is given: all
// defaults, observers available.
func Default() Config {
	return Config{
		IntersectionObserver: true,
		PerformanceObserver:  true,
	}
}

// Load reads a YAML config file and validates it.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes YAML config bytes and validates them against the schema.
func Parse(raw []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate unifies the config with the embedded CUE schema. Threshold
// lists must be strictly ascending and positive; throttles and windows
// must be positive.
func Validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	val := ctx.Encode(cfg)
	if err := val.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	unified := schema.Unify(val)
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	for name, list := range map[string][]int{
		"scroll_thresholds": cfg.ScrollThresholds,
		"time_thresholds":   cfg.TimeThresholds,
		"dwell_milestones":  cfg.DwellMilestones,
		"idle_intervals":    cfg.IdleIntervals,
	} {
		if err := ascending(name, list); err != nil {
			return err
		}
	}
	return nil
}

func ascending(name string, list []int) error {
	for i := 1; i < len(list); i++ {
		if list[i] <= list[i-1] {
			return fmt.Errorf("invalid config: %s must be strictly ascending, got %v", name, list)
		}
	}
	return nil
}

// Duration helpers: zero means "use the tracker default".

func (c Config) DeadClickThrottle() time.Duration {
	return time.Duration(c.DeadClickThrottleMS) * time.Millisecond
}

func (c Config) RageWindow() time.Duration {
	return time.Duration(c.RageWindowMS) * time.Millisecond
}

func (c Config) MinFieldDwell() time.Duration {
	return time.Duration(c.MinFieldDwellMS) * time.Millisecond
}

func (c Config) ExitMinDwell() time.Duration {
	return time.Duration(c.ExitMinDwellMS) * time.Millisecond
}

func (c Config) ExitDebounce() time.Duration {
	return time.Duration(c.ExitDebounceMS) * time.Millisecond
}
