package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(`
scroll_thresholds: [25, 50, 75, 90, 100]
time_thresholds: [10, 30, 60]
idle_intervals: [30, 60, 120]
dead_click_throttle_ms: 1500
rage_threshold: 4
rage_window_ms: 2500
rage_radius_px: 40
min_field_dwell_ms: 750
exit_min_dwell_ms: 8000
exit_debounce_ms: 250
cta_ids: [buy-now, add-to-cart]
prelanding_hosts: [landing.shop.test]
intersection_observer: true
performance_observer: false
`))
	require.NoError(t, err)

	assert.Equal(t, []int{25, 50, 75, 90, 100}, cfg.ScrollThresholds)
	assert.Equal(t, []int{30, 60, 120}, cfg.IdleIntervals)
	assert.Equal(t, 4, cfg.RageThreshold)
	assert.Equal(t, 1500*time.Millisecond, cfg.DeadClickThrottle())
	assert.Equal(t, 2500*time.Millisecond, cfg.RageWindow())
	assert.Equal(t, 750*time.Millisecond, cfg.MinFieldDwell())
	assert.Equal(t, 8*time.Second, cfg.ExitMinDwell())
	assert.Equal(t, 250*time.Millisecond, cfg.ExitDebounce())
	assert.Equal(t, []string{"buy-now", "add-to-cart"}, cfg.CTAIDs)
	assert.True(t, cfg.IntersectionObserver)
	assert.False(t, cfg.PerformanceObserver)
}

func TestParse_EmptyIsValid(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	require.NoError(t, err)
	assert.Empty(t, cfg.ScrollThresholds, "zero lists defer to tracker defaults")
	assert.True(t, cfg.IntersectionObserver)
	assert.True(t, cfg.PerformanceObserver)
}

func TestParse_Rejections(t *testing.T) {
	cases := map[string]string{
		"descending scroll":   "scroll_thresholds: [50, 25]",
		"duplicate intervals": "idle_intervals: [30, 30, 60]",
		"scroll above 100":    "scroll_thresholds: [25, 150]",
		"zero threshold":      "time_thresholds: [0, 10]",
		"rage threshold of 1": "rage_threshold: 1",
		"negative throttle":   "dead_click_throttle_ms: -5",
		"malformed yaml":      "scroll_thresholds: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestValidate_Default(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte("idle_intervals: [30, 60]\nintersection_observer: true\nperformance_observer: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []int{30, 60}, cfg.IdleIntervals)

	_, err = Load(filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
}
