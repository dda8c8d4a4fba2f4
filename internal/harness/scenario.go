// Package harness executes YAML signal scenarios against a page session
// and validates the emitted event stream: step scripts, stream
// assertions, and goldie golden snapshots in canonical JSON.
package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lnnemml/pulse/internal/config"
	"github.com/lnnemml/pulse/internal/storage"
)

// Scenario is one scripted page visit: the page context, initial storage
// state, a signal script, and assertions on the resulting stream.
type Scenario struct {
	// Name uniquely identifies this scenario; it doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Page is the visit context at load time.
	Page PageSetup `yaml:"page"`

	// Config overrides tracker defaults. Empty means defaults with both
	// observers available.
	Config *config.Config `yaml:"config,omitempty"`

	// Cart is the initial persisted cart contents (owned by the external
	// cart subsystem; the engine only reads it).
	Cart []storage.CartItem `yaml:"cart,omitempty"`

	// SessionIDs are the fixed session ids handed out in order, for
	// deterministic golden comparison. Defaults to a single
	// "session-test-1".
	SessionIDs []string `yaml:"session_ids,omitempty"`

	// Steps is the signal script, executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final stream.
	// Supported types: stream_contains, stream_order, stream_count.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Close tears the session down after the script (page unload) before
	// assertions run.
	Close bool `yaml:"close,omitempty"`
}

// PageSetup is the visit context at load time.
type PageSetup struct {
	Location      string `yaml:"location"`
	Referrer      string `yaml:"referrer,omitempty"`
	ViewportWidth int    `yaml:"viewport_width"`
}

// Step is one scripted signal. Exactly one field should be set; AdvanceMS
// may be combined with any signal to move the clock first.
type Step struct {
	// AdvanceMS moves the manual clock forward before the signal fires.
	AdvanceMS int `yaml:"advance_ms,omitempty"`

	Tick         *struct{}           `yaml:"tick,omitempty"`
	Scroll       *ScrollStep         `yaml:"scroll,omitempty"`
	Click        *ClickStep          `yaml:"click,omitempty"`
	PointerLeave *PointerLeaveStep   `yaml:"pointer_leave,omitempty"`
	Visibility   *VisibilityStep     `yaml:"visibility,omitempty"`
	FocusIn      *FocusStep          `yaml:"focus_in,omitempty"`
	FocusOut     *FocusOutStep       `yaml:"focus_out,omitempty"`
	Submit       *SubmitStep         `yaml:"submit,omitempty"`
	Section      *SectionStep        `yaml:"section,omitempty"`
	SetCart      *[]storage.CartItem `yaml:"set_cart,omitempty"`
	Navigate     *NavigateStep       `yaml:"navigate,omitempty"`
	PageHide     *struct{}           `yaml:"page_hide,omitempty"`

	// TickSeconds repeats a 1-second advance + tick N times, for long
	// idle scripts.
	TickSeconds int `yaml:"tick_seconds,omitempty"`
}

// ScrollStep carries raw scroll measurements.
type ScrollStep struct {
	Top            float64 `yaml:"top"`
	DocumentHeight float64 `yaml:"document_height"`
	ViewportHeight float64 `yaml:"viewport_height"`
}

// ElementStep describes a click target or ancestor.
type ElementStep struct {
	Tag          string   `yaml:"tag"`
	ID           string   `yaml:"id,omitempty"`
	Role         string   `yaml:"role,omitempty"`
	Classes      []string `yaml:"classes,omitempty"`
	Href         string   `yaml:"href,omitempty"`
	ClickHandler bool     `yaml:"click_handler,omitempty"`
	Cursor       string   `yaml:"cursor,omitempty"`
	LinkColor    bool     `yaml:"link_color,omitempty"`
}

// ClickStep is a pointer click.
type ClickStep struct {
	X        int           `yaml:"x"`
	Y        int           `yaml:"y"`
	Target   ElementStep   `yaml:"target"`
	Ancestry []ElementStep `yaml:"ancestry,omitempty"`
}

// PointerLeaveStep is a mouseout leaving the window.
type PointerLeaveStep struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// VisibilityStep is a visibilitychange.
type VisibilityStep struct {
	Hidden bool `yaml:"hidden"`
}

// FocusStep is focus entering a form field.
type FocusStep struct {
	FormID string `yaml:"form_id"`
	Field  string `yaml:"field"`
}

// FocusOutStep is focus leaving a form field.
type FocusOutStep struct {
	FormID  string `yaml:"form_id"`
	Field   string `yaml:"field"`
	Valid   bool   `yaml:"valid"`
	Message string `yaml:"message,omitempty"`
}

// SubmitStep is a form submission.
type SubmitStep struct {
	FormID string `yaml:"form_id"`
	Valid  bool   `yaml:"valid"`
}

// SectionStep is an intersection-observer callback.
type SectionStep struct {
	ID           string  `yaml:"id"`
	Ratio        float64 `yaml:"ratio"`
	Intersecting bool    `yaml:"intersecting"`
}

// NavigateStep is a client-side navigation.
type NavigateStep struct {
	URL string `yaml:"url"`
}

// Assertion validates the emitted stream.
type Assertion struct {
	// Type is stream_contains, stream_order, or stream_count.
	Type string `yaml:"type"`

	// Event names one event (stream_contains, stream_count).
	Event string `yaml:"event,omitempty"`

	// Payload is a subset match on the event payload (stream_contains).
	Payload map[string]any `yaml:"payload,omitempty"`

	// Events lists names that must appear in this relative order
	// (stream_order).
	Events []string `yaml:"events,omitempty"`

	// Count is the exact occurrence count (stream_count).
	Count int `yaml:"count,omitempty"`
}

// LoadScenario reads and decodes one scenario file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: missing name", path)
	}
	if s.Page.Location == "" {
		return nil, fmt.Errorf("scenario %q: missing page.location", s.Name)
	}
	return &s, nil
}
