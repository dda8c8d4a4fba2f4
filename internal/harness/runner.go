package harness

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lnnemml/pulse/internal/browser"
	"github.com/lnnemml/pulse/internal/config"
	"github.com/lnnemml/pulse/internal/engine"
	"github.com/lnnemml/pulse/internal/event"
	"github.com/lnnemml/pulse/internal/page"
	"github.com/lnnemml/pulse/internal/storage"
	"github.com/lnnemml/pulse/internal/testutil"
)

// Result is one scenario execution: the emitted stream and the clock and
// storage it ran against, for follow-up inspection.
type Result struct {
	Scenario *Scenario
	Stream   []event.Envelope
	Clock    *testutil.ManualClock
	Scopes   storage.Scopes
}

// Run executes the scenario's signal script against a fresh page session
// with a manual clock and fixed session ids, then checks its assertions.
func Run(s *Scenario) (*Result, error) {
	cfg := config.Default()
	if s.Config != nil {
		cfg = *s.Config
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}

	clock := testutil.NewManualClock()
	sink := &testutil.CaptureSink{}
	scopes := storage.Scopes{
		Session: storage.NewMemory(),
		Durable: storage.NewMemory(),
	}
	if len(s.Cart) > 0 {
		storage.SetJSON(scopes.Durable, storage.CartContentsKey, s.Cart)
	}

	ids := s.SessionIDs
	if len(ids) == 0 {
		ids = []string{"session-test-1"}
	}

	sess := engine.New(engine.Options{
		Location:      s.Page.Location,
		Referrer:      s.Page.Referrer,
		ViewportWidth: s.Page.ViewportWidth,
		Config:        cfg,
		Sink:          sink,
		Scopes:        scopes,
		Clock:         clock,
		IDs:           page.NewFixedGenerator(ids...),
		Logger:        slog.Default(),
	})

	for i, step := range s.Steps {
		if err := runStep(sess, clock, scopes, step); err != nil {
			return nil, fmt.Errorf("scenario %q step %d: %w", s.Name, i+1, err)
		}
	}
	if s.Close {
		sess.Close()
	}

	result := &Result{Scenario: s, Stream: sink.Envelopes, Clock: clock, Scopes: scopes}
	for i, assertion := range s.Assertions {
		if err := check(result.Stream, assertion); err != nil {
			return result, fmt.Errorf("scenario %q assertion %d: %w", s.Name, i+1, err)
		}
	}
	return result, nil
}

func runStep(sess *engine.PageSession, clock *testutil.ManualClock, scopes storage.Scopes, step Step) error {
	if step.AdvanceMS > 0 {
		clock.Advance(time.Duration(step.AdvanceMS) * time.Millisecond)
	}

	switch {
	case step.TickSeconds > 0:
		for i := 0; i < step.TickSeconds; i++ {
			clock.Advance(time.Second)
			sess.Dispatch(browser.Tick{})
		}
	case step.Tick != nil:
		sess.Dispatch(browser.Tick{})
	case step.Scroll != nil:
		sess.Dispatch(browser.Scroll{
			Top:            step.Scroll.Top,
			DocumentHeight: step.Scroll.DocumentHeight,
			ViewportHeight: step.Scroll.ViewportHeight,
		})
	case step.Click != nil:
		sess.Dispatch(browser.Click{
			X:        step.Click.X,
			Y:        step.Click.Y,
			Target:   element(step.Click.Target),
			Ancestry: elements(step.Click.Ancestry),
		})
	case step.PointerLeave != nil:
		sess.Dispatch(browser.PointerLeave{X: step.PointerLeave.X, Y: step.PointerLeave.Y})
	case step.Visibility != nil:
		sess.Dispatch(browser.Visibility{Hidden: step.Visibility.Hidden})
	case step.FocusIn != nil:
		sess.Dispatch(browser.FocusIn{
			FormID: step.FocusIn.FormID,
			Field:  browser.Field{Name: step.FocusIn.Field},
		})
	case step.FocusOut != nil:
		sess.Dispatch(browser.FocusOut{
			FormID:            step.FocusOut.FormID,
			Field:             browser.Field{Name: step.FocusOut.Field},
			Valid:             step.FocusOut.Valid,
			ValidationMessage: step.FocusOut.Message,
		})
	case step.Submit != nil:
		sess.Dispatch(browser.Submit{FormID: step.Submit.FormID, Valid: step.Submit.Valid})
	case step.Section != nil:
		sess.Dispatch(browser.SectionVisibility{
			SectionID:    step.Section.ID,
			Ratio:        step.Section.Ratio,
			Intersecting: step.Section.Intersecting,
		})
	case step.SetCart != nil:
		storage.SetJSON(scopes.Durable, storage.CartContentsKey, *step.SetCart)
		sess.Dispatch(browser.StorageChange{Key: storage.CartContentsKey})
	case step.Navigate != nil:
		sess.Dispatch(browser.Navigate{URL: step.Navigate.URL})
	case step.PageHide != nil:
		sess.Dispatch(browser.PageHide{})
	case step.AdvanceMS > 0:
		// clock move only
	default:
		return fmt.Errorf("empty step")
	}
	return nil
}

func element(e ElementStep) browser.Element {
	return browser.Element{
		Tag:             e.Tag,
		ID:              e.ID,
		Role:            e.Role,
		Classes:         e.Classes,
		Href:            e.Href,
		HasClickHandler: e.ClickHandler,
		Cursor:          e.Cursor,
		LinkColor:       e.LinkColor,
	}
}

func elements(steps []ElementStep) []browser.Element {
	if len(steps) == 0 {
		return nil
	}
	out := make([]browser.Element, len(steps))
	for i, e := range steps {
		out[i] = element(e)
	}
	return out
}
