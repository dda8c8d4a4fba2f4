// Package engine assembles the trackers into a page session: one object
// owning all page-lifetime state, fed normalized browser signals through a
// single synchronous dispatch path.
package engine

import (
	"log/slog"
	"time"

	"github.com/lnnemml/pulse/internal/browser"
	"github.com/lnnemml/pulse/internal/cart"
	"github.com/lnnemml/pulse/internal/config"
	"github.com/lnnemml/pulse/internal/event"
	"github.com/lnnemml/pulse/internal/exitintent"
	"github.com/lnnemml/pulse/internal/page"
	"github.com/lnnemml/pulse/internal/storage"
	"github.com/lnnemml/pulse/internal/track"
)

// slowResourceThreshold is the duration above which a performance entry is
// reported as a slow resource.
const slowResourceThreshold = 2 * time.Second

// Options configures a page session. Zero values get production defaults:
// system clock, in-memory storage, a fresh queue sink, UUIDv7 session ids.
type Options struct {
	Location      string
	Referrer      string
	ViewportWidth int

	Config config.Config
	Sink   event.Sink
	Scopes storage.Scopes
	Cart   storage.CartReader
	Clock  browser.Clock
	IDs    page.IDGenerator
	Logger *slog.Logger
}

// PageSession is the arena owning every tracker for one page lifetime.
//
// All mutation happens inside Dispatch, which must be called from one
// goroutine; within a dispatch every tracker completes synchronously.
// Trackers are created at construction and discarded as a unit with the
// session: nothing here outlives the page.
type PageSession struct {
	clock    browser.Clock
	emitter  *event.Emitter
	resolver *page.Resolver
	logger   *slog.Logger
	cfg      config.Config

	scroll   *track.ScrollTracker
	timer    *track.TimeTracker
	sections *track.SectionTracker
	dead     *track.DeadClickTracker
	rage     *track.RageTracker
	forms    *track.FormTracker
	ctas     *track.CTATracker
	cart     *cart.Machine
	exit     *exitintent.Detector

	session       page.Session
	lastIdleCheck time.Time
	closed        bool
}

// New constructs a page session and emits the initial page_view envelope
// with the resolved context.
func New(opts Options) *PageSession {
	if opts.Clock == nil {
		opts.Clock = browser.SystemClock{}
	}
	if opts.Sink == nil {
		opts.Sink = event.NewQueue()
	}
	if opts.Scopes.Session == nil {
		opts.Scopes.Session = storage.NewMemory()
	}
	if opts.Scopes.Durable == nil {
		opts.Scopes.Durable = storage.NewMemory()
	}
	if opts.Cart == nil {
		opts.Cart = storage.KVCartReader{Durable: opts.Scopes.Durable}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	resolver := page.NewResolver(opts.Clock, opts.Scopes, opts.Location, opts.Referrer, opts.ViewportWidth, opts.IDs)
	resolver.PrelandingHosts = opts.Config.PrelandingHosts

	emitter := event.NewEmitter(opts.Sink, opts.Clock.Now, func() (string, string) {
		return resolver.Location(), resolver.Path()
	}, opts.Logger)

	loadedAt := opts.Clock.Now()
	cfg := opts.Config

	s := &PageSession{
		clock:         opts.Clock,
		emitter:       emitter,
		resolver:      resolver,
		logger:        opts.Logger,
		cfg:           cfg,
		lastIdleCheck: loadedAt,
	}

	s.scroll = track.NewScrollTracker(emitter, resolver, cfg.ScrollThresholds)
	s.timer = track.NewTimeTracker(emitter, resolver, loadedAt, cfg.TimeThresholds)
	s.dead = track.NewDeadClickTracker(emitter, cfg.DeadClickThrottle())
	s.rage = track.NewRageTracker(emitter, cfg.RageThreshold, cfg.RageWindow(), cfg.RageRadiusPX, 2*cfg.DeadClickThrottle())
	s.forms = track.NewFormTracker(emitter, cfg.MinFieldDwell())
	if cfg.IntersectionObserver {
		s.sections = track.NewSectionTracker(emitter, cfg.DwellMilestones)
		s.ctas = track.NewCTATracker(emitter, s.scroll, s.timer, cfg.CTAIDs)
	}
	s.cart = cart.NewMachine(emitter, resolver, opts.Cart, opts.Scopes, cfg.IdleIntervals)
	s.exit = exitintent.NewDetector(emitter, resolver, opts.Scopes, s.scroll, s.cart, loadedAt, cfg.ExitMinDwell(), cfg.ExitDebounce())

	s.session = resolver.ResolveSession()
	s.emitPageView()
	s.cart.Sync(loadedAt)

	return s
}

func (s *PageSession) emitPageView() {
	payload := event.Payload{
		"page_type":      string(s.resolver.ClassifyPage()),
		"device_type":    string(s.resolver.ClassifyDevice()),
		"user_type":      string(s.resolver.ResolveUserType()),
		"traffic_source": s.resolver.ResolveTrafficSource(),
		"session_id":     s.session.ID,
		"session_is_new": s.session.IsNew,
	}
	if reddit := s.resolver.ResolveRedditContext(); reddit.Subreddit != "" {
		payload["subreddit"] = reddit.Subreddit
		payload["thread_id"] = reddit.ThreadID
	}
	s.emitter.Emit("page_view", payload)
}

// Session returns the resolved session record.
func (s *PageSession) Session() page.Session { return s.session }

// Dispatch routes one signal to the trackers it concerns. Never panics
// upward: a tracker failure is logged and swallowed, the page must keep
// working.
func (s *PageSession) Dispatch(sig browser.Signal) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("tracker panic swallowed", "kind", sig.Kind(), "panic", r)
		}
	}()
	if s.closed {
		return
	}
	now := s.clock.Now()

	switch sig := sig.(type) {
	case browser.Tick:
		s.onTick(now)
	case browser.Scroll:
		s.scroll.OnScroll(sig)
	case browser.Click:
		s.dead.OnClick(sig, now)
		s.rage.OnClick(sig, now)
		if s.ctas != nil {
			s.ctas.OnClick(sig, now)
		}
	case browser.PointerLeave:
		s.exit.OnPointerLeave(sig.Y, now)
	case browser.Visibility:
		s.timer.OnVisibility(sig.Hidden)
		if sig.Hidden {
			s.forms.OnPageHide(now)
			s.exit.OnHidden(now)
		}
	case browser.FocusIn:
		s.forms.OnFocusIn(sig, now)
	case browser.FocusOut:
		s.forms.OnFocusOut(sig, now)
	case browser.Submit:
		s.forms.OnSubmit(sig, now)
	case browser.SectionVisibility:
		if s.sections != nil {
			s.sections.OnIntersection(sig, now)
			s.ctas.OnIntersection(sig)
		}
	case browser.StorageChange:
		if sig.Key == storage.CartContentsKey {
			s.cart.Sync(now)
		}
	case browser.Navigate:
		s.resolver.SetLocation(sig.URL)
		s.cart.Sync(now)
		s.exit.OnNavigate(now)
	case browser.PageHide:
		s.teardown(now)
	case browser.PerformanceEntry:
		if s.cfg.PerformanceObserver && sig.Duration >= slowResourceThreshold {
			s.emitter.Emit("slow_resource", event.Payload{
				"resource":    sig.Name,
				"duration_ms": int(sig.Duration / time.Millisecond),
			})
		}
	}
}

// onTick runs the 1-second sampling work: time marks, section dwell, the
// same-tab cart polling fallback, and the 30-second idle check.
func (s *PageSession) onTick(now time.Time) {
	s.timer.OnTick(now)
	if s.sections != nil {
		s.sections.OnTick(now)
	}
	s.cart.Sync(now)
	if now.Sub(s.lastIdleCheck) >= cart.IdlePollPeriod {
		s.lastIdleCheck = now
		s.cart.CheckIdle(now)
	}
}

// teardown is the page destruction path: final form abandons, section
// summaries, the exit catch-all, and the final cart abandonment. Runs
// once; later signals are ignored.
func (s *PageSession) teardown(now time.Time) {
	if s.closed {
		return
	}
	s.closed = true

	s.forms.OnPageHide(now)
	if s.sections != nil {
		s.sections.OnPageHide(now)
	}
	s.exit.OnPageHide(now)
	s.cart.OnPageHide(now)
}

// Close tears the session down as if the page unloaded.
func (s *PageSession) Close() {
	s.teardown(s.clock.Now())
}
