package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/joss/openoutreach/internal/logging"
	"github.com/joss/openoutreach/internal/metrics"
	"github.com/joss/openoutreach/internal/statestore"
)

const (
	defaultRedirectWait = 30 * time.Second
	restoreValidateWait = 15 * time.Second
)

// Options configures one browser session.
type Options struct {
	BaseURL     string
	Headless    bool
	SlowMo      time.Duration
	TypeDelay   time.Duration
	Credentials Credentials
	SessionKey  string
	Store       *statestore.Store
	Trail       *logging.Trail
}

// Session owns exactly one browser context and page. One session is
// one linear sequence of navigations; it is not safe to share across
// goroutines. Created per outreach request, closed in a deferred call
// whatever the outcome.
type Session struct {
	opts Options
	log  *logging.Logger

	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	drv      Driver
}

// NewSession creates an unlaunched session.
func NewSession(opts Options) *Session {
	if opts.TypeDelay <= 0 {
		opts.TypeDelay = 60 * time.Millisecond
	}
	return &Session{
		opts: opts,
		log:  logging.New("browser").WithSession(statestore.SanitizeKey(opts.SessionKey)),
	}
}

// Driver returns the page-interaction surface. Nil before EnsureReady
// or after Close.
func (s *Session) Driver() Driver {
	return s.drv
}

// EnsureReady launches the browser if needed, restores persisted
// session state when present, validates it against an authenticated
// URL, and falls back to a fresh login (persisting the new state) when
// the restore is stale. Idempotent: a live session returns immediately.
func (s *Session) EnsureReady(ctx context.Context) error {
	if s.drv != nil {
		return nil
	}
	start := time.Now()

	path, _ := launcher.LookPath()
	l := launcher.New().Bin(path).Headless(s.opts.Headless).Leakless(true)
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	s.launcher = l

	b := rod.New().ControlURL(controlURL)
	if s.opts.SlowMo > 0 {
		b = b.SlowMotion(s.opts.SlowMo)
	}
	if err := b.Connect(); err != nil {
		s.Close()
		return fmt.Errorf("connect browser: %w", err)
	}
	s.browser = b

	restored := s.restoreState(ctx)

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		s.Close()
		return fmt.Errorf("open page: %w", err)
	}
	s.page = page
	s.drv = newRodDriver(page)

	fresh, err := ensureAuthenticated(s.drv, s.opts.Credentials, s.opts.BaseURL, s.opts.TypeDelay, defaultRedirectWait, restored, s.opts.Trail)
	if err != nil {
		metrics.Global().RecordLogin(false)
		return err
	}
	if !fresh {
		metrics.Global().RecordStateRestore()
		s.log.TimedEvent("session_ready", start, map[string]interface{}{"restored": true})
		return nil
	}
	metrics.Global().RecordLogin(true)

	if restored {
		// Stale blob; the fresh login below overwrites it anyway, but
		// drop it now so a crash mid-save leaves no bad state behind.
		s.opts.Store.Delete(s.opts.SessionKey)
	}
	s.saveState(ctx)
	s.log.TimedEvent("session_ready", start, map[string]interface{}{"restored": false})
	return nil
}

// restoreState loads and injects persisted cookies. Returns whether
// anything was restored.
func (s *Session) restoreState(ctx context.Context) bool {
	if s.opts.Store == nil {
		return false
	}
	state, ok := s.opts.Store.Load(ctx, s.opts.SessionKey)
	if !ok || len(state.Cookies) == 0 {
		return false
	}
	if err := s.browser.SetCookies(proto.CookiesToParams(state.Cookies)); err != nil {
		s.log.Warn("cookie_restore_failed", nil, err)
		return false
	}
	s.opts.Trail.Add("Restored persisted session state (%d cookies)", len(state.Cookies))
	return true
}

// saveState exports cookies after a fresh login. Best effort: a save
// failure must not fail a login that already succeeded.
func (s *Session) saveState(ctx context.Context) {
	if s.opts.Store == nil {
		return
	}
	cookies, err := s.browser.GetCookies()
	if err != nil {
		s.log.Warn("cookie_export_failed", nil, err)
		return
	}
	if err := s.opts.Store.Save(ctx, s.opts.SessionKey, &statestore.State{Cookies: cookies}); err != nil {
		s.log.Warn("state_save_failed", nil, err)
		return
	}
	s.opts.Trail.Add("Saved fresh session state (%d cookies)", len(cookies))
}

// Close tears down page, browser, then launcher, each step guarded so
// one failure never blocks the next. Safe to call repeatedly; all
// handles end up nil either way.
func (s *Session) Close() {
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			s.log.Warn("page_close_failed", nil, err)
		}
		s.page = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.log.Warn("browser_close_failed", nil, err)
		}
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
		s.launcher = nil
	}
	s.drv = nil
}

// ensureAuthenticated decides between trusting a restored state and
// running the login flow. Returns fresh=true when a login happened and
// new state should be persisted.
func ensureAuthenticated(d Driver, creds Credentials, baseURL string, typeDelay, redirectWait time.Duration, restored bool, trail *logging.Trail) (bool, error) {
	if restored {
		if validateRestored(d, baseURL, trail) {
			trail.Add("Restored state validated, skipping login")
			return false, nil
		}
		trail.Add("Restored state stale, performing fresh login")
	}

	if err := runLogin(d, creds, baseURL, typeDelay, redirectWait, trail); err != nil {
		return false, err
	}
	return true, nil
}

// validateRestored checks a restored state by visiting the feed: the
// URL must land on /feed and no login form may be present. Positive
// evidence only.
func validateRestored(d Driver, baseURL string, trail *logging.Trail) bool {
	if err := d.Navigate(baseURL + "/feed/"); err != nil {
		trail.Add("Validation navigation failed: %v", err)
		return false
	}
	if !d.WaitURLContains("/feed", restoreValidateWait) {
		trail.Add("Validation landed on %s, not the feed", d.URL())
		return false
	}
	for _, sel := range loginUserField.Selectors {
		if d.Count(sel) > 0 {
			trail.Add("Login form present after restore, state rejected")
			return false
		}
	}
	return true
}
