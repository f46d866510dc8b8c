package outreach

import (
	"strings"
	"time"

	"github.com/joss/openoutreach/internal/browser"
	"github.com/joss/openoutreach/internal/logging"
)

const (
	defaultPollInterval = 250 * time.Millisecond
	defaultPollBudget   = 5 * time.Second
	defaultNavTimeout   = 15 * time.Second
)

// Flows bundles the profile-level UI flows for one request. It rides
// on a single browser driver and must be used sequentially, like the
// session it wraps.
type Flows struct {
	d     browser.Driver
	res   *browser.Resolver
	trail *logging.Trail

	pollInterval time.Duration
	pollBudget   time.Duration
	navTimeout   time.Duration
}

// NewFlows creates the flow bundle with production timings.
func NewFlows(d browser.Driver, trail *logging.Trail) *Flows {
	return &Flows{
		d:            d,
		res:          browser.NewResolver(trail),
		trail:        trail,
		pollInterval: defaultPollInterval,
		pollBudget:   defaultPollBudget,
		navTimeout:   defaultNavTimeout,
	}
}

// gotoProfile performs a guarded navigation to a profile URL.
func (f *Flows) gotoProfile(profileURL string) error {
	return browser.Goto(f.d, func() error {
		return f.d.Navigate(profileURL)
	}, "/in/", f.navTimeout, "profile navigation failed", f.trail)
}

// pollUntil evaluates cond at the flow's poll interval until it holds
// or the budget runs out.
func (f *Flows) pollUntil(cond func() bool) bool {
	deadline := time.Now().Add(f.pollBudget)
	for {
		if cond() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(f.pollInterval)
	}
}

// anyPresent reports whether any of the concept's selectors currently
// match, without trail noise (used inside poll loops).
func (f *Flows) anyPresent(c browser.Concept) bool {
	for _, sel := range c.Selectors {
		if f.d.Count(sel) > 0 {
			return true
		}
	}
	return false
}

// anyVisible is anyPresent restricted to visible matches.
func (f *Flows) anyVisible(c browser.Concept) bool {
	for _, sel := range c.Selectors {
		if f.d.Visible(sel) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
