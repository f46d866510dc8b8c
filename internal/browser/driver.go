// Package browser owns the automation session: browser lifecycle,
// persisted-state restore, the login state machine, guarded navigation
// and drift-tolerant selector resolution.
//
// Flows talk to the Driver interface rather than the automation
// library so every terminal and fallback path stays testable without a
// live browser.
package browser

import (
	"errors"
	"time"
)

// Credentials are supplied per request and never logged.
type Credentials struct {
	Username string
	Password string
}

// Fatal login failures. Anything else the flows treat as a soft,
// logged outcome.
var (
	// ErrChallengeDetected means the site raised its anti-automation
	// checkpoint. Unrecoverable for this session.
	ErrChallengeDetected = errors.New("login challenge/checkpoint detected")

	// ErrLoginFieldMissing means no username field appeared on any
	// known login form variant.
	ErrLoginFieldMissing = errors.New("login form username field not found")

	// ErrUnexpectedRedirect means the post-login URL matched none of
	// the expected patterns before the deadline.
	ErrUnexpectedRedirect = errors.New("post-login redirect did not match any expected pattern")

	// ErrNavigation marks a guarded navigation that did not land on the
	// expected URL.
	ErrNavigation = errors.New("navigation failed")

	// errNotFound reports an absent element from driver lookups.
	errNotFound = errors.New("element not found")
)

// Driver is the page-interaction surface the flows run against.
// Lookups never wait for elements to appear; absence is an answer,
// not an error. All waiting is explicit and bounded.
type Driver interface {
	// Navigate loads url and waits for the load event.
	Navigate(url string) error

	// URL returns the current page URL, or "" if unavailable.
	URL() string

	// WaitURLContains polls until the URL contains fragment or the
	// timeout passes. Returns whether the fragment was seen.
	WaitURLContains(fragment string, timeout time.Duration) bool

	// WaitLoad waits for the page load lifecycle event.
	WaitLoad() error

	// Count returns how many elements currently match selector.
	Count(selector string) int

	// Visible reports whether at least one match exists and is visible.
	Visible(selector string) bool

	// Enabled reports whether the first match exists and is not disabled.
	Enabled(selector string) bool

	// Click clicks the first match.
	Click(selector string) error

	// Fill replaces the first match's content with text in one shot.
	Fill(selector, text string) error

	// TypeSlow types text into the first match with a per-character
	// delay, mimicking human input.
	TypeSlow(selector, text string, delay time.Duration) error

	// Paste inserts text into the focused first match via the
	// input-insertion primitive, bypassing programmatic fill.
	Paste(selector, text string) error

	// Text returns the first match's text content.
	Text(selector string) (string, error)

	// Elements returns all current matches for scraping.
	Elements(selector string) []Element
}

// Element is an item handle scoped to one DOM node.
type Element interface {
	// Text returns the node's text content.
	Text() string

	// Click clicks the node.
	Click() error

	// Has reports whether a descendant matches selector.
	Has(selector string) bool

	// TextOf returns the text of the first descendant matching
	// selector, with ok=false when absent.
	TextOf(selector string) (string, bool)
}
