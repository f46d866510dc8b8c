package browser

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joss/openoutreach/internal/logging"
)

// Goto wraps a guarded navigation: run the trigger, wait for the URL
// to contain the expected fragment, wait for the load event, then
// re-verify the fragment against the decoded URL.
//
// Single-page-app navigations frequently fire before the URL updates,
// so the URL wait alone gives false negatives and the load wait alone
// gives false positives; the final decoded re-check is what decides.
func Goto(d Driver, action func() error, fragment string, timeout time.Duration, errMsg string, trail *logging.Trail) error {
	if err := action(); err != nil {
		trail.Add("Navigation trigger failed: %v", err)
		return fmt.Errorf("%s: %w", errMsg, err)
	}

	// A timeout here is tolerable as long as the fragment is already
	// present; the SPA may simply never fire a URL change event.
	if !d.WaitURLContains(fragment, timeout) && !containsFold(d.URL(), fragment) {
		trail.Add("URL wait timed out for %q (at %s)", fragment, d.URL())
	}

	if err := d.WaitLoad(); err != nil {
		trail.Add("Load wait failed: %v", err)
	}

	current := d.URL()
	decoded, err := url.QueryUnescape(current)
	if err != nil {
		decoded = current
	}
	if !containsFold(decoded, fragment) {
		trail.Add("%s (expected %q, at %s)", errMsg, fragment, current)
		return fmt.Errorf("%w: %s: expected URL containing %q, got %q", ErrNavigation, errMsg, fragment, current)
	}
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
