package browser

import (
	"time"

	"github.com/joss/openoutreach/internal/logging"
)

// Login form selector tables. Two mutually exclusive variants exist:
// the authwall (join form with a sign-in toggle) and the plain login
// form. Which one is served depends on cookie/geo state, not URL, so
// detection counts variant markers on the loaded page.
var (
	loginUserField = Concept{
		Name: "login username field",
		Selectors: []string{
			"#username",
			`input[name="session_key"]`,
			`input[autocomplete="username"]`,
		},
	}

	loginPassField = Concept{
		Name: "login password field",
		Selectors: []string{
			"#password",
			`input[name="session_password"]`,
			`input[type="password"]`,
		},
	}

	loginSubmitButton = Concept{
		Name: "login submit button",
		Selectors: []string{
			`button[type="submit"][aria-label*="Sign in"]`,
			".login__form_action_container button",
			`button[type="submit"]`,
		},
	}

	authwallSignInToggle = Concept{
		Name: "authwall sign-in toggle",
		Selectors: []string{
			".authwall-join-form__form-toggle--bottom",
			`button[data-tracking-control-name*="switch_to_sign_in"]`,
			`a[data-tracking-control-name*="auth_wall"][href*="login"]`,
		},
	}

	authwallMarkers = []string{
		".authwall-join-form",
		"form.join-form",
		`[data-tracking-control-name*="auth_wall"]`,
	}

	directFormMarkers = []string{
		"form.login__form",
		"#organic-div form",
		`form[action*="login-submit"]`,
	}
)

// Fragments that count as a conclusive post-login location.
var loginRedirectFragments = []string{"/feed", "/in/", "/checkpoint"}

type loginState int

const (
	loginStart loginState = iota
	loginDetectVariant
	loginAuthwallForm
	loginDirectForm
	loginSubmitCredentials
	loginAwaitRedirect
)

// loginFlow drives the multi-branch login UI as an explicit state
// machine so each terminal path is independently testable.
type loginFlow struct {
	d            Driver
	res          *Resolver
	creds        Credentials
	baseURL      string
	typeDelay    time.Duration
	redirectWait time.Duration
	trail        *logging.Trail
}

// runLogin executes the full login flow. The returned error is one of
// the fatal sentinels or a wrapped driver failure; a nil return means
// the session is authenticated.
func runLogin(d Driver, creds Credentials, baseURL string, typeDelay, redirectWait time.Duration, trail *logging.Trail) error {
	f := &loginFlow{
		d:            d,
		res:          NewResolver(trail),
		creds:        creds,
		baseURL:      baseURL,
		typeDelay:    typeDelay,
		redirectWait: redirectWait,
		trail:        trail,
	}
	return f.run()
}

func (f *loginFlow) run() error {
	state := loginStart
	for {
		var err error
		switch state {
		case loginStart:
			if err = f.d.Navigate(f.baseURL + "/login"); err != nil {
				f.trail.Add("Login page navigation failed: %v", err)
				return err
			}
			state = loginDetectVariant

		case loginDetectVariant:
			state = f.detectVariant()

		case loginAuthwallForm:
			// The join wall hides the sign-in form behind a toggle.
			if toggle, ok := f.res.First(f.d, authwallSignInToggle); ok {
				if err = f.d.Click(toggle); err != nil {
					f.trail.Add("Sign-in toggle click failed: %v", err)
				}
			}
			state = loginSubmitCredentials

		case loginDirectForm:
			state = loginSubmitCredentials

		case loginSubmitCredentials:
			if err = f.submitCredentials(); err != nil {
				return err
			}
			state = loginAwaitRedirect

		case loginAwaitRedirect:
			return f.awaitRedirect()
		}
	}
}

// detectVariant scores both variants by marker presence-count.
func (f *loginFlow) detectVariant() loginState {
	authwallScore := 0
	for _, sel := range authwallMarkers {
		authwallScore += f.d.Count(sel)
	}
	directScore := 0
	for _, sel := range directFormMarkers {
		directScore += f.d.Count(sel)
	}

	if authwallScore > directScore {
		f.trail.Add("Authwall variant detected (%d vs %d markers)", authwallScore, directScore)
		return loginAuthwallForm
	}
	f.trail.Add("Direct login form detected (%d vs %d markers)", directScore, authwallScore)
	return loginDirectForm
}

// submitCredentials fills the form with a per-character delay.
// Programmatic one-shot fills are sometimes rejected on this form, so
// typing is deliberately slow.
func (f *loginFlow) submitCredentials() error {
	userSel, ok := f.res.First(f.d, loginUserField)
	if !ok {
		return ErrLoginFieldMissing
	}
	if err := f.d.TypeSlow(userSel, f.creds.Username, f.typeDelay); err != nil {
		f.trail.Add("Username input failed: %v", err)
		return err
	}

	passSel, ok := f.res.First(f.d, loginPassField)
	if !ok {
		f.trail.Add("Password field not found")
		return ErrLoginFieldMissing
	}
	if err := f.d.TypeSlow(passSel, f.creds.Password, f.typeDelay); err != nil {
		f.trail.Add("Password input failed: %v", err)
		return err
	}

	submitSel, ok := f.res.First(f.d, loginSubmitButton)
	if !ok {
		f.trail.Add("Submit button not found")
		return ErrLoginFieldMissing
	}
	if err := f.d.Click(submitSel); err != nil {
		f.trail.Add("Submit click failed: %v", err)
		return err
	}
	f.trail.Add("Credentials submitted")
	return nil
}

// awaitRedirect waits for one of the conclusive URL fragments.
func (f *loginFlow) awaitRedirect() error {
	deadline := time.Now().Add(f.redirectWait)
	for {
		current := f.d.URL()
		for _, frag := range loginRedirectFragments {
			if containsFold(current, frag) {
				if frag == "/checkpoint" {
					f.trail.Add("Challenge checkpoint hit at %s", current)
					return ErrChallengeDetected
				}
				f.trail.Add("Login redirect landed on %s", current)
				return nil
			}
		}
		if time.Now().After(deadline) {
			f.trail.Add("Login redirect timed out at %s", current)
			return ErrUnexpectedRedirect
		}
		time.Sleep(200 * time.Millisecond)
	}
}
