package outreach

import (
	"errors"
	"time"

	"github.com/joss/openoutreach/internal/browser"
	"github.com/joss/openoutreach/internal/logging"
)

var (
	errMissing = errors.New("element not found")
	errBoom    = errors.New("boom")
)

// fakeDriver scripts a profile page for flow tests. Selector presence,
// text and click side-effects are declared up front; every interaction
// is recorded.
type fakeDriver struct {
	url string

	counts   map[string]int
	visible  map[string]bool
	disabled map[string]bool
	texts    map[string]string
	elements map[string][]browser.Element

	navErr   error
	clickErr map[string]error
	fillErr  map[string]error
	pasteErr map[string]error

	// onClick mutates the scripted page, e.g. a button click making the
	// composer input appear.
	onClick map[string]func(*fakeDriver)

	navigated []string
	clicks    []string
	filled    map[string]string
	pasted    map[string]string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		counts:   map[string]int{},
		visible:  map[string]bool{},
		disabled: map[string]bool{},
		texts:    map[string]string{},
		elements: map[string][]browser.Element{},
		clickErr: map[string]error{},
		fillErr:  map[string]error{},
		pasteErr: map[string]error{},
		onClick:  map[string]func(*fakeDriver){},
		filled:   map[string]string{},
		pasted:   map[string]string{},
	}
}

func (f *fakeDriver) Navigate(url string) error {
	f.navigated = append(f.navigated, url)
	if f.navErr != nil {
		return f.navErr
	}
	f.url = url
	return nil
}

func (f *fakeDriver) URL() string { return f.url }

func (f *fakeDriver) WaitURLContains(fragment string, timeout time.Duration) bool {
	return containsFold(f.url, fragment)
}

func (f *fakeDriver) WaitLoad() error { return nil }

func (f *fakeDriver) Count(selector string) int {
	return f.counts[selector]
}

func (f *fakeDriver) Visible(selector string) bool {
	if v, ok := f.visible[selector]; ok {
		return v
	}
	return f.counts[selector] > 0
}

func (f *fakeDriver) Enabled(selector string) bool {
	return f.counts[selector] > 0 && !f.disabled[selector]
}

func (f *fakeDriver) Click(selector string) error {
	f.clicks = append(f.clicks, selector)
	if err := f.clickErr[selector]; err != nil {
		return err
	}
	if f.counts[selector] == 0 {
		return errMissing
	}
	if fn, ok := f.onClick[selector]; ok {
		fn(f)
	}
	return nil
}

func (f *fakeDriver) Fill(selector, text string) error {
	if err := f.fillErr[selector]; err != nil {
		return err
	}
	if f.counts[selector] == 0 {
		return errMissing
	}
	f.filled[selector] = text
	return nil
}

func (f *fakeDriver) TypeSlow(selector, text string, delay time.Duration) error {
	if f.counts[selector] == 0 {
		return errMissing
	}
	return nil
}

func (f *fakeDriver) Paste(selector, text string) error {
	if err := f.pasteErr[selector]; err != nil {
		return err
	}
	if f.counts[selector] == 0 {
		return errMissing
	}
	f.pasted[selector] = text
	return nil
}

func (f *fakeDriver) Text(selector string) (string, error) {
	if f.counts[selector] == 0 {
		return "", errMissing
	}
	return f.texts[selector], nil
}

func (f *fakeDriver) Elements(selector string) []browser.Element {
	return f.elements[selector]
}

var _ browser.Driver = (*fakeDriver)(nil)

// fakeElement is a scripted thread item.
type fakeElement struct {
	text     string
	clickErr error
	clicked  bool
	children map[string]string
}

func (e *fakeElement) Text() string { return e.text }

func (e *fakeElement) Click() error {
	if e.clickErr != nil {
		return e.clickErr
	}
	e.clicked = true
	return nil
}

func (e *fakeElement) Has(selector string) bool {
	_, ok := e.children[selector]
	return ok
}

func (e *fakeElement) TextOf(selector string) (string, bool) {
	text, ok := e.children[selector]
	return text, ok
}

var _ browser.Element = (*fakeElement)(nil)

// newTestFlows wires a Flows onto the fake with millisecond timings so
// poll loops resolve instantly.
func newTestFlows(d *fakeDriver) (*Flows, *logging.Trail) {
	trail := logging.NewTrail("test")
	f := NewFlows(d, trail)
	f.pollInterval = time.Millisecond
	f.pollBudget = 20 * time.Millisecond
	f.navTimeout = 20 * time.Millisecond
	return f, trail
}

const testProfile = "https://www.linkedin.com/in/jane-doe/"

// profilePage scripts a loaded profile with a top card.
func profilePage() *fakeDriver {
	d := newFakeDriver()
	d.counts["section.pv-top-card"] = 1
	return d
}

func hasEntry(entries []string, substr string) bool {
	for _, e := range entries {
		if containsFold(e, substr) {
			return true
		}
	}
	return false
}
