package browser

import (
	"errors"
	"time"
)

// fakeDriver scripts a page for flow tests. Selector presence, text
// and URL transitions are all declared up front; every interaction is
// recorded.
type fakeDriver struct {
	url string

	counts   map[string]int
	visible  map[string]bool
	disabled map[string]bool
	texts    map[string]string
	elements map[string][]Element

	navErr     error
	clickErr   map[string]error
	typeErr    map[string]error
	fillErr    map[string]error
	pasteErr   map[string]error
	urlOnClick map[string]string

	navigated []string
	clicks    []string
	typed     map[string]string
	filled    map[string]string
	pasted    map[string]string
	counted   []string
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		counts:     map[string]int{},
		visible:    map[string]bool{},
		disabled:   map[string]bool{},
		texts:      map[string]string{},
		elements:   map[string][]Element{},
		clickErr:   map[string]error{},
		typeErr:    map[string]error{},
		fillErr:    map[string]error{},
		pasteErr:   map[string]error{},
		urlOnClick: map[string]string{},
		typed:      map[string]string{},
		filled:     map[string]string{},
		pasted:     map[string]string{},
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
	f.counted = append(f.counted, selector)
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
		return errNotFound
	}
	if next, ok := f.urlOnClick[selector]; ok {
		f.url = next
	}
	return nil
}

func (f *fakeDriver) Fill(selector, text string) error {
	if err := f.fillErr[selector]; err != nil {
		return err
	}
	if f.counts[selector] == 0 {
		return errNotFound
	}
	f.filled[selector] = text
	return nil
}

func (f *fakeDriver) TypeSlow(selector, text string, delay time.Duration) error {
	if err := f.typeErr[selector]; err != nil {
		return err
	}
	if f.counts[selector] == 0 {
		return errNotFound
	}
	f.typed[selector] = text
	return nil
}

func (f *fakeDriver) Paste(selector, text string) error {
	if err := f.pasteErr[selector]; err != nil {
		return err
	}
	if f.counts[selector] == 0 {
		return errNotFound
	}
	f.pasted[selector] = text
	return nil
}

func (f *fakeDriver) Text(selector string) (string, error) {
	if f.counts[selector] == 0 {
		return "", errNotFound
	}
	return f.texts[selector], nil
}

func (f *fakeDriver) Elements(selector string) []Element {
	return f.elements[selector]
}

var _ Driver = (*fakeDriver)(nil)

// fakeElement is a scripted DOM node.
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

var _ Element = (*fakeElement)(nil)

var errBoom = errors.New("boom")
