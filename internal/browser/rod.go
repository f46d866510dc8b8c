package browser

import (
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// rodDriver implements Driver on a live rod page.
type rodDriver struct {
	page *rod.Page
}

func newRodDriver(page *rod.Page) *rodDriver {
	return &rodDriver{page: page}
}

// find returns the first current match without waiting.
func (d *rodDriver) find(selector string) (*rod.Element, error) {
	has, el, err := d.page.Has(selector)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, errNotFound
	}
	return el, nil
}

func (d *rodDriver) Navigate(url string) error {
	if err := d.page.Navigate(url); err != nil {
		return err
	}
	return d.page.WaitLoad()
}

func (d *rodDriver) URL() string {
	info, err := d.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (d *rodDriver) WaitURLContains(fragment string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if containsFold(d.URL(), fragment) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func (d *rodDriver) WaitLoad() error {
	return d.page.WaitLoad()
}

func (d *rodDriver) Count(selector string) int {
	els, err := d.page.Elements(selector)
	if err != nil {
		return 0
	}
	return len(els)
}

func (d *rodDriver) Visible(selector string) bool {
	el, err := d.find(selector)
	if err != nil {
		return false
	}
	visible, err := el.Visible()
	return err == nil && visible
}

func (d *rodDriver) Enabled(selector string) bool {
	el, err := d.find(selector)
	if err != nil {
		return false
	}
	prop, err := el.Property("disabled")
	if err != nil {
		return false
	}
	return !prop.Bool()
}

func (d *rodDriver) Click(selector string) error {
	el, err := d.find(selector)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	// Let any triggered navigation or DOM change settle.
	d.page.WaitStable(500 * time.Millisecond)
	return nil
}

func (d *rodDriver) Fill(selector, text string) error {
	el, err := d.find(selector)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err == nil {
		el.Input("")
	}
	return el.Input(text)
}

func (d *rodDriver) TypeSlow(selector, text string, delay time.Duration) error {
	el, err := d.find(selector)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return err
	}
	for _, r := range text {
		if err := el.Input(string(r)); err != nil {
			return err
		}
		time.Sleep(delay)
	}
	return nil
}

func (d *rodDriver) Paste(selector, text string) error {
	el, err := d.find(selector)
	if err != nil {
		return err
	}
	if err := el.Focus(); err != nil {
		return err
	}
	return proto.InputInsertText{Text: text}.Call(d.page)
}

func (d *rodDriver) Text(selector string) (string, error) {
	el, err := d.find(selector)
	if err != nil {
		return "", err
	}
	return el.Text()
}

func (d *rodDriver) Elements(selector string) []Element {
	els, err := d.page.Elements(selector)
	if err != nil {
		return nil
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out
}

var _ Driver = (*rodDriver)(nil)

// rodElement scopes queries to one DOM node.
type rodElement struct {
	el *rod.Element
}

func (e *rodElement) Text() string {
	text, err := e.el.Text()
	if err != nil {
		return ""
	}
	return text
}

func (e *rodElement) Click() error {
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

func (e *rodElement) Has(selector string) bool {
	has, _, err := e.el.Has(selector)
	return err == nil && has
}

func (e *rodElement) TextOf(selector string) (string, bool) {
	has, sub, err := e.el.Has(selector)
	if err != nil || !has {
		return "", false
	}
	text, err := sub.Text()
	if err != nil {
		return "", false
	}
	return text, true
}

var _ Element = (*rodElement)(nil)
