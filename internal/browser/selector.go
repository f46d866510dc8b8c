package browser

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/joss/openoutreach/internal/logging"
)

// Concept is one UI concern with an ordered list of equivalent
// selector expressions. LinkedIn A/B-tests its markup, so every
// concept carries structural fallbacks; first live match wins.
type Concept struct {
	Name      string
	Selectors []string
}

// Resolver resolves Concepts against a live page and records which
// variant matched, so selector drift shows up in the trail before it
// becomes a failure.
type Resolver struct {
	trail *logging.Trail
}

// NewResolver creates a resolver that logs to trail.
func NewResolver(trail *logging.Trail) *Resolver {
	return &Resolver{trail: trail}
}

// First returns the first selector of c matching at least one live
// element. Absence is a legitimate outcome, never an error: UI
// variants are expected.
func (r *Resolver) First(d Driver, c Concept) (string, bool) {
	for i, sel := range c.Selectors {
		if d.Count(sel) > 0 {
			r.trail.Add("%s: matched variant %d (%s)", c.Name, i+1, sel)
			return sel, true
		}
	}
	r.trail.Add("%s: no selector variant matched", c.Name)
	return "", false
}

// FirstVisible is First restricted to visible matches.
func (r *Resolver) FirstVisible(d Driver, c Concept) (string, bool) {
	for i, sel := range c.Selectors {
		if d.Visible(sel) {
			r.trail.Add("%s: matched visible variant %d (%s)", c.Name, i+1, sel)
			return sel, true
		}
	}
	r.trail.Add("%s: no visible selector variant matched", c.Name)
	return "", false
}

// MenuItem finds the open-dropdown item whose label best matches
// label. Item labels embed the prospect's name ("Invite Jane Doe to
// connect"), so exact matching is hopeless; fuzzy matching on the
// stable words is what survives markup and copy drift.
func (r *Resolver) MenuItem(d Driver, itemsSelector, label string) (Element, bool) {
	items := d.Elements(itemsSelector)
	if len(items) == 0 {
		r.trail.Add("menu %q: no items rendered", label)
		return nil, false
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = strings.ToLower(strings.TrimSpace(item.Text()))
	}

	matches := fuzzy.Find(strings.ToLower(label), texts)
	if len(matches) == 0 {
		r.trail.Add("menu %q: no item label matched", label)
		return nil, false
	}

	best := matches[0].Index
	r.trail.Add("menu %q: matched item %q", label, texts[best])
	return items[best], true
}
