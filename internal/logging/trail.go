package logging

import (
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Trail is an ordered, append-only sequence of human-readable entries
// accumulated over one outreach request. It is returned to the caller
// as the diagnostic trace for that request, so every branch decision
// and external failure gets exactly one entry.
type Trail struct {
	id string

	mu      sync.Mutex
	entries []string
	logger  *Logger
}

// NewTrail creates a trail for one request. Entries are mirrored to the
// component logger at debug level.
func NewTrail(component string) *Trail {
	return &Trail{
		id:     ulid.Make().String(),
		logger: New(component),
	}
}

// ID returns the trail's request identifier.
func (t *Trail) ID() string {
	return t.id
}

// Add appends a formatted entry.
func (t *Trail) Add(format string, args ...any) {
	entry := fmt.Sprintf(format, args...)

	t.mu.Lock()
	t.entries = append(t.entries, entry)
	t.mu.Unlock()

	t.logger.Debug("trail", map[string]interface{}{
		"request": t.id,
		"entry":   entry,
	})
}

// Entries returns a copy of the accumulated entries in order.
func (t *Trail) Entries() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
