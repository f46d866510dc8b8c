// Package metrics provides a simple Prometheus-compatible metrics endpoint.
package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds runtime counters for the outreach service.
type Metrics struct {
	// Request-facing operations
	ReachOuts        atomic.Int64
	ReachOutFailures atomic.Int64
	Conversations    atomic.Int64
	Replies          atomic.Int64
	ReplyFailures    atomic.Int64
	ConnectionChecks atomic.Int64

	// Session lifecycle
	Logins        atomic.Int64
	LoginFailures atomic.Int64
	StateRestores atomic.Int64

	// Timing (last operation duration in ms)
	LastRequestDurationMs atomic.Int64

	startTime time.Time
}

var (
	global     *Metrics
	globalOnce sync.Once
)

// Global returns the process-wide metrics instance.
func Global() *Metrics {
	globalOnce.Do(func() {
		global = &Metrics{
			startTime: time.Now(),
		}
	})
	return global
}

// RecordReachOut records one reach-out request.
func (m *Metrics) RecordReachOut(success bool, durationMs int64) {
	m.ReachOuts.Add(1)
	if !success {
		m.ReachOutFailures.Add(1)
	}
	m.LastRequestDurationMs.Store(durationMs)
}

// RecordConversation records one conversation fetch.
func (m *Metrics) RecordConversation(durationMs int64) {
	m.Conversations.Add(1)
	m.LastRequestDurationMs.Store(durationMs)
}

// RecordReply records one reply attempt.
func (m *Metrics) RecordReply(success bool, durationMs int64) {
	m.Replies.Add(1)
	if !success {
		m.ReplyFailures.Add(1)
	}
	m.LastRequestDurationMs.Store(durationMs)
}

// RecordConnectionCheck records one connection-status check.
func (m *Metrics) RecordConnectionCheck() {
	m.ConnectionChecks.Add(1)
}

// RecordLogin records a fresh login attempt.
func (m *Metrics) RecordLogin(success bool) {
	m.Logins.Add(1)
	if !success {
		m.LoginFailures.Add(1)
	}
}

// RecordStateRestore records a session resumed from persisted state.
func (m *Metrics) RecordStateRestore() {
	m.StateRestores.Add(1)
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")

		uptime := time.Since(m.startTime).Seconds()

		fmt.Fprintf(w, "# HELP outreach_uptime_seconds Time since the service started\n")
		fmt.Fprintf(w, "# TYPE outreach_uptime_seconds gauge\n")
		fmt.Fprintf(w, "outreach_uptime_seconds %.2f\n\n", uptime)

		fmt.Fprintf(w, "# HELP outreach_reach_outs_total Total reach-out requests\n")
		fmt.Fprintf(w, "# TYPE outreach_reach_outs_total counter\n")
		fmt.Fprintf(w, "outreach_reach_outs_total %d\n\n", m.ReachOuts.Load())

		fmt.Fprintf(w, "# HELP outreach_reach_out_failures_total Reach-outs that reached nobody\n")
		fmt.Fprintf(w, "# TYPE outreach_reach_out_failures_total counter\n")
		fmt.Fprintf(w, "outreach_reach_out_failures_total %d\n\n", m.ReachOutFailures.Load())

		fmt.Fprintf(w, "# HELP outreach_conversations_total Total conversation fetches\n")
		fmt.Fprintf(w, "# TYPE outreach_conversations_total counter\n")
		fmt.Fprintf(w, "outreach_conversations_total %d\n\n", m.Conversations.Load())

		fmt.Fprintf(w, "# HELP outreach_replies_total Total reply attempts\n")
		fmt.Fprintf(w, "# TYPE outreach_replies_total counter\n")
		fmt.Fprintf(w, "outreach_replies_total %d\n\n", m.Replies.Load())

		fmt.Fprintf(w, "# HELP outreach_reply_failures_total Replies that did not land\n")
		fmt.Fprintf(w, "# TYPE outreach_reply_failures_total counter\n")
		fmt.Fprintf(w, "outreach_reply_failures_total %d\n\n", m.ReplyFailures.Load())

		fmt.Fprintf(w, "# HELP outreach_connection_checks_total Total connection-status checks\n")
		fmt.Fprintf(w, "# TYPE outreach_connection_checks_total counter\n")
		fmt.Fprintf(w, "outreach_connection_checks_total %d\n\n", m.ConnectionChecks.Load())

		fmt.Fprintf(w, "# HELP outreach_logins_total Fresh credential logins performed\n")
		fmt.Fprintf(w, "# TYPE outreach_logins_total counter\n")
		fmt.Fprintf(w, "outreach_logins_total %d\n\n", m.Logins.Load())

		fmt.Fprintf(w, "# HELP outreach_login_failures_total Logins that failed or hit a challenge\n")
		fmt.Fprintf(w, "# TYPE outreach_login_failures_total counter\n")
		fmt.Fprintf(w, "outreach_login_failures_total %d\n\n", m.LoginFailures.Load())

		fmt.Fprintf(w, "# HELP outreach_state_restores_total Sessions resumed from persisted state\n")
		fmt.Fprintf(w, "# TYPE outreach_state_restores_total counter\n")
		fmt.Fprintf(w, "outreach_state_restores_total %d\n\n", m.StateRestores.Load())

		fmt.Fprintf(w, "# HELP outreach_last_request_duration_ms Last request duration\n")
		fmt.Fprintf(w, "# TYPE outreach_last_request_duration_ms gauge\n")
		fmt.Fprintf(w, "outreach_last_request_duration_ms %d\n", m.LastRequestDurationMs.Load())
	}
}
