package outreach

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joss/openoutreach/internal/audit"
	"github.com/joss/openoutreach/internal/browser"
	"github.com/joss/openoutreach/internal/config"
	"github.com/joss/openoutreach/internal/logging"
	"github.com/joss/openoutreach/internal/metrics"
	"github.com/joss/openoutreach/internal/statestore"
)

// browserSession is the slice of browser.Session the orchestrator
// needs. Tests substitute a fake so no browser process is launched.
type browserSession interface {
	EnsureReady(ctx context.Context) error
	Driver() browser.Driver
	Close()
}

// SessionFactory builds the per-request browser session.
type SessionFactory func(opts browser.Options) browserSession

// Service composes the profile flows into the four request-facing
// operations. Each request gets its own browser session; concurrency
// is session multiplicity, never sharing.
type Service struct {
	store      *statestore.Store
	audit      *audit.Store
	log        *logging.Logger
	newSession SessionFactory
}

// NewService creates the orchestrator. auditStore may be nil when
// attempt history is disabled.
func NewService(store *statestore.Store, auditStore *audit.Store) *Service {
	return &Service{
		store: store,
		audit: auditStore,
		log:   logging.New("orchestrator"),
		newSession: func(opts browser.Options) browserSession {
			return browser.NewSession(opts)
		},
	}
}

// ReachOutRequest is the reach-out operation input.
type ReachOutRequest struct {
	ProfileURL string `json:"profileUrl"`
	Message    string `json:"message"`
	FullName   string `json:"fullName"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	SessionKey string `json:"sessionKey"`
	Headless   *bool  `json:"headless,omitempty"`
}

// ReachOutResult reports which channel carried the reach-out.
type ReachOutResult struct {
	Success bool     `json:"success"`
	Action  Action   `json:"action"`
	Logs    []string `json:"logs"`
	Error   string   `json:"error,omitempty"`
}

// ConversationRequest is the conversation-fetch operation input.
type ConversationRequest struct {
	ProfileURL          string `json:"profileUrl"`
	Username            string `json:"username"`
	Password            string `json:"password"`
	SessionKey          string `json:"sessionKey"`
	SkipConnectionCheck bool   `json:"skipConnectionCheck,omitempty"`
	Headless            *bool  `json:"headless,omitempty"`
}

// ConversationResult carries the scraped thread.
type ConversationResult struct {
	Success          bool               `json:"success"`
	Status           ConversationStatus `json:"status"`
	Messages         []Message          `json:"messages"`
	ConnectionStatus ConnectionStatus   `json:"connection_status"`
	Logs             []string           `json:"logs"`
	Error            string             `json:"error,omitempty"`
}

// ReplyRequest is the reply operation input.
type ReplyRequest struct {
	ProfileURL string `json:"profileUrl"`
	Message    string `json:"message"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	SessionKey string `json:"sessionKey"`
	Headless   *bool  `json:"headless,omitempty"`
}

// ReplyResult reports whether the reply landed.
type ReplyResult struct {
	Success bool     `json:"success"`
	Logs    []string `json:"logs"`
	Error   string   `json:"error,omitempty"`
}

// CheckConnectionRequest is the connection-check operation input.
type CheckConnectionRequest struct {
	ProfileURL string `json:"profileUrl"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	SessionKey string `json:"sessionKey"`
	Headless   *bool  `json:"headless,omitempty"`
}

// CheckConnectionResult carries the derived connection status. The
// check itself never fails: success is false only when the session
// could not be established.
type CheckConnectionResult struct {
	Success          bool             `json:"success"`
	ConnectionStatus ConnectionStatus `json:"connection_status"`
	Logs             []string         `json:"logs"`
	Error            string           `json:"error,omitempty"`
}

// sessionOptions resolves per-request options against the environment
// defaults. An empty session key gets a generated one so state is
// still persisted somewhere recoverable.
func (s *Service) sessionOptions(username, password, sessionKey string, headless *bool, trail *logging.Trail) browser.Options {
	env := config.Get()

	key := sessionKey
	if key == "" {
		key = uuid.NewString()
		trail.Add("No session key supplied, generated %s", key)
	}

	h := env.Headless
	if headless != nil {
		h = *headless
	}

	return browser.Options{
		BaseURL:     env.BaseURL,
		Headless:    h,
		SlowMo:      env.SlowMo,
		TypeDelay:   env.TypeDelay,
		Credentials: browser.Credentials{Username: username, Password: password},
		SessionKey:  key,
		Store:       s.store,
		Trail:       trail,
	}
}

// withSession runs fn against a ready browser session, guaranteeing
// teardown on every path. The returned error is the session-level
// fatal error, if any; fn's own outcomes travel through the result.
func (s *Service) withSession(ctx context.Context, opts browser.Options, fn func(d browser.Driver)) error {
	sess := s.newSession(opts)
	defer sess.Close()

	if err := sess.EnsureReady(ctx); err != nil {
		return err
	}
	fn(sess.Driver())
	return nil
}

func (s *Service) record(ctx context.Context, a *audit.Attempt) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Save(ctx, a); err != nil {
		s.log.Warn("audit_save_failed", map[string]interface{}{"kind": a.Kind}, err)
	}
}

// ReachOut sends a message to the profile, falling back to a
// connection request when the message path is unavailable.
func (s *Service) ReachOut(ctx context.Context, req ReachOutRequest) ReachOutResult {
	start := time.Now()
	trail := logging.NewTrail("outreach")
	opts := s.sessionOptions(req.Username, req.Password, req.SessionKey, req.Headless, trail)

	action := ActionFailed
	err := s.withSession(ctx, opts, func(d browser.Driver) {
		action = NewFlows(d, trail).SendMessageToProfile(req.ProfileURL, req.Message)
	})

	res := ReachOutResult{
		Success: err == nil && action != ActionFailed,
		Action:  action,
		Logs:    trail.Entries(),
	}
	if err != nil {
		res.Error = err.Error()
	}

	durationMs := time.Since(start).Milliseconds()
	s.log.TimedEvent("reach_out", start, map[string]interface{}{
		"success": res.Success,
		"action":  string(action),
	})
	metrics.Global().RecordReachOut(res.Success, durationMs)
	s.record(ctx, &audit.Attempt{
		Kind:       "reach_out",
		ProfileURL: req.ProfileURL,
		SessionKey: opts.SessionKey,
		Action:     string(action),
		Status:     attemptStatus(res.Success),
		Error:      res.Error,
		StartedAt:  start,
		DurationMs: durationMs,
		Logs:       res.Logs,
	})
	return res
}

// Conversation fetches the message thread with the profile.
func (s *Service) Conversation(ctx context.Context, req ConversationRequest) ConversationResult {
	start := time.Now()
	trail := logging.NewTrail("outreach")
	opts := s.sessionOptions(req.Username, req.Password, req.SessionKey, req.Headless, trail)

	conv := Conversation{Status: ConversationError, Messages: []Message{}}
	err := s.withSession(ctx, opts, func(d browser.Driver) {
		conv = NewFlows(d, trail).FetchConversation(req.ProfileURL, req.SkipConnectionCheck)
	})

	res := ConversationResult{
		Success:          err == nil && conv.Status != ConversationError,
		Status:           conv.Status,
		Messages:         conv.Messages,
		ConnectionStatus: conv.ConnectionStatus,
		Logs:             trail.Entries(),
	}
	switch {
	case err != nil:
		res.Error = err.Error()
	case conv.Err != nil:
		res.Error = conv.Err.Error()
	}

	durationMs := time.Since(start).Milliseconds()
	s.log.TimedEvent("conversation", start, map[string]interface{}{
		"success": res.Success,
		"status":  string(conv.Status),
	})
	metrics.Global().RecordConversation(durationMs)
	s.record(ctx, &audit.Attempt{
		Kind:       "conversation",
		ProfileURL: req.ProfileURL,
		SessionKey: opts.SessionKey,
		Action:     string(conv.Status),
		Status:     attemptStatus(res.Success),
		Error:      res.Error,
		StartedAt:  start,
		DurationMs: durationMs,
		Logs:       res.Logs,
	})
	return res
}

// Reply posts a message into an existing thread.
func (s *Service) Reply(ctx context.Context, req ReplyRequest) ReplyResult {
	start := time.Now()
	trail := logging.NewTrail("outreach")
	opts := s.sessionOptions(req.Username, req.Password, req.SessionKey, req.Headless, trail)

	sent := false
	err := s.withSession(ctx, opts, func(d browser.Driver) {
		sent = NewFlows(d, trail).SendReply(req.ProfileURL, req.Message)
	})

	res := ReplyResult{
		Success: err == nil && sent,
		Logs:    trail.Entries(),
	}
	if err != nil {
		res.Error = err.Error()
	}

	durationMs := time.Since(start).Milliseconds()
	s.log.TimedEvent("reply", start, map[string]interface{}{"success": res.Success})
	metrics.Global().RecordReply(res.Success, durationMs)
	s.record(ctx, &audit.Attempt{
		Kind:       "reply",
		ProfileURL: req.ProfileURL,
		SessionKey: opts.SessionKey,
		Status:     attemptStatus(res.Success),
		Error:      res.Error,
		StartedAt:  start,
		DurationMs: durationMs,
		Logs:       res.Logs,
	})
	return res
}

// CheckConnection derives the connection status for the profile.
func (s *Service) CheckConnection(ctx context.Context, req CheckConnectionRequest) CheckConnectionResult {
	start := time.Now()
	trail := logging.NewTrail("outreach")
	opts := s.sessionOptions(req.Username, req.Password, req.SessionKey, req.Headless, trail)

	status := StatusNotConnected
	err := s.withSession(ctx, opts, func(d browser.Driver) {
		status = NewFlows(d, trail).CheckConnectionStatus(req.ProfileURL)
	})

	res := CheckConnectionResult{
		Success:          err == nil,
		ConnectionStatus: status,
		Logs:             trail.Entries(),
	}
	if err != nil {
		res.Error = err.Error()
	}

	s.log.TimedEvent("check_connection", start, map[string]interface{}{
		"success": res.Success,
		"status":  string(status),
	})
	metrics.Global().RecordConnectionCheck()
	s.record(ctx, &audit.Attempt{
		Kind:       "check_connection",
		ProfileURL: req.ProfileURL,
		SessionKey: opts.SessionKey,
		Action:     string(status),
		Status:     attemptStatus(res.Success),
		Error:      res.Error,
		StartedAt:  start,
		DurationMs: time.Since(start).Milliseconds(),
		Logs:       res.Logs,
	})
	return res
}

func attemptStatus(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
