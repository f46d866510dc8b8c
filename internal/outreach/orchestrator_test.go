package outreach

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/openoutreach/internal/audit"
	"github.com/joss/openoutreach/internal/browser"
	"github.com/joss/openoutreach/internal/logging"
)

type fakeSession struct {
	d        *fakeDriver
	readyErr error
	closed   bool
}

func (s *fakeSession) EnsureReady(ctx context.Context) error { return s.readyErr }
func (s *fakeSession) Driver() browser.Driver                { return s.d }
func (s *fakeSession) Close()                                { s.closed = true }

// newTestService wires the orchestrator onto a scripted driver. The
// returned session and options let tests assert teardown and option
// resolution.
func newTestService(t *testing.T, d *fakeDriver, readyErr error) (*Service, *fakeSession, *browser.Options) {
	t.Helper()

	store, err := audit.NewStore(filepath.Join(t.TempDir(), "attempts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sess := &fakeSession{d: d, readyErr: readyErr}
	var captured browser.Options
	svc := &Service{
		audit: store,
		log:   logging.New("test"),
		newSession: func(opts browser.Options) browserSession {
			captured = opts
			return sess
		},
	}
	return svc, sess, &captured
}

func TestReachOutSuccess(t *testing.T) {
	d := messagePage()
	svc, sess, _ := newTestService(t, d, nil)

	res := svc.ReachOut(context.Background(), ReachOutRequest{
		ProfileURL: testProfile,
		Message:    "hello",
		Username:   "user@example.com",
		Password:   "secret",
		SessionKey: "user-1",
	})

	assert.True(t, res.Success)
	assert.Equal(t, ActionMessage, res.Action)
	assert.NotEmpty(t, res.Logs)
	assert.Empty(t, res.Error)
	assert.True(t, sess.closed)

	attempts, err := svc.audit.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "reach_out", attempts[0].Kind)
	assert.Equal(t, "message", attempts[0].Action)
	assert.Equal(t, "success", attempts[0].Status)
	assert.Equal(t, "user-1", attempts[0].SessionKey)
}

func TestReachOutSessionFailure(t *testing.T) {
	d := newFakeDriver()
	svc, sess, _ := newTestService(t, d, browser.ErrChallengeDetected)

	res := svc.ReachOut(context.Background(), ReachOutRequest{
		ProfileURL: testProfile,
		Message:    "hello",
		SessionKey: "user-1",
	})

	assert.False(t, res.Success)
	assert.Equal(t, ActionFailed, res.Action)
	assert.Contains(t, res.Error, "challenge")
	assert.True(t, sess.closed, "session torn down even on fatal error")
	assert.Empty(t, d.navigated, "no flow runs after a session failure")
}

func TestReachOutGeneratesSessionKey(t *testing.T) {
	d := messagePage()
	svc, _, captured := newTestService(t, d, nil)

	res := svc.ReachOut(context.Background(), ReachOutRequest{
		ProfileURL: testProfile,
		Message:    "hello",
	})

	assert.True(t, res.Success)
	assert.NotEmpty(t, captured.SessionKey)
	assert.True(t, hasEntry(res.Logs, "generated"))
}

func TestReachOutHeadlessOverride(t *testing.T) {
	d := messagePage()
	svc, _, captured := newTestService(t, d, nil)

	headless := false
	svc.ReachOut(context.Background(), ReachOutRequest{
		ProfileURL: testProfile,
		Message:    "hello",
		SessionKey: "k",
		Headless:   &headless,
	})
	assert.False(t, captured.Headless)
}

func TestConversationUpsellMapping(t *testing.T) {
	d := profilePage()
	d.counts[messageButton.Selectors[0]] = 1
	d.onClick[messageButton.Selectors[0]] = func(d *fakeDriver) {
		d.counts[upsellModal.Selectors[0]] = 1
		d.counts[upsellDismissButton.Selectors[0]] = 1
	}
	svc, _, _ := newTestService(t, d, nil)

	res := svc.Conversation(context.Background(), ConversationRequest{
		ProfileURL:          testProfile,
		SessionKey:          "k",
		SkipConnectionCheck: true,
	})

	assert.True(t, res.Success, "upsell is a typed outcome, not a failure")
	assert.Equal(t, ConversationUpsell, res.Status)
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, res.Messages)
}

func TestConversationSuccess(t *testing.T) {
	d := connectedPage(&fakeElement{children: map[string]string{
		otherPartyMarker:           "",
		threadItemTextSelectors[0]: "hey",
	}})
	svc, _, _ := newTestService(t, d, nil)

	res := svc.Conversation(context.Background(), ConversationRequest{
		ProfileURL: testProfile,
		SessionKey: "k",
	})

	assert.True(t, res.Success)
	assert.Equal(t, ConversationSuccess, res.Status)
	assert.Equal(t, StatusConnected, res.ConnectionStatus)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, SenderCandidate, res.Messages[0].Sender)
}

func TestReplyFailureMapping(t *testing.T) {
	d := profilePage()
	svc, sess, _ := newTestService(t, d, nil)

	res := svc.Reply(context.Background(), ReplyRequest{
		ProfileURL: testProfile,
		Message:    "ping",
		SessionKey: "k",
	})

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Logs)
	assert.True(t, sess.closed)
}

func TestCheckConnection(t *testing.T) {
	d := profilePage()
	d.counts[pendingBadge.Selectors[0]] = 1
	d.texts[pendingBadge.Selectors[0]] = "Pending"
	svc, _, _ := newTestService(t, d, nil)

	res := svc.CheckConnection(context.Background(), CheckConnectionRequest{
		ProfileURL: testProfile,
		SessionKey: "k",
	})

	assert.True(t, res.Success)
	assert.Equal(t, StatusPending, res.ConnectionStatus)

	attempts, err := svc.audit.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "check_connection", attempts[0].Kind)
	assert.Equal(t, "pending", attempts[0].Action)
}
