package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/openoutreach/internal/audit"
	"github.com/joss/openoutreach/internal/outreach"
)

// fakeOutreach records the last request and returns scripted results.
type fakeOutreach struct {
	reachOutReq     outreach.ReachOutRequest
	conversationReq outreach.ConversationRequest
	replyReq        outreach.ReplyRequest
	checkReq        outreach.CheckConnectionRequest

	reachOutRes     outreach.ReachOutResult
	conversationRes outreach.ConversationResult
	replyRes        outreach.ReplyResult
	checkRes        outreach.CheckConnectionResult
}

func (f *fakeOutreach) ReachOut(ctx context.Context, req outreach.ReachOutRequest) outreach.ReachOutResult {
	f.reachOutReq = req
	return f.reachOutRes
}

func (f *fakeOutreach) Conversation(ctx context.Context, req outreach.ConversationRequest) outreach.ConversationResult {
	f.conversationReq = req
	return f.conversationRes
}

func (f *fakeOutreach) Reply(ctx context.Context, req outreach.ReplyRequest) outreach.ReplyResult {
	f.replyReq = req
	return f.replyRes
}

func (f *fakeOutreach) CheckConnection(ctx context.Context, req outreach.CheckConnectionRequest) outreach.CheckConnectionResult {
	f.checkReq = req
	return f.checkRes
}

func newTestRouter(svc Outreach, store *audit.Store) chi.Router {
	r := chi.NewRouter()
	NewHandler(svc, store).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func validReachOutBody() map[string]interface{} {
	return map[string]interface{}{
		"profileUrl": "https://www.linkedin.com/in/jane-doe/",
		"message":    "hello",
		"fullName":   "Jane Doe",
		"username":   "user@example.com",
		"password":   "secret",
		"sessionKey": "user-1",
	}
}

func TestReachOutDispatch(t *testing.T) {
	svc := &fakeOutreach{
		reachOutRes: outreach.ReachOutResult{
			Success: true,
			Action:  outreach.ActionMessage,
			Logs:    []string{"Message submitted"},
		},
	}
	router := newTestRouter(svc, nil)

	rec := postJSON(t, router, "/reach-out", validReachOutBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var res outreach.ReachOutResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, outreach.ActionMessage, res.Action)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe/", svc.reachOutReq.ProfileURL)
	assert.Equal(t, "user-1", svc.reachOutReq.SessionKey)
}

func TestReachOutValidation(t *testing.T) {
	for _, field := range []string{"profileUrl", "message", "username", "password"} {
		t.Run(field, func(t *testing.T) {
			body := validReachOutBody()
			delete(body, field)

			rec := postJSON(t, newTestRouter(&fakeOutreach{}, nil), "/reach-out", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), field)
		})
	}
}

func TestReachOutInvalidJSON(t *testing.T) {
	router := newTestRouter(&fakeOutreach{}, nil)

	req := httptest.NewRequest("POST", "/reach-out", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConversationDispatch(t *testing.T) {
	svc := &fakeOutreach{
		conversationRes: outreach.ConversationResult{
			Success:          true,
			Status:           outreach.ConversationSuccess,
			Messages:         []outreach.Message{{Sender: outreach.SenderCandidate, Content: "hi"}},
			ConnectionStatus: outreach.StatusConnected,
		},
	}
	router := newTestRouter(svc, nil)

	rec := postJSON(t, router, "/conversation", map[string]interface{}{
		"profileUrl":          "https://www.linkedin.com/in/jane-doe/",
		"username":            "user@example.com",
		"password":            "secret",
		"sessionKey":          "user-1",
		"skipConnectionCheck": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.conversationReq.SkipConnectionCheck)

	var res outreach.ConversationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, outreach.ConversationSuccess, res.Status)
	require.Len(t, res.Messages, 1)
}

func TestReplyDispatch(t *testing.T) {
	svc := &fakeOutreach{replyRes: outreach.ReplyResult{Success: true}}
	router := newTestRouter(svc, nil)

	rec := postJSON(t, router, "/reply", map[string]interface{}{
		"profileUrl": "https://www.linkedin.com/in/jane-doe/",
		"message":    "following up",
		"username":   "user@example.com",
		"password":   "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "following up", svc.replyReq.Message)
}

func TestCheckConnectionDispatch(t *testing.T) {
	svc := &fakeOutreach{
		checkRes: outreach.CheckConnectionResult{
			Success:          true,
			ConnectionStatus: outreach.StatusPending,
		},
	}
	router := newTestRouter(svc, nil)

	rec := postJSON(t, router, "/check-connection", map[string]interface{}{
		"profileUrl": "https://www.linkedin.com/in/jane-doe/",
		"username":   "user@example.com",
		"password":   "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var res outreach.CheckConnectionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, outreach.StatusPending, res.ConnectionStatus)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&fakeOutreach{}, nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(&fakeOutreach{}, nil)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "outreach_uptime_seconds")
}

func TestHistory(t *testing.T) {
	store, err := audit.NewStore(filepath.Join(t.TempDir(), "attempts.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(context.Background(), &audit.Attempt{
		Kind:       "reach_out",
		ProfileURL: "https://www.linkedin.com/in/jane-doe/",
		SessionKey: "k",
		Status:     "success",
		StartedAt:  time.Now(),
	}))

	router := newTestRouter(&fakeOutreach{}, store)

	req := httptest.NewRequest("GET", "/history?limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Attempts []audit.Attempt `json:"attempts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Attempts, 1)
	assert.Equal(t, "reach_out", res.Attempts[0].Kind)
}

func TestHistoryDisabled(t *testing.T) {
	router := newTestRouter(&fakeOutreach{}, nil)

	req := httptest.NewRequest("GET", "/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHistoryBadLimit(t *testing.T) {
	store, err := audit.NewStore(filepath.Join(t.TempDir(), "attempts.db"))
	require.NoError(t, err)
	defer store.Close()

	router := newTestRouter(&fakeOutreach{}, store)

	req := httptest.NewRequest("GET", "/history?limit=nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
