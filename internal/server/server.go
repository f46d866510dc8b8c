// Package server exposes the outreach operations over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/joss/openoutreach/internal/audit"
	"github.com/joss/openoutreach/internal/logging"
	"github.com/joss/openoutreach/internal/metrics"
	"github.com/joss/openoutreach/internal/outreach"
)

// maxRequestBodySize caps request bodies; outreach payloads are tiny.
const maxRequestBodySize = 1 << 20

// Outreach is the orchestrator surface the handlers dispatch to.
type Outreach interface {
	ReachOut(ctx context.Context, req outreach.ReachOutRequest) outreach.ReachOutResult
	Conversation(ctx context.Context, req outreach.ConversationRequest) outreach.ConversationResult
	Reply(ctx context.Context, req outreach.ReplyRequest) outreach.ReplyResult
	CheckConnection(ctx context.Context, req outreach.CheckConnectionRequest) outreach.CheckConnectionResult
}

// Handler holds the HTTP handlers. auditStore may be nil; the history
// endpoint then reports it as unavailable.
type Handler struct {
	svc        Outreach
	auditStore *audit.Store
	log        *logging.Logger
}

// NewHandler creates the handler set.
func NewHandler(svc Outreach, auditStore *audit.Store) *Handler {
	return &Handler{
		svc:        svc,
		auditStore: auditStore,
		log:        logging.New("server"),
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers the outreach routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/reach-out", h.ReachOut)
	r.Post("/conversation", h.Conversation)
	r.Post("/reply", h.Reply)
	r.Post("/check-connection", h.CheckConnection)

	r.Get("/history", h.History)
	r.Get("/healthz", h.Healthz)
	r.Get("/metrics", metrics.Global().Handler())
}

// decode reads a JSON body into v with a size cap.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// requireFields rejects the request when any named field is empty.
func requireFields(w http.ResponseWriter, fields map[string]string) bool {
	for name, value := range fields {
		if value == "" {
			Error(w, http.StatusBadRequest, name+" is required")
			return false
		}
	}
	return true
}

// ReachOut sends a message to a profile, falling back to a connection
// request.
func (h *Handler) ReachOut(w http.ResponseWriter, r *http.Request) {
	var req outreach.ReachOutRequest
	if !decode(w, r, &req) {
		return
	}
	if !requireFields(w, map[string]string{
		"profileUrl": req.ProfileURL,
		"message":    req.Message,
		"username":   req.Username,
		"password":   req.Password,
	}) {
		return
	}

	res := h.svc.ReachOut(r.Context(), req)
	h.log.Info("reach_out", map[string]interface{}{
		"profile": req.ProfileURL,
		"success": res.Success,
		"action":  res.Action,
	})
	JSON(w, http.StatusOK, res)
}

// Conversation fetches the message thread with a profile.
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	var req outreach.ConversationRequest
	if !decode(w, r, &req) {
		return
	}
	if !requireFields(w, map[string]string{
		"profileUrl": req.ProfileURL,
		"username":   req.Username,
		"password":   req.Password,
	}) {
		return
	}

	res := h.svc.Conversation(r.Context(), req)
	h.log.Info("conversation", map[string]interface{}{
		"profile": req.ProfileURL,
		"status":  res.Status,
	})
	JSON(w, http.StatusOK, res)
}

// Reply posts a message into an existing thread.
func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	var req outreach.ReplyRequest
	if !decode(w, r, &req) {
		return
	}
	if !requireFields(w, map[string]string{
		"profileUrl": req.ProfileURL,
		"message":    req.Message,
		"username":   req.Username,
		"password":   req.Password,
	}) {
		return
	}

	res := h.svc.Reply(r.Context(), req)
	h.log.Info("reply", map[string]interface{}{
		"profile": req.ProfileURL,
		"success": res.Success,
	})
	JSON(w, http.StatusOK, res)
}

// CheckConnection derives the connection status for a profile.
func (h *Handler) CheckConnection(w http.ResponseWriter, r *http.Request) {
	var req outreach.CheckConnectionRequest
	if !decode(w, r, &req) {
		return
	}
	if !requireFields(w, map[string]string{
		"profileUrl": req.ProfileURL,
		"username":   req.Username,
		"password":   req.Password,
	}) {
		return
	}

	res := h.svc.CheckConnection(r.Context(), req)
	JSON(w, http.StatusOK, res)
}

// History returns recent recorded attempts.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if h.auditStore == nil {
		Error(w, http.StatusServiceUnavailable, "attempt history is disabled")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	var (
		attempts []audit.Attempt
		err      error
	)
	if profile := r.URL.Query().Get("profileUrl"); profile != "" {
		attempts, err = h.auditStore.ByProfile(r.Context(), profile, limit)
	} else {
		attempts, err = h.auditStore.Recent(r.Context(), limit)
	}
	if err != nil {
		h.log.Error("history_query_failed", nil, err)
		Error(w, http.StatusInternalServerError, "could not read attempt history")
		return
	}
	if attempts == nil {
		attempts = []audit.Attempt{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{"attempts": attempts})
}

// Healthz is a liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Server wraps the HTTP server with graceful shutdown.
type Server struct {
	srv *http.Server
	log *logging.Logger
}

// New builds the router and server on the given port.
func New(port int, handler *Handler) *Server {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	handler.RegisterRoutes(r)

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: logging.New("server"),
	}
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.Info("listening", map[string]interface{}{"addr": s.srv.Addr})
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
