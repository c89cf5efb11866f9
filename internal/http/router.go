// Package httpx wires the forum HTTP surface to the services behind it.
package httpx

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/domain"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/service/auth"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/service/comment"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/service/like"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/service/question"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/service/user"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/ws"
	"github.com/AbdelrahmanBadr7422/thinkflow-api/pkg/config"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	cfg       config.APIConfig
	auth      auth.Service
	users     user.Service
	questions question.Service
	comments  comment.Service
	likes     like.Service
	hub       *ws.Hub
	upgrader  websocket.Upgrader
	limiter   RateLimiter
	dbHealth  func(context.Context) error

	metricsOnce        sync.Once
	metricsInitialized bool
	requestTotal       *prometheus.CounterVec
	requestLatency     *prometheus.HistogramVec
	rateLimitHits      *prometheus.CounterVec
}

const (
	rateWindowDefault  = time.Minute
	rateWindowRealtime = 30 * time.Second
	rateLimitRegister  = 5
	rateLimitLogin     = 12
	rateLimitUserWrite = 60
	rateLimitRead      = 120
	rateLimitWebsocket = 30
	healthCheckTimeout = 2 * time.Second
	sseHeartbeatEvery  = 15 * time.Second
)

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, cfg config.APIConfig, authSvc auth.Service, userSvc user.Service, questionSvc question.Service, commentSvc comment.Service, likeSvc like.Service, hub *ws.Hub, limiter RateLimiter, dbHealth func(context.Context) error) *Router {
	r := &Router{
		mux:       http.NewServeMux(),
		logger:    logger,
		cfg:       cfg,
		auth:      authSvc,
		users:     userSvc,
		questions: questionSvc,
		comments:  commentSvc,
		likes:     likeSvc,
		hub:       hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		limiter:  limiter,
		dbHealth: dbHealth,
	}
	if r.limiter == nil {
		r.limiter = NewMemoryRateLimiter()
	}
	r.initMetrics()
	r.register()
	return r
}

// ServeHTTP delegates to underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Close releases background resources.
func (r *Router) Close() {
	if r.limiter != nil {
		r.limiter.Close()
	}
}

func (r *Router) register() {
	r.mux.HandleFunc("/healthz", r.audit(r.handleHealthz))
	r.mux.Handle("/metrics", promhttp.Handler())

	r.mux.HandleFunc("/auth/register", r.audit(r.cors(r.withRateLimit("auth_register", rateLimitRegister, rateWindowDefault, rateLimitKeyIP, r.guestOnly(r.handleRegister)))))
	r.mux.HandleFunc("/auth/login", r.audit(r.cors(r.withRateLimit("auth_login", rateLimitLogin, rateWindowDefault, rateLimitKeyIP, r.guestOnly(r.handleLogin)))))
	r.mux.HandleFunc("/auth/logout", r.audit(r.cors(r.handleLogout)))

	r.mux.HandleFunc("/users/profile", r.audit(r.cors(r.handlerAuthRate("users_profile", rateLimitRead, rateWindowDefault, r.handleProfile))))
	r.mux.HandleFunc("/users/update-profile", r.audit(r.cors(r.handlerAuthRate("users_update", rateLimitUserWrite, rateWindowDefault, r.handleUpdateProfile))))
	r.mux.HandleFunc("/users/change-password", r.audit(r.cors(r.handlerAuthRate("users_password", rateLimitUserWrite, rateWindowDefault, r.handleChangePassword))))

	r.mux.HandleFunc("/questions", r.audit(r.cors(r.withRateLimit("questions", rateLimitRead, rateWindowDefault, rateLimitKeyIP, r.handleQuestions))))
	r.mux.HandleFunc("/questions/", r.audit(r.cors(r.withRateLimit("questions_item", rateLimitRead, rateWindowDefault, rateLimitKeyIP, r.handleQuestionSubroutes))))

	r.mux.HandleFunc("/comments", r.audit(r.cors(r.withRateLimit("comments", rateLimitRead, rateWindowDefault, rateLimitKeyIP, r.handleComments))))
	r.mux.HandleFunc("/comments/", r.audit(r.cors(r.withRateLimit("comments_item", rateLimitRead, rateWindowDefault, rateLimitKeyIP, r.handleCommentSubroutes))))

	r.mux.HandleFunc("/likes/toggle", r.audit(r.cors(r.handlerAuthRate("likes_toggle", rateLimitUserWrite, rateWindowDefault, r.handleLikeToggle))))
	r.mux.HandleFunc("/likes/check", r.audit(r.cors(r.handlerAuthRate("likes_check", rateLimitRead, rateWindowDefault, r.handleLikeCheck))))
	r.mux.HandleFunc("/likes/", r.audit(r.cors(r.withRateLimit("likes_read", rateLimitRead, rateWindowDefault, rateLimitKeyIP, r.handleLikeSubroutes))))

	r.mux.HandleFunc("/ws/questions", r.audit(r.handlerAuthRate("ws_questions", rateLimitWebsocket, rateWindowRealtime, r.handleQuestionWS)))
	r.mux.HandleFunc("/events/questions/", r.audit(r.cors(r.withRateLimit("events_questions", rateLimitWebsocket, rateWindowRealtime, rateLimitKeyIP, r.handleQuestionEvents))))
}

// cors answers preflight and tags responses for the configured browser origin.
func (r *Router) cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if origin := r.cfg.CORSOrigin; origin != "" {
			headers := w.Header()
			headers.Set("Access-Control-Allow-Origin", origin)
			headers.Set("Access-Control-Allow-Credentials", "true")
			headers.Set("Vary", "Origin")
			if req.Method == http.MethodOptions {
				headers.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				headers.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next(w, req)
	}
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	u, token, err := r.auth.Register(req.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	r.setAuthCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
	})
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var creds auth.Credentials
	if err := json.NewDecoder(req.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	u, token, err := r.auth.Login(req.Context(), creds)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	r.setAuthCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
	})
}

// handleLogout clears the cookie unconditionally; there is no server-side
// session to destroy.
func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	r.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (r *Router) handleProfile(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	userID, ok := userIDFromContext(req.Context())
	if !ok {
		r.missingAuthContext(w, req)
		return
	}
	view, err := r.users.Profile(req.Context(), userID)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (r *Router) handleUpdateProfile(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPut {
		r.methodNotAllowed(w)
		return
	}
	userID, ok := userIDFromContext(req.Context())
	if !ok {
		r.missingAuthContext(w, req)
		return
	}
	var update user.ProfileUpdate
	if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	view, err := r.users.UpdateProfile(req.Context(), userID, update)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (r *Router) handleChangePassword(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPut {
		r.methodNotAllowed(w)
		return
	}
	userID, ok := userIDFromContext(req.Context())
	if !ok {
		r.missingAuthContext(w, req)
		return
	}
	var payload struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if payload.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "newPassword is required")
		return
	}
	if err := r.users.ChangePassword(req.Context(), userID, payload.OldPassword, payload.NewPassword); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

func (r *Router) handleQuestions(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		questions, err := r.questions.List(req.Context())
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, questions)
	case http.MethodPost:
		ctx, userID, ok := r.ensureAuth(w, req)
		if !ok {
			return
		}
		req = req.WithContext(ctx)
		var input question.CreateInput
		if err := json.NewDecoder(req.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		q, err := r.questions.Create(req.Context(), userID, input)
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusCreated, q)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleQuestionSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/questions/")
	parts := strings.Split(trimmed, "/")
	switch {
	case len(parts) == 2 && parts[0] == "author" && parts[1] != "":
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		questions, err := r.questions.ListByAuthor(req.Context(), parts[1])
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, questions)
	case len(parts) == 1 && parts[0] != "":
		r.handleQuestionItem(w, req, parts[0])
	default:
		r.notFound(w)
	}
}

func (r *Router) handleQuestionItem(w http.ResponseWriter, req *http.Request, questionID string) {
	switch req.Method {
	case http.MethodGet:
		detail, err := r.questions.Get(req.Context(), questionID)
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	case http.MethodPut:
		ctx, userID, ok := r.ensureAuth(w, req)
		if !ok {
			return
		}
		req = req.WithContext(ctx)
		var input question.UpdateInput
		if err := json.NewDecoder(req.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		q, err := r.questions.Update(req.Context(), userID, questionID, input)
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	case http.MethodDelete:
		ctx, userID, ok := r.ensureAuth(w, req)
		if !ok {
			return
		}
		req = req.WithContext(ctx)
		if err := r.questions.Delete(req.Context(), userID, questionID); err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleComments(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	ctx, userID, ok := r.ensureAuth(w, req)
	if !ok {
		return
	}
	req = req.WithContext(ctx)
	var input comment.CreateInput
	if err := json.NewDecoder(req.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c, err := r.comments.Create(req.Context(), userID, input)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (r *Router) handleCommentSubroutes(w http.ResponseWriter, req *http.Request) {
	trimmed := strings.TrimPrefix(req.URL.Path, "/comments/")
	parts := strings.Split(trimmed, "/")
	switch {
	case len(parts) == 2 && parts[0] == "question" && parts[1] != "":
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		comments, err := r.comments.ListByQuestion(req.Context(), parts[1])
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, comments)
	case len(parts) == 2 && parts[0] == "author" && parts[1] != "":
		if req.Method != http.MethodGet {
			r.methodNotAllowed(w)
			return
		}
		comments, err := r.comments.ListByAuthor(req.Context(), parts[1])
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, comments)
	case len(parts) == 1 && parts[0] != "":
		r.handleCommentItem(w, req, parts[0])
	default:
		r.notFound(w)
	}
}

func (r *Router) handleCommentItem(w http.ResponseWriter, req *http.Request, commentID string) {
	switch req.Method {
	case http.MethodGet:
		detail, err := r.comments.Get(req.Context(), commentID)
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	case http.MethodPut:
		ctx, userID, ok := r.ensureAuth(w, req)
		if !ok {
			return
		}
		req = req.WithContext(ctx)
		var payload struct {
			Body string `json:"body"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		c, err := r.comments.Update(req.Context(), userID, commentID, payload.Body)
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	case http.MethodDelete:
		ctx, userID, ok := r.ensureAuth(w, req)
		if !ok {
			return
		}
		req = req.WithContext(ctx)
		if err := r.comments.Delete(req.Context(), userID, commentID); err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleLikeToggle(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	userID, ok := userIDFromContext(req.Context())
	if !ok {
		r.missingAuthContext(w, req)
		return
	}
	var payload struct {
		ItemID   string `json:"itemId"`
		ItemType string `json:"itemType"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := r.likes.Toggle(req.Context(), userID, payload.ItemID, domain.ItemType(payload.ItemType))
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (r *Router) handleLikeCheck(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	userID, ok := userIDFromContext(req.Context())
	if !ok {
		r.missingAuthContext(w, req)
		return
	}
	itemID := strings.TrimSpace(req.URL.Query().Get("itemId"))
	itemType := domain.ItemType(strings.TrimSpace(req.URL.Query().Get("itemType")))
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "itemId query parameter required")
		return
	}
	liked, err := r.likes.CheckIfLiked(req.Context(), userID, itemID, itemType)
	if err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (r *Router) handleLikeSubroutes(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	trimmed := strings.TrimPrefix(req.URL.Path, "/likes/")
	parts := strings.Split(trimmed, "/")
	switch {
	case len(parts) == 2 && parts[0] == "questions" && parts[1] != "":
		likes, err := r.likes.QuestionLikes(req.Context(), parts[1])
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, likes)
	case len(parts) == 2 && parts[0] == "comments" && parts[1] != "":
		likes, err := r.likes.CommentLikes(req.Context(), parts[1])
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, likes)
	case len(parts) == 3 && parts[0] == "users" && parts[1] != "" && parts[2] == "questions":
		liked, err := r.likes.UserLikedQuestions(req.Context(), parts[1])
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, liked)
	case len(parts) == 3 && parts[0] == "users" && parts[1] != "" && parts[2] == "comments":
		liked, err := r.likes.UserLikedComments(req.Context(), parts[1])
		if err != nil {
			r.writeServiceError(w, req, err)
			return
		}
		writeJSON(w, http.StatusOK, liked)
	default:
		r.notFound(w)
	}
}

func (r *Router) handleQuestionWS(w http.ResponseWriter, req *http.Request) {
	if _, ok := userIDFromContext(req.Context()); !ok {
		r.missingAuthContext(w, req)
		return
	}
	questionID := req.URL.Query().Get("question_id")
	if questionID == "" {
		writeError(w, http.StatusBadRequest, "question_id query parameter required")
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger)
	r.hub.Register(questionID, client)
	go func() {
		defer func() {
			r.hub.Unregister(questionID, client)
			client.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// handleQuestionEvents is the SSE fallback for clients without websockets.
func (r *Router) handleQuestionEvents(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	questionID := strings.TrimPrefix(req.URL.Path, "/events/questions/")
	if questionID == "" || strings.Contains(questionID, "/") {
		r.notFound(w)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := ws.NewSSEClient(w, flusher, r.logger)
	r.hub.Register(questionID, client)
	defer func() {
		r.hub.Unregister(questionID, client)
		client.Close()
	}()

	ticker := time.NewTicker(sseHeartbeatEvery)
	defer ticker.Stop()
	for {
		select {
		case <-req.Context().Done():
			return
		case <-ticker.C:
			if err := client.Heartbeat(); err != nil {
				return
			}
		}
	}
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	components := make(map[string]any)
	status := "ok"
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			status = "degraded"
			components["database"] = map[string]any{
				"status": "down",
				"error":  err.Error(),
			}
		} else {
			components["database"] = map[string]any{"status": "up"}
		}
	}
	payload := map[string]any{
		"status":     status,
		"components": components,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, payload)
}

func (r *Router) audit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next(recorder, req)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		ctx := recorder.ctx
		if ctx == nil {
			ctx = req.Context()
		}
		duration := time.Since(start)
		actor := "anonymous"
		fields := []any{
			"method", req.Method,
			"path", req.URL.Path,
			"status", status,
			"bytes", recorder.bytes,
			"duration_ms", duration.Milliseconds(),
		}
		if ip := clientIP(req); ip != "" {
			fields = append(fields, "ip", ip)
		}
		if reqID := strings.TrimSpace(req.Header.Get("X-Request-ID")); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}
		if id, ok := userIDFromContext(ctx); ok {
			actor = "user"
			fields = append(fields, "user_id", id)
		}
		fields = append(fields, "actor", actor)
		r.recordRequestMetrics(req.Method, req.URL.Path, status, duration)

		switch {
		case status >= http.StatusInternalServerError:
			r.logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			r.logger.Warn("http_request", fields...)
		default:
			r.logger.Info("http_request", fields...)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	ctx    context.Context
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func (sr *statusRecorder) SetContext(ctx context.Context) {
	sr.ctx = ctx
}

func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("hijacker not supported")
}

func clientIP(req *http.Request) string {
	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(req.RemoteAddr))
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}

func (r *Router) applyRateHeaders(w http.ResponseWriter, limit int, decision rateDecision) {
	if limit <= 0 {
		return
	}
	remaining := limit - decision.count
	if remaining < 0 {
		remaining = 0
	}
	headers := w.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if !decision.windowEnd.IsZero() {
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(decision.windowEnd.Unix(), 10))
	}
}

func (r *Router) missingAuthContext(w http.ResponseWriter, req *http.Request) {
	r.logger.Error("auth context missing", "path", req.URL.Path)
	writeError(w, http.StatusInternalServerError, "authorization context missing")
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not found")
}
