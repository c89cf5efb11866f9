package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

type authContextKey string

const contextKeyUserID authContextKey = "thinkflow-user-id"

// tokenCookieName is the session cookie; the cookie wins over the
// Authorization header when both are present.
const tokenCookieName = "token"

type contextSetter interface {
	SetContext(context.Context)
}

// requireAuth resolves the caller's identity before invoking the handler.
// It answers "who is calling, or no one" and nothing else; ownership checks
// stay in the services.
func (r *Router) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctx, _, ok := r.ensureAuth(w, req)
		if !ok {
			return
		}
		next(w, req.WithContext(ctx))
	}
}

// guestOnly refuses requests that already carry any credential, so a live
// session cannot be silently overwritten by register or login.
func (r *Router) guestOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if credentialFromRequest(req) != "" {
			writeError(w, http.StatusBadRequest, "already logged in")
			return
		}
		next(w, req)
	}
}

// ensureAuth validates the request credential and enriches the context with
// the resolved user id.
func (r *Router) ensureAuth(w http.ResponseWriter, req *http.Request) (context.Context, string, bool) {
	token := credentialFromRequest(req)
	if token == "" {
		r.logger.Warn("missing credential", "path", req.URL.Path)
		writeError(w, http.StatusUnauthorized, "authentication required, please login or provide a valid token")
		return req.Context(), "", false
	}
	userID, err := r.auth.Authorize(req.Context(), token)
	if err != nil {
		r.logger.Warn("token validation failed", "error", err, "path", req.URL.Path)
		r.writeServiceError(w, req, err)
		return req.Context(), "", false
	}
	ctx := context.WithValue(req.Context(), contextKeyUserID, userID)
	if setter, ok := w.(contextSetter); ok {
		setter.SetContext(ctx)
	}
	return ctx, userID, true
}

// userIDFromContext extracts the resolved caller id from context.
func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKeyUserID).(string)
	return id, ok && id != ""
}

// credentialFromRequest returns the raw token material, cookie first.
func credentialFromRequest(req *http.Request) string {
	if cookie, err := req.Cookie(tokenCookieName); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value)
	}
	token, err := bearerToken(req.Header.Get("Authorization"))
	if err != nil {
		return ""
	}
	return token
}

func bearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}

// setAuthCookie attaches the session token as an httpOnly cookie, Secure
// outside local development.
func (r *Router) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(r.cfg.TokenTTL / time.Second),
		HttpOnly: true,
		Secure:   !r.cfg.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})
}

// clearAuthCookie expires the session cookie.
func (r *Router) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !r.cfg.IsDevelopment(),
		SameSite: http.SameSiteLaxMode,
	})
}
