package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/AbdelrahmanBadr7422/thinkflow-api/internal/apperr"
)

// writeJSON writes JSON response with status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError sends an error message.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps a service failure onto the response. Typed failures
// keep their status and message; anything else is logged by the caller's
// audit middleware and collapsed to a generic 500 outside development.
func (r *Router) writeServiceError(w http.ResponseWriter, req *http.Request, err error) {
	if appErr := apperr.From(err); appErr != nil {
		writeError(w, appErr.Status, appErr.Message)
		return
	}
	r.logger.Error("unexpected failure", "error", err, "path", req.URL.Path)
	msg := "internal server error"
	if r.cfg.IsDevelopment() {
		msg = err.Error()
	}
	writeError(w, http.StatusInternalServerError, msg)
}
