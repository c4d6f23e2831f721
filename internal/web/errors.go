package web

import (
	"encoding/json"
	"net/http"
)

// Problem is the error body of the portal's own JSON endpoints: settings,
// the service token, health and ops. Console pages render the error template instead.
type Problem struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type problemBody struct {
	Error Problem `json:"error"`
}

// WriteJSON answers with v. Responses may carry settings, so they are never cached.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError reports a failed JSON call; the request ID ties it to the access log line.
func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, problemBody{Error: Problem{
		Code:      code,
		Message:   message,
		RequestID: RequestIDFrom(r.Context()),
	}})
}
