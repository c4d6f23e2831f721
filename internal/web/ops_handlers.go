package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"jobportal/internal/config"
	"jobportal/internal/events"
	"jobportal/internal/store"
)

type HealthHandler struct{ d Deps }

// Health reports liveness plus whether the REST API answers.
func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	apiOK := h.d.API.Ping(ctx) == nil
	dbOK := h.d.DB.PingContext(ctx) == nil
	status := http.StatusOK
	if !dbOK {
		status = http.StatusServiceUnavailable
	}
	listeners := 0
	if h.d.Hub != nil {
		listeners = h.d.Hub.Subscribers()
	}
	WriteJSON(w, status, map[string]any{
		"ok":        dbOK,
		"api":       apiOK,
		"db":        dbOK,
		"listeners": listeners,
		"time":      h.d.now().UTC().Format(time.RFC3339),
	})
}

type SettingsHandler struct{ d Deps }

type settingsView struct {
	Path       string            `json:"path"`
	Config     config.Config     `json:"config"`
	Validation config.Validation `json:"validation"`
}

func (h SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	cur := h.d.cfg()
	_, vr := config.NormalizeAndValidate(cur)
	abs, _ := filepath.Abs(h.d.UserCfgPath)
	WriteJSON(w, http.StatusOK, settingsView{Path: abs, Config: cur, Validation: vr})
}

// Put validates, saves and hot-reloads the config. It expects the X-CSRF-Token header.
func (h SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()

	var incoming config.Config
	if err := dec.Decode(&incoming); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	if dec.More() {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: trailing data")
		return
	}

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		WriteJSON(w, http.StatusBadRequest, vr)
		return
	}
	if err := config.SaveAtomic(h.d.UserCfgPath, normalized); err != nil {
		WriteError(w, r, http.StatusBadRequest, "save_failed", err.Error())
		return
	}
	saved, err := h.d.LoadCfg()
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "reload_failed", "saved but reload failed: "+err.Error())
		return
	}
	h.d.CfgVal.Store(saved)
	WriteJSON(w, http.StatusOK, saved)
}

type EventsHandler struct{ Hub *events.Hub }

// ServeSSE streams admin notifications until the client goes away.
func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "Streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(ch)

	reqID := RequestIDFrom(r.Context())
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", events.MakeEvent(reqID, events.Ping, "", "", nil))
	flusher.Flush()

	keepalive := time.NewTicker(25 * time.Second)
	defer keepalive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case msg, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

type DBHandler struct{ d Deps }

// OpsHeader carries the token written to the data dir at startup.
const OpsHeader = "X-Shutdown-Token"

// RequireOps admits loopback callers that present the ops token.
// An empty token locks the endpoint entirely.
func RequireOps(token string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isLoopback(r) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		got := r.Header.Get(OpsHeader)
		if token == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			log.Printf("level=warn msg=\"ops token rejected\" request_id=%s path=%s", RequestIDFrom(r.Context()), r.URL.Path)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// Checkpoint folds the WAL into the database file.
func (h DBHandler) Checkpoint(w http.ResponseWriter, r *http.Request) {
	if err := store.Checkpoint(r.Context(), h.d.DB); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "checkpoint_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
