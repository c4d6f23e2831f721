package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"jobportal/internal/secrets"
)

// SecretsHandler manages the API service token kept in the OS keychain.
type SecretsHandler struct{ d Deps }

type serviceTokenReq struct {
	Token string `json:"token"`
}

type serviceTokenView struct {
	Account    string `json:"account"`
	Configured bool   `json:"configured"`
}

func (h SecretsHandler) account() string {
	return secrets.ServiceAccount(h.d.cfg().API.BaseURL)
}

func (h SecretsHandler) GetServiceToken(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, serviceTokenView{Account: h.account(), Configured: h.d.API.HasServiceToken()})
}

// SetServiceToken stores the token for the configured API and starts using it
// for anonymous calls right away. It expects the X-CSRF-Token header.
func (h SecretsHandler) SetServiceToken(w http.ResponseWriter, r *http.Request) {
	var req serviceTokenReq
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 8<<10)).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		WriteError(w, r, http.StatusBadRequest, "token_required", "token is required")
		return
	}

	account := h.account()
	if err := secrets.SetServiceToken(account, token); err != nil {
		log.Printf("level=error msg=\"keychain write failed\" request_id=%s account=%s err=%v", RequestIDFrom(r.Context()), account, err)
		WriteError(w, r, http.StatusInternalServerError, "keychain_failed", "failed to store token: "+err.Error())
		return
	}
	h.d.API.SetServiceToken(token)
	log.Printf("level=info msg=\"service token updated\" request_id=%s account=%s", RequestIDFrom(r.Context()), account)
	w.WriteHeader(http.StatusNoContent)
}

// DeleteServiceToken removes the stored token. A PORTAL_SERVICE_TOKEN set in the
// environment stays in effect.
func (h SecretsHandler) DeleteServiceToken(w http.ResponseWriter, r *http.Request) {
	account := h.account()
	if err := secrets.DeleteServiceToken(account); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keychain_failed", "failed to remove token: "+err.Error())
		return
	}
	tok, err := secrets.GetServiceToken(account)
	if err != nil && !errors.Is(err, secrets.ErrNoToken) {
		log.Printf("level=warn msg=\"service token lookup failed\" request_id=%s err=%v", RequestIDFrom(r.Context()), err)
	}
	h.d.API.SetServiceToken(tok)
	log.Printf("level=info msg=\"service token removed\" request_id=%s account=%s", RequestIDFrom(r.Context()), account)
	w.WriteHeader(http.StatusNoContent)
}
