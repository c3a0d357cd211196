package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"imgprompt/internal/infra/credentials"
)

type authStatusResponse struct {
	HasKey bool   `json:"has_key"`
	Source string `json:"source,omitempty"`
}

type setKeyRequest struct {
	APIKey string `json:"api_key"`
}

// AuthStatus reports whether a usable Gemini key is available for the caller.
func (a *App) AuthStatus(w http.ResponseWriter, r *http.Request) {
	credential, source := a.Credentials.Resolve(r.Context(), r.Header.Get("X-Goog-Api-Key"))
	resp := authStatusResponse{HasKey: credential.Usable()}
	if resp.HasKey {
		resp.Source = string(source)
	}
	a.json(w, http.StatusOK, resp)
}

// AuthSetKey stores a Gemini key in the token store.
func (a *App) AuthSetKey(w http.ResponseWriter, r *http.Request) {
	if a.Keys == nil {
		a.error(w, http.StatusNotImplemented, "not_configured", "key storage requires a database")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<14)
	var req setKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := a.Keys.SetGeminiAPIKey(r.Context(), req.APIKey); err != nil {
		if errors.Is(err, credentials.ErrEmptyKey) {
			a.error(w, http.StatusBadRequest, "bad_request", "api_key required")
			return
		}
		a.log(r).Error().Err(err).Msg("store api key failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to store key")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
