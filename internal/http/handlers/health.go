package handlers

import (
	"net/http"
)

// BackendInfo describes the configured prompt backends. It carries no secrets.
type BackendInfo struct {
	AryanEndpoint        string
	AryanInsecureBlocked bool
	GeminiModel          string
	HistoryBackend       string
}

type healthResponse struct {
	Status  string        `json:"status"`
	Aryan   aryanHealth   `json:"aryan"`
	Gemini  geminiHealth  `json:"gemini"`
	History historyHealth `json:"history"`
}

type aryanHealth struct {
	Endpoint        string `json:"endpoint,omitempty"`
	InsecureBlocked bool   `json:"insecure_blocked"`
}

type geminiHealth struct {
	Model  string `json:"model,omitempty"`
	HasKey bool   `json:"has_key"`
}

type historyHealth struct {
	Backend    string `json:"backend"`
	KeyStorage bool   `json:"key_storage"`
}

// Health reports liveness along with which backends this instance will use.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "ok",
		Aryan: aryanHealth{
			Endpoint:        a.Backends.AryanEndpoint,
			InsecureBlocked: a.Backends.AryanInsecureBlocked,
		},
		Gemini:  geminiHealth{Model: a.Backends.GeminiModel},
		History: historyHealth{Backend: a.Backends.HistoryBackend, KeyStorage: a.Keys != nil},
	}
	if resp.History.Backend == "" {
		resp.History.Backend = "memory"
	}
	if a.Credentials != nil {
		credential, _ := a.Credentials.Resolve(r.Context(), "")
		resp.Gemini.HasKey = credential.Usable()
	}
	a.json(w, http.StatusOK, resp)
}
