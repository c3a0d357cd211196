package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"imgprompt/internal/domain"
	"imgprompt/internal/history"
	"imgprompt/internal/infra/credentials"
)

// Resolver turns an image reference into a prompt.
type Resolver interface {
	Resolve(ctx context.Context, ref domain.ImageReference, credential domain.Credential) (domain.Result, error)
}

// CredentialSource resolves the Gemini key for a request.
type CredentialSource interface {
	Resolve(ctx context.Context, headerKey string) (domain.Credential, credentials.Source)
}

// KeyWriter persists a Gemini key.
type KeyWriter interface {
	SetGeminiAPIKey(ctx context.Context, key string) error
}

// App holds the dependencies shared by every handler.
type App struct {
	Resolver    Resolver
	History     history.Store
	Credentials CredentialSource
	// Keys is nil when no database is configured.
	Keys     KeyWriter
	Backends BackendInfo
	Logger   zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// log prefers the request-scoped logger installed by the logging middleware.
func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}
