package credentials

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"imgprompt/internal/domain"
)

// Source names where a resolved credential came from.
type Source string

const (
	SourceNone   Source = "none"
	SourceHeader Source = "header"
	SourceStore  Source = "store"
	SourceEnv    Source = "env"
)

// KeyReader is the read side of Store.
type KeyReader interface {
	GeminiAPIKey(ctx context.Context) (string, error)
}

// Chain looks up the Gemini key on every call: request header, then the
// token store, then the process environment value. Nothing is cached so a
// key changed between requests takes effect on the next one.
type Chain struct {
	store  KeyReader
	envKey func() string
	logger zerolog.Logger
}

// NewChain builds a Chain. store may be nil when no database is configured.
// envKey is called on every lookup.
func NewChain(store KeyReader, envKey func() string, logger zerolog.Logger) *Chain {
	return &Chain{
		store:  store,
		envKey: envKey,
		logger: logger.With().Str("component", "credentials").Logger(),
	}
}

// Resolve returns the first usable key. A header or stored value too short to
// be a key does not shadow the sources after it. When nothing usable is found
// the result is an empty Credential with SourceNone.
func (c *Chain) Resolve(ctx context.Context, headerKey string) (domain.Credential, Source) {
	if key := domain.Credential(strings.TrimSpace(headerKey)); key.Usable() {
		return key, SourceHeader
	}
	if c == nil {
		return "", SourceNone
	}
	if c.store != nil {
		key, err := c.store.GeminiAPIKey(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("token store lookup failed")
		} else if cred := domain.Credential(strings.TrimSpace(key)); cred.Usable() {
			return cred, SourceStore
		}
	}
	if c.envKey != nil {
		if key := domain.Credential(strings.TrimSpace(c.envKey())); key.Usable() {
			return key, SourceEnv
		}
	}
	return "", SourceNone
}
