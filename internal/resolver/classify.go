package resolver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"imgprompt/internal/domain"
)

type httpStatuser interface {
	HTTPStatus() int
}

var (
	authMissingHints = []string{"api key not provided", "missing api key", "api key is required", "no api key"}
	authHints        = []string{"api key", "api_key", "apikey", "entity was not found", "permission denied", "permission_denied", "unauthenticated", "invalid credential"}
	rateHints        = []string{"429", "quota", "rate limit", "ratelimit", "resource_exhausted", "resource has been exhausted", "too many requests"}
)

// classify maps a vision backend error onto the failure taxonomy. The
// original message is preserved for display.
func classify(err error) *domain.Failure {
	var f *domain.Failure
	if errors.As(err, &f) {
		return f
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.Failure{Kind: domain.KindEngineFailure, Message: "vision backend timed out", Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &domain.Failure{Kind: domain.KindEngineFailure, Message: "resolution cancelled", Err: err}
	}

	var st httpStatuser
	if errors.As(err, &st) {
		switch st.HTTPStatus() {
		case http.StatusTooManyRequests:
			return domain.Wrap(domain.KindRateLimited, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.Wrap(domain.KindAuthInvalid, err)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, authMissingHints):
		return domain.Wrap(domain.KindAuthRequired, err)
	case containsAny(msg, authHints):
		return domain.Wrap(domain.KindAuthInvalid, err)
	case containsAny(msg, rateHints):
		return domain.Wrap(domain.KindRateLimited, err)
	}
	f = domain.Wrap(domain.KindEngineFailure, err)
	if f.Message == "" {
		f.Message = "the vision engine encountered a processing fault"
	}
	return f
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
