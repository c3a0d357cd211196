package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strings"
)

type clientIDContextKey struct{}

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// ClientID tags the request with the identity that owns its prompt history:
// the X-Client-ID header when it is well formed, otherwise the client IP.
func ClientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get("X-Client-ID"))
		if !clientIDPattern.MatchString(owner) {
			owner = "ip:" + clientIPForRateLimit(r)
		}
		ctx := context.WithValue(r.Context(), clientIDContextKey{}, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIDFromContext returns the history owner stored by ClientID.
func ClientIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(clientIDContextKey{}).(string); ok {
		return v
	}
	return ""
}
