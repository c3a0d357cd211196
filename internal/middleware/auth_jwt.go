package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeKeysWrite allows replacing the stored Gemini key.
const ScopeKeysWrite = "keys:write"

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrTokenExpired     = errors.New("token expired")
	ErrMissingScope     = errors.New("token lacks required scope")
)

// AdminClaims is the payload of an operator token.
type AdminClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// NewAdminClaims returns claims for subject granting scope until expires.
func NewAdminClaims(subject, scope string, expires time.Time) AdminClaims {
	return AdminClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
}

// HasScope reports whether the space separated scope list contains want.
func (c AdminClaims) HasScope(want string) bool {
	for _, s := range strings.Fields(c.Scope) {
		if s == want {
			return true
		}
	}
	return false
}

type adminContextKey struct{}

// SignJWT returns an HS256 token for claims.
func SignJWT(secret string, claims AdminClaims) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyJWT checks the algorithm, signature and expiry of token at now.
// Tokens without an expiry are rejected.
func VerifyJWT(secret, token string, now time.Time) (*AdminClaims, error) {
	if secret == "" {
		return nil, ErrInvalidToken
	}
	var claims AdminClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	switch {
	case err == nil:
		return &claims, nil
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	default:
		return nil, ErrInvalidToken
	}
}

// AdminJWT guards operator routes with a bearer token signed by secret and
// carrying scope. An empty secret rejects every request.
func AdminJWT(secret, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing authorization")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "invalid authorization")
				return
			}
			claims, err := VerifyJWT(secret, strings.TrimSpace(parts[1]), time.Now())
			if err != nil {
				unauthorized(w, err.Error())
				return
			}
			if !claims.HasScope(scope) {
				unauthorized(w, ErrMissingScope.Error())
				return
			}
			ctx := context.WithValue(r.Context(), adminContextKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminFromContext returns the subject of the verified operator token.
func AdminFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(adminContextKey{}).(string); ok {
		return v
	}
	return ""
}

func unauthorized(w http.ResponseWriter, message string) {
	body, _ := json.Marshal(map[string]map[string]string{
		"error": {"code": "unauthorized", "message": message},
	})
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="imgprompt"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write(body)
}
