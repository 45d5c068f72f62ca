package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	qferrors "github.com/queryforge/queryforge/pkg/errors"
)

// RecoveryMiddleware is the top-level catch: a panic anywhere below renders
// a generic error for this request without crashing the process.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", "panic", rec, "path", r.URL.Path)
					writeError(w, http.StatusInternalServerError, qferrors.TypeUnexpected, "Error: internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware applies a global token-bucket limit.
func RateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, qferrors.TypeInvalidRequest, "Error: rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthConfig configures bearer authentication for the API.
type AuthConfig struct {
	// APIKeys are static bearer tokens accepted as-is.
	APIKeys []string

	// JWTSecret enables HS256 JWT verification when non-empty.
	JWTSecret string

	// SkipPaths are served without authentication (health, metrics).
	SkipPaths []string
}

// AuthMiddleware validates Authorization: Bearer tokens, accepting either a
// configured static API key or a valid HS256 JWT.
func AuthMiddleware(cfg AuthConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, qferrors.TypeInvalidRequest, "Error: missing bearer token")
				return
			}

			if matchAPIKey(token, cfg.APIKeys) {
				next.ServeHTTP(w, r)
				return
			}

			if cfg.JWTSecret != "" && validJWT(token, cfg.JWTSecret) {
				next.ServeHTTP(w, r)
				return
			}

			logger.Warn("rejected bearer token", "path", r.URL.Path)
			writeError(w, http.StatusUnauthorized, qferrors.TypeInvalidRequest, "Error: invalid bearer token")
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, prefix))
	return token, token != ""
}

func matchAPIKey(token string, keys []string) bool {
	for _, key := range keys {
		if subtle.ConstantTimeCompare([]byte(token), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

func validJWT(token, secret string) bool {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	return err == nil && parsed.Valid
}

// Chain applies middlewares right-to-left, so the first listed runs outermost.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
