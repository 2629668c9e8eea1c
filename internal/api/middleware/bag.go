package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/ksd-storefront/internal/auth"
)

const (
	BagCookieName = "bag_token"
	BagHeaderName = "X-Bag-Token"
)

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken extracts the bag token from cookie or X-Bag-Token header
func ExtractToken(r *http.Request) string {
	// Try cookie first (for browser)
	if cookie, err := r.Cookie(BagCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return strings.TrimSpace(r.Header.Get(BagHeaderName))
}

type contextKey string

const (
	BagContextKey contextKey = "bag"
)

// BagMiddleware puts the caller's bag id in the request context. A missing,
// expired or forged token starts a fresh bag and hands back a new token.
func BagMiddleware(tokens *auth.TokenService, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString := ExtractToken(r); tokenString != "" {
				bagID, err := tokens.Validate(tokenString)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithBagID(r.Context(), bagID)))
					return
				}
				logger.Debug("discarding bag token", zap.Error(err))
			}

			bagID := uuid.NewString()
			token, expiresAt, err := tokens.Issue(bagID)
			if err != nil {
				logger.Error("failed to issue bag token", zap.Error(err))
				respondError(w, "could not start a bag", http.StatusInternalServerError)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     BagCookieName,
				Value:    token,
				Path:     "/",
				Expires:  expiresAt,
				HttpOnly: true,
				Secure:   isHTTPS(r),
				SameSite: http.SameSiteLaxMode,
			})
			w.Header().Set(BagHeaderName, token)

			next.ServeHTTP(w, r.WithContext(WithBagID(r.Context(), bagID)))
		})
	}
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func WithBagID(ctx context.Context, bagID string) context.Context {
	return context.WithValue(ctx, BagContextKey, bagID)
}

// GetBagID returns the bag id set by BagMiddleware, or "".
func GetBagID(ctx context.Context) string {
	bagID, _ := ctx.Value(BagContextKey).(string)
	return bagID
}
