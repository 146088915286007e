package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ContextKey is a private type for context keys to avoid collisions.
type ContextKey string

// AccountIDCtxKey holds the authenticated account id for the request.
const AccountIDCtxKey = ContextKey("account_id")

// Claims is the token shape issued by the user service.
type Claims struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}

// SessionAuth verifies the session token and, when valid, stores the
// account id in the request context. It never rejects the request itself:
// each handler decides at which point a missing identity matters, because
// some flows check required fields before authentication.
func SessionAuth(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid || claims.AccountID == "" {
				logger.Warn("Session token rejected", zap.Error(err), zap.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), AccountIDCtxKey, claims.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountIDFromContext returns the authenticated account id, or "" when the
// request carried no valid session.
func AccountIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(AccountIDCtxKey).(string); ok {
		return id
	}
	return ""
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	// Browser clients carry the token in a cookie instead.
	if cookie, err := r.Cookie("session"); err == nil {
		return cookie.Value
	}
	return ""
}
