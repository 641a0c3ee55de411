package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/rx3lixir/ambient/pkg/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthMiddleware requires a token whose role may publish
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tokens == nil {
			s.handleError(w, NewUnavailableError("publishing is not configured"))
			return
		}

		token := bearerToken(r)
		if token == "" {
			s.handleError(w, NewUnauthorizedError("missing token"))
			return
		}

		claims, err := s.tokens.ValidateToken(token)
		if err != nil {
			s.log.Debug("Rejected token", "error", err, "remote", r.RemoteAddr)
			s.handleError(w, NewUnauthorizedError("invalid or expired token"))
			return
		}

		if !claims.CanPublish() {
			s.handleError(w, NewForbiddenError("role "+claims.Role+" cannot publish"))
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get("X-Admin-Token"))
}

// claimsFromContext returns the claims set by AuthMiddleware
func claimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*jwt.Claims)
	return claims, ok
}
