package middleware

import (
	"net/http"
	"strings"

	"github.com/cris-tech/gestao-api/internal/auth"
	"github.com/cris-tech/gestao-api/internal/identity"
	"go.uber.org/zap"
)

// Authenticate verifies the bearer token and resolves the caller's profile
// on every request. The profile lookup goes through the bootstrap so a
// stale profile id gets repaired transparently during normal use, not just
// at login.
func Authenticate(parser *identity.TokenParser, bootstrap *auth.Bootstrap, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "Missing or malformed authorization header")
				return
			}
			token := strings.TrimPrefix(header, "Bearer ")

			identityID, email, err := parser.Parse(token)
			if err != nil {
				unauthorized(w, "Invalid or expired token")
				return
			}

			profile, err := bootstrap.Verify(r.Context(), email, identityID)
			if err != nil {
				logger.Warn("Session verification failed",
					zap.String("email", email),
					zap.Error(err),
				)
				unauthorized(w, "User profile not configured")
				return
			}

			session := &auth.SessionContext{
				ProfileID:   profile.ID,
				Email:       profile.Email,
				Name:        profile.Name,
				Role:        profile.Role,
				AccessToken: token,
			}
			ctx := auth.WithSessionContext(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireMaster rejects requests whose session lacks the master role
func RequireMaster(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := auth.FromContext(r.Context())
		if !ok || !session.CanManageUsers() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"type":"forbidden","title":"Insufficient permissions","status":403}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"type":"unauthorized","title":"Unauthorized","status":401,"detail":"` + detail + `"}`))
}
