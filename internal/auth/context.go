package auth

import (
	"context"

	"github.com/cris-tech/gestao-api/internal/domain"
)

// SessionContext holds the authenticated session for a single request.
// It is built per request by the middleware; there is no process-wide
// current user.
type SessionContext struct {
	ProfileID   string
	Email       string
	Name        string
	Role        domain.ProfileRole
	AccessToken string
}

type contextKey string

const sessionContextKey contextKey = "sessionContext"

// WithSessionContext adds the session to the context
func WithSessionContext(ctx context.Context, session *SessionContext) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// FromContext extracts the session from the context
func FromContext(ctx context.Context) (*SessionContext, bool) {
	session, ok := ctx.Value(sessionContextKey).(*SessionContext)
	return session, ok
}

// MustFromContext extracts the session or panics
func MustFromContext(ctx context.Context) *SessionContext {
	session, ok := FromContext(ctx)
	if !ok {
		panic("session context not found in context")
	}
	return session
}

// HasRole checks if the session's profile has a specific role
func (s *SessionContext) HasRole(role domain.ProfileRole) bool {
	return s.Role == role
}

// IsMaster checks if the session's profile is a master user
func (s *SessionContext) IsMaster() bool {
	return s.Role == domain.RoleMaster
}

// CanManageUsers checks if the session may administer user accounts
func (s *SessionContext) CanManageUsers() bool {
	return s.Role == domain.RoleMaster
}
