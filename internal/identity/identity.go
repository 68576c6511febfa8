// Package identity talks to the external identity provider. The provider
// owns credentials and sessions; application roles live in the profiles
// table and are reconciled by the auth package.
package identity

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials is returned when the provider rejects a sign-in
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailExists is returned when creating a user whose email is
	// already registered with the provider
	ErrEmailExists = errors.New("email already registered")

	// ErrUserNotFound is returned when a provider user cannot be resolved
	ErrUserNotFound = errors.New("identity user not found")
)

// User is an identity provider account
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an authenticated provider session
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Store abstracts the identity provider operations the application needs
type Store interface {
	// SignIn exchanges credentials for a session
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignOut revokes the session behind the given access token
	SignOut(ctx context.Context, accessToken string) error

	// ListUsers returns all provider accounts (admin operation)
	ListUsers(ctx context.Context) ([]User, error)

	// CreateUser registers a new provider account with a confirmed email.
	// Returns ErrEmailExists when the address is already registered.
	CreateUser(ctx context.Context, email, password string) (*User, error)

	// DeleteUser removes a provider account (admin operation)
	DeleteUser(ctx context.Context, id string) error
}
