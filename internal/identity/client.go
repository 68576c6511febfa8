package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cris-tech/gestao-api/internal/config"
	"go.uber.org/zap"
)

// Client is an HTTP adapter for a GoTrue-compatible identity provider
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Store = (*Client)(nil)

// NewClient creates a new identity provider client
func NewClient(cfg *config.IdentityConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:     logger,
	}
}

// SignIn exchanges email/password for a session via the password grant
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity sign-in request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.unexpectedStatus("sign-in", resp)
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode identity session: %w", err)
	}
	return &session, nil
}

// SignOut revokes the session behind the given access token
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity sign-out request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return c.unexpectedStatus("sign-out", resp)
	}
	return nil
}

// ListUsers returns all provider accounts using the service key
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/admin/users", nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity list users request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.unexpectedStatus("list users", resp)
	}

	var payload struct {
		Users []User `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode identity users: %w", err)
	}
	return payload.Users, nil
}

// CreateUser registers a confirmed account. A provider response indicating
// the email is taken maps to ErrEmailExists so callers can fall back to
// looking the account up.
func (c *Client) CreateUser(ctx context.Context, email, password string) (*User, error) {
	body, err := json.Marshal(map[string]interface{}{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/admin/users", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity create user request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusConflict {
		return nil, ErrEmailExists
	}
	if resp.StatusCode == http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if strings.Contains(strings.ToLower(string(raw)), "already") {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("identity create user rejected: %s", string(raw))
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.unexpectedStatus("create user", resp)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode identity user: %w", err)
	}
	return &user, nil
}

// DeleteUser removes a provider account
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/admin/users/"+id, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity delete user request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrUserNotFound
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.unexpectedStatus("delete user", resp)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)
}

func (c *Client) unexpectedStatus(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	c.logger.Warn("Identity provider returned unexpected status",
		zap.String("operation", op),
		zap.Int("status", resp.StatusCode),
	)
	return fmt.Errorf("identity %s failed with status %d: %s", op, resp.StatusCode, string(raw))
}
