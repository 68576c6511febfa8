// Package render calls the external template-render API that turns field
// maps into receipt images.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cris-tech/gestao-api/internal/config"
	"go.uber.org/zap"
)

// ErrNoAssetURL is returned when the API answers successfully but without
// a rendered asset URL
var ErrNoAssetURL = errors.New("render response carried no asset url")

// Renderer produces a hosted image from a template and a field map
type Renderer interface {
	Render(ctx context.Context, template string, fields map[string]string) (string, error)
}

// Client is the HTTP render API adapter
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Renderer = (*Client)(nil)

// NewClient creates a new render API client
func NewClient(cfg *config.RenderConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:     logger,
	}
}

type renderRequest struct {
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
}

type renderResponse struct {
	Href string `json:"href"`
}

// Render posts the field map against a template and returns the URL of the
// rendered image
func (c *Client) Render(ctx context.Context, template string, fields map[string]string) (string, error) {
	body, err := json.Marshal(renderRequest{Template: template, Data: fields})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v2/render", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("render request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("Render API returned unexpected status",
			zap.Int("status", resp.StatusCode),
			zap.String("template", template),
		)
		return "", fmt.Errorf("render failed with status %d: %s", resp.StatusCode, string(raw))
	}

	var payload renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode render response: %w", err)
	}
	if payload.Href == "" {
		return "", ErrNoAssetURL
	}
	return payload.Href, nil
}
