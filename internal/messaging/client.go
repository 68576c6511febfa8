// Package messaging delivers rendered receipts to clients over a WhatsApp
// gateway.
package messaging

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

// Sender delivers an image attachment to a phone number
type Sender interface {
	SendMedia(ctx context.Context, number, mediaURL, fileName string) error
}

// Client is the WhatsApp gateway adapter
type Client struct {
	baseURL    string
	apiKey     string
	instance   string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Sender = (*Client)(nil)

// NewClient creates a new messaging gateway client
func NewClient(cfg *config.MessagingConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		instance:   cfg.Instance,
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:     logger,
	}
}

type sendMediaRequest struct {
	Number    string `json:"number"`
	MediaType string `json:"mediatype"`
	MimeType  string `json:"mimetype"`
	Media     string `json:"media"`
	FileName  string `json:"fileName"`
}

// SendMedia sends a png attachment to the given number. The number must
// already be normalized (digits only, country code prefixed).
func (c *Client) SendMedia(ctx context.Context, number, mediaURL, fileName string) error {
	body, err := json.Marshal(sendMediaRequest{
		Number:    number,
		MediaType: "image",
		MimeType:  "image/png",
		Media:     mediaURL,
		FileName:  fileName,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/message/sendMedia/"+c.instance, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendMedia request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sendMedia failed with status %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

// NormalizeNumber strips formatting from a phone number and prefixes the
// Brazilian country code when absent.
func NormalizeNumber(raw string) string {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()
	if number == "" {
		return ""
	}
	if !strings.HasPrefix(number, "55") {
		number = "55" + number
	}
	return number
}
