// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package telegram is a send-only Telegram Bot API client used to
// deliver filtered-domain alerts to operators. It implements the
// engine's Notifier contract; it is not a bot command surface.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultAPIURL is the production Bot API endpoint. Tests point the
// client at a local server instead.
const DefaultAPIURL = "https://api.telegram.org"

// Client sends messages through the Telegram Bot API.
type Client struct {
	token   string
	baseURL string
	httpc   *http.Client
}

// New returns a client for the given bot token. With an empty baseURL
// the production endpoint is used.
func New(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		token:   token,
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// sendMessageRequest is the Bot API sendMessage payload.
type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// apiResponse is the subset of the Bot API envelope we inspect.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify delivers message to the given chat. It satisfies the
// engine's Notifier interface; one call per recipient.
func (c *Client) Notify(ctx context.Context, recipient, message string) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    recipient,
		Text:      message,
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("encode sendMessage: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("send message to %s: %w", recipient, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err == nil && !parsed.OK && parsed.Description != "" {
		return fmt.Errorf("telegram: %s (status %d)", parsed.Description, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram: unexpected status %d", resp.StatusCode)
	}
	return nil
}
