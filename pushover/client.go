// Copyright (c) 2023 BVK Chaitanya

package pushover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const DefaultEndpoint = "https://api.pushover.net/1/messages.json"

// MaxMessageLen is the longest message body accepted by the pushover api.
const MaxMessageLen = 1024

type message struct {
	Token     string `json:"token"`
	User      string `json:"user"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type response struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors"`
}

type Client struct {
	keys Keys

	endpoint string

	httpClient *http.Client
}

// New creates a pushover client. Messages are posted to DefaultEndpoint when
// endpoint is empty.
func New(keys *Keys, endpoint string) (*Client, error) {
	if err := keys.Check(); err != nil {
		return nil, err
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		keys:       *keys,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SendMessage pushes text to the user's devices. Long texts are truncated.
func (c *Client) SendMessage(ctx context.Context, at time.Time, text string) error {
	if runes := []rune(text); len(runes) > MaxMessageLen {
		text = string(runes[:MaxMessageLen])
	}
	r, status, err := c.post(ctx, &message{
		Token:     c.keys.ApplicationKey,
		User:      c.keys.UserKey,
		Title:     "shopwatch",
		Message:   text,
		Timestamp: at.Unix(),
	})
	if err != nil {
		return err
	}
	if r.Status == 1 {
		return nil
	}
	if len(r.Errors) > 0 {
		return fmt.Errorf("pushover rejected message %q (http-status %d): %s", r.Request, status, strings.Join(r.Errors, "; "))
	}
	return fmt.Errorf("pushover rejected message %q (http-status %d) with status %d", r.Request, status, r.Status)
}

func (c *Client) post(ctx context.Context, m *message) (*response, int, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, 0, fmt.Errorf("could not marshal pushover message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("could not post pushover message: %w", err)
	}
	defer resp.Body.Close()

	r := new(response)
	if err := json.NewDecoder(resp.Body).Decode(r); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("could not decode pushover response (http-status %d): %w", resp.StatusCode, err)
	}
	return r, resp.StatusCode, nil
}
