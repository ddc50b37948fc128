// Copyright (c) 2026 BVK Chaitanya

package metamon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/bvk/shopwatch/ctxutil"
	"golang.org/x/time/rate"
)

var (
	// ErrRetriesExhausted is returned when all attempts of a request fail.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrUnauthorized is returned when login fails or the server rejects the
	// session token.
	ErrUnauthorized = errors.New("unauthorized")
)

type Client struct {
	opts Options

	baseURL *url.URL

	client *http.Client

	limiter *rate.Limiter
}

// New creates a client for the game api.
func New(opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not parse base url: %w", err)
	}

	c := &Client{
		opts:    *opts,
		baseURL: u,
		client: &http.Client{
			Timeout: opts.HttpClientTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}
	return c, nil
}

// Post sends a form-encoded request to the endpoint after the configured
// request delay and decodes the response data into result. Transport and
// decoding failures are retried immediately up to the configured retry
// count. Returns ErrRetriesExhausted wrapping the last failure when all
// attempts fail. Unauthorized and api-level errors are not retried.
func (c *Client) Post(ctx context.Context, endpoint string, form url.Values, token string, result any) error {
	if err := ctxutil.Sleep(ctx, c.opts.RequestDelay); err != nil {
		return err
	}

	u := c.baseURL.JoinPath(endpoint)
	attempts := 0
	err := ctxutil.Attempts(ctx, c.opts.RetryCount, func(i int) error {
		attempts++
		if err := c.limiter.Wait(ctx); err != nil {
			return ctxutil.Permanent(err)
		}
		err := c.post(ctx, u, form, token, result)
		if err == nil {
			return nil
		}
		var apiErr *APIError
		if errors.Is(err, ErrUnauthorized) || errors.As(err, &apiErr) {
			return ctxutil.Permanent(err)
		}
		slog.Warn("could not post request (will retry)", "endpoint", endpoint, "attempt", i+1, "err", err)
		return err
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	var apiErr *APIError
	if errors.Is(err, ErrUnauthorized) || errors.As(err, &apiErr) {
		return err
	}
	slog.Error("could not post request", "endpoint", endpoint, "attempts", attempts, "err", err)
	return fmt.Errorf("%s: %w after %d attempts: %w", endpoint, ErrRetriesExhausted, attempts, err)
}

func (c *Client) post(ctx context.Context, u *url.URL, form url.Values, token string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("could not create post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if len(token) != 0 {
		req.Header.Set("accessToken", token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("could not perform post request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%s: http status %d: %w", u.Path, resp.StatusCode, ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected http status %d", u.Path, resp.StatusCode)
	}

	r := new(Response)
	if err := json.Unmarshal(body, r); err != nil {
		return fmt.Errorf("could not json-decode response envelope: %w", err)
	}
	if len(r.Code) != 0 && r.Code != SuccessCode {
		return &APIError{Endpoint: u.Path, Code: r.Code, Message: r.Message}
	}
	if result == nil || len(r.Data) == 0 || bytes.Equal(r.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(r.Data, result); err != nil {
		return fmt.Errorf("could not json-decode response data: %w", err)
	}
	return nil
}

// Login exchanges the wallet credential for a session token. Returns
// ErrUnauthorized if the server responds without a token.
func (c *Client) Login(ctx context.Context, cred *Credential) (string, error) {
	if err := cred.Check(); err != nil {
		return "", err
	}
	var token string
	if err := c.Post(ctx, LoginEndpoint, cred.loginForm(), "", &token); err != nil {
		return "", fmt.Errorf("could not login wallet %q: %w", cred.DisplayName(), err)
	}
	if len(token) == 0 {
		return "", fmt.Errorf("login response for wallet %q has no token: %w", cred.DisplayName(), ErrUnauthorized)
	}
	return token, nil
}

// SellList fetches one page of shop listings as returned by the server.
func (c *Client) SellList(ctx context.Context, token, address string, q *SellListQuery) ([]*ShopOrder, error) {
	if len(token) == 0 {
		return nil, fmt.Errorf("session token is empty: %w", ErrUnauthorized)
	}
	data := new(SellListData)
	if err := c.Post(ctx, SellListEndpoint, q.form(address), token, data); err != nil {
		return nil, fmt.Errorf("could not fetch shop listing for type %q: %w", q.Type, err)
	}
	return data.ShopOrderList, nil
}
