// Copyright (c) 2026 BVK Chaitanya

package metamon

import (
	"fmt"
	"net/url"
	"time"
)

const DefaultBaseURL = "https://metamon-api.radiocaca.com/usm-api"

type Options struct {
	// BaseURL is the prefix for all api endpoints.
	BaseURL string

	// RequestDelay is the fixed wait before every request is sent.
	RequestDelay time.Duration

	// RetryCount is the maximum number of attempts for each request.
	RetryCount int

	// HttpClientTimeout holds the timeout for each http attempt.
	HttpClientTimeout time.Duration

	// RequestsPerSecond caps the request rate across all sessions sharing the
	// client.
	RequestsPerSecond float64
}

func (v *Options) setDefaults() {
	if len(v.BaseURL) == 0 {
		v.BaseURL = DefaultBaseURL
	}
	if v.RequestDelay == 0 {
		v.RequestDelay = time.Second
	}
	if v.RetryCount == 0 {
		v.RetryCount = 5
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 30 * time.Second
	}
	if v.RequestsPerSecond == 0 {
		v.RequestsPerSecond = 5
	}
}

func (v *Options) Check() error {
	u, err := url.Parse(v.BaseURL)
	if err != nil {
		return fmt.Errorf("could not parse base url %q: %w", v.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base url %q must use http or https scheme", v.BaseURL)
	}
	if v.RequestDelay < 0 {
		return fmt.Errorf("request delay cannot be negative")
	}
	if v.RetryCount < 0 {
		return fmt.Errorf("retry count cannot be negative")
	}
	if v.HttpClientTimeout < 0 {
		return fmt.Errorf("http client timeout cannot be negative")
	}
	if v.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second cannot be negative")
	}
	return nil
}
