// Copyright (c) 2023 BVK Chaitanya

package httputil

import (
	"fmt"
	"time"
)

type Options struct {
	// ReadinessTimeout is the maximum time to wait for a newly started
	// listener to serve its first request.
	ReadinessTimeout time.Duration

	// ReadinessRetryInterval is the wait between readiness probes.
	ReadinessRetryInterval time.Duration

	// ShutdownTimeout bounds the graceful shutdown in Close.
	ShutdownTimeout time.Duration
}

func (v *Options) setDefaults() {
	if v.ReadinessTimeout == 0 {
		v.ReadinessTimeout = 10 * time.Second
	}
	if v.ReadinessRetryInterval == 0 {
		v.ReadinessRetryInterval = 100 * time.Millisecond
	}
	if v.ShutdownTimeout == 0 {
		v.ShutdownTimeout = 5 * time.Second
	}
}

func (v *Options) Check() error {
	if v.ReadinessTimeout < 0 || v.ReadinessRetryInterval < 0 || v.ShutdownTimeout < 0 {
		return fmt.Errorf("http server timeouts cannot be negative")
	}
	return nil
}
