// Copyright (c) 2023 BVK Chaitanya

package ctxutil

import (
	"context"
	"errors"
	"os"
	"time"
)

// Sleep blocks the caller for given duration. Returns early with the context
// cause if the input context is canceled.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return context.Cause(ctx)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
		return nil
	}
}

// Attempts invokes the input function at most n times, stopping at the first
// success. There is no wait between the attempts. Function can return a
// permanent error wrapped by Permanent to stop the retries early. Returns nil
// on success or the last non-nil error.
func Attempts(ctx context.Context, n int, f func(attempt int) error) (err error) {
	if n <= 0 {
		return os.ErrInvalid
	}
	for i := 0; i < n; i++ {
		if err = f(i); err == nil {
			return nil
		}
		var perr *permanentError
		if errors.As(err, &perr) {
			return perr.err
		}
		if cause := context.Cause(ctx); cause != nil {
			return cause
		}
	}
	return err
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string {
	return p.err.Error()
}

func (p *permanentError) Unwrap() error {
	return p.err
}

// Permanent marks an error as non-retriable for Attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
