// Copyright (c) 2023 BVK Chaitanya

package ctxutil

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func TestCloseGroup(t *testing.T) {
	var cg CloseGroup

	var done atomic.Int32
	for i := 0; i < 10; i++ {
		cg.Go(func(ctx context.Context) {
			<-ctx.Done()
			done.Add(1)
		})
	}

	cg.Close()
	if v := done.Load(); v != 10 {
		t.Fatalf("want 10 goroutines complete, got %d", v)
	}
	if err := context.Cause(cg.Context()); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("want os.ErrClosed cause, got %v", err)
	}
}

func TestSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("sleep did not return early on canceled context")
	}
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatal(err)
	}
}

func TestAttempts(t *testing.T) {
	ctx := context.Background()
	failure := errors.New("failure")

	count := 0
	err := Attempts(ctx, 5, func(int) error {
		count++
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("want last error, got %v", err)
	}
	if count != 5 {
		t.Fatalf("want 5 attempts, got %d", count)
	}

	count = 0
	if err := Attempts(ctx, 5, func(i int) error {
		count++
		if i < 2 {
			return failure
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("want 3 attempts, got %d", count)
	}

	count = 0
	err = Attempts(ctx, 5, func(int) error {
		count++
		return Permanent(os.ErrPermission)
	})
	if !errors.Is(err, os.ErrPermission) || count != 1 {
		t.Fatalf("want one attempt with permanent error, got %d attempts and %v", count, err)
	}

	if err := Attempts(ctx, 0, func(int) error { return nil }); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("want os.ErrInvalid for zero attempts, got %v", err)
	}
}
