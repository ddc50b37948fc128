// Copyright (c) 2023 BVK Chaitanya

package ctxutil

import (
	"context"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
)

// CloseGroup runs background goroutines that share a single context which is
// canceled by Close. Close waits for all goroutines to return.
type CloseGroup struct {
	once sync.Once
	wg   sync.WaitGroup

	ctx    context.Context
	cancel context.CancelCauseFunc
}

func (cg *CloseGroup) init() {
	cg.ctx, cg.cancel = context.WithCancelCause(context.Background())
}

func (cg *CloseGroup) Context() context.Context {
	cg.once.Do(cg.init)
	return cg.ctx
}

func (cg *CloseGroup) Close() {
	cg.once.Do(cg.init)
	cg.cancel(os.ErrClosed)
	cg.wg.Wait()
}

// Go runs f in a new goroutine. Panics are logged with the stack trace before
// they are re-raised.
func (cg *CloseGroup) Go(f func(ctx context.Context)) {
	cg.once.Do(cg.init)

	cg.wg.Add(1)
	go func() {
		defer cg.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("CAUGHT PANIC", "panic", r)
				slog.Error(string(debug.Stack()))
				panic(r)
			}
		}()
		f(cg.ctx)
	}()
}
