// Copyright (c) 2026 BVK Chaitanya

package alerts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sync"
	"time"

	"github.com/bvk/shopwatch/gobs"
	"github.com/bvk/shopwatch/kvutil"
	"github.com/bvkgo/kv"
)

// StateKey is the database key for the notification freeze deadlines.
const StateKey = "/alerts/state"

// Notifier sends a push notification.
type Notifier interface {
	SendMessage(ctx context.Context, at time.Time, msg string) error
}

// Dispatcher forwards warnings to push notifiers. After a warning is sent for
// a wallet, the same warning for the wallet is not sent again until the
// freeze interval expires.
type Dispatcher struct {
	db kv.Database

	freeze time.Duration

	notifiers []Notifier

	mu    sync.Mutex
	state *gobs.AlertState
}

// NewDispatcher creates a dispatcher. Freeze deadlines are persisted in the
// database when db is non-nil.
func NewDispatcher(ctx context.Context, db kv.Database, freeze time.Duration, notifiers ...Notifier) (*Dispatcher, error) {
	if freeze < 0 {
		return nil, fmt.Errorf("freeze interval cannot be negative: %w", os.ErrInvalid)
	}
	d := &Dispatcher{
		db:        db,
		freeze:    freeze,
		notifiers: notifiers,
		state: &gobs.AlertState{
			FreezeDeadlineMap: make(map[string]time.Time),
		},
	}
	if db != nil {
		state, err := kvutil.GetDB[gobs.AlertState](ctx, db, StateKey)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("could not load alerts state: %w", err)
			}
		} else {
			if state.FreezeDeadlineMap == nil {
				state.FreezeDeadlineMap = make(map[string]time.Time)
			}
			d.state = state
		}
	}
	return d, nil
}

// Dispatch sends the warnings that are not frozen for the wallet.
func (d *Dispatcher) Dispatch(ctx context.Context, wallet string, at time.Time, warnings []*Warning) error {
	if len(d.notifiers) == 0 || len(warnings) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	modified := false
	for _, w := range warnings {
		key := path.Join(wallet, w.Name())
		if deadline, ok := d.state.FreezeDeadlineMap[key]; ok {
			if at.Before(deadline) {
				continue
			}
			delete(d.state.FreezeDeadlineMap, key)
			modified = true
		}

		msg := fmt.Sprintf("[%s] %s Lowest price is %s.", wallet, w, w.Price)
		sent := false
		for _, n := range d.notifiers {
			if err := n.SendMessage(ctx, at, msg); err != nil {
				slog.Error("could not send notification (ignored)", "wallet", wallet, "warning", w.Name(), "err", err)
				continue
			}
			sent = true
		}
		if sent && d.freeze > 0 {
			d.state.FreezeDeadlineMap[key] = at.Add(d.freeze)
			modified = true
		}
	}

	if modified && d.db != nil {
		if err := kvutil.SetDB(ctx, d.db, StateKey, d.state); err != nil {
			slog.Error("could not save alerts state", "err", err)
			return err
		}
	}
	return nil
}
