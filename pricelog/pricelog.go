// Copyright (c) 2026 BVK Chaitanya

// Package pricelog persists lowest price observations into append-only logs,
// one per wallet and item kind.
package pricelog

import (
	"context"
	"errors"
	"time"

	"github.com/bvk/shopwatch/metamon"
	"github.com/shopspring/decimal"
)

// TimeFormat is the timestamp layout used in the log files.
const TimeFormat = "02/01/2006 15:04:05"

// Observation is one timestamped lowest price sample.
type Observation struct {
	Wallet    string
	Kind      metamon.ItemKind
	Timestamp time.Time
	Amount    decimal.Decimal

	CycleID string
}

// Sink appends observations.
type Sink interface {
	Append(ctx context.Context, obs *Observation) error
}

// Log is a sink that can also read back the observations.
type Log interface {
	Sink

	// History returns all observations for the wallet and item kind in the
	// append order.
	History(ctx context.Context, wallet string, kind metamon.ItemKind) ([]*Observation, error)
}

type mirrored struct {
	primary Log
	mirrors []Sink
}

// Mirror returns a log that appends to the primary and then to every mirror.
// History is served from the primary.
func Mirror(primary Log, mirrors ...Sink) Log {
	if len(mirrors) == 0 {
		return primary
	}
	return &mirrored{primary: primary, mirrors: mirrors}
}

func (m *mirrored) Append(ctx context.Context, obs *Observation) error {
	if err := m.primary.Append(ctx, obs); err != nil {
		return err
	}
	var errs []error
	for _, s := range m.mirrors {
		if err := s.Append(ctx, obs); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *mirrored) History(ctx context.Context, wallet string, kind metamon.ItemKind) ([]*Observation, error) {
	return m.primary.History(ctx, wallet, kind)
}
