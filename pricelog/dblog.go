// Copyright (c) 2026 BVK Chaitanya

package pricelog

import (
	"context"
	"fmt"
	"path"

	"github.com/bvk/shopwatch/gobs"
	"github.com/bvk/shopwatch/kvutil"
	"github.com/bvk/shopwatch/metamon"
	"github.com/bvkgo/kv"
)

// KeyPrefix is the database directory for all observations.
const KeyPrefix = "/observations"

// DBLog keeps observations in a key-value database under
// /observations/<wallet>/<item>/<unix-nanos>.
type DBLog struct {
	db kv.Database
}

func NewDBLog(db kv.Database) *DBLog {
	return &DBLog{db: db}
}

func observationDir(wallet string, kind metamon.ItemKind) string {
	return path.Join(KeyPrefix, EncodeName(wallet), kind.String())
}

func observationKey(obs *Observation) string {
	return path.Join(observationDir(obs.Wallet, obs.Kind), fmt.Sprintf("%020d", obs.Timestamp.UnixNano()))
}

func (d *DBLog) Append(ctx context.Context, obs *Observation) error {
	v := &gobs.PriceObservation{
		Wallet:    obs.Wallet,
		ItemKind:  obs.Kind.String(),
		Timestamp: obs.Timestamp,
		Amount:    obs.Amount,
		CycleID:   obs.CycleID,
	}
	key := observationKey(obs)
	if err := kvutil.SetDB(ctx, d.db, key, v); err != nil {
		return fmt.Errorf("could not save observation at key %q: %w", key, err)
	}
	return nil
}

func (d *DBLog) History(ctx context.Context, wallet string, kind metamon.ItemKind) ([]*Observation, error) {
	var observations []*Observation
	begin, end := kvutil.PathRange(observationDir(wallet, kind))
	collect := func(key string, v *gobs.PriceObservation) error {
		obs, err := fromGob(v)
		if err != nil {
			return fmt.Errorf("invalid observation at key %q: %w", key, err)
		}
		observations = append(observations, obs)
		return nil
	}
	if err := kvutil.AscendDB(ctx, d.db, begin, end, collect); err != nil {
		return nil, fmt.Errorf("could not scan observations for %q: %w", wallet, err)
	}
	return observations, nil
}

// Latest returns the most recent observation or nil if none exist.
func (d *DBLog) Latest(ctx context.Context, wallet string, kind metamon.ItemKind) (*Observation, error) {
	begin, end := kvutil.PathRange(observationDir(wallet, kind))
	_, v, err := kvutil.LastDB[gobs.PriceObservation](ctx, d.db, begin, end)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return fromGob(v)
}

func fromGob(v *gobs.PriceObservation) (*Observation, error) {
	kind, err := metamon.ParseItemKind(v.ItemKind)
	if err != nil {
		return nil, err
	}
	return &Observation{
		Wallet:    v.Wallet,
		Kind:      kind,
		Timestamp: v.Timestamp,
		Amount:    v.Amount,
		CycleID:   v.CycleID,
	}, nil
}
