// Copyright (c) 2026 BVK Chaitanya

package pricelog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bvk/shopwatch/gobs"
	"github.com/bvk/shopwatch/kvutil"
	"github.com/bvk/shopwatch/metamon"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/shopspring/decimal"
)

func observations(wallet string, kind metamon.ItemKind, n int) []*Observation {
	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.Local)
	var vs []*Observation
	for i := 0; i < n; i++ {
		vs = append(vs, &Observation{
			Wallet:    wallet,
			Kind:      kind,
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Amount:    decimal.NewFromInt(int64(4000 + i*7)).Add(decimal.New(5, -1)),
		})
	}
	return vs
}

func TestCSVLogAppend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	log := NewCSVLog(dir)

	const n = 10
	for _, obs := range observations("alice", metamon.Egg, n) {
		if err := log.Append(ctx, obs); err != nil {
			t.Fatal(err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "alice_egg.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != n {
		t.Fatalf("want %d rows, got %d", n, len(lines))
	}
	if lines[0] != "19/10/2026 10:00:00,4000.5" {
		t.Fatalf("unexpected first row %q", lines[0])
	}

	// Potion log is a separate file.
	if _, err := os.Stat(log.FilePath("alice", metamon.Potion)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("potion log must not exist, got %v", err)
	}
}

func TestCSVLogRoundTrip(t *testing.T) {
	ctx := context.Background()
	log := NewCSVLog(t.TempDir())

	input := observations("bob/1", metamon.Potion, 5)
	for _, obs := range input {
		if err := log.Append(ctx, obs); err != nil {
			t.Fatal(err)
		}
	}

	history, err := log.History(ctx, "bob/1", metamon.Potion)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != len(input) {
		t.Fatalf("want %d observations, got %d", len(input), len(history))
	}
	for i, obs := range history {
		if !obs.Timestamp.Equal(input[i].Timestamp) {
			t.Errorf("row %d: want timestamp %v, got %v", i, input[i].Timestamp, obs.Timestamp)
		}
		if !obs.Amount.Equal(input[i].Amount) {
			t.Errorf("row %d: want amount %s, got %s", i, input[i].Amount, obs.Amount)
		}
		if i > 0 && obs.Timestamp.Before(history[i-1].Timestamp) {
			t.Errorf("row %d is out of append order", i)
		}
		if obs.Wallet != "bob/1" || obs.Kind != metamon.Potion {
			t.Errorf("row %d: unexpected wallet or kind %q %v", i, obs.Wallet, obs.Kind)
		}
	}

	if filepath.Base(log.FilePath("bob/1", metamon.Potion)) != "bob%2F1_potion.csv" {
		t.Fatalf("unexpected file name %q", log.FilePath("bob/1", metamon.Potion))
	}

	empty, err := log.History(ctx, "nobody", metamon.Egg)
	if err != nil || len(empty) != 0 {
		t.Fatalf("want empty history for a new wallet, got %v %v", empty, err)
	}
}

func TestReadErrors(t *testing.T) {
	inputs := []string{
		"19/10/2026 10:00:00\n",
		"2026-10-19 10:00:00,4000\n",
		"19/10/2026 10:00:00,abc\n",
	}
	for _, input := range inputs {
		if _, err := Read(strings.NewReader(input)); err == nil {
			t.Errorf("%q: want error, got nil", input)
		}
	}
}

func TestDBLog(t *testing.T) {
	ctx := context.Background()
	log := NewDBLog(kvmemdb.New())

	input := observations("alice", metamon.Egg, 4)
	for _, obs := range input {
		obs.CycleID = "cycle"
		if err := log.Append(ctx, obs); err != nil {
			t.Fatal(err)
		}
	}
	if err := log.Append(ctx, observations("alice", metamon.Potion, 1)[0]); err != nil {
		t.Fatal(err)
	}

	history, err := log.History(ctx, "alice", metamon.Egg)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 4 {
		t.Fatalf("want 4 egg observations, got %d", len(history))
	}
	for i, obs := range history {
		if !obs.Amount.Equal(input[i].Amount) || !obs.Timestamp.Equal(input[i].Timestamp) {
			t.Errorf("row %d: want %v %s, got %v %s", i, input[i].Timestamp, input[i].Amount, obs.Timestamp, obs.Amount)
		}
		if obs.Kind != metamon.Egg || obs.CycleID != "cycle" {
			t.Errorf("row %d: unexpected kind or cycle id %v %q", i, obs.Kind, obs.CycleID)
		}
	}

	latest, err := log.Latest(ctx, "alice", metamon.Egg)
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || !latest.Amount.Equal(input[3].Amount) {
		t.Fatalf("want latest amount %s, got %v", input[3].Amount, latest)
	}
	if v, err := log.Latest(ctx, "bob", metamon.Egg); err != nil || v != nil {
		t.Fatalf("want nil latest for unknown wallet, got %v %v", v, err)
	}
}

func TestMirror(t *testing.T) {
	ctx := context.Background()
	csvLog := NewCSVLog(t.TempDir())
	dbLog := NewDBLog(kvmemdb.New())
	log := Mirror(csvLog, dbLog)

	for _, obs := range observations("carol", metamon.Egg, 3) {
		if err := log.Append(ctx, obs); err != nil {
			t.Fatal(err)
		}
	}
	for _, l := range []Log{log, csvLog, dbLog} {
		history, err := l.History(ctx, "carol", metamon.Egg)
		if err != nil {
			t.Fatal(err)
		}
		if len(history) != 3 {
			t.Fatalf("want 3 observations, got %d", len(history))
		}
	}
}

func TestDistinctWalletLogs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	csvLog := NewCSVLog(dir)
	dbLog := NewDBLog(kvmemdb.New())

	wallets := []string{"bob/1", "bob_1", "bob%2F1", "..", ".", "", "%", "egg"}
	for i, wallet := range wallets {
		obs := observations(wallet, metamon.Egg, 1)[0]
		obs.Amount = decimal.NewFromInt(int64(1000 + i))
		for _, l := range []Sink{csvLog, dbLog} {
			if err := l.Append(ctx, obs); err != nil {
				t.Fatalf("%q: %v", wallet, err)
			}
		}
	}

	for i, wallet := range wallets {
		for _, l := range []Log{csvLog, dbLog} {
			history, err := l.History(ctx, wallet, metamon.Egg)
			if err != nil {
				t.Fatal(err)
			}
			if len(history) != 1 || history[0].Amount.IntPart() != int64(1000+i) {
				t.Errorf("%T: wallet %q: want one row with %d, got %v", l, wallet, 1000+i, history)
			}
		}
		if fpath := csvLog.FilePath(wallet, metamon.Egg); filepath.Dir(fpath) != dir {
			t.Errorf("wallet %q log %q is outside the log directory", wallet, fpath)
		}
		if key := observationKey(observations(wallet, metamon.Egg, 1)[0]); !strings.HasPrefix(key, KeyPrefix+"/") {
			t.Errorf("wallet %q key %q is outside %s", wallet, key, KeyPrefix)
		}
	}
}

func TestDBLogInvalidRecord(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	log := NewDBLog(db)

	obs := observations("alice", metamon.Egg, 1)[0]
	bad := &gobs.PriceObservation{
		Wallet:    "alice",
		ItemKind:  "dragon",
		Timestamp: obs.Timestamp,
		Amount:    obs.Amount,
	}
	if err := kvutil.SetDB(ctx, db, observationKey(obs), bad); err != nil {
		t.Fatal(err)
	}
	if _, err := log.History(ctx, "alice", metamon.Egg); err == nil {
		t.Fatalf("want error for invalid item kind in history")
	}
	if _, err := log.Latest(ctx, "alice", metamon.Egg); err == nil {
		t.Fatalf("want error for invalid item kind in latest")
	}
}
