// Copyright (c) 2026 BVK Chaitanya

package alerts

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bvk/shopwatch/metamon"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/shopspring/decimal"
)

func names(ws []*Warning) []string {
	var vs []string
	for _, w := range ws {
		vs = append(vs, w.Name())
	}
	return vs
}

func TestEvaluate(t *testing.T) {
	d := decimal.NewFromInt
	tests := []struct {
		egg, potion int64
		want        string
	}{
		{4999, 1300, "egg-below,egg-over"},
		{5000, 1291, "egg-over"},
		{5001, 1401, "egg-over,potion-over"},
		{4200, 1290, "egg-below,potion-below"},
	}
	for _, test := range tests {
		ws := Evaluate(d(test.egg), d(test.potion), DefaultThresholds())
		if got := strings.Join(names(ws), ","); got != test.want {
			t.Errorf("egg=%d potion=%d: want %q, got %q", test.egg, test.potion, test.want, got)
		}
	}
}

func TestEvaluateSingleWarning(t *testing.T) {
	th := DefaultThresholds()
	th.EggOver = decimal.NewFromInt(5500)
	ws := Evaluate(decimal.NewFromInt(4999), decimal.NewFromInt(1300), th)
	if len(ws) != 1 {
		t.Fatalf("want exactly one warning, got %v", names(ws))
	}
	if w := ws[0]; w.Kind != metamon.Egg || w.Direction != Below || !w.Price.Equal(decimal.NewFromInt(4999)) {
		t.Fatalf("unexpected warning %#v", w)
	}
}

func TestEvaluateIndependent(t *testing.T) {
	// Below and over for the same item both fire when limits overlap.
	th := &Thresholds{
		EggBelow:    decimal.NewFromInt(100),
		EggOver:     decimal.NewFromInt(10),
		PotionBelow: decimal.NewFromInt(0),
		PotionOver:  decimal.NewFromInt(1000),
	}
	ws := Evaluate(decimal.NewFromInt(50), decimal.NewFromInt(500), th)
	if got := strings.Join(names(ws), ","); got != "egg-below,egg-over" {
		t.Fatalf("want both egg checks to fire, got %q", got)
	}
	if ws[0].String() != "WARNING: Egg Price is below: 100." {
		t.Fatalf("unexpected warning text %q", ws[0].String())
	}
}

func TestThresholdsCheck(t *testing.T) {
	if err := DefaultThresholds().Check(); err != nil {
		t.Fatal(err)
	}
	th := DefaultThresholds()
	th.PotionOver = decimal.NewFromInt(-1)
	if err := th.Check(); err == nil {
		t.Fatalf("want error for negative threshold")
	}
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) SendMessage(ctx context.Context, at time.Time, msg string) error {
	f.messages = append(f.messages, msg)
	return nil
}

func TestDispatcherFreeze(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()
	n := new(fakeNotifier)

	d, err := NewDispatcher(ctx, db, time.Hour, n)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	ws := []*Warning{{
		Kind:      metamon.Egg,
		Direction: Below,
		Price:     decimal.NewFromInt(4999),
		Limit:     decimal.NewFromInt(5000),
	}}
	for i := 0; i < 3; i++ {
		if err := d.Dispatch(ctx, "alice", now.Add(time.Duration(i)*time.Minute), ws); err != nil {
			t.Fatal(err)
		}
	}
	if len(n.messages) != 1 {
		t.Fatalf("want one notification within the freeze interval, got %d", len(n.messages))
	}
	if !strings.Contains(n.messages[0], "[alice] WARNING: Egg Price is below: 5000.") {
		t.Fatalf("unexpected message %q", n.messages[0])
	}

	// Other wallets are not frozen.
	if err := d.Dispatch(ctx, "bob", now, ws); err != nil {
		t.Fatal(err)
	}
	if len(n.messages) != 2 {
		t.Fatalf("want notification for another wallet, got %d", len(n.messages))
	}

	// Freeze deadlines survive a restart through the database.
	d2, err := NewDispatcher(ctx, db, time.Hour, n)
	if err != nil {
		t.Fatal(err)
	}
	if err := d2.Dispatch(ctx, "alice", now.Add(30*time.Minute), ws); err != nil {
		t.Fatal(err)
	}
	if len(n.messages) != 2 {
		t.Fatalf("want frozen warning after restart, got %d messages", len(n.messages))
	}

	if err := d2.Dispatch(ctx, "alice", now.Add(2*time.Hour), ws); err != nil {
		t.Fatal(err)
	}
	if len(n.messages) != 3 {
		t.Fatalf("want notification after freeze expiry, got %d messages", len(n.messages))
	}
}

func TestDispatcherWithoutNotifiers(t *testing.T) {
	ctx := context.Background()
	d, err := NewDispatcher(ctx, nil, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	ws := []*Warning{{Kind: metamon.Egg, Direction: Below}}
	if err := d.Dispatch(ctx, "alice", time.Now(), ws); err != nil {
		t.Fatal(err)
	}
}
