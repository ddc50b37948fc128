// Copyright (c) 2026 BVK Chaitanya

package alerts

import (
	"fmt"

	"github.com/bvk/shopwatch/metamon"
	"github.com/shopspring/decimal"
)

// Thresholds holds the static price limits. Below and over limits for the
// same item are checked independently and are not required to be ordered.
type Thresholds struct {
	EggBelow decimal.Decimal
	EggOver  decimal.Decimal

	PotionBelow decimal.Decimal
	PotionOver  decimal.Decimal
}

func DefaultThresholds() *Thresholds {
	return &Thresholds{
		EggBelow:    decimal.NewFromInt(5000),
		EggOver:     decimal.NewFromInt(4300),
		PotionBelow: decimal.NewFromInt(1291),
		PotionOver:  decimal.NewFromInt(1400),
	}
}

func (v *Thresholds) Check() error {
	limits := map[string]decimal.Decimal{
		"egg below":    v.EggBelow,
		"egg over":     v.EggOver,
		"potion below": v.PotionBelow,
		"potion over":  v.PotionOver,
	}
	for name, limit := range limits {
		if limit.IsNegative() {
			return fmt.Errorf("%s threshold cannot be negative", name)
		}
	}
	return nil
}

type Direction int

const (
	Below Direction = iota + 1
	Over
)

func (d Direction) String() string {
	if d == Below {
		return "below"
	}
	return "over"
}

// Warning is a triggered threshold check.
type Warning struct {
	Kind      metamon.ItemKind
	Direction Direction

	Price decimal.Decimal
	Limit decimal.Decimal
}

// Name returns a stable identifier for the check, like "egg-below".
func (w *Warning) Name() string {
	return fmt.Sprintf("%s-%s", w.Kind, w.Direction)
}

func (w *Warning) String() string {
	return fmt.Sprintf("WARNING: %s Price is %s: %s.", w.Kind.Title(), w.Direction, w.Limit)
}

// Evaluate runs the four threshold checks in the order egg-below, egg-over,
// potion-below and potion-over and returns the triggered warnings.
func Evaluate(egg, potion decimal.Decimal, t *Thresholds) []*Warning {
	type check struct {
		kind  metamon.ItemKind
		dir   Direction
		price decimal.Decimal
		limit decimal.Decimal
	}
	checks := []check{
		{metamon.Egg, Below, egg, t.EggBelow},
		{metamon.Egg, Over, egg, t.EggOver},
		{metamon.Potion, Below, potion, t.PotionBelow},
		{metamon.Potion, Over, potion, t.PotionOver},
	}

	var warnings []*Warning
	for _, c := range checks {
		triggered := false
		switch c.dir {
		case Below:
			triggered = c.price.LessThan(c.limit)
		case Over:
			triggered = c.price.GreaterThan(c.limit)
		}
		if triggered {
			warnings = append(warnings, &Warning{
				Kind:      c.kind,
				Direction: c.dir,
				Price:     c.price,
				Limit:     c.limit,
			})
		}
	}
	return warnings
}
