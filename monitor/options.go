// Copyright (c) 2026 BVK Chaitanya

package monitor

import (
	"fmt"
	"time"

	"github.com/bvk/shopwatch/alerts"
)

type Options struct {
	// WalletsPath is the wallet table file, reloaded on every cycle.
	WalletsPath string

	// RefreshInterval is the time between cycle starts.
	RefreshInterval time.Duration

	// Thresholds holds the warning limits.
	Thresholds *alerts.Thresholds

	// NoSave when true, observations are not appended to the logs.
	NoSave bool
}

func (v *Options) setDefaults() {
	if v.RefreshInterval == 0 {
		v.RefreshInterval = time.Minute
	}
	if v.Thresholds == nil {
		v.Thresholds = alerts.DefaultThresholds()
	}
}

func (v *Options) Check() error {
	if len(v.WalletsPath) == 0 {
		return fmt.Errorf("wallets file path cannot be empty")
	}
	if v.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval cannot be negative")
	}
	return v.Thresholds.Check()
}
