// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"strings"
	"testing"
	"time"

	"github.com/bvk/shopwatch/monitor"
	"github.com/shopspring/decimal"
)

func TestFormatReport(t *testing.T) {
	report := &monitor.Report{
		FinishTime: time.Date(2026, 3, 1, 10, 20, 30, 0, time.Local),
		Results: []*monitor.WalletResult{
			{
				Wallet:   "alice",
				Egg:      decimal.NewFromInt(4999),
				Potion:   decimal.NewFromInt(1300),
				Warnings: []string{"WARNING: Egg Price is below: 5000."},
			},
			{
				Wallet: "bob",
				Error:  "no quotes",
			},
			{
				Wallet:    "carol",
				Egg:       decimal.NewFromInt(5200),
				Potion:    decimal.NewFromInt(1350),
				SaveError: "disk full",
			},
		},
	}
	want := "Last Update: 01/03/2026 10:20:30\n" +
		"alice: egg 4999 potion 1300\n" +
		"  WARNING: Egg Price is below: 5000.\n" +
		"bob: ERROR: no quotes\n" +
		"carol: egg 5200 potion 1350\n" +
		"  (not logged: disk full)\n"
	if got := FormatReport(report); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestChartFileName(t *testing.T) {
	testcases := map[string]string{
		"alice":      "alice.png",
		"my wallet":  "my%20wallet.png",
		"a/b":        "a%2Fb.png",
		"a_b":        "a_b.png",
		"..":         "%2E..png",
		"":           "%.png",
		"0xABCD1234": "0xABCD1234.png",
	}
	for input, want := range testcases {
		if got := chartFileName(input); got != want {
			t.Errorf("chartFileName(%q): want %q, got %q", input, want, got)
		}
	}
	if strings.Contains(chartFileName("../x"), "/") {
		t.Fatalf("chart file name must not contain path separators")
	}
}
