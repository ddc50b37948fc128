// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"fmt"
	"strings"

	"github.com/bvk/shopwatch/monitor"
	"github.com/bvk/shopwatch/pricelog"
)

// FormatReport returns a plain text summary of a cycle report.
func FormatReport(report *monitor.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Last Update: %s\n", report.FinishTime.Local().Format(pricelog.TimeFormat))
	for _, r := range report.Results {
		if len(r.Error) != 0 {
			fmt.Fprintf(&sb, "%s: ERROR: %s\n", r.Wallet, r.Error)
			continue
		}
		fmt.Fprintf(&sb, "%s: egg %s potion %s\n", r.Wallet, r.Egg, r.Potion)
		for _, w := range r.Warnings {
			fmt.Fprintf(&sb, "  %s\n", w)
		}
		if len(r.SaveError) != 0 {
			fmt.Fprintf(&sb, "  (not logged: %s)\n", r.SaveError)
		}
	}
	return sb.String()
}

func chartFileName(wallet string) string {
	return pricelog.EncodeName(wallet) + ".png"
}
