// Copyright (c) 2023 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/bvk/shopwatch/monitor"
	"github.com/bvk/shopwatch/pricelog"
	"github.com/bvk/shopwatch/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Status struct {
	cmdutil.ClientFlags
}

func (c *Status) Purpose() string {
	return "Status prints the latest cycle report from a running monitor"
}

func (c *Status) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("status", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return "status", fset, cli.CmdFunc(c.run)
}

func (c *Status) run(ctx context.Context, args []string) error {
	report, err := cmdutil.Get[monitor.Report](ctx, &c.ClientFlags, "/status")
	if err != nil {
		return fmt.Errorf("could not fetch status: %w", err)
	}

	fmt.Printf("Last Update: %s (cycle %s)\n\n", report.FinishTime.Local().Format(pricelog.TimeFormat), report.ID)

	tw := tabwriter.NewWriter(os.Stdout, 8, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Wallet\tEgg\tPotion\tWarnings\n")
	for _, r := range report.Results {
		if len(r.Error) != 0 {
			fmt.Fprintf(tw, "%s\t-\t-\tERROR: %s\n", r.Wallet, r.Error)
			continue
		}
		notes := strings.Join(r.Warnings, " ")
		if len(r.SaveError) != 0 {
			notes = strings.TrimSpace(notes + " (not logged: " + r.SaveError + ")")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Wallet, r.Egg, r.Potion, notes)
	}
	return tw.Flush()
}
