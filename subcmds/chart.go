// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/bvk/shopwatch/dashboard"
	"github.com/bvk/shopwatch/metamon"
	"github.com/bvk/shopwatch/pricelog"
	"github.com/bvk/shopwatch/subcmds/cmdutil"
	"github.com/bvk/shopwatch/timerange"
	"github.com/visvasity/cli"
)

type Chart struct {
	cmdutil.DataFlags

	output string
	period string
}

func (c *Chart) Purpose() string {
	return "Chart draws the logged egg and potion prices of a wallet into a PNG file"
}

func (c *Chart) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("chart", flag.ContinueOnError)
	c.DataFlags.SetFlags(fset)
	fset.StringVar(&c.output, "output", "", "path to the output PNG file (default <wallet>.png)")
	fset.StringVar(&c.period, "period", "all", "time period: all, today, yesterday, this-week, this-month or a duration like 6h")
	return "chart", fset, cli.CmdFunc(c.run)
}

func (c *Chart) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("command takes one (wallet name) argument")
	}
	wallet := args[0]

	period, err := timerange.Parse(c.period, time.Now())
	if err != nil {
		return err
	}

	csvLog, err := c.CSVLog()
	if err != nil {
		return err
	}
	egg, err := csvLog.History(ctx, wallet, metamon.Egg)
	if err != nil {
		return err
	}
	potion, err := csvLog.History(ctx, wallet, metamon.Potion)
	if err != nil {
		return err
	}
	egg = timerange.Filter(period, egg, func(o *pricelog.Observation) time.Time { return o.Timestamp })
	potion = timerange.Filter(period, potion, func(o *pricelog.Observation) time.Time { return o.Timestamp })
	if len(egg) == 0 && len(potion) == 0 {
		return fmt.Errorf("no prices are logged for wallet %q in period %s", wallet, period)
	}

	output := c.output
	if len(output) == 0 {
		output = chartFileName(wallet)
	}
	if err := dashboard.SaveChart(output, egg, potion); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", output)
	return nil
}
