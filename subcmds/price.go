// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"os"

	"github.com/bvk/shopwatch/dashboard"
	"github.com/bvk/shopwatch/metamon"
	"github.com/bvk/shopwatch/monitor"
	"github.com/bvk/shopwatch/pricer"
	"github.com/bvk/shopwatch/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Price struct {
	cmdutil.DataFlags

	walletsPath string
}

func (c *Price) Purpose() string {
	return "Price prints the current lowest prices for every wallet once"
}

func (c *Price) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("price", flag.ContinueOnError)
	c.DataFlags.SetFlags(fset)
	fset.StringVar(&c.walletsPath, "input-tsv", cmdutil.DefaultWalletsPath(), "path to the wallet table file")
	return "price", fset, cli.CmdFunc(c.run)
}

func (c *Price) Description() string {
	return `

Command "price" runs a single polling cycle and prints the lowest egg and
potion prices with the threshold warnings. Prices are not appended to the
logs.

`
}

func (c *Price) run(ctx context.Context, args []string) error {
	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}
	csvLog, err := c.CSVLog()
	if err != nil {
		return err
	}

	client, err := metamon.New(cfg.ClientOptions())
	if err != nil {
		return err
	}
	poller, err := pricer.New(cfg.PollerOptions())
	if err != nil {
		return err
	}
	dash := dashboard.New(os.Stdout, &dashboard.Options{HistoryRows: cfg.Dashboard.HistoryRows})

	mopts := &monitor.Options{
		WalletsPath: c.walletsPath,
		Thresholds:  cfg.AlertThresholds(),
		NoSave:      true,
	}
	m, err := monitor.New(client, poller, csvLog, dash, mopts)
	if err != nil {
		return err
	}
	defer m.Close()

	_, err = m.RunCycle(ctx)
	return err
}
