// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bvk/shopwatch/metamon"
	"github.com/bvk/shopwatch/pricelog"
	"github.com/bvk/shopwatch/subcmds/cmdutil"
	"github.com/bvk/shopwatch/timerange"
	"github.com/visvasity/cli"
)

type History struct {
	cmdutil.DataFlags

	item   string
	period string
	limit  int
	fromDB bool
}

func (c *History) Purpose() string {
	return "History prints the logged prices for a wallet"
}

func (c *History) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("history", flag.ContinueOnError)
	c.DataFlags.SetFlags(fset)
	fset.StringVar(&c.item, "item", "egg", "item kind: egg or potion")
	fset.StringVar(&c.period, "period", "all", "time period: all, today, yesterday, this-week, this-month or a duration like 6h")
	fset.IntVar(&c.limit, "limit", 0, "when positive, prints only the most recent rows")
	fset.BoolVar(&c.fromDB, "from-db", false, "reads the prices from the database instead of the csv files")
	return "history", fset, cli.CmdFunc(c.run)
}

func (c *History) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("command takes one (wallet name) argument")
	}
	wallet := args[0]

	kind, err := metamon.ParseItemKind(c.item)
	if err != nil {
		return err
	}
	period, err := timerange.Parse(c.period, time.Now())
	if err != nil {
		return err
	}

	var plog pricelog.Log
	if c.fromDB {
		db, closer, err := c.OpenDB(ctx)
		if err != nil {
			return err
		}
		defer closer()
		plog = pricelog.NewDBLog(db)
	} else {
		csvLog, err := c.CSVLog()
		if err != nil {
			return err
		}
		plog = csvLog
	}

	history, err := plog.History(ctx, wallet, kind)
	if err != nil {
		return err
	}
	history = timerange.Filter(period, history, func(o *pricelog.Observation) time.Time { return o.Timestamp })
	if c.limit > 0 && len(history) > c.limit {
		history = history[len(history)-c.limit:]
	}

	w := csv.NewWriter(os.Stdout)
	for _, obs := range history {
		if err := w.Write(pricelog.FormatRow(obs)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
