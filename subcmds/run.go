// Copyright (c) 2023 BVK Chaitanya

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/bvk/shopwatch/alerts"
	"github.com/bvk/shopwatch/daemonize"
	"github.com/bvk/shopwatch/dashboard"
	"github.com/bvk/shopwatch/httputil"
	"github.com/bvk/shopwatch/metamon"
	"github.com/bvk/shopwatch/monitor"
	"github.com/bvk/shopwatch/pricelog"
	"github.com/bvk/shopwatch/pricer"
	"github.com/bvk/shopwatch/pushover"
	"github.com/bvk/shopwatch/subcmds/cmdutil"
	"github.com/bvk/shopwatch/telegram"
	"github.com/bvk/shopwatch/wallets"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/nightlyone/lockfile"
	"github.com/visvasity/cli"
	"github.com/visvasity/sglog"
)

type Run struct {
	cmdutil.DataFlags
	cmdutil.ServerFlags

	walletsPath string

	background bool

	once   bool
	noSave bool
	noDB   bool

	chartDir string

	logDir string
	debug  bool

	noPprof bool
}

func (c *Run) Purpose() string {
	return "Runs the shop price monitor in foreground or background"
}

func (c *Run) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("run", flag.ContinueOnError)
	c.DataFlags.SetFlags(fset)
	c.ServerFlags.SetFlags(fset)
	fset.StringVar(&c.walletsPath, "input-tsv", cmdutil.DefaultWalletsPath(), "path to the wallet table file")
	fset.BoolVar(&c.background, "background", false, "runs the monitor in background")
	fset.BoolVar(&c.once, "once", false, "runs a single cycle and exits")
	fset.BoolVar(&c.noSave, "no-save", false, "when true, prices are not appended to the logs")
	fset.BoolVar(&c.noDB, "no-db", false, "when true, the database is not used")
	fset.StringVar(&c.chartDir, "chart-dir", "", "when non-empty, writes a price chart per wallet into this directory after every cycle")
	fset.StringVar(&c.logDir, "log-dir", "", "when non-empty, writes log files into this directory")
	fset.BoolVar(&c.debug, "debug", false, "enables debug log messages")
	fset.BoolVar(&c.noPprof, "no-pprof", false, "when true net/http/pprof handler is not registered")
	return "run", fset, cli.CmdFunc(c.run)
}

func (c *Run) Description() string {
	return `

Command "run" polls the lowest egg and potion prices in the game shop for
every wallet in the wallet table once every refresh interval (one minute by
default). Prices are printed with warnings when they cross the configured
thresholds and are appended to a csv file per wallet and item.

WALLET TABLE

The wallet table is a text file with a header row and one wallet per line.
Columns can be separated by tabs, spaces, semicolons or commas:

    name	address	sign	msg
    alice	0x1234...	0xabcd...	LogIn-5f2c...

The table is read again at the start of every cycle, so wallets can be added
or removed without restarting the monitor.

SECRETS FILE

Warnings can also be sent as push notifications through Pushover or Telegram.
See "setup-pushover" and "setup-telegram" commands.

`
}

func (c *Run) run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	walletsPath, err := filepath.Abs(c.walletsPath)
	if err != nil {
		return fmt.Errorf("could not determine wallet table %q absolute path: %w", c.walletsPath, err)
	}
	// Missing or malformed wallet table is fatal only at startup.
	if _, err := wallets.Load(walletsPath); err != nil {
		return err
	}

	dataDir, err := c.DataDir()
	if err != nil {
		return err
	}
	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}
	secrets, err := c.LoadSecrets()
	if err != nil {
		return err
	}
	addr, err := c.ServerFlags.Address()
	if err != nil {
		return err
	}

	if c.background {
		if c.once {
			return fmt.Errorf("background and once flags cannot be used together")
		}
		if len(addr) == 0 {
			return fmt.Errorf("background mode requires a non-zero listen port")
		}
		// Health checker for the background process initialization. Responding
		// server must be our child and not an older instance.
		check := func(ctx context.Context, child *os.Process) (bool, error) {
			client := http.Client{Timeout: time.Second}
			resp, err := client.Get(fmt.Sprintf("http://%s/pid", addr))
			if err != nil {
				return true, err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return true, fmt.Errorf("http status: %d", resp.StatusCode)
			}
			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return true, err
			}
			if pid := string(data); pid != fmt.Sprintf("%d", child.Pid) {
				return false, fmt.Errorf("is another instance already running? pid mismatch: want %d got %s", child.Pid, pid)
			}
			return false, nil
		}
		if err := daemonize.Daemonize(ctx, "SHOPWATCH_DAEMONIZE", check); err != nil {
			return err
		}
	}

	if len(c.logDir) != 0 {
		backend := sglog.NewBackend(&sglog.Options{LogDirs: []string{c.logDir}})
		defer backend.Close()
		if c.debug {
			backend.SetLevel(slog.LevelDebug)
		}
		slog.SetDefault(slog.New(backend.Handler()))
	} else if c.debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	log.SetFlags(log.Flags() | log.Lmicroseconds)
	log.Printf("using data directory %s and wallet table %s", dataDir, walletsPath)

	lockPath := filepath.Join(dataDir, "shopwatch.lock")
	flock, err := lockfile.New(lockPath)
	if err != nil {
		return fmt.Errorf("could not create lock file %q: %w", lockPath, err)
	}
	if err := flock.TryLock(); err != nil {
		return fmt.Errorf("could not get lock on file %q (is another instance running?): %w", lockPath, err)
	}
	defer flock.Unlock()

	var db kv.Database
	if !c.noDB {
		bdb, closer, err := c.OpenDB(ctx)
		if err != nil {
			return err
		}
		defer closer()
		db = bdb
	}

	csvLog, err := c.CSVLog()
	if err != nil {
		return err
	}
	var plog pricelog.Log = csvLog
	if db != nil {
		plog = pricelog.Mirror(csvLog, pricelog.NewDBLog(db))
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
		WalletsPath:     walletsPath,
		RefreshInterval: cfg.RefreshInterval,
		Thresholds:      cfg.AlertThresholds(),
		NoSave:          c.noSave,
	}
	m, err := monitor.New(client, poller, plog, dash, mopts)
	if err != nil {
		return err
	}
	defer m.Close()

	if c.once {
		report, err := m.RunCycle(ctx)
		if err != nil {
			return err
		}
		if len(c.chartDir) != 0 {
			saveCharts(ctx, m, c.chartDir, report)
		}
		return nil
	}

	notifiers, closeNotifiers, err := c.newNotifiers(ctx, db, secrets, m)
	if err != nil {
		return err
	}
	defer closeNotifiers()

	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if len(notifiers) != 0 {
		dispatcher, err := alerts.NewDispatcher(ctx, db, cfg.Notify.Freeze, notifiers...)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Notify(ctx, dispatcher); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("could not forward notifications", "err", err)
			}
		}()
	}

	if len(c.chartDir) != 0 {
		receiver, err := m.Subscribe()
		if err != nil {
			return fmt.Errorf("could not subscribe to cycle reports: %w", err)
		}
		context.AfterFunc(ctx, receiver.Close)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer receiver.Close()
			for report, err := receiver.Receive(); err == nil; report, err = receiver.Receive() {
				saveCharts(ctx, m, c.chartDir, report)
			}
		}()
	}

	if len(addr) != 0 {
		s, err := httputil.New(nil /* opts */)
		if err != nil {
			return err
		}
		defer s.Close()

		laddr, err := s.StartTCP(ctx, addr)
		if err != nil {
			return fmt.Errorf("could not start http server on %s: %w", addr, err)
		}
		defer s.Stop(laddr)

		if !c.noPprof {
			s.AddHandler("/debug/pprof/heap", pprof.Handler("heap"))
			s.AddHandler("/debug/pprof/goroutine", pprof.Handler("goroutine"))
		}
		for k, v := range m.HandlerMap() {
			s.AddHandler(k, v)
		}
		log.Printf("started shopwatch status server at %s", laddr)
	}

	if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Printf("shopwatch is shutting down")
	return nil
}

func (c *Run) newNotifiers(ctx context.Context, db kv.Database, secrets *monitor.Secrets, m *monitor.Monitor) (_ []alerts.Notifier, closer func(), status error) {
	var notifiers []alerts.Notifier
	closer = func() {}

	if secrets.Pushover != nil {
		client, err := pushover.New(secrets.Pushover, "")
		if err != nil {
			return nil, nil, fmt.Errorf("could not create pushover client: %w", err)
		}
		notifiers = append(notifiers, client)
	}

	if secrets.Telegram != nil {
		if db == nil {
			db = kvmemdb.New()
		}
		client, err := telegram.New(ctx, db, secrets.Telegram)
		if err != nil {
			return nil, nil, fmt.Errorf("could not create telegram client: %w", err)
		}
		prices := func(ctx context.Context, args []string) (string, error) {
			report := m.Latest()
			if report == nil {
				return "", fmt.Errorf("no cycle has completed yet")
			}
			return FormatReport(report), nil
		}
		if err := client.AddCommand(ctx, "prices", "Prints the latest lowest prices", prices); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("could not add telegram command: %w", err)
		}
		notifiers = append(notifiers, client)
		closer = func() { client.Close() }
	}
	return notifiers, closer, nil
}

func saveCharts(ctx context.Context, m *monitor.Monitor, dir string, report *monitor.Report) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("could not create chart directory", "dir", dir, "err", err)
		return
	}
	for _, r := range report.Results {
		if len(r.Error) != 0 {
			continue
		}
		egg, err := m.History(ctx, r.Wallet, metamon.Egg)
		if err != nil {
			slog.Error("could not read egg price history", "wallet", r.Wallet, "err", err)
			continue
		}
		potion, err := m.History(ctx, r.Wallet, metamon.Potion)
		if err != nil {
			slog.Error("could not read potion price history", "wallet", r.Wallet, "err", err)
			continue
		}
		fpath := filepath.Join(dir, chartFileName(r.Wallet))
		if err := dashboard.SaveChart(fpath, egg, potion); err != nil {
			slog.Error("could not save price chart", "wallet", r.Wallet, "err", err)
		}
	}
}
