// Copyright (c) 2023 BVK Chaitanya

package cmdutil

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/bvk/shopwatch/config"
	"github.com/bvk/shopwatch/monitor"
	"github.com/bvk/shopwatch/pricelog"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
)

// DataFlags locate the data directory and the files inside it.
type DataFlags struct {
	dataDir     string
	configPath  string
	secretsPath string
	logsDir     string
}

func (f *DataFlags) SetFlags(fset *flag.FlagSet) {
	fset.StringVar(&f.dataDir, "data-dir", "", "path to the data directory (default SHOPWATCH_DATA_DIR value or $HOME/.shopwatch)")
	fset.StringVar(&f.configPath, "config", "", "path to the yaml config file (default config.yaml in the data directory)")
	fset.StringVar(&f.secretsPath, "secrets-file", "", "path to the secrets file (default secrets.json in the data directory)")
	fset.StringVar(&f.logsDir, "price-logs-dir", "", "directory for the per wallet price csv files (default prices in the data directory)")
}

// DataDir returns the absolute path to the data directory, creating it when
// necessary.
func (f *DataFlags) DataDir() (string, error) {
	if len(f.dataDir) == 0 {
		f.dataDir = os.Getenv("SHOPWATCH_DATA_DIR")
	}
	if len(f.dataDir) == 0 {
		f.dataDir = filepath.Join(os.Getenv("HOME"), ".shopwatch")
	}
	if _, err := os.Stat(f.dataDir); err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("could not stat data directory %q: %w", f.dataDir, err)
		}
		if err := os.MkdirAll(f.dataDir, 0700); err != nil {
			return "", fmt.Errorf("could not create data directory %q: %w", f.dataDir, err)
		}
	}
	dataDir, err := filepath.Abs(f.dataDir)
	if err != nil {
		return "", fmt.Errorf("could not determine data-dir %q absolute path: %w", f.dataDir, err)
	}
	return dataDir, nil
}

// LoadConfig loads the config file. Default configuration is used when the
// default config file does not exist.
func (f *DataFlags) LoadConfig() (*config.Config, error) {
	fpath := f.configPath
	if len(fpath) == 0 {
		dataDir, err := f.DataDir()
		if err != nil {
			return nil, err
		}
		fpath = filepath.Join(dataDir, "config.yaml")
	}
	cfg, err := config.Load(fpath)
	if err != nil {
		if len(f.configPath) != 0 || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", fpath, err)
	}
	return cfg, nil
}

func (f *DataFlags) SecretsPath() (string, error) {
	if len(f.secretsPath) != 0 {
		return f.secretsPath, nil
	}
	dataDir, err := f.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "secrets.json"), nil
}

// LoadSecrets returns empty secrets when the secrets file does not exist.
func (f *DataFlags) LoadSecrets() (*monitor.Secrets, error) {
	fpath, err := f.SecretsPath()
	if err != nil {
		return nil, err
	}
	secrets, err := monitor.SecretsFromFile(fpath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Printf("secrets file %q does not exist; push notifications are disabled", fpath)
		secrets = &monitor.Secrets{}
	}
	return secrets, nil
}

// CSVLog returns the price log writing csv files into the price logs
// directory.
func (f *DataFlags) CSVLog() (*pricelog.CSVLog, error) {
	dir := f.logsDir
	if len(dir) == 0 {
		dataDir, err := f.DataDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(dataDir, "prices")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("could not create price logs directory %q: %w", dir, err)
	}
	return pricelog.NewCSVLog(dir), nil
}

// OpenDB opens the database in the data directory.
func (f *DataFlags) OpenDB(ctx context.Context) (db kv.Database, closer func(), status error) {
	dataDir, err := f.DataDir()
	if err != nil {
		return nil, nil, err
	}
	bopts := badger.DefaultOptions(filepath.Join(dataDir, "db"))
	bopts = bopts.WithLoggingLevel(badger.WARNING)
	bdb, err := badger.Open(bopts)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open the database: %w", err)
	}
	closer = func() {
		if err := bdb.Close(); err != nil {
			log.Printf("could not close the database (ignored): %v", err)
		}
	}
	return kvbadger.New(bdb, IsGoodKey), closer, nil
}

// IsGoodKey accepts absolute and clean database keys.
func IsGoodKey(k string) bool {
	return path.IsAbs(k) && k == path.Clean(k)
}

// DefaultWalletsPath returns the SHOPWATCH_WALLETS value or the wallet table
// file name in the current directory.
func DefaultWalletsPath() string {
	if v := os.Getenv("SHOPWATCH_WALLETS"); len(v) != 0 {
		return v
	}
	return "get_price_wallet.tsv"
}
