// Copyright (c) 2026 BVK Chaitanya

package pricelog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bvk/shopwatch/metamon"
	"github.com/shopspring/decimal"
)

// CSVLog keeps the observations in two-column csv files named
// <wallet>_<item>.csv under a directory. Files are opened, appended and
// closed on every call.
type CSVLog struct {
	dir string

	// mu serializes appends from the same process.
	mu sync.Mutex
}

func NewCSVLog(dir string) *CSVLog {
	return &CSVLog{dir: dir}
}

// FilePath returns the log file path for the wallet and item kind.
func (c *CSVLog) FilePath(wallet string, kind metamon.ItemKind) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.csv", EncodeName(wallet), kind))
}

func (c *CSVLog) Append(ctx context.Context, obs *Observation) (status error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return fmt.Errorf("could not create log directory: %w", err)
	}

	fpath := c.FilePath(obs.Wallet, obs.Kind)
	fp, err := os.OpenFile(fpath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}
	defer func() {
		if err := fp.Close(); err != nil && status == nil {
			status = fmt.Errorf("could not close log file: %w", err)
		}
	}()

	w := csv.NewWriter(fp)
	if err := w.Write(FormatRow(obs)); err != nil {
		return fmt.Errorf("could not write log row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("could not flush log row to %q: %w", fpath, err)
	}
	return nil
}

func (c *CSVLog) History(ctx context.Context, wallet string, kind metamon.ItemKind) ([]*Observation, error) {
	observations, err := ReadFile(c.FilePath(wallet, kind))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	for _, obs := range observations {
		obs.Wallet = wallet
		obs.Kind = kind
	}
	return observations, nil
}

// FormatRow returns the csv row for an observation.
func FormatRow(obs *Observation) []string {
	return []string{obs.Timestamp.Format(TimeFormat), obs.Amount.String()}
}

// ReadFile reads all observations from a log file.
func ReadFile(fpath string) ([]*Observation, error) {
	fp, err := os.Open(fpath)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	observations, err := Read(fp)
	if err != nil {
		return nil, fmt.Errorf("could not read log file %q: %w", fpath, err)
	}
	return observations, nil
}

// Read parses observation rows from r. Timestamps are in the local timezone.
func Read(r io.Reader) ([]*Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	var observations []*Observation
	for line := 1; ; line++ {
		record, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		ts, err := time.ParseInLocation(TimeFormat, strings.TrimSpace(record[0]), time.Local)
		if err != nil {
			return nil, fmt.Errorf("line %d: could not parse timestamp: %w", line, err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: could not parse amount: %w", line, err)
		}
		observations = append(observations, &Observation{Timestamp: ts, Amount: amount})
	}
	return observations, nil
}

// EncodeName encodes a wallet name into a file name or key segment. Letters,
// digits, '-', '_' and non-leading '.' are kept; every other byte becomes %XX,
// so distinct wallets never share a log. The empty name is "%".
func EncodeName(wallet string) string {
	if len(wallet) == 0 {
		return "%"
	}
	var sb strings.Builder
	for i := 0; i < len(wallet); i++ {
		b := wallet[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
			sb.WriteByte(b)
		case b == '-' || b == '_':
			sb.WriteByte(b)
		case b == '.' && i > 0:
			sb.WriteByte(b)
		default:
			fmt.Fprintf(&sb, "%%%02X", b)
		}
	}
	return sb.String()
}
