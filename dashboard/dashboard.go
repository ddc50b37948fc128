// Copyright (c) 2026 BVK Chaitanya

// Package dashboard renders the latest prices, warnings and the logged price
// history on a terminal or any other writer.
package dashboard

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bvk/shopwatch/alerts"
	"github.com/bvk/shopwatch/metamon"
	"github.com/bvk/shopwatch/pricelog"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

const (
	ansiClear = "\033[H\033[2J"
	ansiRed   = "\033[1;31m"
	ansiBold  = "\033[1m"
	ansiReset = "\033[0m"
)

type Options struct {
	// HistoryRows is the number of most recent log rows printed per item.
	HistoryRows int

	// Width is the maximum width for the history sparkline. Defaults to the
	// terminal width when the output is a terminal.
	Width int

	// Color enables ANSI colors and screen clearing between cycles.
	Color bool
}

func (v *Options) setDefaults() {
	if v.HistoryRows == 0 {
		v.HistoryRows = 10
	}
	if v.Width == 0 {
		v.Width = 60
	}
}

// Frame holds everything displayed for one wallet in a cycle.
type Frame struct {
	Wallet string

	Egg    decimal.Decimal
	Potion decimal.Decimal

	Warnings []*alerts.Warning

	EggHistory    []*pricelog.Observation
	PotionHistory []*pricelog.Observation

	// Err is set when prices could not be fetched for the wallet.
	Err error
}

type Dashboard struct {
	mu sync.Mutex

	w io.Writer

	opts Options
}

// New creates a dashboard. Colors and terminal width are enabled
// automatically when w is a terminal.
func New(w io.Writer, opts *Options) *Dashboard {
	if opts == nil {
		opts = new(Options)
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		opts.Color = true
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && opts.Width == 0 {
			opts.Width = width - 20
		}
	}
	opts.setDefaults()
	return &Dashboard{w: w, opts: *opts}
}

// BeginCycle clears the screen on terminals and prints the update time.
func (d *Dashboard) BeginCycle(at time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var sb strings.Builder
	if d.opts.Color {
		sb.WriteString(ansiClear)
	}
	fmt.Fprintf(&sb, "Last Update: %s\n", at.Format(pricelog.TimeFormat))
	_, err := io.WriteString(d.w, sb.String())
	return err
}

// Render prints the frame. Prices are always printed followed by every
// triggered warning.
func (d *Dashboard) Render(f *Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(d.bold(fmt.Sprintf("Wallet: %s", f.Wallet)))
	sb.WriteString("\n")

	if f.Err != nil {
		sb.WriteString(d.red(fmt.Sprintf("ERROR: %v", f.Err)))
		sb.WriteString("\n")
		_, err := io.WriteString(d.w, sb.String())
		return err
	}

	fmt.Fprintf(&sb, "Egg Lowest Price   :  %s\n", f.Egg)
	fmt.Fprintf(&sb, "Potion Lowest Price:  %s\n", f.Potion)
	for _, w := range f.Warnings {
		sb.WriteString(d.red(w.String()))
		sb.WriteString("\n")
	}

	d.writeHistory(&sb, metamon.Egg, f.EggHistory)
	d.writeHistory(&sb, metamon.Potion, f.PotionHistory)

	_, err := io.WriteString(d.w, sb.String())
	return err
}

func (d *Dashboard) writeHistory(sb *strings.Builder, kind metamon.ItemKind, history []*pricelog.Observation) {
	fmt.Fprintf(sb, "\n%s\n", d.bold(kind.Title()+" Graph"))
	if len(history) == 0 {
		sb.WriteString("  (no data)\n")
		return
	}

	values := make([]decimal.Decimal, 0, len(history))
	for _, obs := range history {
		values = append(values, obs.Amount)
	}
	low, high := decimal.Min(values[0], values[1:]...), decimal.Max(values[0], values[1:]...)
	fmt.Fprintf(sb, "  %s  [%s .. %s]\n", Sparkline(values, d.opts.Width), low, high)

	rows := history
	if len(rows) > d.opts.HistoryRows {
		rows = rows[len(rows)-d.opts.HistoryRows:]
	}
	for _, obs := range rows {
		fmt.Fprintf(sb, "  %s  %s\n", obs.Timestamp.Format(pricelog.TimeFormat), obs.Amount)
	}
}

func (d *Dashboard) red(s string) string {
	if !d.opts.Color {
		return s
	}
	return ansiRed + s + ansiReset
}

func (d *Dashboard) bold(s string) string {
	if !d.opts.Color {
		return s
	}
	return ansiBold + s + ansiReset
}

var sparks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders the most recent width values as a single line of block
// characters scaled between the minimum and maximum.
func Sparkline(values []decimal.Decimal, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}
	low, high := decimal.Min(values[0], values[1:]...), decimal.Max(values[0], values[1:]...)
	span := high.Sub(low)
	top := decimal.NewFromInt(int64(len(sparks) - 1))

	var sb strings.Builder
	for _, v := range values {
		idx := 0
		if span.IsPositive() {
			idx = int(v.Sub(low).Mul(top).Div(span).Round(0).IntPart())
		}
		sb.WriteRune(sparks[idx])
	}
	return sb.String()
}
