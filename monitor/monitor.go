// Copyright (c) 2026 BVK Chaitanya

package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/bvk/shopwatch/alerts"
	"github.com/bvk/shopwatch/dashboard"
	"github.com/bvk/shopwatch/metamon"
	"github.com/bvk/shopwatch/pricelog"
	"github.com/bvk/shopwatch/pricer"
	"github.com/bvk/shopwatch/wallets"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/visvasity/topic"
)

// WalletResult holds the outcome of one wallet in a cycle.
type WalletResult struct {
	Wallet string `json:"wallet"`

	Egg    decimal.Decimal `json:"egg"`
	Potion decimal.Decimal `json:"potion"`

	Warnings []string `json:"warnings,omitempty"`

	// Error is set when the prices could not be fetched.
	Error string `json:"error,omitempty"`

	// SaveError is set when the fetched prices could not be logged.
	SaveError string `json:"save_error,omitempty"`

	warnings []*alerts.Warning
}

// Report is the outcome of one polling cycle.
type Report struct {
	ID string `json:"id"`

	StartTime  time.Time `json:"start_time"`
	FinishTime time.Time `json:"finish_time"`

	Results []*WalletResult `json:"results"`
}

// Monitor runs the poll, alert, persist and render cycle for every wallet in
// the wallet table. Wallets are processed sequentially.
type Monitor struct {
	opts Options

	client *metamon.Client

	poller *pricer.Poller

	log pricelog.Log

	dash *dashboard.Dashboard

	reportTopic *topic.Topic[*Report]

	latest atomic.Pointer[Report]
}

func New(client *metamon.Client, poller *pricer.Poller, plog pricelog.Log, dash *dashboard.Dashboard, opts *Options) (*Monitor, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if client == nil || poller == nil || plog == nil || dash == nil {
		return nil, os.ErrInvalid
	}
	m := &Monitor{
		opts:        *opts,
		client:      client,
		poller:      poller,
		log:         plog,
		dash:        dash,
		reportTopic: topic.New[*Report](),
	}
	return m, nil
}

func (m *Monitor) Close() error {
	m.reportTopic.Close()
	return nil
}

// Latest returns the most recent cycle report or nil.
func (m *Monitor) Latest() *Report {
	return m.latest.Load()
}

// Subscribe returns a receiver for the cycle reports.
func (m *Monitor) Subscribe() (*topic.Receiver[*Report], error) {
	return topic.Subscribe(m.reportTopic, 0, true)
}

// History returns the logged observations for a wallet and item kind.
func (m *Monitor) History(ctx context.Context, wallet string, kind metamon.ItemKind) ([]*pricelog.Observation, error) {
	return m.log.History(ctx, wallet, kind)
}

// Run runs a cycle immediately and then once every refresh interval until the
// context is canceled. A cycle that takes longer than the interval delays the
// next cycle.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.opts.RefreshInterval)
	defer ticker.Stop()

	for {
		if _, err := m.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return context.Cause(ctx)
			}
			slog.Error("could not complete the polling cycle (will retry)", "err", err)
		}

		select {
		case <-ctx.Done():
			return context.Cause(ctx)
		case <-ticker.C:
		}
	}
}

// RunCycle loads the wallet table and processes every wallet with a fresh
// session. Per wallet failures are recorded in the report and do not stop
// the cycle. Returns an error if the wallet table could not be loaded.
func (m *Monitor) RunCycle(ctx context.Context) (*Report, error) {
	creds, err := wallets.Load(m.opts.WalletsPath)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:        uuid.New().String(),
		StartTime: time.Now(),
	}
	if err := m.dash.BeginCycle(report.StartTime); err != nil {
		slog.Warn("could not render the cycle header (ignored)", "err", err)
	}

	for _, cred := range creds {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		result := m.runWallet(ctx, report.ID, cred)
		report.Results = append(report.Results, result)
	}

	report.FinishTime = time.Now()
	m.latest.Store(report)
	m.reportTopic.Send(report)
	log.Printf("cycle %s completed for %d wallets in %s", report.ID, len(report.Results), report.FinishTime.Sub(report.StartTime))
	return report, nil
}

func (m *Monitor) runWallet(ctx context.Context, cycleID string, cred *metamon.Credential) *WalletResult {
	session := metamon.NewSession(m.client, cred)
	result := &WalletResult{Wallet: session.Name()}
	frame := &dashboard.Frame{Wallet: session.Name()}

	prices, err := m.poller.Poll(ctx, session)
	if err != nil {
		switch {
		case errors.Is(err, pricer.ErrNoQuotes):
			slog.Warn("skipping wallet without quotes", "wallet", session.Name(), "err", err)
		case errors.Is(err, metamon.ErrUnauthorized):
			slog.Error("could not authorize wallet", "wallet", session.Name(), "err", err)
		default:
			slog.Error("could not poll prices", "wallet", session.Name(), "err", err)
		}
		result.Error = err.Error()
		frame.Err = err
		if err := m.dash.Render(frame); err != nil {
			slog.Warn("could not render wallet frame (ignored)", "wallet", session.Name(), "err", err)
		}
		return result
	}

	result.Egg, result.Potion = prices.Egg, prices.Potion
	result.warnings = alerts.Evaluate(prices.Egg, prices.Potion, m.opts.Thresholds)
	for _, w := range result.warnings {
		result.Warnings = append(result.Warnings, w.String())
	}

	if !m.opts.NoSave {
		for _, kind := range metamon.ItemKinds {
			obs := &pricelog.Observation{
				Wallet:    session.Name(),
				Kind:      kind,
				Timestamp: prices.At,
				Amount:    prices.Get(kind),
				CycleID:   cycleID,
			}
			if err := m.log.Append(ctx, obs); err != nil {
				slog.Error("could not append observation", "wallet", session.Name(), "item", kind, "err", err)
				result.SaveError = fmt.Sprintf("could not save %s price: %v", kind, err)
			}
		}
	}

	frame.Egg, frame.Potion = prices.Egg, prices.Potion
	frame.Warnings = result.warnings
	if frame.EggHistory, err = m.log.History(ctx, session.Name(), metamon.Egg); err != nil {
		slog.Warn("could not read egg history (ignored)", "wallet", session.Name(), "err", err)
	}
	if frame.PotionHistory, err = m.log.History(ctx, session.Name(), metamon.Potion); err != nil {
		slog.Warn("could not read potion history (ignored)", "wallet", session.Name(), "err", err)
	}
	if err := m.dash.Render(frame); err != nil {
		slog.Warn("could not render wallet frame (ignored)", "wallet", session.Name(), "err", err)
	}
	return result
}

// Notify forwards the warnings from every cycle report to the dispatcher
// until the context is canceled.
func (m *Monitor) Notify(ctx context.Context, d *alerts.Dispatcher) error {
	receiver, err := m.Subscribe()
	if err != nil {
		return fmt.Errorf("could not subscribe to cycle reports: %w", err)
	}
	defer receiver.Close()

	stopf := context.AfterFunc(ctx, receiver.Close)
	defer stopf()

	for ctx.Err() == nil {
		report, err := receiver.Receive()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return fmt.Errorf("could not receive cycle report: %w", err)
		}
		for _, r := range report.Results {
			if len(r.warnings) == 0 {
				continue
			}
			if err := d.Dispatch(ctx, r.Wallet, report.FinishTime, r.warnings); err != nil {
				slog.Warn("could not dispatch notifications (ignored)", "wallet", r.Wallet, "err", err)
			}
		}
	}
	return context.Cause(ctx)
}
