// Copyright (c) 2026 BVK Chaitanya

package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bvk/shopwatch/dashboard"
	"github.com/bvk/shopwatch/metamon"
	"github.com/bvk/shopwatch/pricelog"
	"github.com/bvk/shopwatch/timerange"
)

// HandlerMap returns the http handlers for the monitor status.
func (m *Monitor) HandlerMap() map[string]http.Handler {
	return map[string]http.Handler{
		"/pid":       http.HandlerFunc(m.servePID),
		"/status":    http.HandlerFunc(m.serveStatus),
		"/chart.png": http.HandlerFunc(m.serveChart),
	}
}

func (m *Monitor) servePID(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "%d", os.Getpid())
}

func (m *Monitor) serveStatus(w http.ResponseWriter, r *http.Request) {
	report := m.Latest()
	if report == nil {
		http.Error(w, "no cycle has completed yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		slog.Error("could not encode status response", "err", err)
	}
}

func (m *Monitor) serveChart(w http.ResponseWriter, r *http.Request) {
	wallet := r.URL.Query().Get("wallet")
	if len(wallet) == 0 {
		http.Error(w, "wallet parameter is required", http.StatusBadRequest)
		return
	}

	period, err := timerange.Parse(r.URL.Query().Get("period"), time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	egg, err := m.History(ctx, wallet, metamon.Egg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	potion, err := m.History(ctx, wallet, metamon.Potion)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	observedAt := func(o *pricelog.Observation) time.Time { return o.Timestamp }
	egg = timerange.Filter(period, egg, observedAt)
	potion = timerange.Filter(period, potion, observedAt)

	w.Header().Set("Content-Type", "image/png")
	if err := dashboard.WriteChart(w, egg, potion); err != nil {
		slog.Error("could not write chart response", "wallet", wallet, "err", err)
	}
}
