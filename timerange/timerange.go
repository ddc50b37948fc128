// Copyright (c) 2024 BVK Chaitanya

// Package timerange selects the observations within a named period.
package timerange

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Range is a half open time interval. Zero Begin or End leaves that side
// unbounded.
type Range struct {
	Begin, End time.Time
}

func (r *Range) IsZero() bool {
	return r.Begin.IsZero() && r.End.IsZero()
}

func (r *Range) InRange(v time.Time) bool {
	if !r.Begin.IsZero() && v.Before(r.Begin) {
		return false
	}
	if !r.End.IsZero() && !v.Before(r.End) {
		return false
	}
	return true
}

func (r *Range) String() string {
	if r.IsZero() {
		return "all"
	}
	return fmt.Sprintf("[%s, %s)", r.Begin.Format(time.DateTime), r.End.Format(time.DateTime))
}

// Filter returns the items with a timestamp inside the range, preserving the
// order.
func Filter[T any](r *Range, items []T, timestamp func(T) time.Time) []T {
	if r == nil || r.IsZero() {
		return items
	}
	var result []T
	for _, v := range items {
		if r.InRange(timestamp(v)) {
			result = append(result, v)
		}
	}
	return result
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Parse returns the range for a period name relative to now. Supported names
// are all, today, yesterday, this-week, this-month and a Go duration like 6h
// for the most recent interval.
func Parse(name string, now time.Time) (*Range, error) {
	today := startOfDay(now)
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "all":
		return &Range{}, nil
	case "today":
		return &Range{Begin: today, End: today.AddDate(0, 0, 1)}, nil
	case "yesterday":
		return &Range{Begin: today.AddDate(0, 0, -1), End: today}, nil
	case "this-week":
		begin := today.AddDate(0, 0, -int(today.Weekday()))
		return &Range{Begin: begin, End: begin.AddDate(0, 0, 7)}, nil
	case "this-month":
		begin := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return &Range{Begin: begin, End: begin.AddDate(0, 1, 0)}, nil
	}
	d, err := time.ParseDuration(name)
	if err != nil || d <= 0 {
		return nil, fmt.Errorf("invalid period %q: %w", name, os.ErrInvalid)
	}
	return &Range{Begin: now.Add(-d)}, nil
}
