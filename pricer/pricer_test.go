// Copyright (c) 2026 BVK Chaitanya

package pricer

import (
	"context"
	"errors"
	"testing"

	"github.com/bvk/shopwatch/metamon"
	"github.com/shopspring/decimal"
)

type fakeLister struct {
	listings map[string][]*metamon.ShopOrder
	err      error
	queries  []*metamon.SellListQuery
}

func (f *fakeLister) Name() string {
	return "fake"
}

func (f *fakeLister) SellList(ctx context.Context, q *metamon.SellListQuery) ([]*metamon.ShopOrder, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.listings[q.Type], nil
}

func orders(amounts ...int64) []*metamon.ShopOrder {
	var vs []*metamon.ShopOrder
	for _, a := range amounts {
		vs = append(vs, &metamon.ShopOrder{Amount: decimal.NewFromInt(a)})
	}
	return vs
}

func TestLowestPrice(t *testing.T) {
	ctx := context.Background()
	p, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}

	// First quote is returned as is, even when the listing is not sorted.
	l := &fakeLister{listings: map[string][]*metamon.ShopOrder{
		"6": orders(4999, 4000, 5100),
		"2": orders(1300, 1250),
	}}
	for i := 0; i < 3; i++ {
		egg, err := p.LowestPrice(ctx, l, metamon.Egg)
		if err != nil {
			t.Fatal(err)
		}
		if !egg.Equal(decimal.NewFromInt(4999)) {
			t.Fatalf("want 4999, got %s", egg)
		}
	}

	q := l.queries[0]
	if q.Type != "6" || q.OrderType != "2" || q.OrderID != "-1" || q.PageSize != 10 || q.OrderAmount != "" {
		t.Fatalf("unexpected query parameters %#v", q)
	}

	potion, err := p.LowestPrice(ctx, l, metamon.Potion)
	if err != nil {
		t.Fatal(err)
	}
	if !potion.Equal(decimal.NewFromInt(1300)) {
		t.Fatalf("want 1300, got %s", potion)
	}
}

func TestLowestPriceNoQuotes(t *testing.T) {
	p, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	l := &fakeLister{listings: map[string][]*metamon.ShopOrder{}}
	if _, err := p.LowestPrice(context.Background(), l, metamon.Egg); !errors.Is(err, ErrNoQuotes) {
		t.Fatalf("want ErrNoQuotes, got %v", err)
	}
}

func TestPoll(t *testing.T) {
	ctx := context.Background()
	p, err := New(&Options{ShopTypes: map[metamon.ItemKind]string{metamon.Potion: "9"}})
	if err != nil {
		t.Fatal(err)
	}

	l := &fakeLister{listings: map[string][]*metamon.ShopOrder{
		"6": orders(4999),
		"9": orders(1300),
	}}
	prices, err := p.Poll(ctx, l)
	if err != nil {
		t.Fatal(err)
	}
	if !prices.Get(metamon.Egg).Equal(decimal.NewFromInt(4999)) || !prices.Get(metamon.Potion).Equal(decimal.NewFromInt(1300)) {
		t.Fatalf("unexpected prices %#v", prices)
	}
	if prices.Wallet != "fake" || prices.At.IsZero() {
		t.Fatalf("unexpected price metadata %#v", prices)
	}

	l = &fakeLister{err: metamon.ErrUnauthorized}
	if _, err := p.Poll(ctx, l); !errors.Is(err, metamon.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if len(l.queries) != 1 {
		t.Fatalf("potion must not be queried after egg failure, got %d queries", len(l.queries))
	}

	l = &fakeLister{listings: map[string][]*metamon.ShopOrder{"6": orders(4999)}}
	if _, err := p.Poll(ctx, l); !errors.Is(err, ErrNoQuotes) {
		t.Fatalf("want ErrNoQuotes for empty potion listing, got %v", err)
	}
}
