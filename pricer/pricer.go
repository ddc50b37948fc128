// Copyright (c) 2026 BVK Chaitanya

package pricer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bvk/shopwatch/metamon"
	"github.com/shopspring/decimal"
)

// ErrNoQuotes is returned when the shop listing for an item is empty.
var ErrNoQuotes = errors.New("no quotes available")

// Lister fetches shop listings on behalf of a wallet session. Implementations
// are expected to acquire the session token when necessary.
type Lister interface {
	Name() string
	SellList(ctx context.Context, q *metamon.SellListQuery) ([]*metamon.ShopOrder, error)
}

type Options struct {
	// OrderType selects the server side sort order of the listing.
	OrderType string

	// OrderID is the listing cursor; -1 requests the first page.
	OrderID string

	// PageSize is the number of listings requested.
	PageSize int

	// ShopTypes overrides the shop type code per item kind.
	ShopTypes map[metamon.ItemKind]string
}

func (v *Options) setDefaults() {
	if len(v.OrderType) == 0 {
		v.OrderType = "2"
	}
	if len(v.OrderID) == 0 {
		v.OrderID = "-1"
	}
	if v.PageSize == 0 {
		v.PageSize = 10
	}
}

func (v *Options) Check() error {
	if v.PageSize < 0 {
		return fmt.Errorf("page size cannot be negative")
	}
	for kind, code := range v.ShopTypes {
		if len(code) == 0 {
			return fmt.Errorf("shop type for %s cannot be empty", kind)
		}
	}
	return nil
}

type Poller struct {
	opts Options
}

func New(opts *Options) (*Poller, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	return &Poller{opts: *opts}, nil
}

// Query returns the shop listing query for an item kind.
func (p *Poller) Query(kind metamon.ItemKind) *metamon.SellListQuery {
	stype := kind.ShopType()
	if v, ok := p.opts.ShopTypes[kind]; ok {
		stype = v
	}
	return &metamon.SellListQuery{
		Type:        stype,
		OrderType:   p.opts.OrderType,
		OrderID:     p.opts.OrderID,
		PageSize:    p.opts.PageSize,
		OrderAmount: "",
	}
}

// LowestPrice returns the amount of the first listing as ordered by the
// server. Listings are not sorted locally. Returns ErrNoQuotes when the
// listing is empty.
func (p *Poller) LowestPrice(ctx context.Context, l Lister, kind metamon.ItemKind) (decimal.Decimal, error) {
	orders, err := l.SellList(ctx, p.Query(kind))
	if err != nil {
		return decimal.Zero, err
	}
	if len(orders) == 0 || orders[0] == nil {
		slog.Warn("shop listing is empty", "wallet", l.Name(), "item", kind)
		return decimal.Zero, fmt.Errorf("%s listing for wallet %q: %w", kind, l.Name(), ErrNoQuotes)
	}
	return orders[0].Amount, nil
}

// Prices holds the lowest egg and potion prices observed together.
type Prices struct {
	Wallet string
	At     time.Time

	Egg    decimal.Decimal
	Potion decimal.Decimal
}

func (v *Prices) Get(kind metamon.ItemKind) decimal.Decimal {
	if kind == metamon.Potion {
		return v.Potion
	}
	return v.Egg
}

// Poll fetches the lowest egg price and then the lowest potion price. Both
// must succeed for a result.
func (p *Poller) Poll(ctx context.Context, l Lister) (*Prices, error) {
	egg, err := p.LowestPrice(ctx, l, metamon.Egg)
	if err != nil {
		return nil, fmt.Errorf("could not get lowest egg price: %w", err)
	}
	potion, err := p.LowestPrice(ctx, l, metamon.Potion)
	if err != nil {
		return nil, fmt.Errorf("could not get lowest potion price: %w", err)
	}
	v := &Prices{
		Wallet: l.Name(),
		At:     time.Now(),
		Egg:    egg,
		Potion: potion,
	}
	return v, nil
}
