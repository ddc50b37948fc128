// Copyright (c) 2026 BVK Chaitanya

package metamon

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	LoginEndpoint    = "login"
	SellListEndpoint = "shop-order/sellList"

	// SuccessCode is the response code for successful api calls.
	SuccessCode = "SUCCESS"
)

// ItemKind identifies a tradeable shop item.
type ItemKind int

const (
	Egg ItemKind = iota + 1
	Potion
)

var ItemKinds = []ItemKind{Egg, Potion}

func (k ItemKind) String() string {
	switch k {
	case Egg:
		return "egg"
	case Potion:
		return "potion"
	}
	return fmt.Sprintf("item-%d", int(k))
}

// Title returns the display name for the item kind.
func (k ItemKind) Title() string {
	switch k {
	case Egg:
		return "Egg"
	case Potion:
		return "Potion"
	}
	return k.String()
}

// ShopType returns the shop listing type code for the item kind.
func (k ItemKind) ShopType() string {
	switch k {
	case Egg:
		return "6"
	case Potion:
		return "2"
	}
	return ""
}

func ParseItemKind(s string) (ItemKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "egg":
		return Egg, nil
	case "potion":
		return Potion, nil
	}
	return 0, fmt.Errorf("invalid item kind %q", s)
}

// Credential holds the wallet identity used to login.
type Credential struct {
	Name    string
	Address string
	Sign    string
	Msg     string
}

func (v *Credential) Check() error {
	if len(v.Address) == 0 {
		return fmt.Errorf("wallet address cannot be empty")
	}
	if len(v.Sign) == 0 {
		return fmt.Errorf("wallet %q signature cannot be empty", v.Address)
	}
	if len(v.Msg) == 0 {
		return fmt.Errorf("wallet %q login message cannot be empty", v.Address)
	}
	return nil
}

// DisplayName returns the wallet name or the address when name is empty.
func (v *Credential) DisplayName() string {
	if len(v.Name) != 0 {
		return v.Name
	}
	return v.Address
}

func (v *Credential) loginForm() url.Values {
	return url.Values{
		"address": {v.Address},
		"sign":    {v.Sign},
		"msg":     {v.Msg},
	}
}

// Response is the envelope for all api responses. Data is decoded separately
// into the endpoint specific type.
type Response struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ShopOrder is one priced listing from the shop. Fields other than the amount
// are not interpreted.
type ShopOrder struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

type SellListData struct {
	ShopOrderList []*ShopOrder `json:"shopOrderList"`
}

// SellListQuery holds the parameters for a shop listing request.
type SellListQuery struct {
	Type        string
	OrderType   string
	OrderID     string
	PageSize    int
	OrderAmount string
}

func (q *SellListQuery) form(address string) url.Values {
	return url.Values{
		"address":     {address},
		"type":        {q.Type},
		"orderType":   {q.OrderType},
		"orderId":     {q.OrderID},
		"pageSize":    {strconv.Itoa(q.PageSize)},
		"orderAmount": {q.OrderAmount},
	}
}

// APIError is returned when the server responds with a non-success code.
type APIError struct {
	Endpoint string
	Code     string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: api error code %q: %s", e.Endpoint, e.Code, e.Message)
}
