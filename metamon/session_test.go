// Copyright (c) 2026 BVK Chaitanya

package metamon

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
)

func TestSessionSellList(t *testing.T) {
	var logins atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/login"):
			logins.Add(1)
			fmt.Fprint(w, `{"code": "SUCCESS", "data": "tok"}`)
		case strings.HasSuffix(r.URL.Path, "/shop-order/sellList"):
			if r.Header.Get("accessToken") != "tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			want := map[string]string{
				"address":     "0xabc",
				"type":        "6",
				"orderType":   "2",
				"orderId":     "-1",
				"pageSize":    "10",
				"orderAmount": "",
			}
			for k, v := range want {
				if got := r.PostForm.Get(k); got != v {
					t.Errorf("form field %q: want %q, got %q", k, v, got)
				}
			}
			fmt.Fprint(w, `{"code": "SUCCESS", "data": {"shopOrderList": [{"id": 7, "amount": 4200}, {"id": 8, "amount": 4300}]}}`)
		default:
			http.NotFound(w, r)
		}
	}))

	ctx := context.Background()
	s := NewSession(client, &Credential{Name: "alice", Address: "0xabc", Sign: "s", Msg: "m"})
	if s.Name() != "alice" {
		t.Fatalf("want session name alice, got %q", s.Name())
	}

	q := &SellListQuery{Type: Egg.ShopType(), OrderType: "2", OrderID: "-1", PageSize: 10}
	for i := 0; i < 2; i++ {
		orders, err := s.SellList(ctx, q)
		if err != nil {
			t.Fatal(err)
		}
		if len(orders) != 2 || orders[0].Amount.String() != "4200" {
			t.Fatalf("unexpected orders %v", orders)
		}
	}
	if v := logins.Load(); v != 1 {
		t.Fatalf("want token reused within the session, got %d logins", v)
	}
}

func TestItemKind(t *testing.T) {
	if Egg.ShopType() != "6" || Potion.ShopType() != "2" {
		t.Fatalf("unexpected shop types")
	}
	for _, k := range ItemKinds {
		v, err := ParseItemKind(strings.ToUpper(k.String()))
		if err != nil {
			t.Fatal(err)
		}
		if v != k {
			t.Fatalf("want %v, got %v", k, v)
		}
	}
	if _, err := ParseItemKind("diamond"); err == nil {
		t.Fatalf("want error for unknown item kind")
	}
}
