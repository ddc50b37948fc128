// Copyright (c) 2026 BVK Chaitanya

package metamon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const testDelay = 20 * time.Millisecond

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts := &Options{
		BaseURL:           server.URL + "/usm-api",
		RequestDelay:      testDelay,
		RequestsPerSecond: 1000,
	}
	client, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestPostRetriesExhausted(t *testing.T) {
	var count atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		fmt.Fprint(w, `{"code": "SUCCESS", "data": `) // truncated json
	}))

	ctx := context.Background()
	err := client.Post(ctx, SellListEndpoint, nil, "token", new(SellListData))
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("want ErrRetriesExhausted, got %v", err)
	}
	if v := count.Load(); v != 5 {
		t.Fatalf("want exactly 5 attempts, got %d", v)
	}
}

func TestPostHttpFailureRetried(t *testing.T) {
	var count atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if count.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"code": "SUCCESS", "data": "tok"}`)
	}))

	var token string
	if err := client.Post(context.Background(), LoginEndpoint, nil, "", &token); err != nil {
		t.Fatal(err)
	}
	if token != "tok" {
		t.Fatalf("want tok, got %q", token)
	}
	if v := count.Load(); v != 3 {
		t.Fatalf("want 3 attempts, got %d", v)
	}
}

func TestPostImmediateSuccess(t *testing.T) {
	var count atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type %q", got)
		}
		if got := r.Header.Get("accessToken"); got != "secret" {
			t.Errorf("want accessToken header secret, got %q", got)
		}
		fmt.Fprint(w, `{"code": "SUCCESS", "data": {"shopOrderList": [{"amount": "4999"}]}}`)
	}))

	start := time.Now()
	data := new(SellListData)
	if err := client.Post(context.Background(), SellListEndpoint, nil, "secret", data); err != nil {
		t.Fatal(err)
	}
	if d := time.Since(start); d < testDelay {
		t.Fatalf("request was sent before the fixed delay: %s", d)
	}
	if v := count.Load(); v != 1 {
		t.Fatalf("want one attempt, got %d", v)
	}
	if len(data.ShopOrderList) != 1 || data.ShopOrderList[0].Amount.String() != "4999" {
		t.Fatalf("unexpected shop orders %v", data.ShopOrderList)
	}
}

func TestPostUnauthorized(t *testing.T) {
	var count atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	err := client.Post(context.Background(), SellListEndpoint, nil, "bad", nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("unauthorized must not be reported as retries exhausted")
	}
	if v := count.Load(); v != 1 {
		t.Fatalf("unauthorized requests must not be retried, got %d attempts", v)
	}
}

func TestPostAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code": "FAIL", "message": "bad params"}`)
	}))

	err := client.Post(context.Background(), SellListEndpoint, nil, "tok", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want APIError, got %v", err)
	}
	if apiErr.Code != "FAIL" || apiErr.Message != "bad params" {
		t.Fatalf("unexpected api error %#v", apiErr)
	}
}

func TestPostCanceled(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request must not be sent with a canceled context")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.Post(ctx, LoginEndpoint, nil, "", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/usm-api/login") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		if r.PostForm.Get("address") != "0xabc" || r.PostForm.Get("sign") != "0xsig" || r.PostForm.Get("msg") != "LogIn-1" {
			fmt.Fprint(w, `{"code": "SUCCESS", "data": null}`)
			return
		}
		fmt.Fprint(w, `{"code": "SUCCESS", "data": "token-1"}`)
	}))

	ctx := context.Background()
	cred := &Credential{Name: "w1", Address: "0xabc", Sign: "0xsig", Msg: "LogIn-1"}
	token, err := client.Login(ctx, cred)
	if err != nil {
		t.Fatal(err)
	}
	if token != "token-1" {
		t.Fatalf("want token-1, got %q", token)
	}

	bad := &Credential{Name: "w2", Address: "0xabc", Sign: "0xother", Msg: "LogIn-1"}
	if _, err := client.Login(ctx, bad); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized for missing token, got %v", err)
	}

	if _, err := client.Login(ctx, &Credential{Name: "empty"}); err == nil {
		t.Fatalf("want error for an empty credential")
	}
}
