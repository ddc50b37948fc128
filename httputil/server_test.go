// Copyright (c) 2026 BVK Chaitanya

package httputil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
)

func get(t *testing.T, u string) (int, string) {
	t.Helper()
	resp, err := http.Get(u)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(data)
}

func TestServer(t *testing.T) {
	s, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	laddr, err := s.StartTCP(context.Background(), "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	s.AddHandler("/hello", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "hello")
	}))
	if code, body := get(t, "http://"+laddr+"/hello"); code != http.StatusOK || body != "hello" {
		t.Fatalf("want hello, got %d %q", code, body)
	}

	if !s.RemoveHandler("/hello") {
		t.Fatalf("want true for a registered handler")
	}
	if s.RemoveHandler("/hello") {
		t.Fatalf("want false for a removed handler")
	}
	if code, _ := get(t, "http://"+laddr+"/hello"); code != http.StatusNotFound {
		t.Fatalf("want not found after removal, got %d", code)
	}

	if err := s.Stop(laddr); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(laddr); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist, got %v", err)
	}
}
