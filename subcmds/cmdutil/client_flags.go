// Copyright (c) 2023 BVK Chaitanya

package cmdutil

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// ClientFlags locate the status endpoint of a running poller.
type ClientFlags struct {
	Port        int
	Host        string
	HTTPTimeout time.Duration
}

func (cf *ClientFlags) SetFlags(fset *flag.FlagSet) {
	fset.IntVar(&cf.Port, "connect-port", 0, "TCP port of the status endpoint (defaults to SHOPWATCH_SERVER_PORT or 10400)")
	fset.StringVar(&cf.Host, "connect-host", "127.0.0.1", "Hostname or IP address of the status endpoint")
	fset.DurationVar(&cf.HTTPTimeout, "http-timeout", 30*time.Second, "Timeout for requests to the status endpoint")
}

func (cf *ClientFlags) port() int {
	if cf.Port > 0 {
		return cf.Port
	}
	if port, err := strconv.Atoi(os.Getenv("SHOPWATCH_SERVER_PORT")); err == nil && port > 0 {
		return port
	}
	return DefaultPort
}

// Endpoint returns the url for the subpath of the status endpoint.
func (cf *ClientFlags) Endpoint(subpath string) string {
	u := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(cf.Host, strconv.Itoa(cf.port())),
		Path:   "/" + strings.TrimPrefix(subpath, "/"),
	}
	return u.String()
}

// Get decodes the json response for a GET request on the subpath of the
// status endpoint.
func Get[RESP any](ctx context.Context, cf *ClientFlags, subpath string) (*RESP, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cf.Endpoint(subpath), nil)
	if err != nil {
		return nil, err
	}
	client := http.Client{Timeout: cf.HTTPTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach the status endpoint (is the poller running?): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("status endpoint %s returned %s: %s", subpath, resp.Status, strings.TrimSpace(string(msg)))
	}
	var v RESP
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, fmt.Errorf("could not decode %s response: %w", subpath, err)
	}
	return &v, nil
}
