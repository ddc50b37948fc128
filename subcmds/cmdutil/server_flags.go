// Copyright (c) 2023 BVK Chaitanya

package cmdutil

import (
	"flag"
	"fmt"
	"net"
)

const DefaultPort = 10400

type ServerFlags struct {
	Port int
	IP   string
}

func (sf *ServerFlags) SetFlags(fset *flag.FlagSet) {
	fset.IntVar(&sf.Port, "listen-port", DefaultPort, "TCP port number for the status endpoint; zero disables it")
	fset.StringVar(&sf.IP, "listen-ip", "127.0.0.1", "TCP ip address for the status endpoint")
}

// Address returns the listen address or an empty string when the status
// endpoint is disabled.
func (sf *ServerFlags) Address() (string, error) {
	if sf.Port == 0 {
		return "", nil
	}
	if net.ParseIP(sf.IP) == nil {
		return "", fmt.Errorf("invalid listen ip address %q", sf.IP)
	}
	if sf.Port < 0 || sf.Port > 65535 {
		return "", fmt.Errorf("invalid listen port number %d", sf.Port)
	}
	return net.JoinHostPort(sf.IP, fmt.Sprintf("%d", sf.Port)), nil
}
