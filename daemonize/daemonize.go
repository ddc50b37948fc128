// Copyright (c) 2023 BVK Chaitanya

// Package daemonize turns a foreground command into a background process.
package daemonize

import (
	"context"
	"fmt"
	"log"
	"log/syslog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bvk/shopwatch/ctxutil"
	"golang.org/x/sys/unix"
)

// SyslogTag is the tag for the standard library log messages in the
// background process.
var SyslogTag = "shopwatch"

// CheckFunc reports if the child process is initialized. When initialization
// is incomplete it returns a non-nil error with retry set to true. A non-nil
// error with retry set to false aborts the wait.
type CheckFunc func(ctx context.Context, child *os.Process) (retry bool, err error)

// Daemonize respawns the current program in the background with the same
// command-line arguments and environment. It must be called at the start of a
// command, before opening databases or starting servers.
//
// The envKey environment variable separates the parent from the child. In the
// child it holds the parent pid, so it must not be used by anything else.
//
// In the parent, Daemonize waits for check to report success and then exits
// the process; it only returns on failure. In the child, Daemonize detaches
// from the terminal session, redirects the standard log to syslog and
// returns nil.
func Daemonize(ctx context.Context, envKey string, check CheckFunc) error {
	if v := os.Getenv(envKey); len(v) == 0 {
		if err := startChild(ctx, envKey, check); err != nil {
			return err
		}
		os.Exit(0)
	}
	if err := initChild(); err != nil {
		log.Printf("could not initialize the background process: %v", err)
		os.Exit(1)
	}
	return nil
}

func startChild(ctx context.Context, envKey string, check CheckFunc) error {
	binary, err := exec.LookPath(os.Args[0])
	if err != nil {
		return fmt.Errorf("could not lookup binary: %w", err)
	}
	binaryPath, err := filepath.Abs(binary)
	if err != nil {
		return fmt.Errorf("could not determine absolute path for binary: %w", err)
	}
	// The child runs from "/" so relative paths must be resolved here.
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("could not determine working directory: %w", err)
	}

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", os.DevNull, err)
	}
	defer devnull.Close()

	// Cancel the wait when the child dies.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGCHLD, os.Interrupt)
	defer stop()

	attr := &os.ProcAttr{
		Dir:   wd,
		Env:   append(os.Environ(), fmt.Sprintf("%s=%d", envKey, os.Getpid())),
		Files: []*os.File{devnull, devnull, devnull},
	}
	child, err := os.StartProcess(binaryPath, os.Args, attr)
	if err != nil {
		return fmt.Errorf("could not start background process: %w", err)
	}

	if check == nil {
		return nil
	}
	for {
		if err := ctxutil.Sleep(ctx, time.Second); err != nil {
			return fmt.Errorf("background process did not initialize: %w", err)
		}
		retry, err := check(ctx, child)
		if err == nil {
			log.Printf("started background process with pid %d", child.Pid)
			return nil
		}
		if !retry {
			child.Signal(os.Interrupt)
			return fmt.Errorf("could not initialize the background process: %w", err)
		}
		log.Printf("background process is not yet initialized: %v", err)
	}
}

func initChild() error {
	syslogger, err := syslog.New(syslog.LOG_INFO, SyslogTag)
	if err != nil {
		return fmt.Errorf("could not create syslog writer: %w", err)
	}
	log.SetOutput(syslogger)

	if _, err := unix.Setsid(); err != nil {
		return fmt.Errorf("could not create a new session: %w", err)
	}
	return nil
}
