// Copyright (c) 2023 BVK Chaitanya

package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/bvk/shopwatch/envfile"
	"github.com/bvk/shopwatch/subcmds"
	"github.com/visvasity/cli"
)

func main() {
	if home, err := os.UserHomeDir(); err == nil {
		if err := envfile.UpdateEnv(filepath.Join(home, ".shopwatch.env")); err != nil {
			log.Fatal(err)
		}
	}

	cmds := []cli.Command{
		new(subcmds.Run),
		new(subcmds.Price),
		new(subcmds.Status),
		new(subcmds.History),
		new(subcmds.Chart),
		new(subcmds.Backup),
		new(subcmds.Restore),
		new(subcmds.SetupPushover),
		new(subcmds.SetupTelegram),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
