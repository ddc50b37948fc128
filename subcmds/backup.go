// Copyright (c) 2023 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/shopwatch/kvutil"
	"github.com/bvk/shopwatch/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Backup struct {
	cmdutil.DataFlags
}

func (c *Backup) Purpose() string {
	return "Backup takes a backup of the database into a file"
}

func (c *Backup) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("backup", flag.ContinueOnError)
	c.DataFlags.SetFlags(fset)
	return "backup", fset, cli.CmdFunc(c.run)
}

func (c *Backup) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("command takes one (output backup file) argument")
	}
	db, closer, err := c.OpenDB(ctx)
	if err != nil {
		return err
	}
	defer closer()

	count, err := kvutil.BackupDB(ctx, db, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("saved %d items into %s\n", count, args[0])
	return nil
}

type Restore struct {
	cmdutil.DataFlags
}

func (c *Restore) Purpose() string {
	return "Restore replaces the database content with a backup file"
}

func (c *Restore) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("restore", flag.ContinueOnError)
	c.DataFlags.SetFlags(fset)
	return "restore", fset, cli.CmdFunc(c.run)
}

func (c *Restore) run(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("command takes one (input backup file) argument")
	}
	db, closer, err := c.OpenDB(ctx)
	if err != nil {
		return err
	}
	defer closer()

	count, err := kvutil.RestoreDB(ctx, db, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("restored %d items from %s\n", count, args[0])
	return nil
}
