// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/bvk/shopwatch/ctxutil"
	"github.com/bvk/shopwatch/pushover"
	"github.com/bvk/shopwatch/subcmds/cmdutil"
	"github.com/bvk/shopwatch/telegram"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/visvasity/cli"
	"golang.org/x/term"
)

type SetupPushover struct {
	cmdutil.DataFlags

	skipTesting bool

	appID  string
	userID string
}

func (c *SetupPushover) Purpose() string {
	return "Configures Pushover service keys for price warnings"
}

func (c *SetupPushover) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("setup-pushover", flag.ContinueOnError)
	c.DataFlags.SetFlags(fset)
	fset.StringVar(&c.userID, "user-id", "", "Pushover service user identifier")
	fset.StringVar(&c.appID, "app-id", "", "Pushover service application identifier")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return "setup-pushover", fset, cli.CmdFunc(c.run)
}

func (c *SetupPushover) Description() string {
	return `

Command "setup-pushover" saves the Pushover keys in the secrets file so that
price warnings are also sent to mobile phones. Pushover keys are optional.

  $ shopwatch setup-pushover --app-id=awja5ue...ito7svf --user-id=uscjs2...tvp4kv

`
}

func (c *SetupPushover) run(ctx context.Context, args []string) error {
	secretsPath, err := c.SecretsPath()
	if err != nil {
		return err
	}
	secrets, err := c.LoadSecrets()
	if err != nil {
		return err
	}

	secrets.Pushover = &pushover.Keys{
		ApplicationKey: c.appID,
		UserKey:        c.userID,
	}
	if err := secrets.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		client, err := pushover.New(secrets.Pushover, "")
		if err != nil {
			return err
		}
		if err := client.SendMessage(ctx, time.Now(), "Test message from shopwatch pushover setup; please ignore."); err != nil {
			return err
		}
	}
	return secrets.SaveFile(secretsPath)
}

type SetupTelegram struct {
	cmdutil.DataFlags

	skipTesting bool

	ownerID  string
	otherIDs string
	botToken string
}

func (c *SetupTelegram) Purpose() string {
	return "Configures a Telegram bot for price warnings"
}

func (c *SetupTelegram) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("setup-telegram", flag.ContinueOnError)
	c.DataFlags.SetFlags(fset)
	fset.StringVar(&c.ownerID, "owner-id", "", "Owner's telegram user name")
	fset.StringVar(&c.otherIDs, "other-ids", "", "Comma separated telegram user names that also receive warnings")
	fset.StringVar(&c.botToken, "bot-token", "", "Telegram bot's authentication token")
	fset.BoolVar(&c.skipTesting, "skip-testing", false, "don't test the parameters")
	return "setup-telegram", fset, cli.CmdFunc(c.run)
}

func (c *SetupTelegram) Description() string {
	return `

Command "setup-telegram" saves the Telegram bot token and the authorized
users in the secrets file. Users must start a chat with the bot before they
can receive the warnings.

  $ shopwatch setup-telegram --owner-id=username --bot-token=USCJS2...TVP4KV

`
}

func (c *SetupTelegram) run(ctx context.Context, args []string) error {
	secretsPath, err := c.SecretsPath()
	if err != nil {
		return err
	}
	secrets, err := c.LoadSecrets()
	if err != nil {
		return err
	}

	var others []string
	for _, v := range strings.Split(c.otherIDs, ",") {
		if v = strings.TrimPrefix(strings.TrimSpace(v), "@"); len(v) != 0 {
			others = append(others, v)
		}
	}
	secrets.Telegram = &telegram.Secrets{
		OwnerID:  strings.TrimPrefix(c.ownerID, "@"),
		OtherIDs: others,
		BotToken: c.botToken,
	}
	if err := secrets.Check(); err != nil {
		return err
	}

	if !c.skipTesting {
		if err := waitForKey("Start a chat with the telegram bot and then press any key"); err != nil {
			return err
		}
		client, err := telegram.New(ctx, kvmemdb.New(), secrets.Telegram)
		if err != nil {
			return err
		}
		defer client.Close()

		ctxutil.Sleep(ctx, time.Second)
		if err := client.SendMessage(ctx, time.Now(), "Test message from shopwatch telegram setup; please ignore."); err != nil {
			return err
		}
	}
	return secrets.SaveFile(secretsPath)
}

func waitForKey(prompt string) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("standard input is not a terminal; use -skip-testing flag")
	}
	fmt.Println(prompt)
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer func() {
		if err := term.Restore(fd, oldState); err != nil {
			log.Printf("could not restore the terminal state (ignored): %v", err)
		}
	}()

	b := make([]byte, 1)
	_, err = os.Stdin.Read(b)
	return err
}
