// Copyright (c) 2025 BVK Chaitanya

package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bvk/shopwatch/ctxutil"
	"github.com/bvk/shopwatch/gobs"
	"github.com/bvk/shopwatch/kvutil"
	"github.com/bvkgo/kv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// CmdFunc returns the reply text for a bot command.
type CmdFunc func(ctx context.Context, args []string) (string, error)

type command struct {
	purpose string
	handler CmdFunc
}

// Client sends notifications to the owner and other authorized users through
// a telegram bot. Chat ids are learned when an authorized user messages the
// bot and are saved in the database.
type Client struct {
	cg ctxutil.CloseGroup

	db kv.Database

	bot *bot.Bot

	self *models.User

	secrets *Secrets

	mu sync.Mutex

	state *gobs.TelegramState

	commandMap map[string]*command
}

var start = time.Now()

func New(ctx context.Context, db kv.Database, secrets *Secrets) (*Client, error) {
	if err := secrets.Check(); err != nil {
		return nil, err
	}

	c := &Client{
		db:         db,
		secrets:    secrets.Clone(),
		commandMap: make(map[string]*command),
	}
	c.commandMap["uptime"] = &command{purpose: "Prints shopwatch uptime", handler: uptime}

	b, err := bot.New(secrets.BotToken, bot.WithDefaultHandler(c.handler))
	if err != nil {
		return nil, fmt.Errorf("could not create telegram bot: %w", err)
	}
	c.bot = b

	self, err := b.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get bot user: %w", err)
	}
	c.self = self

	state, err := kvutil.GetDB[gobs.TelegramState](ctx, db, c.stateKey())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		state = &gobs.TelegramState{
			UserChatIDMap: make(map[string]int64),
		}
	}
	c.state = state

	if err := c.setCommands(ctx); err != nil {
		return nil, err
	}

	c.cg.Go(func(ctx context.Context) {
		c.bot.Start(ctx)
	})
	return c, nil
}

func (c *Client) Close() error {
	c.cg.Close()
	return nil
}

func (c *Client) BotUserName() string {
	return c.self.Username
}

func (c *Client) stateKey() string {
	return path.Join("/telegram", c.self.Username, "state")
}

// AddCommand registers a bot command.
func (c *Client) AddCommand(ctx context.Context, name, purpose string, handler CmdFunc) error {
	if len(name) == 0 || len(purpose) == 0 || handler == nil {
		return os.ErrInvalid
	}

	c.mu.Lock()
	if _, ok := c.commandMap[name]; ok {
		c.mu.Unlock()
		return os.ErrExist
	}
	c.commandMap[name] = &command{purpose: purpose, handler: handler}
	c.mu.Unlock()

	return c.setCommands(ctx)
}

func (c *Client) setCommands(ctx context.Context) error {
	c.mu.Lock()
	var cmds []models.BotCommand
	for name, cmd := range c.commandMap {
		cmds = append(cmds, models.BotCommand{Command: name, Description: cmd.purpose})
	}
	c.mu.Unlock()

	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].Command < cmds[j].Command
	})
	if ok, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: cmds}); err != nil {
		return fmt.Errorf("could not set bot commands: %w", err)
	} else if !ok {
		return fmt.Errorf("could not set bot commands")
	}
	return nil
}

// SendMessage notifies all authorized users with a known chat id.
func (c *Client) SendMessage(ctx context.Context, at time.Time, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := at.Format("2006-01-02 15:04:05 MST") + " " + text
	receivers := c.secrets.Receivers()

	sent := 0
	for _, receiver := range receivers {
		cid, ok := c.state.UserChatIDMap[receiver]
		if !ok {
			slog.Warn("could not notify receiver without chat id", "receiver", receiver)
			continue
		}
		if _, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: cid, Text: msg}); err != nil {
			slog.Error("could not notify receiver (ignored)", "receiver", receiver, "err", err)
			continue
		}
		sent++
	}
	if sent == 0 {
		return fmt.Errorf("could not notify any telegram receiver")
	}
	return nil
}

func (c *Client) handler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	sender := update.Message.From.Username
	if !c.secrets.IsAuthorized(sender) {
		slog.Warn("received message from unauthorized user (ignored)", "sender", sender)
		return
	}

	if err := c.updateChatID(ctx, sender, update.Message.Chat.ID); err != nil {
		slog.Warn("could not update chat id (ignored)", "user", sender, "err", err)
	}

	reply := c.respond(ctx, update.Message.Text)
	if len(reply) == 0 {
		return
	}
	p := &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   reply,
		ReplyParameters: &models.ReplyParameters{
			MessageID: update.Message.ID,
		},
	}
	if _, err := b.SendMessage(ctx, p); err != nil {
		slog.Error("could not reply to user command (ignored)", "user", sender, "err", err)
	}
}

func (c *Client) respond(ctx context.Context, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	name, _, _ := strings.Cut(strings.TrimPrefix(fields[0], "/"), "@")

	c.mu.Lock()
	cmd, ok := c.commandMap[name]
	c.mu.Unlock()
	if !ok {
		return fmt.Sprintf("unknown command %q", name)
	}

	reply, err := cmd.handler(ctx, fields[1:])
	if err != nil {
		slog.Error("could not handle user command (ignored)", "cmd", name, "err", err)
		return err.Error()
	}
	return reply
}

func (c *Client) updateChatID(ctx context.Context, user string, chatID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.state.UserChatIDMap[user]; ok && id == chatID {
		return nil
	}
	c.state.UserChatIDMap[user] = chatID
	slog.Info("updating chat id for authorized user", "user", user, "chat-id", chatID)
	return kvutil.SetDB(ctx, c.db, c.stateKey(), c.state)
}

func uptime(ctx context.Context, _ []string) (string, error) {
	const day = 24 * time.Hour
	d := time.Since(start).Truncate(time.Second)
	if d < day {
		return d.String(), nil
	}
	return fmt.Sprintf("%dd%v", d/day, d%day), nil
}
