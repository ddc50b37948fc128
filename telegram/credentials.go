// Copyright (c) 2025 BVK Chaitanya

package telegram

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// Secrets holds the bot token and the telegram usernames allowed to talk to
// the bot. Alerts are delivered to the owner and every other receiver that
// has messaged the bot at least once.
type Secrets struct {
	BotToken string `json:"token"`

	OwnerID string `json:"owner"`

	OtherIDs []string `json:"others"`
}

func (v *Secrets) Check() error {
	if v.BotToken == "" {
		return fmt.Errorf("telegram bot token is required: %w", os.ErrInvalid)
	}
	if v.OwnerID == "" {
		return fmt.Errorf("telegram owner username is required: %w", os.ErrInvalid)
	}
	for _, id := range v.OtherIDs {
		switch {
		case id == "":
			return fmt.Errorf("empty telegram username in receivers: %w", os.ErrInvalid)
		case strings.HasPrefix(id, "@"):
			return fmt.Errorf("telegram username %q must not carry the @ prefix: %w", id, os.ErrInvalid)
		case id == v.OwnerID:
			return fmt.Errorf("owner %q is listed again in receivers: %w", id, os.ErrInvalid)
		}
	}
	return nil
}

func (v *Secrets) Clone() *Secrets {
	c := *v
	c.OtherIDs = slices.Clone(v.OtherIDs)
	return &c
}

// Receivers returns the owner followed by the other usernames.
func (v *Secrets) Receivers() []string {
	return append([]string{v.OwnerID}, v.OtherIDs...)
}

// IsAuthorized returns true if user is one of the receivers.
func (v *Secrets) IsAuthorized(user string) bool {
	return user != "" && slices.Contains(v.Receivers(), user)
}
