// Copyright (c) 2023 BVK Chaitanya

package monitor

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bvk/shopwatch/pushover"
	"github.com/bvk/shopwatch/telegram"
)

// Secrets holds the optional push notification keys.
type Secrets struct {
	Pushover *pushover.Keys    `json:"pushover"`
	Telegram *telegram.Secrets `json:"telegram"`
}

func SecretsFromFile(fpath string) (*Secrets, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return nil, err
	}
	s := new(Secrets)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("could not parse secrets file %q: %w", fpath, err)
	}
	if err := s.Check(); err != nil {
		return nil, err
	}
	return s, nil
}

func (v *Secrets) Check() error {
	if v.Pushover != nil {
		if err := v.Pushover.Check(); err != nil {
			return err
		}
	}
	if v.Telegram != nil {
		if err := v.Telegram.Check(); err != nil {
			return err
		}
	}
	return nil
}

// SaveFile writes the secrets into the file with owner only permissions.
func (v *Secrets) SaveFile(fpath string) error {
	js, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fpath, js, os.FileMode(0600))
}
