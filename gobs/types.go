// Copyright (c) 2026 BVK Chaitanya

package gobs

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceObservation is one lowest price sample for an item kind.
type PriceObservation struct {
	Wallet    string
	ItemKind  string
	Timestamp time.Time
	Amount    decimal.Decimal

	// CycleID identifies the polling cycle that made the observation.
	CycleID string
}

// AlertState holds the notification freeze deadlines keyed by wallet and
// warning names.
type AlertState struct {
	FreezeDeadlineMap map[string]time.Time
}

type TelegramState struct {
	UserChatIDMap map[string]int64
}

// KeyValue is the backup record for a database entry.
type KeyValue struct {
	Key   string
	Value []byte
}
