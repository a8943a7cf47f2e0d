// Package domain contains the chain context's domain types.
package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/staking-monitor/internal/asset"
)

// BalanceSnapshot is one observed on-chain balance with its read time.
type BalanceSnapshot struct {
	Address    common.Address
	Amount     asset.Amount
	ObservedAt time.Time
}

// NewBalanceSnapshot creates a BalanceSnapshot observed now.
func NewBalanceSnapshot(addr common.Address, amount asset.Amount) *BalanceSnapshot {
	return &BalanceSnapshot{
		Address:    addr,
		Amount:     amount,
		ObservedAt: time.Now(),
	}
}
