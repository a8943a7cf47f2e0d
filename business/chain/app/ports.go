// Package app contains application services and port definitions for the chain context.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/staking-monitor/business/chain/domain"
)

// BalanceReader reads monitored on-chain balances. Implemented by the
// Ethereum node adapter; tests use an in-memory reader.
type BalanceReader interface {
	// ReadBalance returns the address's current monitored balance.
	ReadBalance(ctx context.Context, addr common.Address) (*domain.BalanceSnapshot, error)
}
