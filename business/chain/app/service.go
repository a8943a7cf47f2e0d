package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/logger"
)

// BalanceService exposes monitored balances to other contexts.
type BalanceService struct {
	reader BalanceReader
	log    logger.LoggerInterface
}

// NewBalanceService creates a BalanceService over the given reader.
func NewBalanceService(reader BalanceReader, log logger.LoggerInterface) *BalanceService {
	return &BalanceService{reader: reader, log: log}
}

// BalanceOf returns the address's current monitored balance.
func (s *BalanceService) BalanceOf(ctx context.Context, addr common.Address) (asset.Amount, error) {
	snap, err := s.reader.ReadBalance(ctx, addr)
	if err != nil {
		return asset.Amount{}, err
	}
	return snap.Amount, nil
}
