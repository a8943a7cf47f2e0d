package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/staking-monitor/business/monitor/domain"
	"github.com/fd1az/staking-monitor/internal/apperror"
	"github.com/fd1az/staking-monitor/internal/asset"
	"github.com/fd1az/staking-monitor/internal/logger"
)

// MonitorService is the user-facing surface of the monitor context: deposits,
// order configuration and read access. The batch passes live in the accrual
// and conversion engines; this service never touches their fields.
type MonitorService struct {
	ledger   *domain.Ledger
	oracle   PriceOracle
	balances BalanceSource
	log      logger.LoggerInterface
}

// NewMonitorService creates a MonitorService over the given ledger and ports.
func NewMonitorService(
	ledger *domain.Ledger,
	oracle PriceOracle,
	balances BalanceSource,
	log logger.LoggerInterface,
) *MonitorService {
	return &MonitorService{
		ledger:   ledger,
		oracle:   oracle,
		balances: balances,
		log:      log,
	}
}

// Deposit credits amount to the user and enrolls them on the watchlist on
// first deposit. The user's current monitored balance is read here so the
// first accrual pass has a baseline to diff against.
func (s *MonitorService) Deposit(ctx context.Context, user domain.UserID, amount asset.Amount) error {
	observed, err := s.balances.BalanceOf(ctx, user)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeBalanceFetchFailed,
			apperror.WithContext(user.Hex()))
	}

	created, err := s.ledger.Deposit(user, amount, observed)
	if err != nil {
		return err
	}

	s.log.Info(ctx, "deposit recorded",
		"user", user.Hex(),
		"amount", amount.String(),
		"new_account", created,
	)
	return nil
}

// ConfigureOrder sets the user's conversion order: convert percent of each
// balance increase once the oracle price rises strictly above target. The
// target is given in stable units per base unit (e.g. "3000") and stored in
// the oracle's fixed-point scale.
func (s *MonitorService) ConfigureOrder(ctx context.Context, user domain.UserID, target decimal.Decimal, percent uint8) error {
	price, err := asset.PriceFromDecimal(target)
	if err != nil {
		return err
	}

	if err := s.ledger.ConfigureOrder(user, price, percent); err != nil {
		return err
	}

	s.log.Info(ctx, "order configured",
		"user", user.Hex(),
		"target", price.String(),
		"percent", percent,
	)
	return nil
}

// CurrentPrice returns the latest oracle price.
func (s *MonitorService) CurrentPrice(ctx context.Context) (asset.Price, error) {
	return s.oracle.LatestPrice(ctx)
}

// Account returns a copy of the user's account.
func (s *MonitorService) Account(user domain.UserID) (domain.Account, bool) {
	return s.ledger.Account(user)
}

// WatchlistEntry returns the watchlist entry at index i.
func (s *MonitorService) WatchlistEntry(i int) (domain.UserID, bool) {
	return s.ledger.WatchlistEntry(i)
}

// WatchlistLen returns the number of watched users.
func (s *MonitorService) WatchlistLen() int {
	return s.ledger.WatchlistLen()
}

// Snapshot returns every watched account in watchlist order.
func (s *MonitorService) Snapshot() []WatchedAccount {
	users := s.ledger.Watched()
	out := make([]WatchedAccount, 0, len(users))
	for _, u := range users {
		acct, ok := s.ledger.Account(u)
		if !ok {
			continue
		}
		out = append(out, WatchedAccount{User: u, Account: acct})
	}
	return out
}
