// Package sync refreshes holdings snapshots from linked brokerage
// accounts. It is the morning-snapshot routine: accounts in, lots out,
// one full replacement per account.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/finaos/internal/common"
	"github.com/bobmcallan/finaos/internal/interfaces"
	"github.com/bobmcallan/finaos/internal/models"
)

// Service implements interfaces.SyncService
type Service struct {
	vault     interfaces.VaultStore
	brokerage interfaces.BrokerageClient
	logger    *common.Logger
}

// NewService creates a new sync service
func NewService(
	vault interfaces.VaultStore,
	brokerage interfaces.BrokerageClient,
	logger *common.Logger,
) *Service {
	return &Service{
		vault:     vault,
		brokerage: brokerage,
		logger:    logger,
	}
}

// SyncAll refreshes the holdings snapshot of every linked account.
// Per-account failures are recorded and skipped; the pass never aborts
// because one account misbehaved. Accounts without an investments product
// are skipped quietly.
func (s *Service) SyncAll(ctx context.Context) (*models.SyncResult, error) {
	accounts, err := s.vault.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	result := &models.SyncResult{Accounts: len(accounts)}
	if len(accounts) == 0 {
		s.logger.Warn().Msg("No linked accounts to sync")
		return result, nil
	}

	s.logger.Info().Int("accounts", len(accounts)).Msg("Starting holdings sync")

	for _, account := range accounts {
		holdings, err := s.brokerage.GetHoldings(ctx, account.AccessToken)
		if err != nil {
			if errors.Is(err, interfaces.ErrUnsupportedAccount) {
				s.logger.Debug().Str("account", account.AccountID).Msg("Skipping non-investment account")
				continue
			}
			s.logger.Warn().Err(err).Str("account", account.AccountID).Msg("Holdings fetch failed")
			result.Failures = append(result.Failures, account.AccountID)
			continue
		}

		lots := make([]*models.HoldingLot, 0, len(holdings))
		for _, h := range holdings {
			lots = append(lots, &models.HoldingLot{
				AccountID:         account.AccountID,
				RawTicker:         h.Ticker,
				Quantity:          h.Quantity,
				CostBasisPerShare: h.CostBasisPerShare,
				Currency:          h.Currency,
			})
		}

		if err := s.vault.ReplaceHoldings(ctx, account.AccountID, lots); err != nil {
			s.logger.Warn().Err(err).Str("account", account.AccountID).Msg("Snapshot replace failed")
			result.Failures = append(result.Failures, account.AccountID)
			continue
		}

		account.LastSynced = time.Now()
		if err := s.vault.SaveAccount(ctx, account); err != nil {
			s.logger.Warn().Err(err).Str("account", account.AccountID).Msg("Failed to update sync timestamp")
		}

		result.Synced++
		result.Lots += len(lots)
	}

	s.logger.Info().
		Int("synced", result.Synced).
		Int("lots", result.Lots).
		Int("failures", len(result.Failures)).
		Msg("Holdings sync complete")

	return result, nil
}

// Ensure Service implements SyncService
var _ interfaces.SyncService = (*Service)(nil)
