// Package interfaces defines service contracts for Fina.os
package interfaces

import (
	"context"

	"github.com/bobmcallan/finaos/internal/models"
)

// VaultStore is the encrypted local persistence layer. It owns linked
// accounts, per-account holdings snapshots, and the append-only audit log.
type VaultStore interface {
	// Accounts
	SaveAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, accountID string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	DeleteAccount(ctx context.Context, accountID string) error

	// Holdings. ReadHoldings returns every stored lot across all
	// accounts; ReplaceHoldings wipes an account's snapshot and writes
	// the new one in its place.
	ReadHoldings(ctx context.Context) ([]*models.HoldingLot, error)
	ReplaceHoldings(ctx context.Context, accountID string, lots []*models.HoldingLot) error

	// Audit log
	AppendAudit(ctx context.Context, source, action, detail string) error
	ListAudit(ctx context.Context, limit int) ([]*models.AuditEntry, error)

	Close() error
}
