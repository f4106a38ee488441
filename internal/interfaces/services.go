// Package interfaces defines service contracts for Fina.os
package interfaces

import (
	"context"

	"github.com/bobmcallan/finaos/internal/models"
)

// ScoutService runs the portfolio consolidation and harvest decision engine.
type ScoutService interface {
	// Scan consolidates stored holdings, resolves live prices, and
	// classifies each position. Returns ErrNoHoldings (from the scout
	// package) when the vault holds no lots at all.
	Scan(ctx context.Context) (*models.HarvestReport, error)
}

// SyncService refreshes holdings snapshots from linked accounts.
type SyncService interface {
	SyncAll(ctx context.Context) (*models.SyncResult, error)
}
