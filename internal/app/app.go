// Package app wires configuration, storage, clients, and services into
// one container shared by the server entry point and tests.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/finaos/internal/clients/brokerage"
	"github.com/bobmcallan/finaos/internal/clients/gemini"
	"github.com/bobmcallan/finaos/internal/clients/marketdata"
	"github.com/bobmcallan/finaos/internal/common"
	"github.com/bobmcallan/finaos/internal/interfaces"
	"github.com/bobmcallan/finaos/internal/services/scout"
	syncsvc "github.com/bobmcallan/finaos/internal/services/sync"
	"github.com/bobmcallan/finaos/internal/storage/vaultdb"
)

// App holds all initialized services and clients.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Vault           interfaces.VaultStore
	MarketClient    interfaces.MarketDataClient
	AdvisoryClient  interfaces.AdvisoryClient
	BrokerageClient interfaces.BrokerageClient
	ScoutService    interfaces.ScoutService
	SyncService     interfaces.SyncService
	StartupTime     time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, and services. configPath may be
// empty, in which case FINAOS_CONFIG and the binary directory are tried.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	if configPath == "" {
		configPath = os.Getenv("FINAOS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "finaos.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/finaos.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging)

	vault, err := vaultdb.NewStore(logger, config.Storage.Path, config.Storage.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}

	marketKey, err := common.ResolveAPIKey("marketdata_api_key", config.Clients.MarketData.APIKey)
	if err != nil {
		// Price fetches will fail and degrade to data-unavailable.
		logger.Warn().Msg("No market data API key configured")
	}
	marketClient := marketdata.NewClient(marketKey,
		marketdata.WithBaseURL(config.Clients.MarketData.BaseURL),
		marketdata.WithRateLimit(config.Clients.MarketData.RateLimit),
		marketdata.WithTimeout(config.Clients.MarketData.GetTimeout()),
		marketdata.WithLogger(logger),
	)

	var advisoryClient interfaces.AdvisoryClient
	geminiKey, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
	if err != nil {
		logger.Warn().Msg("No Gemini API key configured; proxy suggestions disabled")
		advisoryClient = unavailableAdvisory{}
	} else {
		advisoryClient, err = gemini.NewClient(ctx, geminiKey,
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
	}

	brokerageSecret, err := common.ResolveAPIKey("brokerage_secret", config.Clients.Brokerage.Secret)
	if err != nil {
		logger.Warn().Msg("No brokerage secret configured; holdings sync disabled")
	}
	brokerageClient := brokerage.NewClient(config.Clients.Brokerage.ClientID, brokerageSecret,
		brokerage.WithBaseURL(config.Clients.Brokerage.BaseURL),
		brokerage.WithRateLimit(config.Clients.Brokerage.RateLimit),
		brokerage.WithTimeout(config.Clients.Brokerage.GetTimeout()),
		brokerage.WithLogger(logger),
	)

	scoutService := scout.NewService(vault, marketClient, advisoryClient, config.Scout, logger)
	syncService := syncsvc.NewService(vault, brokerageClient, logger)

	return &App{
		Config:          config,
		Logger:          logger,
		Vault:           vault,
		MarketClient:    marketClient,
		AdvisoryClient:  advisoryClient,
		BrokerageClient: brokerageClient,
		ScoutService:    scoutService,
		SyncService:     syncService,
		StartupTime:     time.Now(),
	}, nil
}

// Close releases the scheduler and storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
	}
	if a.Vault != nil {
		if err := a.Vault.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Vault close failed")
		}
	}
}

// unavailableAdvisory stands in when no advisory key is configured. The
// scout service carries the error text into the report instead of
// suppressing the harvest call.
type unavailableAdvisory struct{}

func (unavailableAdvisory) SuggestProxy(context.Context, string) (string, error) {
	return "", errors.New("advisory service not configured")
}
