package scout

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/finaos/internal/common"
	"github.com/bobmcallan/finaos/internal/interfaces"
	"github.com/bobmcallan/finaos/internal/models"
)

// ErrNoHoldings is returned when the vault holds no lots at all. It is the
// only condition that terminates a scan early; everything else degrades
// per-item.
var ErrNoHoldings = errors.New("no holdings found: link a brokerage account and sync first")

const auditSource = "TAX_SCOUT"

// Service implements interfaces.ScoutService
type Service struct {
	vault    interfaces.VaultStore
	market   interfaces.MarketDataClient
	advisory interfaces.AdvisoryClient
	norm     *Normalizer
	policy   Policy
	logger   *common.Logger
}

// NewService creates a new scout service
func NewService(
	vault interfaces.VaultStore,
	market interfaces.MarketDataClient,
	advisory interfaces.AdvisoryClient,
	cfg common.ScoutConfig,
	logger *common.Logger,
) *Service {
	return &Service{
		vault:    vault,
		market:   market,
		advisory: advisory,
		norm:     NewNormalizer(cfg),
		policy:   NewPolicy(cfg),
		logger:   logger,
	}
}

// Scan runs one full pass of the engine: read lots, consolidate, price,
// compute gain/loss, classify, and record harvest recommendations. The
// pipeline is deterministic for a fixed input: positions are walked in
// symbol order and candidates sorted by loss.
func (s *Service) Scan(ctx context.Context) (*models.HarvestReport, error) {
	lots, err := s.vault.ReadHoldings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings: %w", err)
	}
	if len(lots) == 0 {
		return nil, ErrNoHoldings
	}

	s.logger.Info().Int("lots", len(lots)).Msg("Scanning portfolio for harvest opportunities")

	positions, skipped := aggregateLots(s.norm, lots)
	if len(skipped) > 0 {
		s.logger.Debug().Strs("tickers", skipped).Msg("Rejected unpriceable tickers")
	}

	quotes := s.resolvePrices(ctx, positions)

	reviews := make([]models.PositionReview, 0, len(positions))
	for _, symbol := range sortedSymbols(positions) {
		review := computeReview(positions[symbol], quotes[symbol])
		review.Status = s.policy.Classify(&review)
		reviews = append(reviews, review)
	}
	// Rows render by display ticker, not lookup symbol (BTC, not BTC-USD).
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].Symbol < reviews[j].Symbol
	})

	report := &models.HarvestReport{
		GeneratedAt:    time.Now(),
		Positions:      reviews,
		Candidates:     s.collectCandidates(ctx, reviews),
		SkippedSymbols: skipped,
	}

	s.recordCandidates(ctx, report.Candidates)

	s.logger.Info().
		Int("positions", len(report.Positions)).
		Int("candidates", len(report.Candidates)).
		Msg("Scan complete")

	return report, nil
}

// resolvePrices batch-queries the price service once for all symbols. A
// total fetch failure degrades every position to data-unavailable rather
// than aborting the run; partial misses degrade only the missing symbols.
func (s *Service) resolvePrices(ctx context.Context, positions map[string]*models.CanonicalPosition) map[string]models.PriceQuote {
	symbols := sortedSymbols(positions)
	quotes := make(map[string]models.PriceQuote, len(symbols))

	prices, err := s.market.GetLastPrices(ctx, symbols)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Price fetch failed; all positions report data-unavailable")
		return quotes
	}

	for _, symbol := range symbols {
		price, ok := prices[symbol]
		if !ok {
			s.logger.Debug().Str("symbol", symbol).Msg("No price in response")
			continue
		}
		quotes[symbol] = models.PriceQuote{Symbol: symbol, Price: price, Valid: true}
	}

	return quotes
}

// collectCandidates builds the ordered harvest list. The advisory call is
// made once per candidate; a failure never suppresses the classification,
// the error is simply carried as the advice text.
func (s *Service) collectCandidates(ctx context.Context, reviews []models.PositionReview) []models.HarvestCandidate {
	var candidates []models.HarvestCandidate

	for i := range reviews {
		review := &reviews[i]
		if review.Status != models.StatusHarvest {
			continue
		}

		advice, err := s.advisory.SuggestProxy(ctx, review.Symbol)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", review.Symbol).Msg("Advisory call failed")
			advice = fmt.Sprintf("proxy suggestion unavailable: %v", err)
		}

		candidates = append(candidates, models.HarvestCandidate{
			Symbol:      review.Symbol,
			LossAmount:  *review.GainLossAmount,
			LossPercent: *review.GainLossPercent,
			ProxyAdvice: advice,
		})
	}

	// Largest absolute loss first; symbol breaks ties for determinism.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].LossAmount != candidates[j].LossAmount {
			return candidates[i].LossAmount < candidates[j].LossAmount
		}
		return candidates[i].Symbol < candidates[j].Symbol
	})

	return candidates
}

// recordCandidates appends one audit entry per harvest recommendation. A
// failed write is logged and does not stop the remaining candidates.
func (s *Service) recordCandidates(ctx context.Context, candidates []models.HarvestCandidate) {
	for _, c := range candidates {
		detail := fmt.Sprintf("Found loss of $%.2f (%.2f%%) in %s. Suggested: %s",
			-c.LossAmount, c.LossPercent*100, c.Symbol, c.ProxyAdvice)
		if err := s.vault.AppendAudit(ctx, auditSource, "HARVEST_ALERT", detail); err != nil {
			s.logger.Error().Err(err).Str("symbol", c.Symbol).Msg("Audit write failed")
		}
	}
}

// sortedSymbols returns the canonical symbols of a position map in
// lexical order.
func sortedSymbols(positions map[string]*models.CanonicalPosition) []string {
	symbols := make([]string, 0, len(positions))
	for symbol := range positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Ensure Service implements ScoutService
var _ interfaces.ScoutService = (*Service)(nil)
