package series

import (
	"context"
	"fmt"
	"time"

	"github.com/ymlin/twscreener/internal/contracts"
	"github.com/ymlin/twscreener/pkg/logger"
)

// Store retrieves validated price series for a universe. It tries one batch
// round first and falls back to paced single-symbol fetches for whatever the
// batch did not deliver
type Store struct {
	provider contracts.HistoryProvider
	logger   *logger.Logger
	pace     time.Duration // delay between sequential fallback fetches
}

// NewStore creates a series store over a history provider
func NewStore(provider contracts.HistoryProvider, pace time.Duration, log *logger.Logger) *Store {
	return &Store{
		provider: provider,
		logger:   log.Component("series"),
		pace:     pace,
	}
}

// Result carries per-symbol outcomes of one retrieval round
type Result struct {
	Series   map[string]*contracts.PriceSeries
	Failures map[string]error // code -> why no usable series exists
}

// Fetch retrieves at least minBars of history for every symbol. Symbols the
// provider cannot serve fail with ErrUnavailable; short series fail with
// ErrInsufficientHistory. A failure never aborts the round
func (s *Store) Fetch(ctx context.Context, symbols []contracts.Symbol, minBars, lookback int) *Result {
	result := &Result{
		Series:   make(map[string]*contracts.PriceSeries, len(symbols)),
		Failures: make(map[string]error),
	}

	batch, err := s.provider.History(ctx, symbols, lookback)
	if err != nil {
		s.logger.WithError(err).Warn("Batch history failed, falling back to sequential fetches")
		batch = nil
	}

	var missing []contracts.Symbol
	for _, sym := range symbols {
		series, ok := batch[sym.Code]
		if !ok {
			missing = append(missing, sym)
			continue
		}
		s.accept(sym, series, minBars, result)
	}

	s.fetchSequential(ctx, missing, minBars, lookback, result)

	s.logger.WithFields(map[string]interface{}{
		"requested": len(symbols),
		"usable":    len(result.Series),
		"failed":    len(result.Failures),
	}).Info("Series retrieval done")
	return result
}

// fetchSequential fetches the stragglers one by one, pacing requests so the
// upstream does not throttle the run
func (s *Store) fetchSequential(ctx context.Context, symbols []contracts.Symbol, minBars, lookback int, result *Result) {
	for i, sym := range symbols {
		if i > 0 && s.pace > 0 {
			select {
			case <-time.After(s.pace):
			case <-ctx.Done():
				for _, rest := range symbols[i:] {
					result.Failures[rest.Code] = fmt.Errorf("%w: %v", contracts.ErrUnavailable, ctx.Err())
				}
				return
			}
		}

		series, err := s.provider.HistoryOne(ctx, sym, lookback)
		if err != nil {
			s.logger.WithError(err).WithField("code", sym.Code).Warn("History unavailable")
			result.Failures[sym.Code] = fmt.Errorf("%w: %v", contracts.ErrUnavailable, err)
			continue
		}
		s.accept(sym, series, minBars, result)
	}
}

// accept validates one series against the minimum-bars requirement
func (s *Store) accept(sym contracts.Symbol, series *contracts.PriceSeries, minBars int, result *Result) {
	if series == nil || series.Len() == 0 {
		result.Failures[sym.Code] = contracts.ErrUnavailable
		return
	}
	if series.Len() < minBars {
		result.Failures[sym.Code] = fmt.Errorf("%w: %d bars, need %d",
			contracts.ErrInsufficientHistory, series.Len(), minBars)
		return
	}
	result.Series[sym.Code] = series
}
