package universe

import (
	"context"
	"fmt"
	"sort"

	"github.com/ymlin/twscreener/internal/contracts"
)

// CoreSource serves the hand-curated watch list from configuration
type CoreSource struct {
	symbols []contracts.Symbol
}

// NewCoreSource builds the core source from the code -> name config map
func NewCoreSource(coreList map[string]string) *CoreSource {
	symbols := make([]contracts.Symbol, 0, len(coreList))
	for code, name := range coreList {
		symbols = append(symbols, contracts.Symbol{
			Code:   code,
			Name:   name,
			Market: contracts.GuessMarket(code),
		})
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Code < symbols[j].Code })
	return &CoreSource{symbols: symbols}
}

func (s *CoreSource) Name() string { return "core" }

// List returns the configured watch list; it cannot fail
func (s *CoreSource) List(_ context.Context) ([]contracts.Symbol, error) {
	out := make([]contracts.Symbol, len(s.symbols))
	copy(out, s.symbols)
	return out, nil
}

// valueRanker is the slice of the exchange client the ranking source needs
type valueRanker interface {
	TopByValue(ctx context.Context, n int) ([]contracts.Symbol, error)
}

// RankingSource contributes the day's most actively traded symbols
type RankingSource struct {
	client valueRanker
	topN   int
}

// NewRankingSource builds the traded-value ranking source
func NewRankingSource(client valueRanker, topN int) *RankingSource {
	return &RankingSource{client: client, topN: topN}
}

func (s *RankingSource) Name() string { return "ranking" }

func (s *RankingSource) List(ctx context.Context) ([]contracts.Symbol, error) {
	symbols, err := s.client.TopByValue(ctx, s.topN)
	if err != nil {
		return nil, fmt.Errorf("value ranking: %w", err)
	}
	return symbols, nil
}

// boardLister is the slice of the exchange client the listing source needs
type boardLister interface {
	Listing(ctx context.Context) ([]contracts.Symbol, error)
}

// ListingSource contributes the full exchange listing of both boards
type ListingSource struct {
	client boardLister
}

// NewListingSource builds the full-listing source
func NewListingSource(client boardLister) *ListingSource {
	return &ListingSource{client: client}
}

func (s *ListingSource) Name() string { return "listing" }

func (s *ListingSource) List(ctx context.Context) ([]contracts.Symbol, error) {
	symbols, err := s.client.Listing(ctx)
	if err != nil {
		return nil, fmt.Errorf("exchange listing: %w", err)
	}
	return symbols, nil
}
