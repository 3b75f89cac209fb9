package enrich

import (
	"context"
	"time"

	"github.com/ymlin/twscreener/internal/contracts"
	"github.com/ymlin/twscreener/pkg/logger"
)

// PlaceholderNoCoverage stands in when no recent headlines exist
const PlaceholderNoCoverage = "近期無相關新聞"

// Enricher attaches recent headlines to matches, best-effort
type Enricher struct {
	provider contracts.NewsProvider
	logger   *logger.Logger
	window   time.Duration
	maxItems int
}

// NewEnricher creates a headline enricher
func NewEnricher(provider contracts.NewsProvider, window time.Duration, maxItems int, log *logger.Logger) *Enricher {
	return &Enricher{
		provider: provider,
		logger:   log.Component("enrich"),
		window:   window,
		maxItems: maxItems,
	}
}

// Headlines fetches up to maxItems recent headlines for a display name.
// Any failure or empty result degrades to the placeholder; enrichment never
// blocks a match from the report
func (e *Enricher) Headlines(ctx context.Context, displayName string) []string {
	if e.provider == nil {
		return []string{PlaceholderNoCoverage}
	}

	headlines, err := e.provider.Search(ctx, displayName, e.window, e.maxItems)
	if err != nil {
		e.logger.WithError(err).WithField("query", displayName).Warn("Headline search failed, using placeholder")
		return []string{PlaceholderNoCoverage}
	}
	if len(headlines) == 0 {
		return []string{PlaceholderNoCoverage}
	}
	if len(headlines) > e.maxItems {
		headlines = headlines[:e.maxItems]
	}
	return headlines
}
