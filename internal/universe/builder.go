package universe

import (
	"context"
	"time"

	"github.com/ymlin/twscreener/internal/contracts"
	"github.com/ymlin/twscreener/pkg/logger"
)

// Builder merges configured sources into one candidate universe
type Builder struct {
	sources []contracts.UniverseSource
	logger  *logger.Logger
}

// NewBuilder creates a universe builder over the given sources, applied in order
func NewBuilder(sources []contracts.UniverseSource, log *logger.Logger) *Builder {
	return &Builder{
		sources: sources,
		logger:  log.Component("universe"),
	}
}

// Build constructs the run's universe
// ⭐ SSOT: 候選股票池只在這裡組成
// A failing source contributes nothing and is logged; the run continues.
// Duplicate codes keep their first occurrence, so source order is precedence
func (b *Builder) Build(ctx context.Context, date time.Time) *contracts.Universe {
	universe := contracts.NewUniverse(date)

	for _, source := range b.sources {
		symbols, err := source.List(ctx)
		if err != nil {
			b.logger.WithError(err).WithField("source", source.Name()).Warn("Universe source failed, continuing without it")
			universe.Sources[source.Name()] = 0
			continue
		}

		added := 0
		for _, sym := range symbols {
			if universe.Add(sym) {
				added++
			}
		}
		universe.Sources[source.Name()] = added
	}

	universe.SortByCode()

	b.logger.WithFields(map[string]interface{}{
		"candidates": universe.Count(),
		"sources":    universe.Sources,
	}).Info("Universe built")
	return universe
}
