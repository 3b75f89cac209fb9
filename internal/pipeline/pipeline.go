package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ymlin/twscreener/internal/contracts"
	"github.com/ymlin/twscreener/internal/enrich"
	"github.com/ymlin/twscreener/internal/indicator"
	"github.com/ymlin/twscreener/internal/report"
	"github.com/ymlin/twscreener/internal/screen"
	"github.com/ymlin/twscreener/internal/series"
	"github.com/ymlin/twscreener/internal/universe"
	"github.com/ymlin/twscreener/pkg/logger"
)

// Exclusion reasons recorded on the universe
const (
	reasonUnavailable  = "history unavailable"
	reasonShortHistory = "insufficient history"
	reasonIncompatible = "snapshot incompatible with policy"
)

// flowLookbackDays is the calendar window fetched for institutional flows
const flowLookbackDays = 30

// Pipeline runs one full screening pass:
// universe → series → indicators → rules → enrichment → report → sink
// ⭐ SSOT: 篩選流程的組裝只在這個 package
type Pipeline struct {
	universe     *universe.Builder
	store        *series.Store
	policy       *screen.Policy
	params       indicator.Params
	flows        contracts.FlowProvider
	fundamentals contracts.FundamentalsProvider
	enricher     *enrich.Enricher
	assembler    *report.Assembler
	sink         contracts.NotificationSink
	logger       *logger.Logger

	workers     int
	callTimeout time.Duration
}

// Config holds pipeline execution settings
type Config struct {
	Workers     int
	CallTimeout time.Duration

	TrendOffset       int
	ExtremesLookback  int
	ShortVolumeWindow int
	LongVolumeWindow  int
}

// New wires a pipeline. Flow and fundamentals providers may be nil when the
// policy reads no side data
func New(
	universeBuilder *universe.Builder,
	store *series.Store,
	policy *screen.Policy,
	cfg Config,
	flows contracts.FlowProvider,
	fundamentals contracts.FundamentalsProvider,
	enricher *enrich.Enricher,
	assembler *report.Assembler,
	sink contracts.NotificationSink,
	log *logger.Logger,
) *Pipeline {
	defaults := indicator.DefaultParams()
	params := indicator.Params{
		Windows:           policy.Windows(),
		TrendOffset:       cfg.TrendOffset,
		ExtremesLookback:  cfg.ExtremesLookback,
		ShortVolumeWindow: cfg.ShortVolumeWindow,
		LongVolumeWindow:  cfg.LongVolumeWindow,
	}
	if params.TrendOffset <= 0 {
		params.TrendOffset = defaults.TrendOffset
	}
	if params.ExtremesLookback <= 0 {
		params.ExtremesLookback = defaults.ExtremesLookback
	}
	if params.ShortVolumeWindow <= 0 {
		params.ShortVolumeWindow = defaults.ShortVolumeWindow
	}
	if params.LongVolumeWindow <= 0 {
		params.LongVolumeWindow = defaults.LongVolumeWindow
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	return &Pipeline{
		universe:     universeBuilder,
		store:        store,
		policy:       policy,
		params:       params,
		flows:        flows,
		fundamentals: fundamentals,
		enricher:     enricher,
		assembler:    assembler,
		sink:         sink,
		logger:       log.Component("pipeline"),
		workers:      cfg.Workers,
		callTimeout:  cfg.CallTimeout,
	}
}

// Result summarizes one run for the status API and the scheduler
type Result struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Universe   int
	Evaluated  int
	Matches    int
	Delivered  bool
	Report     *report.Report
}

// evalOutcome is one symbol's evaluation result
type evalOutcome struct {
	code   string
	match  *contracts.Match
	reason string // exclusion reason, empty on match or clean non-match
}

// Run executes one screening pass. Per-symbol failures degrade that symbol;
// only a nil report would be an error, and Run never produces one
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{StartedAt: time.Now()}

	univ := p.universe.Build(ctx, result.StartedAt)
	result.Universe = univ.Count()

	var matches []*contracts.Match
	if univ.Count() > 0 {
		matches, result.Evaluated = p.evaluate(ctx, univ)
	}
	result.Matches = len(matches)

	for _, m := range matches {
		m.Headlines = p.enricher.Headlines(ctx, m.Symbol.Name)
	}

	rep := p.assembler.Assemble(univ, matches, p.policy.Name)
	result.Report = rep

	if err := p.sink.Send(ctx, rep.Text); err != nil {
		// The report was produced; delivery failure does not fail the run
		p.logger.WithError(err).Error("Report delivery failed")
	} else {
		result.Delivered = true
	}

	result.FinishedAt = time.Now()
	p.logger.WithFields(map[string]interface{}{
		"universe":  result.Universe,
		"evaluated": result.Evaluated,
		"matches":   result.Matches,
		"delivered": result.Delivered,
		"took":      result.FinishedAt.Sub(result.StartedAt).String(),
	}).Info("Screening run finished")
	return result, nil
}

// evaluate fetches series and runs the policy over every candidate with a
// bounded worker pool. Matches come back unordered; ranking is the
// assembler's job
func (p *Pipeline) evaluate(ctx context.Context, univ *contracts.Universe) ([]*contracts.Match, int) {
	required := indicator.RequiredBars(p.params)
	fetched := p.store.Fetch(ctx, univ.Symbols, required, required)

	var candidates []contracts.Symbol
	for _, sym := range univ.Symbols {
		if err, failed := fetched.Failures[sym.Code]; failed {
			if isInsufficient(err) {
				univ.Exclude(sym.Code, reasonShortHistory)
			} else {
				univ.Exclude(sym.Code, reasonUnavailable)
			}
			continue
		}
		candidates = append(candidates, sym)
	}

	symbolCh := make(chan contracts.Symbol, len(candidates))
	outcomeCh := make(chan evalOutcome, len(candidates))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.evalWorker(ctx, symbolCh, outcomeCh, fetched.Series)
		}()
	}

	for _, sym := range candidates {
		symbolCh <- sym
	}
	close(symbolCh)

	go func() {
		wg.Wait()
		close(outcomeCh)
	}()

	var matches []*contracts.Match
	evaluated := 0
	for outcome := range outcomeCh {
		evaluated++
		if outcome.match != nil {
			matches = append(matches, outcome.match)
		} else if outcome.reason != "" {
			univ.Exclude(outcome.code, outcome.reason)
		}
	}

	p.logger.WithFields(map[string]interface{}{
		"candidates": len(candidates),
		"evaluated":  evaluated,
		"matches":    len(matches),
	}).Info("Rule evaluation done")
	return matches, evaluated
}

// evalWorker derives indicators and applies the policy, one symbol at a time
func (p *Pipeline) evalWorker(ctx context.Context, symbolCh <-chan contracts.Symbol, outcomeCh chan<- evalOutcome, allSeries map[string]*contracts.PriceSeries) {
	for sym := range symbolCh {
		select {
		case <-ctx.Done():
			outcomeCh <- evalOutcome{code: sym.Code, reason: reasonUnavailable}
			continue
		default:
		}

		snap, err := indicator.Derive(allSeries[sym.Code], p.params)
		if err != nil {
			p.logger.WithError(err).WithField("code", sym.Code).Warn("Indicator derivation failed")
			outcomeCh <- evalOutcome{code: sym.Code, reason: reasonShortHistory}
			continue
		}
		if err := p.policy.Compatible(snap); err != nil {
			outcomeCh <- evalOutcome{code: sym.Code, reason: reasonIncompatible}
			continue
		}

		side := p.sideData(ctx, sym)

		matched, fired := p.policy.Evaluate(snap, side)
		if !matched {
			outcomeCh <- evalOutcome{code: sym.Code}
			continue
		}

		outcomeCh <- evalOutcome{code: sym.Code, match: &contracts.Match{
			Symbol:     sym,
			Snapshot:   snap,
			FiredRules: fired,
		}}
	}
}

// sideData fetches institutional flows and balance-sheet figures when the
// policy reads them. Each section degrades to unavailable on its own
func (p *Pipeline) sideData(ctx context.Context, sym contracts.Symbol) *contracts.SideData {
	if !p.policy.NeedsSideData() {
		return contracts.NoSideData(sym.Code)
	}

	side := contracts.NoSideData(sym.Code)

	// 側邊資料只有台股有
	if !sym.IsDomestic() {
		return side
	}

	callCtx := ctx
	if p.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.callTimeout)
		defer cancel()
	}

	if p.flows != nil {
		since := time.Now().AddDate(0, 0, -flowLookbackDays)
		flows, err := p.flows.Flows(callCtx, sym, since)
		if err != nil {
			p.logger.WithError(err).WithField("code", sym.Code).Warn("Flow data unavailable")
		} else {
			side.Flows = flows
			side.FlowsAvailable = true
		}
	}

	if p.fundamentals != nil {
		balance, err := p.fundamentals.Balance(callCtx, sym)
		if err != nil {
			p.logger.WithError(err).WithField("code", sym.Code).Warn("Balance sheet unavailable")
		} else {
			side.Balance = balance
			side.BalanceAvailable = true
		}
	}

	return side
}

func isInsufficient(err error) bool {
	return errors.Is(err, contracts.ErrInsufficientHistory)
}
