package commands

import (
	"fmt"

	"github.com/ymlin/twscreener/internal/contracts"
	"github.com/ymlin/twscreener/internal/enrich"
	"github.com/ymlin/twscreener/internal/external/twse"
	"github.com/ymlin/twscreener/internal/external/yahoo"
	"github.com/ymlin/twscreener/internal/external/yahoonews"
	"github.com/ymlin/twscreener/internal/notify"
	"github.com/ymlin/twscreener/internal/pipeline"
	"github.com/ymlin/twscreener/internal/report"
	"github.com/ymlin/twscreener/internal/screen"
	"github.com/ymlin/twscreener/internal/series"
	"github.com/ymlin/twscreener/internal/universe"
	"github.com/ymlin/twscreener/pkg/config"
	"github.com/ymlin/twscreener/pkg/httputil"
	"github.com/ymlin/twscreener/pkg/logger"
)

// deps is everything a command needs after wiring
type deps struct {
	cfg      *config.Config
	log      *logger.Logger
	pipeline *pipeline.Pipeline
	policy   *screen.Policy
}

// wire loads configuration and assembles the pipeline
// ⭐ SSOT: 依賴注入只在這個函式
func wire() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verboseFlag {
		cfg.LogLevel = "debug"
	}
	if policyFlag != "" {
		cfg.Screener.PolicyName = policyFlag
	}

	log := logger.New(cfg)

	policy, err := resolvePolicy(cfg)
	if err != nil {
		return nil, err
	}

	// 交易所端點對流量敏感,給它限速的 client
	exchangeHTTP := httputil.New(log, cfg.Screener.CallTimeout).WithRateLimit(2, 1)
	chartHTTP := httputil.New(log, cfg.Screener.CallTimeout)
	newsHTTP := httputil.New(log, cfg.Screener.CallTimeout).DisableRetry()

	exchange := twse.NewClient(cfg.TWSE, exchangeHTTP, log)
	chart := yahoo.NewClient(cfg.Yahoo, chartHTTP, log)
	news := yahoonews.NewClient(cfg.News, newsHTTP, log)

	sources, err := buildSources(cfg, exchange)
	if err != nil {
		return nil, err
	}

	var flows contracts.FlowProvider
	var fundamentals contracts.FundamentalsProvider
	if policy.NeedsSideData() {
		flows = exchange
		fundamentals = exchange
	}

	p := pipeline.New(
		universe.NewBuilder(sources, log),
		series.NewStore(chart, cfg.Screener.FetchPace, log),
		policy,
		pipeline.Config{
			Workers:          cfg.Screener.Workers,
			CallTimeout:      cfg.Screener.CallTimeout,
			ExtremesLookback: cfg.Screener.ExtremesLookback,
		},
		flows,
		fundamentals,
		enrich.NewEnricher(news, cfg.News.Window, cfg.Screener.MaxHeadlines, log),
		report.NewAssembler(cfg.Screener.RankingKey, cfg.Screener.ReportLimit, log),
		notify.NewDiscord(cfg.Discord, httputil.New(log, cfg.Screener.CallTimeout), log),
		log,
	)

	return &deps{cfg: cfg, log: log, pipeline: p, policy: policy}, nil
}

// resolvePolicy picks the policy file when configured, built-ins otherwise
func resolvePolicy(cfg *config.Config) (*screen.Policy, error) {
	if cfg.Screener.PolicyFile != "" {
		policy, err := screen.LoadPolicyFile(cfg.Screener.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("load policy file: %w", err)
		}
		return policy, nil
	}

	policy, err := screen.Builtin(cfg.Screener.PolicyName)
	if err != nil {
		return nil, err
	}
	return policy, nil
}

// buildSources instantiates the configured universe sources, in order
func buildSources(cfg *config.Config, exchange *twse.Client) ([]contracts.UniverseSource, error) {
	sources := make([]contracts.UniverseSource, 0, len(cfg.Universe.Sources))
	for _, name := range cfg.Universe.Sources {
		switch name {
		case "core":
			sources = append(sources, universe.NewCoreSource(cfg.Universe.CoreList))
		case "ranking":
			sources = append(sources, universe.NewRankingSource(exchange, cfg.Universe.TopN))
		case "listing":
			sources = append(sources, universe.NewListingSource(exchange))
		default:
			return nil, fmt.Errorf("unknown universe source: %s", name)
		}
	}
	return sources, nil
}
