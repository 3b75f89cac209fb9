package contracts

import (
	"context"
	"time"
)

// UniverseSource contributes symbols to a run's universe. A failing source
// contributes zero symbols; it never aborts the run
type UniverseSource interface {
	Name() string
	List(ctx context.Context) ([]Symbol, error)
}

// HistoryProvider fetches daily bars. Batch mode may partially fail; the
// returned map holds whatever succeeded. Single mode serves the fallback path
type HistoryProvider interface {
	History(ctx context.Context, symbols []Symbol, lookback int) (map[string]*PriceSeries, error)
	HistoryOne(ctx context.Context, symbol Symbol, lookback int) (*PriceSeries, error)
}

// FlowProvider fetches institutional flow records since a date, newest first
type FlowProvider interface {
	Flows(ctx context.Context, symbol Symbol, since time.Time) ([]FlowRecord, error)
}

// FundamentalsProvider fetches the latest reported balance-sheet figures
type FundamentalsProvider interface {
	Balance(ctx context.Context, symbol Symbol) (*BalanceSheet, error)
}

// NewsProvider searches recent headlines for a display-name query
type NewsProvider interface {
	Search(ctx context.Context, query string, window time.Duration, max int) ([]string, error)
}

// NotificationSink delivers the assembled report. One attempt; delivery
// failure is logged by the caller, never escalated
type NotificationSink interface {
	Send(ctx context.Context, text string) error
}
