package universe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ymlin/twscreener/internal/contracts"
	"github.com/ymlin/twscreener/pkg/logger"
)

type stubSource struct {
	name    string
	symbols []contracts.Symbol
	err     error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) List(_ context.Context) ([]contracts.Symbol, error) {
	return s.symbols, s.err
}

func TestBuildMergesAndDedupes(t *testing.T) {
	core := &stubSource{name: "core", symbols: []contracts.Symbol{
		{Code: "2330", Name: "台積電", Market: "TWSE"},
		{Code: "NVDA", Name: "輝達", Market: "US"},
	}}
	ranking := &stubSource{name: "ranking", symbols: []contracts.Symbol{
		{Code: "2330", Name: "台積電", Market: "TWSE"}, // already in core
		{Code: "2603", Name: "長榮", Market: "TWSE"},
	}}

	b := NewBuilder([]contracts.UniverseSource{core, ranking}, logger.NewNop())
	u := b.Build(context.Background(), time.Now())

	if u.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", u.Count())
	}
	if u.Sources["core"] != 2 || u.Sources["ranking"] != 1 {
		t.Errorf("Sources = %v, want core 2, ranking 1", u.Sources)
	}

	// SortByCode ran: deterministic order
	if u.Symbols[0].Code != "2330" || u.Symbols[1].Code != "2603" || u.Symbols[2].Code != "NVDA" {
		t.Errorf("symbols not sorted by code: %+v", u.Symbols)
	}
}

func TestBuildSurvivesFailingSource(t *testing.T) {
	core := &stubSource{name: "core", symbols: []contracts.Symbol{{Code: "2317", Name: "鴻海", Market: "TWSE"}}}
	broken := &stubSource{name: "ranking", err: errors.New("upstream down")}

	b := NewBuilder([]contracts.UniverseSource{core, broken}, logger.NewNop())
	u := b.Build(context.Background(), time.Now())

	if u.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", u.Count())
	}
	if u.Sources["ranking"] != 0 {
		t.Errorf("failed source should record 0 contributions, got %d", u.Sources["ranking"])
	}
}

func TestBuildAllSourcesFail(t *testing.T) {
	broken := &stubSource{name: "core", err: errors.New("boom")}

	b := NewBuilder([]contracts.UniverseSource{broken}, logger.NewNop())
	u := b.Build(context.Background(), time.Now())

	// An empty universe is a valid result, not an abort
	if u == nil || u.Count() != 0 {
		t.Fatalf("want empty universe, got %+v", u)
	}
}

func TestCoreSource(t *testing.T) {
	src := NewCoreSource(map[string]string{
		"2330": "台積電",
		"AAPL": "蘋果",
	})

	if src.Name() != "core" {
		t.Errorf("Name() = %s, want core", src.Name())
	}

	symbols, err := src.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(symbols) != 2 {
		t.Fatalf("got %d symbols, want 2", len(symbols))
	}
	// Deterministic order regardless of map iteration
	if symbols[0].Code != "2330" || symbols[1].Code != "AAPL" {
		t.Errorf("symbols = %+v, want 2330 then AAPL", symbols)
	}
	if symbols[0].Market != "TWSE" || symbols[1].Market != "US" {
		t.Errorf("markets = %s/%s, want TWSE/US", symbols[0].Market, symbols[1].Market)
	}
}
