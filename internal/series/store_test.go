package series

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ymlin/twscreener/internal/contracts"
	"github.com/ymlin/twscreener/pkg/logger"
)

// fakeProvider scripts batch and single-symbol behavior per code
type fakeProvider struct {
	batch      map[string]*contracts.PriceSeries
	batchErr   error
	single     map[string]*contracts.PriceSeries
	singleErr  map[string]error
	oneCalls   []string
	batchCalls int
}

func (f *fakeProvider) History(_ context.Context, _ []contracts.Symbol, _ int) (map[string]*contracts.PriceSeries, error) {
	f.batchCalls++
	return f.batch, f.batchErr
}

func (f *fakeProvider) HistoryOne(_ context.Context, sym contracts.Symbol, _ int) (*contracts.PriceSeries, error) {
	f.oneCalls = append(f.oneCalls, sym.Code)
	if err, ok := f.singleErr[sym.Code]; ok {
		return nil, err
	}
	return f.single[sym.Code], nil
}

func flatSeries(code string, bars int) *contracts.PriceSeries {
	s := &contracts.PriceSeries{Code: code}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < bars; i++ {
		s.Bars = append(s.Bars, contracts.Bar{
			Date: base.AddDate(0, 0, i), Open: 100, High: 100, Low: 100, Close: 100, Volume: 1000,
		})
	}
	return s
}

func syms(codes ...string) []contracts.Symbol {
	out := make([]contracts.Symbol, 0, len(codes))
	for _, c := range codes {
		out = append(out, contracts.Symbol{Code: c, Market: "TWSE"})
	}
	return out
}

func TestFetchBatchOnly(t *testing.T) {
	p := &fakeProvider{batch: map[string]*contracts.PriceSeries{
		"2330": flatSeries("2330", 250),
		"2317": flatSeries("2317", 250),
	}}

	st := NewStore(p, 0, logger.NewNop())
	res := st.Fetch(context.Background(), syms("2330", "2317"), 201, 250)

	if len(res.Series) != 2 || len(res.Failures) != 0 {
		t.Fatalf("got %d series / %d failures, want 2 / 0", len(res.Series), len(res.Failures))
	}
	if len(p.oneCalls) != 0 {
		t.Errorf("single fetches = %v, want none when batch covers everything", p.oneCalls)
	}
}

func TestFetchFallsBackForMissingSymbols(t *testing.T) {
	p := &fakeProvider{
		batch:  map[string]*contracts.PriceSeries{"2330": flatSeries("2330", 250)},
		single: map[string]*contracts.PriceSeries{"NVDA": flatSeries("NVDA", 250)},
	}

	st := NewStore(p, 0, logger.NewNop())
	res := st.Fetch(context.Background(), syms("2330", "NVDA"), 201, 250)

	if len(res.Series) != 2 {
		t.Fatalf("got %d series, want 2", len(res.Series))
	}
	if len(p.oneCalls) != 1 || p.oneCalls[0] != "NVDA" {
		t.Errorf("single fetches = %v, want only NVDA", p.oneCalls)
	}
}

func TestFetchBatchFailureFallsBackForAll(t *testing.T) {
	p := &fakeProvider{
		batchErr: errors.New("endpoint gone"),
		single: map[string]*contracts.PriceSeries{
			"2330": flatSeries("2330", 250),
			"2317": flatSeries("2317", 250),
		},
	}

	st := NewStore(p, 0, logger.NewNop())
	res := st.Fetch(context.Background(), syms("2330", "2317"), 201, 250)

	if len(res.Series) != 2 {
		t.Fatalf("got %d series, want 2 via fallback", len(res.Series))
	}
	if len(p.oneCalls) != 2 {
		t.Errorf("single fetches = %v, want both symbols", p.oneCalls)
	}
}

func TestFetchShortSeriesFails(t *testing.T) {
	p := &fakeProvider{batch: map[string]*contracts.PriceSeries{
		"6488": flatSeries("6488", 90), // young listing
	}}

	st := NewStore(p, 0, logger.NewNop())
	res := st.Fetch(context.Background(), syms("6488"), 201, 250)

	err, ok := res.Failures["6488"]
	if !ok {
		t.Fatal("want a failure for the short series")
	}
	if !errors.Is(err, contracts.ErrInsufficientHistory) {
		t.Errorf("failure = %v, want ErrInsufficientHistory", err)
	}
}

func TestFetchUnavailableSymbol(t *testing.T) {
	p := &fakeProvider{
		singleErr: map[string]error{"9999": errors.New("404")},
	}

	st := NewStore(p, 0, logger.NewNop())
	res := st.Fetch(context.Background(), syms("9999"), 201, 250)

	if !errors.Is(res.Failures["9999"], contracts.ErrUnavailable) {
		t.Errorf("failure = %v, want ErrUnavailable", res.Failures["9999"])
	}
}

func TestFetchContextCancelDuringFallback(t *testing.T) {
	p := &fakeProvider{
		batchErr: errors.New("down"),
		single: map[string]*contracts.PriceSeries{
			"2330": flatSeries("2330", 250),
			"2317": flatSeries("2317", 250),
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	st := NewStore(p, 50*time.Millisecond, logger.NewNop())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	res := st.Fetch(ctx, syms("2330", "2317"), 201, 250)

	// First symbol fetched before the pacing wait; the second fails on cancel
	if len(res.Series)+len(res.Failures) != 2 {
		t.Fatalf("every symbol needs an outcome: %d series, %d failures", len(res.Series), len(res.Failures))
	}
	if !errors.Is(res.Failures["2317"], contracts.ErrUnavailable) {
		t.Errorf("canceled symbol failure = %v, want ErrUnavailable", res.Failures["2317"])
	}
}
