package indicator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/ymlin/twscreener/internal/contracts"
)

func seriesFromCloses(code string, closes []float64, volumes []int64) *contracts.PriceSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := &contracts.PriceSeries{Code: code}
	for i, c := range closes {
		var vol int64 = 1000
		if volumes != nil {
			vol = volumes[i]
		}
		p.Bars = append(p.Bars, contracts.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: vol,
		})
	}
	return p
}

func flatCloses(n int, price float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return closes
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRequiredBars(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want int
	}{
		{
			name: "dominated by MA200 plus trend offset",
			p:    Params{Windows: []int{20, 200}, TrendOffset: 5, ExtremesLookback: 100, ShortVolumeWindow: 5, LongVolumeWindow: 20},
			want: 205,
		},
		{
			name: "dominated by extremes lookback",
			p:    Params{Windows: []int{20}, TrendOffset: 5, ExtremesLookback: 240, ShortVolumeWindow: 5, LongVolumeWindow: 20},
			want: 240,
		},
		{
			name: "dominated by long volume window",
			p:    Params{Windows: []int{5}, TrendOffset: 1, ExtremesLookback: 10, ShortVolumeWindow: 5, LongVolumeWindow: 60},
			want: 61,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequiredBars(tt.p); got != tt.want {
				t.Errorf("RequiredBars() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDeriveInsufficientHistory(t *testing.T) {
	p := Params{Windows: []int{200}, TrendOffset: 5, ExtremesLookback: 200, ShortVolumeWindow: 5, LongVolumeWindow: 20}
	series := seriesFromCloses("2330", flatCloses(150, 100), nil)

	_, err := Derive(series, p)
	if !errors.Is(err, contracts.ErrInsufficientHistory) {
		t.Errorf("Derive() error = %v, want ErrInsufficientHistory", err)
	}
}

func TestDeriveFlatSeries(t *testing.T) {
	// 250 identical closes: every MA equals the price, bias 0, extremes equal
	p := DefaultParams()
	series := seriesFromCloses("2330", flatCloses(250, 500), nil)

	snap, err := Derive(series, p)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	for _, w := range []int{20, 60, 200} {
		ma := snap.MA[w]
		if !almostEqual(ma.Current, 500) || !almostEqual(ma.Prev, 500) || !almostEqual(ma.Ago, 500) {
			t.Errorf("MA(%d) = %+v, want 500 everywhere", w, ma)
		}
		if !almostEqual(snap.Bias(w), 0) {
			t.Errorf("Bias(%d) = %v, want 0", w, snap.Bias(w))
		}
	}

	if !almostEqual(snap.HighestClose, 500) || !almostEqual(snap.LowestClose, 500) {
		t.Errorf("extremes = %v/%v, want 500/500", snap.HighestClose, snap.LowestClose)
	}
	if !almostEqual(snap.VolumeRatio(), 1) {
		t.Errorf("VolumeRatio() = %v, want 1 for flat volume", snap.VolumeRatio())
	}
}

func TestDeriveTrailingMean(t *testing.T) {
	// Closes 1..30: MA(5) over the last five bars = (26+27+28+29+30)/5 = 28
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	p := Params{Windows: []int{5}, TrendOffset: 3, ExtremesLookback: 10, ShortVolumeWindow: 5, LongVolumeWindow: 20}

	snap, err := Derive(seriesFromCloses("2317", closes, nil), p)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	ma := snap.MA[5]
	if !almostEqual(ma.Current, 28) {
		t.Errorf("MA(5).Current = %v, want 28", ma.Current)
	}
	// Previous bar: (25+26+27+28+29)/5 = 27
	if !almostEqual(ma.Prev, 27) {
		t.Errorf("MA(5).Prev = %v, want 27", ma.Prev)
	}
	// Three bars back: (23+24+25+26+27)/5 = 25
	if !almostEqual(ma.Ago, 25) {
		t.Errorf("MA(5).Ago = %v, want 25", ma.Ago)
	}

	if !almostEqual(snap.Close, 30) || !almostEqual(snap.PrevClose, 29) {
		t.Errorf("Close/PrevClose = %v/%v, want 30/29", snap.Close, snap.PrevClose)
	}
	// Extremes over the last 10 bars: closes 21..30
	if !almostEqual(snap.HighestClose, 30) || !almostEqual(snap.LowestClose, 21) {
		t.Errorf("extremes = %v/%v, want 30/21", snap.HighestClose, snap.LowestClose)
	}
}

func TestDeriveVolumeExcludesCurrentSession(t *testing.T) {
	closes := flatCloses(30, 100)
	volumes := make([]int64, 30)
	for i := range volumes {
		volumes[i] = 1000
	}
	// Current session spikes; the reference average must not include it
	volumes[29] = 10_000

	p := Params{Windows: []int{5}, TrendOffset: 1, ExtremesLookback: 10, ShortVolumeWindow: 5, LongVolumeWindow: 20}
	snap, err := Derive(seriesFromCloses("2454", closes, volumes), p)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	if !almostEqual(snap.AvgVolumeShort, 1000) {
		t.Errorf("AvgVolumeShort = %v, want 1000 (current session excluded)", snap.AvgVolumeShort)
	}
	if !almostEqual(snap.AvgVolumeLong, 1000) {
		t.Errorf("AvgVolumeLong = %v, want 1000", snap.AvgVolumeLong)
	}
	if !almostEqual(snap.VolumeRatio(), 10) {
		t.Errorf("VolumeRatio() = %v, want 10", snap.VolumeRatio())
	}
}

func TestDeriveIsDeterministic(t *testing.T) {
	closes := make([]float64, 250)
	for i := range closes {
		closes[i] = 100 + float64(i%7)
	}
	series := seriesFromCloses("2603", closes, nil)
	p := DefaultParams()

	first, err := Derive(series, p)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	second, err := Derive(series, p)
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}

	if first.Close != second.Close || first.MA[200] != second.MA[200] ||
		first.HighestClose != second.HighestClose || first.AvgVolumeLong != second.AvgVolumeLong {
		t.Error("Derive() is not deterministic across calls")
	}
}
