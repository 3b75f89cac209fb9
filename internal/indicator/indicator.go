package indicator

import (
	"fmt"

	"github.com/ymlin/twscreener/internal/contracts"
)

// Params selects which indicators Derive computes
type Params struct {
	// Windows are the moving-average window lengths
	Windows []int

	// TrendOffset is how many bars back MAStat.Ago is taken from
	TrendOffset int

	// ExtremesLookback is the rolling high/low window in bars
	ExtremesLookback int

	// Volume reference windows; both exclude the current session
	ShortVolumeWindow int
	LongVolumeWindow  int
}

// DefaultParams returns the windows the built-in policies need
func DefaultParams() Params {
	return Params{
		Windows:           []int{20, 60, 200},
		TrendOffset:       5,
		ExtremesLookback:  240,
		ShortVolumeWindow: 5,
		LongVolumeWindow:  20,
	}
}

// RequiredBars returns the minimum series length Derive needs for p.
// The series store filters shorter series out before evaluation
func RequiredBars(p Params) int {
	required := 2 // close and previous close
	for _, w := range p.Windows {
		// MA at the previous bar needs w+1, at the trend offset w+offset
		need := w + 1
		if p.TrendOffset+w > need {
			need = p.TrendOffset + w
		}
		if need > required {
			required = need
		}
	}
	if p.ExtremesLookback > required {
		required = p.ExtremesLookback
	}
	// +1: the reference windows exclude the current session
	if p.LongVolumeWindow+1 > required {
		required = p.LongVolumeWindow + 1
	}
	if p.ShortVolumeWindow+1 > required {
		required = p.ShortVolumeWindow + 1
	}
	return required
}

// Derive computes an IndicatorSnapshot from a series. Pure function: no I/O,
// deterministic, the snapshot never changes after this returns
func Derive(series *contracts.PriceSeries, p Params) (*contracts.IndicatorSnapshot, error) {
	n := series.Len()
	if required := RequiredBars(p); n < required {
		return nil, fmt.Errorf("%w: %s has %d bars, need %d",
			contracts.ErrInsufficientHistory, series.Code, n, required)
	}

	bars := series.Bars
	last := bars[n-1]

	snap := &contracts.IndicatorSnapshot{
		Code:             series.Code,
		AsOf:             last.Date,
		Close:            last.Close,
		PrevClose:        bars[n-2].Close,
		MA:               make(map[int]contracts.MAStat, len(p.Windows)),
		TrendOffset:      p.TrendOffset,
		ExtremesLookback: p.ExtremesLookback,
		Volume:           last.Volume,
		ShortWindow:      p.ShortVolumeWindow,
		LongWindow:       p.LongVolumeWindow,
	}

	for _, w := range p.Windows {
		snap.MA[w] = contracts.MAStat{
			Current: meanClose(bars, n, w),
			Prev:    meanClose(bars, n-1, w),
			Ago:     meanClose(bars, n-p.TrendOffset, w),
		}
	}

	snap.HighestClose, snap.LowestClose = closeExtremes(bars, n, p.ExtremesLookback)

	// Reference windows end at the bar before the current session
	snap.AvgVolumeShort = meanVolume(bars, n-1, p.ShortVolumeWindow)
	snap.AvgVolumeLong = meanVolume(bars, n-1, p.LongVolumeWindow)

	return snap, nil
}

// meanClose is the arithmetic mean of the w closes ending at bar index end-1
func meanClose(bars []contracts.Bar, end, w int) float64 {
	var sum float64
	for i := end - w; i < end; i++ {
		sum += bars[i].Close
	}
	return sum / float64(w)
}

// meanVolume is the arithmetic mean of the w volumes ending at bar index end-1
func meanVolume(bars []contracts.Bar, end, w int) float64 {
	var sum float64
	for i := end - w; i < end; i++ {
		sum += float64(bars[i].Volume)
	}
	return sum / float64(w)
}

// closeExtremes returns the max and min close over the trailing lookback bars
func closeExtremes(bars []contracts.Bar, end, lookback int) (high, low float64) {
	high = bars[end-lookback].Close
	low = high
	for i := end - lookback + 1; i < end; i++ {
		c := bars[i].Close
		if c > high {
			high = c
		}
		if c < low {
			low = c
		}
	}
	return high, low
}
