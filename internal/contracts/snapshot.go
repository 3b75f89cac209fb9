package contracts

import "time"

// MAStat holds a moving average at three points in time:
// the latest bar, the bar before it, and trendOffset bars back
type MAStat struct {
	Current float64
	Prev    float64
	Ago     float64
}

// IndicatorSnapshot is the derived, read-only view over a series at its
// most recent bar. Values are raw floats; rounding belongs to the report
type IndicatorSnapshot struct {
	Code  string
	AsOf  time.Time
	Close float64
	// PrevClose is the close of the bar before AsOf
	PrevClose float64

	// MA is keyed by window length; all windows share the same as-of bar
	MA          map[int]MAStat
	TrendOffset int // bars back used for MAStat.Ago

	// Rolling close extremes over ExtremesLookback trailing bars
	HighestClose     float64
	LowestClose      float64
	ExtremesLookback int

	// Volume figures; the average windows exclude the current session
	Volume         int64
	AvgVolumeShort float64
	AvgVolumeLong  float64
	ShortWindow    int
	LongWindow     int
}

// Bias returns the percentage deviation of the close from MA(window)
func (s *IndicatorSnapshot) Bias(window int) float64 {
	ma, ok := s.MA[window]
	if !ok || ma.Current == 0 {
		return 0
	}
	return (s.Close - ma.Current) / ma.Current * 100
}

// VolumeRatio returns current volume over the short reference average
func (s *IndicatorSnapshot) VolumeRatio() float64 {
	if s.AvgVolumeShort == 0 {
		return 0
	}
	return float64(s.Volume) / s.AvgVolumeShort
}

// DistanceFromHigh returns how far the close sits under the rolling high,
// as a fraction of that high (0 = at the high)
func (s *IndicatorSnapshot) DistanceFromHigh() float64 {
	if s.HighestClose == 0 {
		return 0
	}
	return (s.HighestClose - s.Close) / s.HighestClose
}

// HasWindow reports whether MA(window) was derived for this snapshot
func (s *IndicatorSnapshot) HasWindow(window int) bool {
	_, ok := s.MA[window]
	return ok
}
