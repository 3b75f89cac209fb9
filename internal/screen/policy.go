package screen

import (
	"fmt"
	"sort"

	"github.com/ymlin/twscreener/internal/contracts"
)

// Predicate is one named screening rule: a pure boolean function over a
// snapshot and optional side data
type Predicate struct {
	Label string
	Test  func(snap *contracts.IndicatorSnapshot, side *contracts.SideData) bool

	// window is the MA window the predicate reads, 0 if none
	window int
	// needsSideData marks predicates that read institutional/fundamental data
	needsSideData bool
}

// Policy is a named, ordered predicate list. It is configuration, not state:
// the same policy value is evaluated against every snapshot in a run
type Policy struct {
	Name       string
	Predicates []Predicate
}

// Windows returns the MA window lengths the policy reads, ascending
func (p *Policy) Windows() []int {
	seen := make(map[int]bool)
	for _, pred := range p.Predicates {
		if pred.window > 0 {
			seen[pred.window] = true
		}
	}
	windows := make([]int, 0, len(seen))
	for w := range seen {
		windows = append(windows, w)
	}
	sort.Ints(windows)
	return windows
}

// NeedsSideData reports whether any predicate reads side data
func (p *Policy) NeedsSideData() bool {
	for _, pred := range p.Predicates {
		if pred.needsSideData {
			return true
		}
	}
	return false
}

// Compatible checks that a snapshot carries every window the policy reads.
// Symbols with insufficient history never get here; this guards the contract
func (p *Policy) Compatible(snap *contracts.IndicatorSnapshot) error {
	for _, w := range p.Windows() {
		if !snap.HasWindow(w) {
			return fmt.Errorf("snapshot %s lacks MA(%d) required by policy %s", snap.Code, w, p.Name)
		}
	}
	return nil
}

// Evaluate applies every predicate in order. All must hold for a match;
// on a match the fired labels list every rule, in policy order
func (p *Policy) Evaluate(snap *contracts.IndicatorSnapshot, side *contracts.SideData) (bool, []string) {
	fired := make([]string, 0, len(p.Predicates))
	for _, pred := range p.Predicates {
		if !pred.Test(snap, side) {
			return false, nil
		}
		fired = append(fired, pred.Label)
	}
	return true, fired
}

// NearMA holds when the close sits within ±maxBiasPct of MA(window)
func NearMA(window int, maxBiasPct float64) Predicate {
	return Predicate{
		Label:  fmt.Sprintf("near(MA%d,±%.1f%%)", window, maxBiasPct),
		window: window,
		Test: func(snap *contracts.IndicatorSnapshot, _ *contracts.SideData) bool {
			bias := snap.Bias(window)
			return bias >= -maxBiasPct && bias <= maxBiasPct
		},
	}
}

// Crossover holds when the close just broke through MA(window): the previous
// close was at or below the previous MA and the current close is strictly above
func Crossover(window int) Predicate {
	return Predicate{
		Label:  fmt.Sprintf("crossover(MA%d)", window),
		window: window,
		Test: func(snap *contracts.IndicatorSnapshot, _ *contracts.SideData) bool {
			ma, ok := snap.MA[window]
			if !ok {
				return false
			}
			return snap.PrevClose <= ma.Prev && snap.Close > ma.Current
		},
	}
}

// MATrend holds when MA(window) is flat or rising: its current value is at
// least its value TrendOffset bars ago scaled by (1 - tolerance)
func MATrend(window int, tolerance float64) Predicate {
	return Predicate{
		Label:  fmt.Sprintf("trend(MA%d)", window),
		window: window,
		Test: func(snap *contracts.IndicatorSnapshot, _ *contracts.SideData) bool {
			ma, ok := snap.MA[window]
			if !ok || ma.Ago == 0 {
				return false
			}
			return ma.Current >= ma.Ago*(1-tolerance)
		},
	}
}

// UnderHigh holds when the close is at most fraction of the rolling high,
// rejecting already-extended moves
func UnderHigh(fraction float64) Predicate {
	return Predicate{
		Label: fmt.Sprintf("under_high(%.0f%%)", fraction*100),
		Test: func(snap *contracts.IndicatorSnapshot, _ *contracts.SideData) bool {
			if snap.HighestClose == 0 {
				return false
			}
			return snap.Close <= snap.HighestClose*fraction
		},
	}
}

// AboveLowAtMost holds when the close is no more than fraction above the
// rolling low, rejecting stocks that have already multiplied
func AboveLowAtMost(fraction float64) Predicate {
	return Predicate{
		Label: fmt.Sprintf("above_low(≤%.0f%%)", fraction*100),
		Test: func(snap *contracts.IndicatorSnapshot, _ *contracts.SideData) bool {
			if snap.LowestClose == 0 {
				return false
			}
			return snap.Close <= snap.LowestClose*(1+fraction)
		},
	}
}

// VolumeTrend holds when the short-window average volume exceeds the
// long-window average
func VolumeTrend() Predicate {
	return Predicate{
		Label: "vol_trend(short>long)",
		Test: func(snap *contracts.IndicatorSnapshot, _ *contracts.SideData) bool {
			return snap.AvgVolumeShort > snap.AvgVolumeLong
		},
	}
}

// VolumeSurge holds when the current session's volume is at least multiple
// times the short reference average (which excludes the current session)
func VolumeSurge(multiple float64) Predicate {
	return Predicate{
		Label: fmt.Sprintf("vol_surge(x%.1f)", multiple),
		Test: func(snap *contracts.IndicatorSnapshot, _ *contracts.SideData) bool {
			if snap.AvgVolumeShort == 0 {
				return false
			}
			return float64(snap.Volume) >= multiple*snap.AvgVolumeShort
		},
	}
}

// FlowStreak holds when an institutional category shows net buying on at
// least minDays of the last sessions sessions. Unavailable side data fails
// the predicate; it can exclude a candidate, never include one
func FlowStreak(cat contracts.FlowCategory, minDays, sessions int) Predicate {
	return Predicate{
		Label:         fmt.Sprintf("flow(%s %d/%d)", cat, minDays, sessions),
		needsSideData: true,
		Test: func(_ *contracts.IndicatorSnapshot, side *contracts.SideData) bool {
			days, ok := side.NetBuyDays(cat, sessions)
			if !ok {
				return false
			}
			return days >= minDays
		},
	}
}

// CashOverDebt holds when cash on hand exceeds total debt. Unavailable
// balance-sheet data fails the predicate
func CashOverDebt() Predicate {
	return Predicate{
		Label:         "cash>debt",
		needsSideData: true,
		Test: func(_ *contracts.IndicatorSnapshot, side *contracts.SideData) bool {
			exceeds, ok := side.CashExceedsDebt()
			return ok && exceeds
		},
	}
}
