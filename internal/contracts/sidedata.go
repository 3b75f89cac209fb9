package contracts

import "time"

// FlowCategory names an institutional investor category (三大法人)
type FlowCategory string

const (
	FlowForeign FlowCategory = "foreign" // 外資
	FlowTrust   FlowCategory = "trust"   // 投信
	FlowDealer  FlowCategory = "dealer"  // 自營商
)

// FlowRecord is one session of institutional net buy/sell, in shares
type FlowRecord struct {
	Date       time.Time
	ForeignNet int64
	TrustNet   int64
	DealerNet  int64
}

// Net returns the net amount for a category
func (r FlowRecord) Net(cat FlowCategory) int64 {
	switch cat {
	case FlowForeign:
		return r.ForeignNet
	case FlowTrust:
		return r.TrustNet
	case FlowDealer:
		return r.DealerNet
	default:
		return 0
	}
}

// BalanceSheet holds the balance-sheet figures screening rules use, in TWD thousands
type BalanceSheet struct {
	Cash      int64 // 現金及約當現金
	TotalDebt int64 // 總負債
}

// SideData carries externally supplied per-symbol facts. Each section has its
// own availability flag: "unavailable" is not the same as "zero"
type SideData struct {
	Code string

	// Flows is ordered newest session first
	Flows          []FlowRecord
	FlowsAvailable bool

	Balance          *BalanceSheet
	BalanceAvailable bool
}

// NoSideData returns an explicitly-unavailable SideData for a symbol
func NoSideData(code string) *SideData {
	return &SideData{Code: code}
}

// NetBuyDays counts sessions with positive net buying by a category over the
// latest n sessions. Returns ok=false when flows are unavailable or cover
// fewer than n sessions
func (d *SideData) NetBuyDays(cat FlowCategory, n int) (int, bool) {
	if d == nil || !d.FlowsAvailable || len(d.Flows) < n {
		return 0, false
	}
	days := 0
	for _, rec := range d.Flows[:n] {
		if rec.Net(cat) > 0 {
			days++
		}
	}
	return days, true
}

// CashExceedsDebt reports whether cash on hand covers total debt.
// ok=false when balance-sheet data is unavailable
func (d *SideData) CashExceedsDebt() (bool, bool) {
	if d == nil || !d.BalanceAvailable || d.Balance == nil {
		return false, false
	}
	return d.Balance.Cash > d.Balance.TotalDebt, true
}
