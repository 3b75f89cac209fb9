package contracts

import (
	"sort"
	"strings"
	"time"
)

// Symbol identifies one tradable equity
// 識別鍵是 Code,Name 只用於顯示
type Symbol struct {
	Code   string // exchange code, e.g. "2330", or a foreign ticker like "NVDA"
	Name   string // display name, e.g. "台積電"
	Market string // "TWSE", "TPEX" or "US"
}

// ChartTicker returns the symbol in chart-API notation
// TWSE codes get a .TW suffix, TPEX codes .TWO, foreign tickers pass through
func (s Symbol) ChartTicker() string {
	switch s.Market {
	case "TWSE":
		return s.Code + ".TW"
	case "TPEX":
		return s.Code + ".TWO"
	default:
		return s.Code
	}
}

// IsDomestic reports whether the symbol trades on a Taiwan exchange
func (s Symbol) IsDomestic() bool {
	return s.Market == "TWSE" || s.Market == "TPEX"
}

// GuessMarket classifies a raw code: pure digits are assumed TWSE-listed
func GuessMarket(code string) string {
	for _, r := range code {
		if r < '0' || r > '9' {
			return "US"
		}
	}
	return "TWSE"
}

// Universe is the candidate symbol set for one run
type Universe struct {
	Date     time.Time
	Symbols  []Symbol
	Excluded map[string]string // code -> exclusion reason
	Sources  map[string]int    // source name -> symbols contributed
}

// NewUniverse creates an empty universe for the given run date
func NewUniverse(date time.Time) *Universe {
	return &Universe{
		Date:     date,
		Symbols:  make([]Symbol, 0),
		Excluded: make(map[string]string),
		Sources:  make(map[string]int),
	}
}

// Add appends a symbol unless its code is already present
func (u *Universe) Add(sym Symbol) bool {
	sym.Code = strings.TrimSpace(sym.Code)
	if sym.Code == "" {
		return false
	}
	for _, existing := range u.Symbols {
		if existing.Code == sym.Code {
			return false
		}
	}
	u.Symbols = append(u.Symbols, sym)
	return true
}

// Exclude records a symbol dropped before evaluation, with a reason
func (u *Universe) Exclude(code, reason string) {
	u.Excluded[code] = reason
}

// Contains checks if a code is in the universe
func (u *Universe) Contains(code string) bool {
	for _, sym := range u.Symbols {
		if sym.Code == code {
			return true
		}
	}
	return false
}

// Count returns the number of candidate symbols
func (u *Universe) Count() int {
	return len(u.Symbols)
}

// SortByCode orders symbols by code for deterministic processing
func (u *Universe) SortByCode() {
	sort.Slice(u.Symbols, func(i, j int) bool {
		return u.Symbols[i].Code < u.Symbols[j].Code
	})
}
