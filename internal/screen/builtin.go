package screen

import (
	"fmt"
	"sort"

	"github.com/ymlin/twscreener/internal/contracts"
)

// Built-in policies. These encode the strategy variants the screener grew out
// of; a POLICY_FILE overrides them entirely
func builtins() map[string]*Policy {
	return map[string]*Policy{
		// Long-term base breaking out: price just crossed MA200 while the
		// average itself is not falling, confirmed by volume, not chasing
		"ma200-breakout": {
			Name: "ma200-breakout",
			Predicates: []Predicate{
				Crossover(200),
				MATrend(200, 0.005),
				VolumeSurge(1.5),
				UnderHigh(0.95),
			},
		},

		// Pullback to the monthly line in an intact medium-term uptrend
		"pullback-ma20": {
			Name: "pullback-ma20",
			Predicates: []Predicate{
				NearMA(20, 3.0),
				MATrend(60, 0.005),
				VolumeTrend(),
				AboveLowAtMost(0.60),
			},
		},

		// Institutional accumulation: 投信 buying two sessions running in a
		// name with a solid balance sheet, before the move has run away
		"trust-accumulation": {
			Name: "trust-accumulation",
			Predicates: []Predicate{
				FlowStreak(contracts.FlowTrust, 2, 2),
				CashOverDebt(),
				UnderHigh(0.85),
				MATrend(20, 0.01),
			},
		},
	}
}

// Builtin returns a named built-in policy
func Builtin(name string) (*Policy, error) {
	p, ok := builtins()[name]
	if !ok {
		return nil, fmt.Errorf("unknown built-in policy: %s (have: %v)", name, BuiltinNames())
	}
	return p, nil
}

// BuiltinNames lists the built-in policy names, sorted
func BuiltinNames() []string {
	names := make([]string, 0)
	for name := range builtins() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
