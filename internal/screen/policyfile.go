package screen

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ymlin/twscreener/internal/contracts"
)

// policyFile is the YAML shape of a policy definition.
// A policy is data, not code: thresholds live in the file, not in per-symbol
// logic
type policyFile struct {
	Name  string     `yaml:"name"`
	Rules []ruleSpec `yaml:"rules"`
}

// ruleSpec is one rule entry; which fields apply depends on Type
type ruleSpec struct {
	Type string `yaml:"type"`

	Window     int     `yaml:"window,omitempty"`      // near_ma, crossover, ma_trend
	MaxBiasPct float64 `yaml:"max_bias_pct,omitempty"` // near_ma
	Tolerance  float64 `yaml:"tolerance,omitempty"`    // ma_trend
	Fraction   float64 `yaml:"fraction,omitempty"`     // under_high, above_low
	Multiple   float64 `yaml:"multiple,omitempty"`     // volume_surge
	Category   string  `yaml:"category,omitempty"`     // flow_streak
	MinDays    int     `yaml:"min_days,omitempty"`     // flow_streak
	Sessions   int     `yaml:"sessions,omitempty"`     // flow_streak
}

// LoadPolicyFile reads a YAML policy definition.
// KnownFields(true): a typo in a rule field fails loudly instead of screening
// with a half-applied rule
func LoadPolicyFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes and validates a YAML policy definition
func ParsePolicy(data []byte) (*Policy, error) {
	var pf policyFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}

	if pf.Name == "" {
		return nil, fmt.Errorf("policy has no name")
	}
	if len(pf.Rules) == 0 {
		return nil, fmt.Errorf("policy %s has no rules", pf.Name)
	}

	policy := &Policy{Name: pf.Name}
	for i, spec := range pf.Rules {
		pred, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("policy %s rule %d: %w", pf.Name, i+1, err)
		}
		policy.Predicates = append(policy.Predicates, pred)
	}
	return policy, nil
}

// build converts a rule spec into a predicate
func (r ruleSpec) build() (Predicate, error) {
	switch r.Type {
	case "near_ma":
		if r.Window <= 0 || r.MaxBiasPct <= 0 {
			return Predicate{}, fmt.Errorf("near_ma needs window and max_bias_pct")
		}
		return NearMA(r.Window, r.MaxBiasPct), nil

	case "crossover":
		if r.Window <= 0 {
			return Predicate{}, fmt.Errorf("crossover needs window")
		}
		return Crossover(r.Window), nil

	case "ma_trend":
		if r.Window <= 0 {
			return Predicate{}, fmt.Errorf("ma_trend needs window")
		}
		if r.Tolerance < 0 || r.Tolerance >= 1 {
			return Predicate{}, fmt.Errorf("ma_trend tolerance must be in [0,1)")
		}
		return MATrend(r.Window, r.Tolerance), nil

	case "under_high":
		if r.Fraction <= 0 || r.Fraction > 1 {
			return Predicate{}, fmt.Errorf("under_high fraction must be in (0,1]")
		}
		return UnderHigh(r.Fraction), nil

	case "above_low":
		if r.Fraction <= 0 {
			return Predicate{}, fmt.Errorf("above_low fraction must be positive")
		}
		return AboveLowAtMost(r.Fraction), nil

	case "volume_trend":
		return VolumeTrend(), nil

	case "volume_surge":
		if r.Multiple <= 0 {
			return Predicate{}, fmt.Errorf("volume_surge needs a positive multiple")
		}
		return VolumeSurge(r.Multiple), nil

	case "flow_streak":
		cat := contracts.FlowCategory(r.Category)
		switch cat {
		case contracts.FlowForeign, contracts.FlowTrust, contracts.FlowDealer:
		default:
			return Predicate{}, fmt.Errorf("flow_streak category must be foreign, trust or dealer")
		}
		if r.Sessions <= 0 || r.MinDays <= 0 || r.MinDays > r.Sessions {
			return Predicate{}, fmt.Errorf("flow_streak needs 0 < min_days <= sessions")
		}
		return FlowStreak(cat, r.MinDays, r.Sessions), nil

	case "cash_over_debt":
		return CashOverDebt(), nil

	default:
		return Predicate{}, fmt.Errorf("unknown rule type: %s", r.Type)
	}
}
