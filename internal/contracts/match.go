package contracts

// Match is a symbol that satisfied every predicate of the active policy,
// together with the point-in-time metrics used for ranking and display
type Match struct {
	Symbol   Symbol
	Snapshot *IndicatorSnapshot

	// FiredRules names the policy predicates, in policy order
	FiredRules []string

	// Headlines is enrichment output; never empty after enrichment ran
	// (degraded enrichment leaves a single placeholder line)
	Headlines []string
}

// DistanceFromHigh is the ranking metric "how far under the rolling high"
func (m *Match) DistanceFromHigh() float64 {
	return m.Snapshot.DistanceFromHigh()
}

// VolumeRatio is the ranking metric "current volume vs short average"
func (m *Match) VolumeRatio() float64 {
	return m.Snapshot.VolumeRatio()
}
