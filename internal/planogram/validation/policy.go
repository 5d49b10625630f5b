package validation

// Policy holds the business thresholds for stacking. They are UX policy and
// may be tuned per deployment.
type Policy struct {
	// CautionRatio and CriticalRatio are fill ratios (stack height after
	// stacking / row maxHeight) at which the warning band escalates.
	CautionRatio  float64 `json:"cautionRatio"`
	CriticalRatio float64 `json:"criticalRatio"`
	// SortByWidth re-orders a merged stack widest-first.
	SortByWidth bool `json:"sortByWidth"`
}

// DefaultPolicy is the 85/95% bands with widest-first stacking.
func DefaultPolicy() Policy {
	return Policy{
		CautionRatio:  0.85,
		CriticalRatio: 0.95,
		SortByWidth:   true,
	}
}
