package progression

import (
	"math"
)

var intensityMultipliers = map[Intensity]float64{
	IntensityLow:    1.0,
	IntensityMedium: 1.5,
	IntensityHigh:   2.0,
}

// ScoringPolicy holds the scoring constants.
type ScoringPolicy struct {
	// EvidenceBonus multiplies the base EXP when evidence is attached, must be > 1.
	EvidenceBonus float64
	// WeightTrend enables the x1.1 (weight went down) / x0.9 (weight went up) modifier,
	// relative to the baseline weight stored on the activity.
	WeightTrend     bool
	WeightLossBonus float64
	WeightGainMalus float64
}

func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		EvidenceBonus:   1.2,
		WeightTrend:     true,
		WeightLossBonus: 1.1,
		WeightGainMalus: 0.9,
	}
}

// IntensityMultiplier returns the multiplier of a known intensity.
func IntensityMultiplier(i Intensity) (float64, error) {
	m, ok := intensityMultipliers[i]
	if !ok {
		return 0, newValidationError("intensity", "unknown intensity %q", i)
	}
	return m, nil
}

// ValidateActivity checks the EXP-relevant attributes of an activity.
func ValidateActivity(a Activity) error {
	if a.DurationMin <= 0 {
		return newValidationError("durationMin", "must be positive, got %d", a.DurationMin)
	}
	if !a.Intensity.IsValid() {
		return newValidationError("intensity", "unknown intensity %q", a.Intensity)
	}
	if !a.Category.IsValid() {
		return newValidationError("category", "unknown category %q", a.Category)
	}
	if a.Weight <= 0 || math.IsNaN(a.Weight) || math.IsInf(a.Weight, 0) {
		return newValidationError("weight", "must be a positive number, got %v", a.Weight)
	}
	return nil
}

// Score computes the EXP an activity is worth:
//
//	duration * intensity multiplier [* evidence bonus] [* weight trend modifier]
func Score(a Activity, policy ScoringPolicy) (float64, error) {
	if err := ValidateActivity(a); err != nil {
		return 0, err
	}

	multiplier, err := IntensityMultiplier(a.Intensity)
	if err != nil {
		return 0, err
	}

	exp := float64(a.DurationMin) * multiplier
	if a.HasEvidence {
		exp *= policy.EvidenceBonus
	}

	if policy.WeightTrend && a.BaselineWeight != nil {
		switch {
		case a.Weight < *a.BaselineWeight:
			exp *= policy.WeightLossBonus
		case a.Weight > *a.BaselineWeight:
			exp *= policy.WeightGainMalus
		}
	}

	return roundExp(exp), nil
}

// roundExp keeps EXP at 2 decimals so sums and reversals stay exact enough to compare.
func roundExp(exp float64) float64 {
	return math.Round(exp*100) / 100
}
