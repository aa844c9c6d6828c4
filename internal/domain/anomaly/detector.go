// Package anomaly implements the day-over-day cost spike rule.
package anomaly

import (
	"fmt"

	"github.com/diillson/aws-cost-sentinel-go/internal/domain/entity"
)

// DefaultThreshold flags a 50% or larger increase over the previous day.
const DefaultThreshold = 1.5

// Detect compares the current daily total with the previous one.
// A zero previous total never produces an anomaly and leaves Ratio unset.
// Only increases are flagged.
func Detect(current, previous, threshold float64) entity.AnomalyVerdict {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	verdict := entity.AnomalyVerdict{
		Threshold: threshold,
		Current:   current,
		Previous:  previous,
	}

	if previous == 0 {
		return verdict
	}

	ratio := current / previous
	verdict.Ratio = &ratio
	verdict.IsAnomaly = ratio >= threshold
	return verdict
}

// Message renders the verdict for the alert sink: ratio with two decimals,
// then the current and previous totals with four decimals.
func Message(v entity.AnomalyVerdict) string {
	if v.Ratio == nil {
		return fmt.Sprintf("no baseline for comparison: ratio n/a (current %.4f USD, previous %.4f USD)",
			v.Current, v.Previous)
	}

	lead := "cost within threshold"
	if v.IsAnomaly {
		lead = "cost spike detected"
	}

	return fmt.Sprintf("%s: ratio %.2f (current %.4f USD, previous %.4f USD, threshold %.2f)",
		lead, *v.Ratio, v.Current, v.Previous, v.Threshold)
}
