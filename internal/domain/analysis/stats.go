// Package analysis turns cost records into a request for the text generation
// service and reduces its response back to plain text.
package analysis

import (
	"math"

	"github.com/diillson/aws-cost-sentinel-go/internal/domain/entity"
)

// ComputeSummaryStats aggregates the costs that are present. The standard
// deviation is the population one and is zero for fewer than two values.
func ComputeSummaryStats(records []entity.CostRecord) entity.SummaryStats {
	costs := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Cost != nil {
			costs = append(costs, *r.Cost)
		}
	}

	if len(costs) == 0 {
		return entity.SummaryStats{}
	}

	var total float64
	for _, c := range costs {
		total += c
	}

	stats := entity.SummaryStats{
		Count: len(costs),
		Total: total,
		Mean:  total / float64(len(costs)),
	}

	if len(costs) > 1 {
		var sq float64
		for _, c := range costs {
			d := c - stats.Mean
			sq += d * d
		}
		stats.Stdev = math.Sqrt(sq / float64(len(costs)))
	}

	return stats
}
