package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/diillson/aws-cost-sentinel-go/internal/domain/entity"
)

// DefaultLanguage is the language the report is requested in when none is configured.
const DefaultLanguage = "Korean"

const (
	rowsStartMarker  = "=== COST_ROWS_JSON START ==="
	rowsEndMarker    = "=== COST_ROWS_JSON END ==="
	statsStartMarker = "=== SUMMARY_STATS START ==="
	statsEndMarker   = "=== SUMMARY_STATS END ==="
)

// PromptOptions tunes the wording of the analysis prompt.
type PromptOptions struct {
	Language string
}

// SortRecords returns a copy of records ordered by date, then service, then
// cost. If any date is missing or not a YYYY-MM-DD calendar date the input
// order is kept and false is returned.
func SortRecords(records []entity.CostRecord) ([]entity.CostRecord, bool) {
	sorted := make([]entity.CostRecord, len(records))
	copy(sorted, records)

	for _, r := range records {
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			return sorted, false
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Service != b.Service {
			return a.Service < b.Service
		}
		return costLess(a.Cost, b.Cost)
	})

	return sorted, true
}

func costLess(a, b *float64) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	default:
		return *a < *b
	}
}

// BuildRequest sorts the records, computes their statistics and renders the prompt.
func BuildRequest(records []entity.CostRecord, opts PromptOptions) entity.AnalysisRequest {
	sorted, _ := SortRecords(records)
	stats := ComputeSummaryStats(sorted)

	return entity.AnalysisRequest{
		Prompt:  renderPrompt(sorted, stats, opts),
		Records: sorted,
		Stats:   stats,
	}
}

// BuildPrompt is BuildRequest without the structured parts.
func BuildPrompt(records []entity.CostRecord, opts PromptOptions) string {
	return BuildRequest(records, opts).Prompt
}

func renderPrompt(rows []entity.CostRecord, stats entity.SummaryStats, opts PromptOptions) string {
	language := strings.TrimSpace(opts.Language)
	if language == "" {
		language = DefaultLanguage
	}

	var b strings.Builder

	b.WriteString("You are an AWS cost analysis expert. Below is AWS cost data broken down by service and by day.\n")
	fmt.Fprintf(&b, "Goal: write a cost analysis report in %s that an operator can understand quickly. ", language)
	b.WriteString("The format is up to you, but the report MUST include every one of the following items:\n")
	b.WriteString("  1) Anomaly detection: identify which services or dates spiked or dropped sharply compared to usual, " +
		"and justify each finding with numbers (day-over-day change, deviation from the mean, etc.).\n")
	b.WriteString("  2) Overall trend summary: summarise the total cost trend for the period (increasing, decreasing or stable) " +
		"and the services most likely driving it.\n")
	b.WriteString("  3) Action items: concrete checks the operations team should perform " +
		"(e.g. specific logs or resources to inspect, reserved instance or spot usage, S3 data transfer volume).\n")
	b.WriteString("  4) (Optional) Cost saving ideas: briefly suggest any you find.\n\n")

	b.WriteString("The sorted input rows (JSON) and the summary statistics are included below. ")
	b.WriteString("Explain figures in prose, but keep the original number in parentheses for important values.\n\n")

	b.WriteString("Suggested layout:\n")
	b.WriteString("- Summary (1-2 sentences)\n")
	b.WriteString("- Main anomalies (per item, one or two sentences plus figures)\n")
	b.WriteString("- Trend and likely causes (one or two paragraphs)\n")
	b.WriteString("- Recommended checks (numbered list)\n")
	b.WriteString("- Cost saving ideas (optional)\n\n")

	b.WriteString("Data and statistics follow.\n\n")

	b.WriteString(rowsStartMarker + "\n")
	b.WriteString(encodeJSON(rows))
	b.WriteString("\n" + rowsEndMarker + "\n\n")

	b.WriteString(statsStartMarker + "\n")
	b.WriteString(encodeJSON(stats))
	b.WriteString("\n" + statsEndMarker + "\n\n")

	b.WriteString("Notes:\n")
	b.WriteString("- Base the analysis only on the data given. Mark any conclusion that needs confirmation as an estimate.\n")
	fmt.Fprintf(&b, "- Write the result in %s.", language)

	return b.String()
}

func encodeJSON(v interface{}) string {
	if rows, ok := v.([]entity.CostRecord); ok && rows == nil {
		v = []entity.CostRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimRight(buf.String(), "\n")
}
