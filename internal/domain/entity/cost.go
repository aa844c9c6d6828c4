package entity

import "time"

// CostRecord represents the cost of a single AWS service on a single day.
// Cost is nil when the billing API returned an amount that could not be read.
type CostRecord struct {
	Date    string   `json:"date"`
	Service string   `json:"service"`
	Cost    *float64 `json:"cost"`
}

// NewCostRecord builds a record with a known cost.
func NewCostRecord(date, service string, cost float64) CostRecord {
	return CostRecord{Date: date, Service: service, Cost: &cost}
}

// DailyCost is the total cost across all services for one calendar date.
type DailyCost struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// DailyTotals sums the records per date, keeping the order in which each date
// first appears. Records with an absent cost are skipped.
func DailyTotals(records []CostRecord) []DailyCost {
	index := make(map[string]int)
	var totals []DailyCost

	for _, r := range records {
		if r.Cost == nil {
			continue
		}
		i, ok := index[r.Date]
		if !ok {
			i = len(totals)
			index[r.Date] = i
			totals = append(totals, DailyCost{Date: r.Date})
		}
		totals[i].Total += *r.Cost
	}

	return totals
}

// SummaryStats holds the local statistics sent along with the cost rows.
type SummaryStats struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
	Mean  float64 `json:"mean"`
	Stdev float64 `json:"stdev"`
}

// AnomalyVerdict is the outcome of comparing two consecutive daily totals.
// Ratio is nil when the previous total is zero.
type AnomalyVerdict struct {
	IsAnomaly bool     `json:"is_anomaly"`
	Ratio     *float64 `json:"ratio,omitempty"`
	Threshold float64  `json:"threshold"`
	Current   float64  `json:"current"`
	Previous  float64  `json:"previous"`
}

// AnalysisRequest is the prompt handed to the text generation service.
type AnalysisRequest struct {
	Prompt  string       `json:"prompt"`
	Records []CostRecord `json:"records"`
	Stats   SummaryStats `json:"stats"`
}

// CycleResult is the snapshot produced by one monitoring cycle.
type CycleResult struct {
	ID        string         `json:"id"`
	AccountID string         `json:"account_id,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	Start     time.Time      `json:"period_start"`
	End       time.Time      `json:"period_end"`
	Records   []CostRecord   `json:"records"`
	Daily     []DailyCost    `json:"daily_totals"`
	Stats     SummaryStats   `json:"stats"`
	Verdict   AnomalyVerdict `json:"verdict"`
	Message   string         `json:"message"`
	NewTotal  float64        `json:"new_total"`
	Budgets   []BudgetInfo   `json:"budgets,omitempty"`
	Report    string         `json:"report,omitempty"`
}
