package entity

// BudgetInfo is the current status of one AWS budget.
type BudgetInfo struct {
	Name     string  `json:"name"`
	Limit    float64 `json:"limit"`
	Actual   float64 `json:"actual"`
	Forecast float64 `json:"forecast,omitempty"`
}

// UsedPercent returns Actual as a percentage of Limit, or 0 without a limit.
func (b BudgetInfo) UsedPercent() float64 {
	if b.Limit <= 0 {
		return 0
	}
	return b.Actual / b.Limit * 100
}

// Status classifies the budget: "exceeded" when spend passed the limit,
// "forecast over" when only the forecast does, "ok" otherwise.
func (b BudgetInfo) Status() string {
	switch {
	case b.Limit <= 0:
		return "ok"
	case b.Actual > b.Limit:
		return "exceeded"
	case b.Forecast > b.Limit:
		return "forecast over"
	default:
		return "ok"
	}
}
