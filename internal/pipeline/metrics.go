package pipeline

// CostSavingsMetrics aggregates cost accounting over a batch of outcomes.
// It is a pure projection over the batch, not process-wide counters.
type CostSavingsMetrics struct {
	TotalPDFsProcessed int     `json:"total_pdfs_processed"`
	FreeSuccessCount   int     `json:"free_success_count"`
	FreeFailCount      int     `json:"free_fail_count"`
	FreeSuccessRate    float64 `json:"free_success_rate"` // percent
	CostWithoutFree    float64 `json:"cost_without_free"` // USD if every PDF used the paid service
	ActualCost         float64 `json:"actual_cost"`       // USD, always 0 with the free method
	Savings            float64 `json:"savings"`           // USD
	SavingsPercentage  float64 `json:"savings_percentage"`
}

// CostSavings computes batch metrics from individual outcomes.
func CostSavings(outcomes []Outcome) CostSavingsMetrics {
	total := len(outcomes)

	var success int
	for _, o := range outcomes {
		if o.Success {
			success++
		}
	}

	m := CostSavingsMetrics{
		TotalPDFsProcessed: total,
		FreeSuccessCount:   success,
		FreeFailCount:      total - success,
		CostWithoutFree:    float64(total) * DocumentAICostPerPDF,
		ActualCost:         0,
		SavingsPercentage:  100, // no paid path exists, so the whole cost is saved
	}
	m.Savings = m.CostWithoutFree

	if total > 0 {
		m.FreeSuccessRate = float64(success) / float64(total) * 100
	}

	return m
}
