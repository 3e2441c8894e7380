package ai

import (
	"math"

	"github.com/nstehr/venture/venture-core/model"
)

// ComputeSignals normalizes a company's raw business context into
// deviations from the brain's targets. Every signal is bounded so no single
// input can swamp the weighted sums in ScoreDecisions.
func ComputeSignals(b model.Brain, c model.CompanyContext) model.Signals {
	cashSafety := clamp((c.Cash-b.CashSafetyThreshold)/math.Max(1, b.CashSafetyThreshold), -1, 1)
	utilization := clamp(c.Utilization-b.UtilizationTarget, -1, 1)
	priceTrend := clamp(finiteOr(c.PriceTrend, 0), -1, 1)
	debtRatio := clamp(c.Debt/math.Max(1, c.Cash+c.WeeklyRevenue), 0, 1)
	debt := clamp(debtRatio-b.DebtTolerance, -1, 1)

	return model.Signals{
		CashSafety:  cashSafety,
		Utilization: utilization,
		PriceTrend:  priceTrend,
		Debt:        debt,
		DebtRatio:   debtRatio,
	}
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOr(v, fallback float64) float64 {
	if !isFinite(v) {
		return fallback
	}
	return v
}
