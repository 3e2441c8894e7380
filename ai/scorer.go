package ai

import (
	"log/slog"
	"math"
	"sort"

	"github.com/nstehr/venture/venture-core/model"
)

// intentScores holds the base linear combination for each intent. Each one
// rises when its driving signal moves strongly in the favoured direction.
var intentScores = [model.NumIntents]func(s model.Signals) float64{
	model.Hold: func(s model.Signals) float64 {
		return -0.2*math.Abs(s.Utilization) - 0.1*math.Abs(s.PriceTrend)
	},
	model.ExpandCapacity: func(s model.Signals) float64 {
		return 0.6*s.Utilization + 0.4*s.PriceTrend + 0.2*s.CashSafety
	},
	model.OptimizeCosts: func(s model.Signals) float64 {
		return -0.4*s.CashSafety - 0.3*s.Utilization + 0.2*s.Debt
	},
	model.SeekContracts: func(s model.Signals) float64 {
		return -0.5*s.Utilization + 0.2*s.CashSafety - 0.2*s.PriceTrend
	},
	model.IntegrateSupply: func(s model.Signals) float64 {
		return 0.4*s.CashSafety - 0.3*s.PriceTrend + 0.1*s.Utilization
	},
	model.UpgradeQuality: func(s model.Signals) float64 {
		return 0.3*s.CashSafety - 0.4*s.PriceTrend + 0.1*s.Utilization
	},
	model.PayDownDebt: func(s model.Signals) float64 {
		return 0.6*s.Debt - 0.2*s.CashSafety
	},
}

// ScoreDecisions scores each candidate intent for the brain's company and
// returns one decision per valid candidate, highest score first. Equal
// scores keep candidate order.
func ScoreDecisions(b model.Brain, c model.CompanyContext, candidates []model.Intent) []model.Decision {
	sig := ComputeSignals(b, c)
	out := make([]model.Decision, 0, len(candidates))
	for _, intent := range candidates {
		if int(intent) >= model.NumIntents {
			slog.Warn("skipping unknown intent", "company", b.CompanyID, "intent", intent)
			continue
		}
		s := sig
		out = append(out, model.Decision{
			CompanyID: b.CompanyID,
			Intent:    intent,
			Score:     intentScores[intent](sig) + Bias(b.Archetype, intent),
			Signals:   &s,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
