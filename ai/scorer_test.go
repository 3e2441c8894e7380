package ai

import (
	"math"
	"testing"

	"github.com/nstehr/venture/venture-core/model"
)

func expansionistScenario() (model.Brain, model.CompanyContext) {
	brain := model.Brain{
		CompanyID:           "acme",
		Archetype:           model.Expansionist,
		CashSafetyThreshold: 100,
		DebtTolerance:       0.3,
		UtilizationTarget:   0.7,
	}
	ctx := model.CompanyContext{
		CompanyID:     "acme",
		Cash:          500,
		WeeklyRevenue: 200,
		WeeklyCosts:   150,
		Debt:          50,
		Utilization:   0.9,
		PriceTrend:    0.3,
	}
	return brain, ctx
}

func TestScoreDecisionsExpansionistPrefersExpansion(t *testing.T) {
	brain, ctx := expansionistScenario()
	got := ScoreDecisions(brain, ctx, []model.Intent{model.ExpandCapacity, model.OptimizeCosts, model.Hold})

	if len(got) != 3 {
		t.Fatalf("expected 3 decisions, got %d", len(got))
	}
	if got[0].Intent != model.ExpandCapacity {
		t.Fatalf("top intent = %s, want expand_capacity (scores: %+v)", got[0].Intent, got)
	}
	// 0.6*0.2 + 0.4*0.3 + 0.2*1 + 0.3 bias
	if math.Abs(got[0].Score-0.74) > 1e-9 {
		t.Errorf("expand_capacity score = %f, want 0.74", got[0].Score)
	}
	if got[1].Intent != model.Hold || got[2].Intent != model.OptimizeCosts {
		t.Errorf("order = %s, %s; want hold, optimize_costs", got[1].Intent, got[2].Intent)
	}
	for _, d := range got {
		if d.CompanyID != "acme" {
			t.Errorf("decision company = %q, want acme", d.CompanyID)
		}
		if d.Signals == nil {
			t.Errorf("%s: signals not attached", d.Intent)
		}
	}
}

func TestScoreDecisionsSortedDescending(t *testing.T) {
	brain, ctx := expansionistScenario()
	got := ScoreDecisions(brain, ctx, model.AllIntents())
	if len(got) != model.NumIntents {
		t.Fatalf("expected %d decisions, got %d", model.NumIntents, len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("not sorted: %s (%f) > %s (%f)", got[i].Intent, got[i].Score, got[i-1].Intent, got[i-1].Score)
		}
	}
}

func TestScoreDecisionsFormulas(t *testing.T) {
	// Conservative has no bias on these intents except hold and pay_down_debt.
	sig := model.Signals{CashSafety: 0.5, Utilization: -0.4, PriceTrend: 0.25, Debt: 0.1}
	tests := []struct {
		intent model.Intent
		want   float64
	}{
		{model.Hold, -0.2*0.4 - 0.1*0.25},
		{model.ExpandCapacity, 0.6*-0.4 + 0.4*0.25 + 0.2*0.5},
		{model.OptimizeCosts, -0.4*0.5 - 0.3*-0.4 + 0.2*0.1},
		{model.SeekContracts, -0.5*-0.4 + 0.2*0.5 - 0.2*0.25},
		{model.IntegrateSupply, 0.4*0.5 - 0.3*0.25 + 0.1*-0.4},
		{model.UpgradeQuality, 0.3*0.5 - 0.4*0.25 + 0.1*-0.4},
		{model.PayDownDebt, 0.6*0.1 - 0.2*0.5},
	}
	for _, tc := range tests {
		got := intentScores[tc.intent](sig)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("%s = %f, want %f", tc.intent, got, tc.want)
		}
	}
}

func TestScoreDecisionsAddsArchetypeBias(t *testing.T) {
	brain := model.Brain{CompanyID: "c", Archetype: model.Conservative, CashSafetyThreshold: 100}
	ctx := model.CompanyContext{CompanyID: "c", Cash: 100}

	got := ScoreDecisions(brain, ctx, []model.Intent{model.PayDownDebt})
	sig := ComputeSignals(brain, ctx)
	want := intentScores[model.PayDownDebt](sig) + 0.25
	if got[0].Score != want {
		t.Errorf("pay_down_debt score = %f, want %f", got[0].Score, want)
	}
}

func TestScoreDecisionsSkipsUnknownIntent(t *testing.T) {
	brain, ctx := expansionistScenario()
	got := ScoreDecisions(brain, ctx, []model.Intent{model.Hold, model.Intent(42)})
	if len(got) != 1 || got[0].Intent != model.Hold {
		t.Errorf("expected only hold, got %+v", got)
	}
}

func TestScoreDecisionsEmptyCandidates(t *testing.T) {
	brain, ctx := expansionistScenario()
	if got := ScoreDecisions(brain, ctx, nil); len(got) != 0 {
		t.Errorf("expected no decisions, got %d", len(got))
	}
}

func TestBias(t *testing.T) {
	if got := Bias(model.Expansionist, model.ExpandCapacity); got != 0.3 {
		t.Errorf("Bias(expansionist, expand_capacity) = %f, want 0.3", got)
	}
	if got := Bias(model.Expansionist, model.UpgradeQuality); got != 0 {
		t.Errorf("undefined bias = %f, want 0", got)
	}
	if got := Bias(model.Archetype(99), model.Hold); got != 0 {
		t.Errorf("out-of-range archetype bias = %f, want 0", got)
	}
	for _, i := range model.AllIntents() {
		if got := Bias(model.NoArchetype, i); got != 0 {
			t.Errorf("Bias(none, %s) = %f, want 0", i, got)
		}
	}
}

func TestArchetypesTable(t *testing.T) {
	list := Archetypes()
	if len(list) != model.NumArchetypes-1 {
		t.Fatalf("expected %d archetypes, got %d", model.NumArchetypes-1, len(list))
	}
	for i, a := range list {
		if int(a.ID) != i+1 {
			t.Errorf("archetype at %d has id %s", i, a.ID)
		}
		if a.Label == "" || a.Description == "" {
			t.Errorf("archetype %s missing label or description", a.ID)
		}
	}
}
