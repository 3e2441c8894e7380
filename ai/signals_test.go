package ai

import (
	"math"
	"testing"

	"github.com/nstehr/venture/venture-core/model"
)

func TestComputeSignals(t *testing.T) {
	brain := model.Brain{CashSafetyThreshold: 100, DebtTolerance: 0.3, UtilizationTarget: 0.7}
	ctx := model.CompanyContext{Cash: 500, WeeklyRevenue: 200, WeeklyCosts: 150, Debt: 50, Utilization: 0.9, PriceTrend: 0.3}

	s := ComputeSignals(brain, ctx)
	if s.CashSafety != 1 {
		t.Errorf("CashSafety = %f, want 1 (clamped)", s.CashSafety)
	}
	if math.Abs(s.Utilization-0.2) > 1e-9 {
		t.Errorf("Utilization = %f, want 0.2", s.Utilization)
	}
	if s.PriceTrend != 0.3 {
		t.Errorf("PriceTrend = %f, want 0.3", s.PriceTrend)
	}
	wantRatio := 50.0 / 700.0
	if math.Abs(s.DebtRatio-wantRatio) > 1e-9 {
		t.Errorf("DebtRatio = %f, want %f", s.DebtRatio, wantRatio)
	}
	if math.Abs(s.Debt-(wantRatio-0.3)) > 1e-9 {
		t.Errorf("Debt = %f, want %f", s.Debt, wantRatio-0.3)
	}
}

func TestComputeSignalsGuardsDenominators(t *testing.T) {
	tests := []struct {
		name  string
		brain model.Brain
		ctx   model.CompanyContext
		check func(model.Signals) bool
	}{
		{
			name:  "zero threshold divides by one",
			brain: model.Brain{CashSafetyThreshold: 0},
			ctx:   model.CompanyContext{Cash: 0.5},
			check: func(s model.Signals) bool { return s.CashSafety == 0.5 },
		},
		{
			name:  "negative cash clamps to -1",
			brain: model.Brain{CashSafetyThreshold: 10},
			ctx:   model.CompanyContext{Cash: -1000},
			check: func(s model.Signals) bool { return s.CashSafety == -1 },
		},
		{
			name:  "negative liquidity divides by one",
			brain: model.Brain{},
			ctx:   model.CompanyContext{Cash: -50, WeeklyRevenue: 10, Debt: 0.25},
			check: func(s model.Signals) bool { return s.DebtRatio == 0.25 },
		},
		{
			name:  "debt ratio capped at one",
			brain: model.Brain{DebtTolerance: 0},
			ctx:   model.CompanyContext{Cash: 10, Debt: 1e6},
			check: func(s model.Signals) bool { return s.DebtRatio == 1 && s.Debt == 1 },
		},
		{
			name:  "utilization delta clamped",
			brain: model.Brain{UtilizationTarget: 0.5},
			ctx:   model.CompanyContext{Utilization: 3},
			check: func(s model.Signals) bool { return s.Utilization == 1 },
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := ComputeSignals(tc.brain, tc.ctx)
			if !tc.check(s) {
				t.Errorf("unexpected signals: %+v", s)
			}
		})
	}
}

func TestComputeSignalsNonFiniteTrend(t *testing.T) {
	for _, trend := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		s := ComputeSignals(model.Brain{}, model.CompanyContext{PriceTrend: trend})
		if s.PriceTrend != 0 {
			t.Errorf("PriceTrend for %v = %f, want 0", trend, s.PriceTrend)
		}
	}
	s := ComputeSignals(model.Brain{}, model.CompanyContext{PriceTrend: -4})
	if s.PriceTrend != -1 {
		t.Errorf("PriceTrend for -4 = %f, want -1", s.PriceTrend)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{0.5, -1, 1, 0.5},
		{-1.5, -1, 1, -1},
		{1.5, -1, 1, 1},
		{0.0, 0, 1, 0.0},
	}
	for _, tc := range tests {
		got := clamp(tc.v, tc.min, tc.max)
		if got != tc.want {
			t.Errorf("clamp(%f, %f, %f) = %f, want %f", tc.v, tc.min, tc.max, got, tc.want)
		}
	}
}
