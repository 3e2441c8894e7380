package ai

import "github.com/nstehr/venture/venture-core/model"

// ArchetypeInfo describes an AI personality and the additive score bias it
// applies to each intent.
type ArchetypeInfo struct {
	ID          model.Archetype
	Label       string
	Description string
	Bias        [model.NumIntents]float64
}

var archetypes = [model.NumArchetypes]ArchetypeInfo{
	model.Expansionist: {
		ID:          model.Expansionist,
		Label:       "Expansionist",
		Description: "Grows capacity whenever demand allows; tolerates leverage.",
		Bias: [model.NumIntents]float64{
			model.ExpandCapacity: 0.3,
			model.SeekContracts:  0.1,
			model.PayDownDebt:    -0.1,
		},
	},
	model.CostCutter: {
		ID:          model.CostCutter,
		Label:       "Cost Cutter",
		Description: "Squeezes margins before anything else.",
		Bias: [model.NumIntents]float64{
			model.OptimizeCosts:  0.3,
			model.Hold:           0.05,
			model.ExpandCapacity: -0.1,
		},
	},
	model.ContractHunter: {
		ID:          model.ContractHunter,
		Label:       "Contract Hunter",
		Description: "Chases guaranteed volume through supply contracts.",
		Bias: [model.NumIntents]float64{
			model.SeekContracts:  0.3,
			model.ExpandCapacity: 0.05,
		},
	},
	model.Integrator: {
		ID:          model.Integrator,
		Label:       "Vertical Integrator",
		Description: "Buys up its supply chain to control input costs.",
		Bias: [model.NumIntents]float64{
			model.IntegrateSupply: 0.3,
			model.ExpandCapacity:  0.05,
		},
	},
	model.QualityArtisan: {
		ID:          model.QualityArtisan,
		Label:       "Quality Artisan",
		Description: "Competes on quality and premium pricing, not volume.",
		Bias: [model.NumIntents]float64{
			model.UpgradeQuality: 0.3,
			model.OptimizeCosts:  -0.05,
		},
	},
	model.Conservative: {
		ID:          model.Conservative,
		Label:       "Conservative",
		Description: "Keeps the balance sheet clean and rarely moves first.",
		Bias: [model.NumIntents]float64{
			model.Hold:           0.15,
			model.PayDownDebt:    0.25,
			model.ExpandCapacity: -0.2,
		},
	},
}

// Archetypes returns every shipped archetype in id order. NoArchetype is
// not listed.
func Archetypes() []ArchetypeInfo {
	out := make([]ArchetypeInfo, model.NumArchetypes-1)
	copy(out, archetypes[model.NoArchetype+1:])
	return out
}

// Bias returns the additive bias archetype a applies to intent i,
// or 0 for NoArchetype and when either is out of range.
func Bias(a model.Archetype, i model.Intent) float64 {
	if int(a) >= model.NumArchetypes || int(i) >= model.NumIntents {
		return 0
	}
	return archetypes[a].Bias[i]
}
