package rules

import "github.com/nstehr/venture/venture-core/model"

// StateEnv wraps a company state and exposes helper methods callable from
// expr conditions, e.g. `Machine("cheese_vat") >= 2 && Score("healthScore") > 0.8`.
type StateEnv struct {
	State StateView
}

func (e StateEnv) Asset(id string) float64   { return e.quantity(model.Asset, id) }
func (e StateEnv) Staff(id string) float64   { return e.quantity(model.Staff, id) }
func (e StateEnv) Machine(id string) float64 { return e.quantity(model.Machine, id) }
func (e StateEnv) Vehicle(id string) float64 { return e.quantity(model.Vehicle, id) }

func (e StateEnv) Score(metric string) float64 {
	if e.State == nil {
		return 0
	}
	return e.State.Score(metric)
}

func (e StateEnv) Flag(id string) bool {
	return e.State != nil && e.State.Flag(id)
}

func (e StateEnv) HasUpgrade(id string) bool {
	return e.State != nil && e.State.HasUpgrade(id)
}

// Active reports whether sku is currently being produced.
func (e StateEnv) Active(sku string) bool {
	return e.State != nil && e.State.IsActive(sku)
}

// quantity clamps to zero like QuantityAtLeast so conditions and structured
// predicates agree on negative stock.
func (e StateEnv) quantity(kind model.ResourceKind, id string) float64 {
	if e.State == nil {
		return 0
	}
	return max(0, e.State.Quantity(kind, id))
}
