package model

import "slices"

// ResourceKind names the countable inventories a company holds.
type ResourceKind byte

const (
	Asset   ResourceKind = 0 // stock, storage capacity, land
	Staff   ResourceKind = 1 // FTE per role
	Machine ResourceKind = 2
	Vehicle ResourceKind = 3
)

func (k ResourceKind) String() string {
	switch k {
	case Asset:
		return "asset"
	case Staff:
		return "staff"
	case Machine:
		return "machine"
	case Vehicle:
		return "vehicle"
	}
	return "unknown"
}

// CompanyState is the per-tick snapshot the unlock engine reads.
// The simulation rebuilds it every tick; nothing in this module mutates it.
type CompanyState struct {
	CompanyID      string             `json:"companyId"`
	Assets         map[string]float64 `json:"assets,omitempty"`
	Staff          map[string]float64 `json:"staff,omitempty"`
	Machines       map[string]float64 `json:"machines,omitempty"`
	Vehicles       map[string]float64 `json:"vehicles,omitempty"`
	Upgrades       []string           `json:"upgrades,omitempty"`
	Scores         map[string]float64 `json:"scores,omitempty"`
	Flags          map[string]bool    `json:"flags,omitempty"`
	ActiveProducts []string           `json:"activeProducts,omitempty"`
}

// Quantity returns the stored count for id, or 0 when absent. Nil maps read as empty.
func (s CompanyState) Quantity(kind ResourceKind, id string) float64 {
	switch kind {
	case Asset:
		return s.Assets[id]
	case Staff:
		return s.Staff[id]
	case Machine:
		return s.Machines[id]
	case Vehicle:
		return s.Vehicles[id]
	}
	return 0
}

func (s CompanyState) Score(metric string) float64 { return s.Scores[metric] }

func (s CompanyState) Flag(id string) bool { return s.Flags[id] }

func (s CompanyState) HasUpgrade(id string) bool { return slices.Contains(s.Upgrades, id) }

func (s CompanyState) IsActive(sku string) bool { return slices.Contains(s.ActiveProducts, sku) }
