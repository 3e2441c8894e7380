package rules

import (
	"fmt"

	"github.com/nstehr/venture/venture-core/model"
)

// StateView is what a niche exposes to the evaluator. model.CompanyState
// implements it; niches with a bespoke state shape can adapt to it instead.
type StateView interface {
	Quantity(kind model.ResourceKind, id string) float64
	Score(metric string) float64
	Flag(id string) bool
	HasUpgrade(id string) bool
	IsActive(sku string) bool
}

// Predicate is a single testable condition on a company's state.
type Predicate interface {
	Holds(s StateView) bool
}

// QuantityAtLeast requires at least Min units of an asset, staff role,
// machine, or vehicle. Negative stored quantities count as zero.
type QuantityAtLeast struct {
	Kind model.ResourceKind
	ID   string
	Min  float64
}

func (p QuantityAtLeast) Holds(s StateView) bool {
	return max(0, s.Quantity(p.Kind, p.ID)) >= p.Min
}

func (p QuantityAtLeast) String() string {
	return fmt.Sprintf("%s %s >= %g", p.Kind, p.ID, p.Min)
}

// ScalarAtLeast requires a score (compliance, reputation, health...) of at least Min.
type ScalarAtLeast struct {
	Metric string
	Min    float64
}

func (p ScalarAtLeast) Holds(s StateView) bool {
	return s.Score(p.Metric) >= p.Min
}

func (p ScalarAtLeast) String() string {
	return fmt.Sprintf("score %s >= %g", p.Metric, p.Min)
}

type HasUpgrade struct {
	ID string
}

func (p HasUpgrade) Holds(s StateView) bool { return s.HasUpgrade(p.ID) }

func (p HasUpgrade) String() string { return "upgrade " + p.ID }

// BooleanFlag requires the named flag to be set.
type BooleanFlag struct {
	ID string
}

func (p BooleanFlag) Holds(s StateView) bool { return s.Flag(p.ID) }

func (p BooleanFlag) String() string { return "flag " + p.ID }
