package model

import (
	"fmt"
	"log/slog"
)

// Intent is the closed set of actions an AI company can choose each tick.
type Intent uint8

const (
	Hold Intent = iota
	ExpandCapacity
	OptimizeCosts
	SeekContracts
	IntegrateSupply
	UpgradeQuality
	PayDownDebt

	NumIntents = int(PayDownDebt) + 1
)

var intentNames = [NumIntents]string{
	Hold:            "hold",
	ExpandCapacity:  "expand_capacity",
	OptimizeCosts:   "optimize_costs",
	SeekContracts:   "seek_contracts",
	IntegrateSupply: "integrate_supply",
	UpgradeQuality:  "upgrade_quality",
	PayDownDebt:     "pay_down_debt",
}

// AllIntents returns every intent in declaration order.
func AllIntents() []Intent {
	out := make([]Intent, NumIntents)
	for i := range out {
		out[i] = Intent(i)
	}
	return out
}

func (i Intent) String() string {
	if int(i) < NumIntents {
		return intentNames[i]
	}
	return fmt.Sprintf("intent(%d)", uint8(i))
}

// ParseIntent maps a snake_case intent name to its Intent.
func ParseIntent(s string) (Intent, error) {
	for i, name := range intentNames {
		if name == s {
			return Intent(i), nil
		}
	}
	return 0, fmt.Errorf("unknown intent %q", s)
}

func (i Intent) MarshalText() ([]byte, error) {
	if int(i) >= NumIntents {
		return nil, fmt.Errorf("invalid intent %d", uint8(i))
	}
	return []byte(intentNames[i]), nil
}

func (i *Intent) UnmarshalText(b []byte) error {
	v, err := ParseIntent(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// Archetype identifies an AI personality profile.
type Archetype uint8

const (
	// NoArchetype is an unassigned or unrecognized personality; it applies no bias.
	NoArchetype Archetype = iota
	Expansionist
	CostCutter
	ContractHunter
	Integrator
	QualityArtisan
	Conservative

	NumArchetypes = int(Conservative) + 1
)

var archetypeIDs = [NumArchetypes]string{
	NoArchetype:    "",
	Expansionist:   "expansionist",
	CostCutter:     "cost_cutter",
	ContractHunter: "contract_hunter",
	Integrator:     "integrator",
	QualityArtisan: "quality_artisan",
	Conservative:   "conservative",
}

func (a Archetype) String() string {
	if a == NoArchetype {
		return "none"
	}
	if int(a) < NumArchetypes {
		return archetypeIDs[a]
	}
	return fmt.Sprintf("archetype(%d)", uint8(a))
}

// ParseArchetype maps an archetype id to its Archetype. The empty id is
// NoArchetype.
func ParseArchetype(s string) (Archetype, error) {
	for i, id := range archetypeIDs {
		if id == s {
			return Archetype(i), nil
		}
	}
	return 0, fmt.Errorf("unknown archetype %q", s)
}

func (a Archetype) MarshalText() ([]byte, error) {
	if int(a) >= NumArchetypes {
		return nil, fmt.Errorf("invalid archetype %d", uint8(a))
	}
	return []byte(archetypeIDs[a]), nil
}

// UnmarshalText decodes an unknown id as NoArchetype.
func (a *Archetype) UnmarshalText(b []byte) error {
	v, err := ParseArchetype(string(b))
	if err != nil {
		slog.Warn("unknown archetype, applying no bias", "archetype", string(b))
		v = NoArchetype
	}
	*a = v
	return nil
}

// Brain is the static per-company AI configuration. Build a new one on
// archetype reassignment rather than mutating an existing brain.
type Brain struct {
	CompanyID           string    `json:"companyId"`
	Archetype           Archetype `json:"archetype"`
	CashSafetyThreshold float64   `json:"cashSafetyThreshold"`
	DebtTolerance       float64   `json:"debtTolerance"`
	UtilizationTarget   float64   `json:"utilizationTarget"`
}

// CompanyContext is the business-state snapshot fed to the AI each tick.
type CompanyContext struct {
	CompanyID     string  `json:"companyId"`
	Cash          float64 `json:"cash"`
	WeeklyRevenue float64 `json:"weeklyRevenue"`
	WeeklyCosts   float64 `json:"weeklyCosts"`
	Debt          float64 `json:"debt"`
	Utilization   float64 `json:"utilization"`
	PriceTrend    float64 `json:"priceTrend"`
}

type WorldState struct {
	Companies []CompanyContext `json:"companies"`
}

// MarketState carries live per-company price trend overrides.
type MarketState struct {
	PriceTrends map[string]float64 `json:"priceTrends,omitempty"`
}

// Signals are the normalized inputs to decision scoring.
type Signals struct {
	CashSafety  float64 `json:"cashSafety"`
	Utilization float64 `json:"utilization"`
	PriceTrend  float64 `json:"priceTrend"`
	Debt        float64 `json:"debt"`
	DebtRatio   float64 `json:"debtRatio"`
}

// Decision is the single action chosen for one company in one tick.
type Decision struct {
	CompanyID string         `json:"companyId"`
	Intent    Intent         `json:"intent"`
	Score     float64        `json:"score"`
	Reason    string         `json:"reason,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Signals   *Signals       `json:"signals,omitempty"`
}

// Reason codes attached to degraded decisions.
const (
	ReasonNoDecisions         = "no_decisions"
	ReasonMissingCompanyState = "missing_company_state"
)
