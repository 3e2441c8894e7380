package rules

// DerivedRule is a niche-specific pass applied after the generic unlock
// evaluation. Apply may add SKUs to unlocked but must never remove any.
type DerivedRule interface {
	Apply(state StateView, unlocked map[string]bool)
}

// DerivedFunc adapts a plain function to DerivedRule.
type DerivedFunc func(state StateView, unlocked map[string]bool)

func (f DerivedFunc) Apply(state StateView, unlocked map[string]bool) { f(state, unlocked) }

// ByproductRule unlocks SKU when any parent SKU is unlocked or currently
// being produced (whey from cheese, sawdust from milling...).
type ByproductRule struct {
	SKU     string
	Parents []string
}

func (r ByproductRule) Apply(state StateView, unlocked map[string]bool) {
	if unlocked[r.SKU] {
		return
	}
	for _, p := range r.Parents {
		if unlocked[p] || state.IsActive(p) {
			unlocked[r.SKU] = true
			return
		}
	}
}

// FlagRule unlocks SKU when a boolean flag such as
// waste_processing_enabled is set on the company.
type FlagRule struct {
	SKU  string
	Flag string
}

func (r FlagRule) Apply(state StateView, unlocked map[string]bool) {
	if state.Flag(r.Flag) {
		unlocked[r.SKU] = true
	}
}

// MinUnlockedRule unlocks SKU once at least Min of the listed SKUs are
// unlocked, for bundles that only make sense alongside a product line.
type MinUnlockedRule struct {
	SKU  string
	From []string
	Min  int
}

func (r MinUnlockedRule) Apply(_ StateView, unlocked map[string]bool) {
	n := 0
	for _, sku := range r.From {
		if unlocked[sku] {
			n++
		}
	}
	if r.Min > 0 && n >= r.Min {
		unlocked[r.SKU] = true
	}
}

// derivedSKU returns the SKU a built-in derived rule can add, or "" for
// opaque rules such as DerivedFunc.
func derivedSKU(d DerivedRule) string {
	switch r := d.(type) {
	case ByproductRule:
		return r.SKU
	case FlagRule:
		return r.SKU
	case MinUnlockedRule:
		return r.SKU
	}
	return ""
}
