package rules

// Product is a sellable SKU within a niche.
type Product struct {
	SKU  string
	Name string
	Unit string
}

// ProductUnlock gates a SKU. Entries with StartingUnlocked set are always
// unlocked and by convention carry no requirements.
type ProductUnlock struct {
	SKU              string
	StartingUnlocked bool
	Requires         Group
}

// Upgrade is a node in a niche's upgrade tree.
type Upgrade struct {
	ID            string
	Name          string
	Prerequisites []string // upgrade ids that must already be acquired
	Requires      Group
}

// Niche is one business line's static content: its product table in
// declared order, the unlock rules, the upgrade tree, and any
// niche-specific derived passes.
type Niche struct {
	ID       string
	Name     string
	Sector   string
	Products []Product
	Unlocks  []ProductUnlock
	Upgrades []Upgrade
	Derived  []DerivedRule
}

// UnlockedProducts resolves the SKUs state can currently sell, in product
// table order without duplicates. A SKU with no unlock entry is never returned.
func (n *Niche) UnlockedProducts(state StateView) []string {
	unlocked := make(map[string]bool, len(n.Unlocks))
	gated := make(map[string]bool, len(n.Unlocks))
	for _, u := range n.Unlocks {
		gated[u.SKU] = true
		if u.StartingUnlocked {
			unlocked[u.SKU] = true
		}
	}

	for _, u := range n.Unlocks {
		if unlocked[u.SKU] {
			continue
		}
		if Satisfies(state, u.Requires) {
			unlocked[u.SKU] = true
		}
	}

	// Derived passes see everything unlocked so far and may only add.
	for _, d := range n.Derived {
		d.Apply(state, unlocked)
	}

	out := make([]string, 0, len(unlocked))
	seen := make(map[string]bool, len(unlocked))
	for _, p := range n.Products {
		if !gated[p.SKU] || !unlocked[p.SKU] || seen[p.SKU] {
			continue
		}
		seen[p.SKU] = true
		out = append(out, p.SKU)
	}
	return out
}

// AvailableUpgrades lists upgrades state has not acquired yet whose
// prerequisites are all acquired and whose requirements hold, in declared order.
func (n *Niche) AvailableUpgrades(state StateView) []string {
	var out []string
	for _, u := range n.Upgrades {
		if state.HasUpgrade(u.ID) {
			continue
		}
		ready := true
		for _, pre := range u.Prerequisites {
			if !state.HasUpgrade(pre) {
				ready = false
				break
			}
		}
		if ready && Satisfies(state, u.Requires) {
			out = append(out, u.ID)
		}
	}
	return out
}

// Product looks up a SKU in the product table.
func (n *Niche) Product(sku string) (Product, bool) {
	for _, p := range n.Products {
		if p.SKU == sku {
			return p, true
		}
	}
	return Product{}, false
}
