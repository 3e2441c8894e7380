package rules

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrUnknownNiche is returned when a niche id has no loaded content.
var ErrUnknownNiche = errors.New("unknown niche")

// Registry holds the compiled unlock content for every niche, keyed by id.
// Content is injected at construction; Swap replaces it wholesale, so
// readers always see one consistent rule set.
type Registry struct {
	mu     sync.RWMutex
	niches map[string]*Niche
	order  []string
}

// NewRegistry validates the niches and compiles every expr condition.
func NewRegistry(niches []Niche) (*Registry, error) {
	byID, order, err := compileNiches(niches)
	if err != nil {
		return nil, err
	}
	return &Registry{niches: byID, order: order}, nil
}

// Swap atomically replaces the loaded content. Compiles first; if
// compilation fails the old content remains active.
func (r *Registry) Swap(niches []Niche) error {
	byID, order, err := compileNiches(niches)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.niches = byID
	r.order = order
	r.mu.Unlock()
	slog.Info("niche content swapped", "count", len(order), "niches", order)
	return nil
}

// Niche returns the content for id.
func (r *Registry) Niche(id string) (*Niche, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.niches[id]
	return n, ok
}

// Niches returns every niche in load order.
func (r *Registry) Niches() []*Niche {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Niche, len(r.order))
	for i, id := range r.order {
		out[i] = r.niches[id]
	}
	return out
}

// UnlockedProducts resolves the unlocked SKUs of niche nicheID for state.
func (r *Registry) UnlockedProducts(nicheID string, state StateView) ([]string, error) {
	n, ok := r.Niche(nicheID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNiche, nicheID)
	}
	skus := n.UnlockedProducts(state)
	slog.Debug("unlocks resolved", "niche", nicheID, "count", len(skus))
	return skus, nil
}

// AvailableUpgrades lists the upgrades of niche nicheID state could acquire next.
func (r *Registry) AvailableUpgrades(nicheID string, state StateView) ([]string, error) {
	n, ok := r.Niche(nicheID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNiche, nicheID)
	}
	return n.AvailableUpgrades(state), nil
}

func compileNiches(niches []Niche) (map[string]*Niche, []string, error) {
	byID := make(map[string]*Niche, len(niches))
	order := make([]string, 0, len(niches))
	for i := range niches {
		n := niches[i]
		if n.ID == "" {
			return nil, nil, fmt.Errorf("niche at index %d has no id", i)
		}
		if _, dup := byID[n.ID]; dup {
			return nil, nil, fmt.Errorf("duplicate niche %q", n.ID)
		}
		if err := validateNiche(&n); err != nil {
			return nil, nil, fmt.Errorf("niche %s: %w", n.ID, err)
		}
		byID[n.ID] = &n
		order = append(order, n.ID)
	}
	return byID, order, nil
}

func validateNiche(n *Niche) error {
	products := make(map[string]bool, len(n.Products))
	for _, p := range n.Products {
		if p.SKU == "" {
			return errors.New("product with empty sku")
		}
		if products[p.SKU] {
			return fmt.Errorf("duplicate product %q", p.SKU)
		}
		products[p.SKU] = true
	}

	gated := make(map[string]bool, len(n.Unlocks))
	for _, u := range n.Unlocks {
		if !products[u.SKU] {
			slog.Warn("unlock for sku missing from product table", "niche", n.ID, "sku", u.SKU)
		}
		if gated[u.SKU] {
			slog.Warn("sku has more than one unlock entry", "niche", n.ID, "sku", u.SKU)
		}
		gated[u.SKU] = true
		if u.StartingUnlocked && !u.Requires.Empty() {
			slog.Warn("starting-unlocked sku carries requirements", "niche", n.ID, "sku", u.SKU)
		}
		for _, c := range u.Requires.conditions() {
			if err := c.Compile(); err != nil {
				return fmt.Errorf("unlock %s: %w", u.SKU, err)
			}
		}
	}

	upgrades := make(map[string]bool, len(n.Upgrades))
	for _, u := range n.Upgrades {
		if upgrades[u.ID] {
			return fmt.Errorf("duplicate upgrade %q", u.ID)
		}
		upgrades[u.ID] = true
		for _, c := range u.Requires.conditions() {
			if err := c.Compile(); err != nil {
				return fmt.Errorf("upgrade %s: %w", u.ID, err)
			}
		}
	}
	for _, u := range n.Upgrades {
		for _, pre := range u.Prerequisites {
			if !upgrades[pre] {
				return fmt.Errorf("upgrade %s: unknown prerequisite %q", u.ID, pre)
			}
		}
	}

	for _, d := range n.Derived {
		if sku := derivedSKU(d); sku != "" && !gated[sku] {
			return fmt.Errorf("derived rule targets %q which has no unlock entry", sku)
		}
	}
	return nil
}
