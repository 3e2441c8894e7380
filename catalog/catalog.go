// Package catalog loads niche content tables (products, unlock rules,
// upgrade trees, derived passes) from YAML into the rules engine's types.
// The shipped niches are embedded; a directory can override them.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/nstehr/venture/venture-core/model"
	"github.com/nstehr/venture/venture-core/rules"
)

//go:embed niches/*.yaml
var embedded embed.FS

// Embedded returns the niches that ship with the binary.
func Embedded() ([]rules.Niche, error) {
	sub, err := fs.Sub(embedded, "niches")
	if err != nil {
		return nil, fmt.Errorf("embedded niches: %w", err)
	}
	return Load(sub)
}

// LoadDir reads every *.yaml file in dir.
func LoadDir(dir string) ([]rules.Niche, error) {
	return Load(os.DirFS(dir))
}

// Load parses every *.yaml file at the root of fsys, ordered by file name.
func Load(fsys fs.FS) ([]rules.Niche, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list niches: %w", err)
	}
	sort.Strings(names)

	niches := make([]rules.Niche, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read niche %s: %w", name, err)
		}
		n, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("load niche %s: %w", path.Base(name), err)
		}
		niches = append(niches, n)
	}
	return niches, nil
}

// Parse decodes a single niche document. Keys the schema doesn't know are
// ignored so content authors can add fields ahead of the engine.
func Parse(data []byte) (rules.Niche, error) {
	var doc nicheDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return rules.Niche{}, fmt.Errorf("parse yaml: %w", err)
	}
	return doc.toNiche()
}

// nicheDoc is the on-disk shape of a niche file.
type nicheDoc struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Sector   string       `yaml:"sector"`
	Products []productDoc `yaml:"products"`
	Unlocks  []unlockDoc  `yaml:"unlocks"`
	Upgrades []upgradeDoc `yaml:"upgrades"`
	Derived  []derivedDoc `yaml:"derived"`
}

type productDoc struct {
	SKU  string `yaml:"sku"`
	Name string `yaml:"name"`
	Unit string `yaml:"unit"`
}

type unlockDoc struct {
	SKU              string   `yaml:"sku"`
	StartingUnlocked bool     `yaml:"startingUnlocked"`
	Requires         groupDoc `yaml:"requires"`
}

type upgradeDoc struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Prerequisites []string `yaml:"prerequisites"`
	Requires      groupDoc `yaml:"requires"`
}

// groupDoc mirrors the requirement bag content authors write: every
// category is optional and an absent category imposes no constraint.
type groupDoc struct {
	Assets    map[string]float64 `yaml:"assets"`
	Staff     map[string]float64 `yaml:"staff"`
	Machines  map[string]float64 `yaml:"machines"`
	Vehicles  map[string]float64 `yaml:"vehicles"`
	Upgrades  []string           `yaml:"upgrades"`
	MinScores map[string]float64 `yaml:"minScores"`
	Flags     []string           `yaml:"flags"`
	When      string             `yaml:"when"`
	AnyOf     []groupDoc         `yaml:"anyOf"`
}

// derivedDoc selects one of the built-in derived passes by kind.
type derivedDoc struct {
	Kind    string   `yaml:"kind"`
	SKU     string   `yaml:"sku"`
	Parents []string `yaml:"parents"`
	Flag    string   `yaml:"flag"`
	From    []string `yaml:"from"`
	Min     int      `yaml:"min"`
}

func (d nicheDoc) toNiche() (rules.Niche, error) {
	if d.ID == "" {
		return rules.Niche{}, fmt.Errorf("missing id")
	}
	n := rules.Niche{ID: d.ID, Name: d.Name, Sector: d.Sector}

	for _, p := range d.Products {
		n.Products = append(n.Products, rules.Product{SKU: p.SKU, Name: p.Name, Unit: p.Unit})
	}
	for _, u := range d.Unlocks {
		g, err := u.Requires.toGroup()
		if err != nil {
			return rules.Niche{}, fmt.Errorf("unlock %s: %w", u.SKU, err)
		}
		n.Unlocks = append(n.Unlocks, rules.ProductUnlock{SKU: u.SKU, StartingUnlocked: u.StartingUnlocked, Requires: g})
	}
	for _, u := range d.Upgrades {
		g, err := u.Requires.toGroup()
		if err != nil {
			return rules.Niche{}, fmt.Errorf("upgrade %s: %w", u.ID, err)
		}
		n.Upgrades = append(n.Upgrades, rules.Upgrade{ID: u.ID, Name: u.Name, Prerequisites: u.Prerequisites, Requires: g})
	}
	for i, dd := range d.Derived {
		r, err := dd.toRule()
		if err != nil {
			return rules.Niche{}, fmt.Errorf("derived[%d]: %w", i, err)
		}
		n.Derived = append(n.Derived, r)
	}
	return n, nil
}

// toGroup flattens the bag into predicates. Map keys are sorted so the
// predicate order, and therefore short-circuiting, is stable across loads.
func (g groupDoc) toGroup() (rules.Group, error) {
	var out rules.Group
	quantities := []struct {
		kind model.ResourceKind
		mins map[string]float64
	}{
		{model.Asset, g.Assets},
		{model.Staff, g.Staff},
		{model.Machine, g.Machines},
		{model.Vehicle, g.Vehicles},
	}
	for _, q := range quantities {
		for _, id := range sortedKeys(q.mins) {
			out.All = append(out.All, rules.QuantityAtLeast{Kind: q.kind, ID: id, Min: q.mins[id]})
		}
	}
	for _, id := range g.Upgrades {
		out.All = append(out.All, rules.HasUpgrade{ID: id})
	}
	for _, metric := range sortedKeys(g.MinScores) {
		out.All = append(out.All, rules.ScalarAtLeast{Metric: metric, Min: g.MinScores[metric]})
	}
	for _, id := range g.Flags {
		out.All = append(out.All, rules.BooleanFlag{ID: id})
	}
	if g.When != "" {
		c, err := rules.NewCondition(g.When)
		if err != nil {
			return rules.Group{}, err
		}
		out.All = append(out.All, c)
	}
	for _, alt := range g.AnyOf {
		ag, err := alt.toGroup()
		if err != nil {
			return rules.Group{}, err
		}
		out.AnyOf = append(out.AnyOf, ag)
	}
	return out, nil
}

func (d derivedDoc) toRule() (rules.DerivedRule, error) {
	if d.SKU == "" {
		return nil, fmt.Errorf("kind %q: missing sku", d.Kind)
	}
	switch d.Kind {
	case "byproduct":
		if len(d.Parents) == 0 {
			return nil, fmt.Errorf("byproduct %s: no parents", d.SKU)
		}
		return rules.ByproductRule{SKU: d.SKU, Parents: d.Parents}, nil
	case "flag":
		if d.Flag == "" {
			return nil, fmt.Errorf("flag rule %s: no flag", d.SKU)
		}
		return rules.FlagRule{SKU: d.SKU, Flag: d.Flag}, nil
	case "min_unlocked":
		if d.Min <= 0 || len(d.From) == 0 {
			return nil, fmt.Errorf("min_unlocked %s: needs from and min > 0", d.SKU)
		}
		return rules.MinUnlockedRule{SKU: d.SKU, From: d.From, Min: d.Min}, nil
	}
	return nil, fmt.Errorf("unknown derived kind %q", d.Kind)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
