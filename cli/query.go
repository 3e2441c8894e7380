package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nstehr/venture/venture-core/ipc"
	"github.com/nstehr/venture/venture-core/model"
	"github.com/nstehr/venture/venture-core/rules"
)

func init() {
	unlocks := &cobra.Command{
		Use:   "unlocks <niche> [state.json]",
		Short: "List the SKUs a company state has unlocked in a niche",
		Long:  "Reads a company state as JSON from the file (or stdin) and prints the unlocked SKUs in product-table order.",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runUnlocks,
	}
	upgrades := &cobra.Command{
		Use:   "upgrades <niche> [state.json]",
		Short: "List the upgrades a company state could acquire next",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runUpgrades,
	}
	niches := &cobra.Command{
		Use:   "niches [niche]",
		Short: "List loaded niches, or show one niche's products and upgrade tree",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runNiches,
	}

	RootCmd.AddCommand(unlocks, upgrades, niches)
}

func runUnlocks(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}
	var state model.CompanyState
	if err := readInput(cmd, optionalArg(args, 1), &state); err != nil {
		return err
	}
	skus, err := registry.UnlockedProducts(args[0], state)
	if err != nil {
		return err
	}

	if textFormat() {
		for _, sku := range skus {
			fmt.Fprintln(cmd.OutOrStdout(), sku)
		}
		return nil
	}
	return printJSON(cmd, ipc.UnlocksMessage{NicheID: args[0], CompanyID: state.CompanyID, Unlocked: skus})
}

func runUpgrades(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}
	var state model.CompanyState
	if err := readInput(cmd, optionalArg(args, 1), &state); err != nil {
		return err
	}
	ids, err := registry.AvailableUpgrades(args[0], state)
	if err != nil {
		return err
	}

	if textFormat() {
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	}
	return printJSON(cmd, ipc.UpgradesMessage{NicheID: args[0], CompanyID: state.CompanyID, Available: ids})
}

// nicheSummary is the JSON shape of `niches`.
type nicheSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Sector   string   `json:"sector,omitempty"`
	Products []string `json:"products"`
	Starting []string `json:"startingUnlocked"`
	Upgrades []string `json:"upgrades"`
}

func summarize(n *rules.Niche) nicheSummary {
	s := nicheSummary{ID: n.ID, Name: n.Name, Sector: n.Sector}
	for _, p := range n.Products {
		s.Products = append(s.Products, p.SKU)
	}
	for _, u := range n.Unlocks {
		if u.StartingUnlocked {
			s.Starting = append(s.Starting, u.SKU)
		}
	}
	for _, u := range n.Upgrades {
		s.Upgrades = append(s.Upgrades, u.ID)
	}
	return s
}

func runNiches(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		n, err := registryNiche(registry, args[0])
		if err != nil {
			return err
		}
		if textFormat() {
			printNicheDetail(cmd, n)
			return nil
		}
		return printJSON(cmd, summarize(n))
	}

	var out []nicheSummary
	for _, n := range registry.Niches() {
		out = append(out, summarize(n))
	}
	if textFormat() {
		for _, s := range out {
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %-22s %d products, %d upgrades\n", s.ID, s.Name, len(s.Products), len(s.Upgrades))
		}
		return nil
	}
	return printJSON(cmd, out)
}

func printNicheDetail(cmd *cobra.Command, n *rules.Niche) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s (%s)\n\nProducts:\n", n.Name, n.ID)
	gates := make(map[string]rules.ProductUnlock, len(n.Unlocks))
	for _, u := range n.Unlocks {
		if _, dup := gates[u.SKU]; !dup {
			gates[u.SKU] = u
		}
	}
	for _, p := range n.Products {
		u, ok := gates[p.SKU]
		switch {
		case !ok:
			fmt.Fprintf(w, "  %-26s never unlocks\n", p.SKU)
		case u.StartingUnlocked:
			fmt.Fprintf(w, "  %-26s starting\n", p.SKU)
		default:
			fmt.Fprintf(w, "  %-26s %s\n", p.SKU, describeGroup(u.Requires))
		}
	}
	if len(n.Upgrades) > 0 {
		fmt.Fprintln(w, "\nUpgrades:")
		for _, u := range n.Upgrades {
			line := describeGroup(u.Requires)
			if len(u.Prerequisites) > 0 {
				line = "after " + strings.Join(u.Prerequisites, ", ") + "; " + line
			}
			fmt.Fprintf(w, "  %-26s %s\n", u.ID, line)
		}
	}
}

func describeGroup(g rules.Group) string {
	if g.Empty() {
		return "always"
	}
	var parts []string
	for _, p := range g.All {
		if s, ok := p.(fmt.Stringer); ok {
			parts = append(parts, s.String())
		}
	}
	if len(g.AnyOf) > 0 {
		var alts []string
		for _, alt := range g.AnyOf {
			alts = append(alts, describeGroup(alt))
		}
		parts = append(parts, "any of ["+strings.Join(alts, " | ")+"]")
	}
	return strings.Join(parts, ", ")
}

// registryNiche resolves a niche id or reports the loaded ids.
func registryNiche(registry *rules.Registry, id string) (*rules.Niche, error) {
	n, ok := registry.Niche(id)
	if !ok {
		var ids []string
		for _, n := range registry.Niches() {
			ids = append(ids, n.ID)
		}
		return nil, fmt.Errorf("%w: %s (loaded: %v)", rules.ErrUnknownNiche, id, ids)
	}
	return n, nil
}
