package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nstehr/venture/venture-core/ai"
	"github.com/nstehr/venture/venture-core/ipc"
	"github.com/nstehr/venture/venture-core/model"
)

var (
	tickSeed   int64
	tickID     string
	tickRecord bool
)

func init() {
	tick := &cobra.Command{
		Use:   "tick [input.json]",
		Short: "Run one AI tick over a world snapshot and print the decisions",
		Long: "Reads {worldState, marketState, brains} as JSON from the file (or stdin). " +
			"The same --seed and --tick-id always reproduce the same decisions.",
		Args: cobra.MaximumNArgs(1),
		RunE: runTick,
	}
	tick.Flags().Int64Var(&tickSeed, "seed", 0, "Tie-break seed")
	tick.Flags().StringVar(&tickID, "tick-id", "", "Tick id (default: random)")
	tick.Flags().BoolVar(&tickRecord, "record", false, "Append the decisions to the decision log")

	archetypes := &cobra.Command{
		Use:   "archetypes",
		Short: "Show the AI archetypes and their intent biases",
		Args:  cobra.NoArgs,
		RunE:  runArchetypes,
	}

	RootCmd.AddCommand(tick, archetypes)
}

func runTick(cmd *cobra.Command, args []string) error {
	var in ai.TickInput
	if err := readInput(cmd, optionalArg(args, 0), &in); err != nil {
		return err
	}
	id := tickID
	if id == "" {
		id = uuid.NewString()
	}

	decisions, err := ai.RunTickConcurrent(cmd.Context(), in, ai.TickRNG(tickSeed, id), 1)
	if err != nil {
		return err
	}

	if tickRecord {
		store, err := openStore()
		if err != nil {
			return fmt.Errorf("open decision log: %w", err)
		}
		defer store.Close()
		if err := store.Record(cmd.Context(), id, decisions); err != nil {
			return fmt.Errorf("record tick %s: %w", id, err)
		}
	}

	if textFormat() {
		for _, d := range decisions {
			line := fmt.Sprintf("%-16s %-16s %+.3f", d.CompanyID, d.Intent, d.Score)
			if d.Reason != "" {
				line += "  (" + d.Reason + ")"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	}
	return printJSON(cmd, ipc.DecisionsMessage{TickID: id, Decisions: decisions})
}

type archetypeView struct {
	ID          model.Archetype    `json:"id"`
	Label       string             `json:"label"`
	Description string             `json:"description"`
	Bias        map[string]float64 `json:"bias"`
}

func runArchetypes(cmd *cobra.Command, args []string) error {
	var out []archetypeView
	for _, a := range ai.Archetypes() {
		v := archetypeView{ID: a.ID, Label: a.Label, Description: a.Description, Bias: map[string]float64{}}
		for _, intent := range model.AllIntents() {
			if b := a.Bias[intent]; b != 0 {
				v.Bias[intent.String()] = b
			}
		}
		out = append(out, v)
	}

	if textFormat() {
		for _, v := range out {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", v.ID, v.Description)
			for _, intent := range model.AllIntents() {
				if b, ok := v.Bias[intent.String()]; ok {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-18s %+.2f\n", intent, b)
				}
			}
		}
		return nil
	}
	return printJSON(cmd, out)
}
