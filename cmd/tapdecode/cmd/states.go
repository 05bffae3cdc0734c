package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/OpenTraceLab/tapdecode/pkg/tap"
	"github.com/spf13/cobra"
)

var (
	pathFrom string
	pathTo   string
)

var statesCmd = &cobra.Command{
	Use:   "states",
	Short: "Show the TAP state transition table or a TMS path",
	Long: `Without --to, print the 16-state TAP transition table.
With --to, print the shortest TMS sequence from --from (default RUN-TEST/IDLE).

Examples:
  tapdecode states
  tapdecode states --to SHIFT-DR
  tapdecode states --from TEST-LOGIC-RESET --to SHIFT-IR`,
	Args: cobra.NoArgs,
	RunE: runStates,
}

func init() {
	rootCmd.AddCommand(statesCmd)

	statesCmd.Flags().StringVar(&pathFrom, "from", tap.StateRunTestIdle.String(), "start state")
	statesCmd.Flags().StringVar(&pathTo, "to", "", "destination state")
}

func runStates(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if pathTo == "" {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STATE\tTMS=0\tTMS=1\tREGISTER")
		for _, s := range tap.AllStates() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				s, tap.NextState(s, false), tap.NextState(s, true), s.Register())
		}
		return tw.Flush()
	}

	from, err := tap.ParseState(pathFrom)
	if err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	to, err := tap.ParseState(pathTo)
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}
	path, err := tap.ShortestPath(from, to)
	if err != nil {
		return err
	}

	var tms strings.Builder
	for _, b := range path.TMS {
		if b {
			tms.WriteByte('1')
		} else {
			tms.WriteByte('0')
		}
	}
	names := make([]string, len(path.States))
	for i, s := range path.States {
		names[i] = s.String()
	}
	fmt.Fprintf(out, "TMS: %s (%d clocks)\n", tms.String(), len(path.TMS))
	fmt.Fprintf(out, "Path: %s\n", strings.Join(names, " -> "))
	return nil
}
