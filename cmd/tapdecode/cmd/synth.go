package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/OpenTraceLab/tapdecode/pkg/jtag"
	"github.com/OpenTraceLab/tapdecode/pkg/synth"
	"github.com/OpenTraceLab/tapdecode/pkg/tap"
	"github.com/OpenTraceLab/tapdecode/pkg/trace"
	"github.com/spf13/cobra"
)

var (
	synthOutput string
	synthSpeed  int
	synthTarget string
)

var synthCmd = &cobra.Command{
	Use:   "synth <op>...",
	Short: "Generate a text trace from a script of scans",
	Long: `Generate the TMS/TDI/TDO samples a logic analyzer would capture while an
adapter performs the given operations, in the text trace format accepted by
"tapdecode decode".

Operations:
  reset              five TMS=1 clocks, then RUN-TEST/IDLE
  idle:N             N clocks in RUN-TEST/IDLE
  ir:VALUE[:WIDTH]   IR scan (default width 8); VALUE may name an instruction
  dr:VALUE[:WIDTH]   DR scan (default width 16)

Targets:
  msp430  returns the JTAG ID on IR scans and the previous DR word on DR scans
  echo    TDO follows TDI
  none    TDO held low

Examples:
  tapdecode synth reset ir:IR_CNTRL_SIG_16BIT dr:0x2401
  tapdecode synth -o scan.jtr --speed 1000000 ir:0x83 dr:0x0200`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSynth,
}

func init() {
	rootCmd.AddCommand(synthCmd)

	synthCmd.Flags().StringVarP(&synthOutput, "output", "o", "",
		"write the trace to a file instead of stdout")
	synthCmd.Flags().IntVar(&synthSpeed, "speed", jtag.DefaultSpeedHz,
		"TCK frequency in Hz")
	synthCmd.Flags().StringVar(&synthTarget, "target", "msp430",
		"device model: msp430, echo or none")
}

func runSynth(cmd *cobra.Command, args []string) error {
	logger := diagnostics(cmd)

	ops, err := synth.ParseScript(args)
	if err != nil {
		return err
	}

	var target jtag.Target
	switch strings.ToLower(synthTarget) {
	case "msp430":
		target = jtag.NewMSP430Target()
	case "echo":
		target = jtag.TargetFunc(func(_ tap.State, tdi bool) bool { return tdi })
	case "none":
		target = jtag.TargetFunc(func(tap.State, bool) bool { return false })
	default:
		return fmt.Errorf("unknown target %q", synthTarget)
	}

	frames, err := synth.Record(ops, synthSpeed, target)
	if err != nil {
		return err
	}
	logger.Printf("%d operations -> %d frames at %d Hz", len(ops), len(frames), synthSpeed)

	var w io.Writer = cmd.OutOrStdout()
	if synthOutput != "" {
		file, err := os.Create(synthOutput)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}
		defer file.Close()
		w = file
	}

	fmt.Fprintf(w, "# tapdecode synth %s\n", strings.Join(args, " "))
	fmt.Fprintf(w, "# start end signals\n")
	if err := trace.WriteFrames(w, frames); err != nil {
		return err
	}
	if synthOutput != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d frames to %s\n", len(frames), synthOutput)
	}
	return nil
}
