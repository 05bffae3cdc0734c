package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tapdecode",
	Short: "JTAG TAP trace decoder",
	Long: `Decode sampled JTAG TAP traces (TMS/TDI/TDO per TCK edge) into
instruction and data register updates, naming MSP430 JTAG instructions.

Examples:
  tapdecode decode capture.csv                       # Decode a logic analyzer export
  tapdecode decode --output json --transitions t.jtr # JSON events plus every state change
  tapdecode synth reset ir:IR_ADDR_16BIT dr:0x0200    # Generate a text trace
  tapdecode states --to SHIFT-IR                     # Shortest TMS path from RUN-TEST/IDLE`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// diagnostics returns a logger for verbose-only messages on the command's
// error stream.
func diagnostics(cmd *cobra.Command) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(cmd.ErrOrStderr(), "tapdecode: ", log.Ltime)
}
