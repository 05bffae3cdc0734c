package cmd

import (
	"fmt"

	"github.com/OpenTraceLab/tapdecode/pkg/msp430"
	"github.com/spf13/cobra"
)

var instructionsCmd = &cobra.Command{
	Use:   "instructions",
	Short: "List the MSP430 JTAG instructions recognised on IR updates",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "MSP430 JTAG instructions (IR %d bits, DR %d bits):\n",
			msp430.IRLength, msp430.DRLength)
		for _, in := range msp430.Instructions() {
			fmt.Fprintf(out, "  0x%02X  %s\n", in.Opcode, in.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(instructionsCmd)
}
