/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// dtrCmd represents the dtr command
var dtrCmd = &cobra.Command{
	Use:   "dtr <port> <state>",
	Short: "Control DTR (Data Terminal Ready) signal",
	Long: `Manually set the DTR (Data Terminal Ready) signal state.

The DTR signal indicates that the terminal is ready for communication.
Many boards wire DTR to their reset line.

Examples:
  serial dtr /dev/ttyUSB0 high
  serial dtr COM3 low

Valid states: high, low, on, off, true, false, 1, 0`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setLine("DTR", args[0], args[1], func(port lineController, state bool) error {
			return port.SetDTR(state)
		})
	},
}

func init() {
	rootCmd.AddCommand(dtrCmd)
}
