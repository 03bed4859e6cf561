/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// breakCmd represents the break command
var breakCmd = &cobra.Command{
	Use:   "break <port> [state]",
	Short: "Send or hold a break condition",
	Long: `Hold the transmit line in the break (spacing) state.

Without a state a break pulse of --duration is sent. With a state the break
condition is switched on or off and left that way.

Examples:
  serial break /dev/ttyUSB0
  serial break /dev/ttyUSB0 --duration 500ms
  serial break COM3 on`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 2 {
			setLine("BREAK", args[0], args[1], func(port lineController, state bool) error {
				return port.SetBreak(state)
			})
			return
		}

		duration, _ := cmd.Flags().GetDuration("duration")
		port := mustOpenPort(args[0])
		defer port.Close()

		if err := port.SetBreak(true); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting break: %v\n", err)
			os.Exit(1)
		}
		time.Sleep(duration)
		if err := port.SetBreak(false); err != nil {
			fmt.Fprintf(os.Stderr, "Error ending break: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Sent %v break on %s\n", duration, args[0])
	},
}

func init() {
	rootCmd.AddCommand(breakCmd)

	breakCmd.Flags().Duration("duration", 250*time.Millisecond, "Length of the break pulse")
}
