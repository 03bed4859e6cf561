/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// rtsCmd represents the rts command
var rtsCmd = &cobra.Command{
	Use:   "rts <port> <state>",
	Short: "Control RTS (Request To Send) signal",
	Long: `Manually set the RTS (Request To Send) signal state.

With hardware flow control enabled the driver may take RTS back, so use
--flow-control none when driving the line by hand.

Examples:
  serial rts /dev/ttyUSB0 high
  serial rts COM3 off

Valid states: high, low, on, off, true, false, 1, 0`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		setLine("RTS", args[0], args[1], func(port lineController, state bool) error {
			return port.SetRTS(state)
		})
	},
}

// lineController is the part of a port the line commands use.
type lineController interface {
	SetRTS(level bool) error
	SetDTR(level bool) error
	SetBreak(on bool) error
}

// setLine opens portPath, applies the parsed state through set and reports
// the result.
func setLine(name, portPath, stateArg string, set func(lineController, bool) error) {
	state, err := parseSignalState(stateArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	port := mustOpenPort(portPath)
	defer port.Close()

	if err := set(port, state); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting %s: %v\n", name, err)
		os.Exit(1)
	}
	logger.Debug().Str("line", name).Bool("state", state).Msg("line set")

	fmt.Printf("%s set to %s on %s\n", name, formatSignalState(state), portPath)
}

func parseSignalState(state string) (bool, error) {
	switch strings.ToLower(state) {
	case "high", "on", "true", "1":
		return true, nil
	case "low", "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid state: %s (valid: high, low, on, off, true, false, 1, 0)", state)
	}
}

func init() {
	rootCmd.AddCommand(rtsCmd)
}
