/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/go-serialport"
	"github.com/allbin/go-serialport/internal/tui/styles"
	"github.com/spf13/cobra"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals <port>",
	Short: "Display current modem signal states",
	Long: `Display the current state of the modem status lines.

Examples:
  serial signals /dev/ttyUSB0
  serial signals COM3

Signal meanings:
  CTS - Clear To Send (input)
  DSR - Data Set Ready (input)
  RI  - Ring Indicator (input)
  DCD - Data Carrier Detect (input)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		port := mustOpenPort(portPath)
		defer port.Close()

		signals, err := port.GetModemSignals()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading modem signals: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Modem Signals for %s:\n\n", portPath)
		for _, line := range signalLines(signals) {
			fmt.Printf("  %-26s %s\n", line.label+":", styledSignalState(line.high))
		}
	},
}

type signalLine struct {
	label string
	high  bool
}

// signalLines lists the modem status lines in display order.
func signalLines(s serial.ModemSignals) []signalLine {
	return []signalLine{
		{"CTS (Clear To Send)", s.CTS},
		{"DSR (Data Set Ready)", s.DSR},
		{"RI  (Ring Indicator)", s.RI},
		{"DCD (Data Carrier Detect)", s.DCD},
	}
}

func formatSignalState(state bool) string {
	if state {
		return "HIGH"
	}
	return "LOW"
}

func styledSignalState(state bool) string {
	return styles.SignalStyle(state).Render(formatSignalState(state))
}

func init() {
	rootCmd.AddCommand(signalsCmd)
}
