/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/allbin/go-serialport"
	"github.com/spf13/cobra"
)

var (
	monitorSignals  []string
	monitorInterval time.Duration
)

// signalMask selects modem status lines.
type signalMask uint8

const (
	signalCTS signalMask = 1 << iota
	signalDSR
	signalRI
	signalDCD
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor <port>",
	Short: "Monitor modem signal changes",
	Long: `Monitor modem status line changes.

The selected signals are sampled every --interval and each change is
reported with a timestamp. Press Ctrl+C to stop.

Examples:
  serial monitor /dev/ttyUSB0
  serial monitor /dev/ttyUSB0 --signals cts,dsr
  serial monitor COM3 --signals dcd --interval 100ms

Available signals: cts, dsr, ri, dcd`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		mask, err := parseSignalMask(monitorSignals)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing signals: %v\n", err)
			os.Exit(1)
		}
		if monitorInterval <= 0 {
			fmt.Fprintf(os.Stderr, "Error: interval must be positive\n")
			os.Exit(1)
		}

		port := mustOpenPort(portPath)
		defer port.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Monitoring signals on %s (signals: %s)\n", portPath, strings.Join(monitorSignals, ", "))
		fmt.Println("Press Ctrl+C to stop")

		if err := runMonitor(ctx, port, mask); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading modem signals: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("\nStopping monitor...")
	},
}

// modemReader is the part of a port the monitor samples.
type modemReader interface {
	GetModemSignals() (serial.ModemSignals, error)
}

func runMonitor(ctx context.Context, port modemReader, mask signalMask) error {
	last, err := port.GetModemSignals()
	if err != nil {
		return err
	}
	printSignalState("Initial", last, mask)

	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		signals, err := port.GetModemSignals()
		if err != nil {
			return err
		}
		if changed := changedSignals(last, signals) & mask; changed != 0 {
			printSignalState("Changed", signals, changed)
		}
		last = signals
	}
}

func changedSignals(a, b serial.ModemSignals) signalMask {
	var changed signalMask
	if a.CTS != b.CTS {
		changed |= signalCTS
	}
	if a.DSR != b.DSR {
		changed |= signalDSR
	}
	if a.RI != b.RI {
		changed |= signalRI
	}
	if a.DCD != b.DCD {
		changed |= signalDCD
	}
	return changed
}

func parseSignalMask(signalNames []string) (signalMask, error) {
	if len(signalNames) == 0 {
		return signalCTS | signalDSR | signalRI | signalDCD, nil
	}

	var mask signalMask
	for _, name := range signalNames {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "cts":
			mask |= signalCTS
		case "dsr":
			mask |= signalDSR
		case "ri":
			mask |= signalRI
		case "dcd", "cd":
			mask |= signalDCD
		default:
			return 0, fmt.Errorf("unknown signal: %s (valid: cts, dsr, ri, dcd)", name)
		}
	}
	return mask, nil
}

func printSignalState(prefix string, signals serial.ModemSignals, mask signalMask) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Printf("[%s] %s:\n", timestamp, prefix)
	if mask&signalCTS != 0 {
		fmt.Printf("  CTS: %s\n", styledSignalState(signals.CTS))
	}
	if mask&signalDSR != 0 {
		fmt.Printf("  DSR: %s\n", styledSignalState(signals.DSR))
	}
	if mask&signalRI != 0 {
		fmt.Printf("  RI:  %s\n", styledSignalState(signals.RI))
	}
	if mask&signalDCD != 0 {
		fmt.Printf("  DCD: %s\n", styledSignalState(signals.DCD))
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().StringSliceVarP(&monitorSignals, "signals", "s", []string{"cts", "dsr", "ri", "dcd"},
		"Signals to monitor (comma-separated: cts,dsr,ri,dcd)")
	monitorCmd.Flags().DurationVarP(&monitorInterval, "interval", "i", 50*time.Millisecond,
		"How often the signals are sampled")
}
