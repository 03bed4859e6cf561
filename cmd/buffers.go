/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/go-serialport"
	"github.com/spf13/cobra"
)

// buffersCmd represents the buffers command
var buffersCmd = &cobra.Command{
	Use:   "buffers <port>",
	Short: "Show or clear the driver buffers",
	Long: `Show how many bytes are waiting in the receive buffer and how many
have not been transmitted yet. With --clear the selected buffers are
discarded first.

Examples:
  serial buffers /dev/ttyUSB0
  serial buffers COM3 --clear input
  serial buffers /dev/ttyACM0 --clear all`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]
		clearArg, _ := cmd.Flags().GetString("clear")

		port := mustOpenPort(portPath)
		defer port.Close()

		if clearArg != "" {
			target, err := serial.ParseClearTarget(clearArg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if err := port.Clear(target); err != nil {
				fmt.Fprintf(os.Stderr, "Error clearing %s buffer: %v\n", target, err)
				os.Exit(1)
			}
			fmt.Printf("Cleared %s buffer on %s\n", target, portPath)
		}

		in, err := port.BytesToRead()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input queue: %v\n", err)
			os.Exit(1)
		}
		out, err := port.BytesToWrite()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading output queue: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Buffers for %s:\n\n", portPath)
		fmt.Printf("  To read:  %d bytes\n", in)
		fmt.Printf("  To write: %d bytes\n", out)
	},
}

func init() {
	rootCmd.AddCommand(buffersCmd)

	buffersCmd.Flags().StringP("clear", "c", "", "Clear buffers first: input, output, all")
}
