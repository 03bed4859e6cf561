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

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display what the system reports about a serial port, including USB
vendor and product IDs and the serial number where available.

With --settings the port is opened and the line settings the device
actually reports are shown as well.

Examples:
  serial info /dev/ttyUSB0
  serial info COM3 --settings`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		info, err := serial.GetPortInfo(portPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting port info: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Port Information: %s\n\n", info.Path)
		fmt.Printf("  Description: %s\n", valueOrDash(info.FriendlyName))

		if info.USB != nil {
			fmt.Println("\nUSB Device Information:")
			fmt.Printf("  Vendor ID:    %s\n", valueOrDash(info.USB.VendorID))
			fmt.Printf("  Product ID:   %s\n", valueOrDash(info.USB.ProductID))
			fmt.Printf("  Serial:       %s\n", valueOrDash(info.USB.SerialNumber))
		}

		if showSettings, _ := cmd.Flags().GetBool("settings"); !showSettings {
			return
		}

		port := mustOpenPort(portPath)
		defer port.Close()

		s, err := port.ReadSettings()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading settings: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("\nLine Settings:")
		fmt.Printf("  Baud rate:    %d\n", s.BaudRate)
		fmt.Printf("  Data bits:    %s\n", s.DataBits)
		fmt.Printf("  Parity:       %s\n", s.Parity)
		fmt.Printf("  Stop bits:    %s\n", s.StopBits)
		fmt.Printf("  Flow control: %s\n", s.FlowControl)
	},
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolP("settings", "s", false, "Open the port and show the line settings it reports")
}
