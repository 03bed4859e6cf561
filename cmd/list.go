/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/allbin/go-serialport"
	"github.com/allbin/go-serialport/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List all serial ports currently present on the system.

On Linux this scans /dev for serial hardware such as USB adapters (ttyUSB*),
CDC/ACM devices (ttyACM*), on-board UARTs (ttyS*, ttyAMA*) and other
platform-specific devices. On Windows the ports are taken from the Ports
device class.

Examples:
  serial list
  serial list --table
  serial list --filter usb`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := serial.AvailablePorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		filtered, err := filterPorts(ports, filterType)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if len(filtered) == 0 {
			if filterType != "" && filterType != "all" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return
		}

		if tableFormat {
			renderTable(filtered)
		} else {
			renderSimple(filtered)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, native, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(ports []serial.PortInfo, filterType string) ([]serial.PortInfo, error) {
	switch strings.ToLower(filterType) {
	case "", "all":
		return ports, nil
	case "usb", "native":
	default:
		return nil, fmt.Errorf("unknown filter: %s (valid: usb, native, all)", filterType)
	}

	wantUSB := strings.EqualFold(filterType, "usb")
	var filtered []serial.PortInfo
	for _, p := range ports {
		if (p.USB != nil) == wantUSB {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

const (
	columnKeyPort   = "port"
	columnKeyName   = "name"
	columnKeyVID    = "vid"
	columnKeyPID    = "pid"
	columnKeySerial = "serial"
)

// renderTable renders the port list as a static table
func renderTable(ports []serial.PortInfo) {
	fmt.Printf("Found %d serial port(s):\n\n", len(ports))
	fmt.Println(portTable(ports).View())
}

func portTable(ports []serial.PortInfo) table.Model {
	portWidth := len("Port")
	nameWidth := len("Description")
	rows := make([]table.Row, 0, len(ports))
	for _, p := range ports {
		portWidth = max(portWidth, len(p.Path))
		nameWidth = max(nameWidth, len(p.FriendlyName))

		data := table.RowData{
			columnKeyPort: p.Path,
			columnKeyName: p.FriendlyName,
		}
		if p.USB != nil {
			data[columnKeyVID] = p.USB.VendorID
			data[columnKeyPID] = p.USB.ProductID
			data[columnKeySerial] = p.USB.SerialNumber
		}
		rows = append(rows, table.NewRow(data))
	}

	columns := []table.Column{
		table.NewColumn(columnKeyPort, "Port", portWidth),
		table.NewColumn(columnKeyName, "Description", nameWidth),
		table.NewColumn(columnKeyVID, "VID", 6),
		table.NewColumn(columnKeyPID, "PID", 6),
		table.NewColumn(columnKeySerial, "Serial", 20),
	}

	return table.New(columns).
		WithRows(rows).
		BorderRounded().
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(colors.Mauve)).
		WithBaseStyle(lipgloss.NewStyle().Foreground(colors.Text).BorderForeground(colors.Surface2).Align(lipgloss.Left))
}

// renderSimple renders the port list in simple text format
func renderSimple(ports []serial.PortInfo) {
	for _, p := range ports {
		fmt.Println(p.Path)
	}
}
