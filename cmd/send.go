/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/allbin/go-serialport/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <port>",
	Short: "Send data to a serial port",
	Long: `Send data to a serial port.

Data can be provided as:
- Command line argument: send "Hello World" /dev/ttyUSB0
- From stdin (pipe): echo "test data" | serial send /dev/ttyUSB0
- Interactive mode: serial send /dev/ttyUSB0 (prompts for input)

Port settings come from the global flags, SERIAL_* environment variables
or the config file.

Example usage:
  serial send "Hello World" /dev/ttyUSB0
  serial send "AT+GMR" COM3 --newline --baud 115200
  serial send "48656c6c6f" /dev/ttyUSB0 --hex
  echo "test" | serial send /dev/ttyUSB0`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		var data string
		var portPath string

		// Parse arguments: either "send data port" or "send port"
		if len(args) == 1 {
			portPath = args[0]
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				data = promptForData()
			} else {
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
					os.Exit(1)
				}
				data = strings.TrimRight(string(stdinData), "\r\n")
			}
		} else {
			data = args[0]
			portPath = args[1]
		}

		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")
		deadline, _ := cmd.Flags().GetDuration("deadline")
		drain, _ := cmd.Flags().GetBool("drain")

		payload := []byte(data)
		if hexMode {
			decoded, err := parseHexString(data)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid hex data: %v\n", err)
				os.Exit(1)
			}
			payload = decoded
		} else if addNewline {
			payload = append(payload, '\n')
		}

		if err := sendData(portPath, payload, deadline, drain); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
	sendCmd.Flags().DurationP("deadline", "d", 5*time.Second, "Give up if the data is not sent within this time")
	sendCmd.Flags().Bool("drain", true, "Wait until the data has been transmitted before closing")
}

func promptForData() string {
	promptStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(colors.Mauve)

	fmt.Print(promptStyle.Render("Enter data to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

func parseHexString(hexStr string) ([]byte, error) {
	// Remove common hex prefixes and whitespace
	hexStr = strings.Join(strings.Fields(hexStr), "")
	hexStr = strings.ReplaceAll(hexStr, "0x", "")
	hexStr = strings.ReplaceAll(hexStr, "0X", "")

	if len(hexStr)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even length")
	}
	return hex.DecodeString(hexStr)
}

// printable replaces non-printable characters for display.
func printable(data []byte, limit int) string {
	preview := data
	suffix := ""
	if len(preview) > limit {
		preview = preview[:limit]
		suffix = "..."
	}
	return strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return '·'
		}
		return r
	}, string(preview)) + suffix
}

func sendData(portPath string, data []byte, deadline time.Duration, drain bool) error {
	infoStyle := lipgloss.NewStyle().Foreground(colors.Mauve).Bold(true)
	successStyle := lipgloss.NewStyle().Foreground(colors.Green).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(colors.Red).Bold(true)

	fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), portPath)

	port, err := openPort(portPath)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("✗"), err)
	}
	defer port.Close()

	fmt.Printf("%s Connected at %s\n", successStyle.Render("✓"), port.Settings())

	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()

	fmt.Printf("%s Sending %d bytes...\n", infoStyle.Render("📤"), len(data))

	n, err := port.WriteContext(ctx, data)
	if err != nil {
		return fmt.Errorf("%s sent %d of %d bytes: %w", errorStyle.Render("✗"), n, len(data), err)
	}
	if drain {
		if err := port.Drain(); err != nil {
			return fmt.Errorf("%s waiting for transmission: %w", errorStyle.Render("✗"), err)
		}
	}

	fmt.Printf("%s Successfully sent %d bytes\n", successStyle.Render("✓"), n)
	fmt.Printf("%s Data: %s\n", infoStyle.Render("📋"), printable(data, 50))

	return nil
}
