/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <port> <output-file>",
	Short: "Capture serial data to a file",
	Long: `Capture incoming serial data to a file for later parsing.

Reads data from the specified serial port and writes it directly to
the output file. Runs continuously until interrupted (Ctrl+C).

The output file is opened in append mode, allowing you to resume captures
without overwriting existing data.

Example usage:
  serial capture /dev/ttyUSB0 data.log
  serial capture /dev/ttyUSB0 output.txt --baud 9600
  serial capture COM3 capture.log --console`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]
		outputPath := args[1]

		bufferSize, _ := cmd.Flags().GetInt("buffer")
		showConsole, _ := cmd.Flags().GetBool("console")

		if err := runCapture(portPath, outputPath, bufferSize, showConsole); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().Int("buffer", 4096, "Read buffer size")
	captureCmd.Flags().BoolP("console", "c", false, "Display incoming data on console while capturing")
}

func runCapture(portPath, outputPath string, bufferSize int, showConsole bool) error {
	port, err := openPort(portPath)
	if err != nil {
		return fmt.Errorf("failed to open port: %w", err)
	}
	defer port.Close()

	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer file.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Capturing data from %s (%s) to %s\n", portPath, port.Settings(), outputPath)
	if showConsole {
		fmt.Fprintf(os.Stderr, "Console display enabled\n")
	}
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

	var console io.Writer
	if showConsole {
		console = os.Stdout
	}

	startTime := time.Now()
	written, err := capture(ctx, port, file, console, bufferSize)
	if err != nil {
		return err
	}

	duration := time.Since(startTime)
	fmt.Fprintf(os.Stderr, "\nCapture complete: %d bytes written in %v\n", written, duration.Round(time.Millisecond))
	return nil
}

// contextReader is the part of a port capture reads from.
type contextReader interface {
	ReadContext(ctx context.Context, buf []byte) (int, error)
}

// capture copies from port to out until ctx is done. Data is echoed to
// console when it is not nil.
func capture(ctx context.Context, port contextReader, out, console io.Writer, bufferSize int) (int64, error) {
	buffer := make([]byte, bufferSize)
	var total int64

	for {
		n, err := port.ReadContext(ctx, buffer)
		if err != nil {
			if ctx.Err() != nil {
				// Context cancelled, clean shutdown
				return total, nil
			}
			return total, fmt.Errorf("read error: %w", err)
		}
		if n == 0 {
			continue
		}

		written, err := out.Write(buffer[:n])
		total += int64(written)
		if err != nil {
			return total, fmt.Errorf("write error: %w", err)
		}
		if console != nil {
			console.Write(buffer[:n])
		}
	}
}
