package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/go-serialport/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

// DataReceivedMsg carries one chunk read from the port.
type DataReceivedMsg struct {
	Timestamp time.Time
	Data      []byte
}

type DisplayMode struct {
	ShowHex        bool
	ShowASCII      bool
	HideTimestamps bool
	HideIndicators bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(showHex, showASCII bool) *DataFormatter {
	return &DataFormatter{
		mode: DisplayMode{
			ShowHex:   showHex,
			ShowASCII: showASCII,
		},
	}
}

func (df *DataFormatter) SetDisplayMode(showHex, showASCII bool) {
	df.mode.ShowHex = showHex
	df.mode.ShowASCII = showASCII
}

// SetFormatOptions controls the per-line decorations.
func (df *DataFormatter) SetFormatOptions(hideTimestamps, hideIndicators bool) {
	df.mode.HideTimestamps = hideTimestamps
	df.mode.HideIndicators = hideIndicators
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

// asciiOf renders printable ASCII and replaces everything else with dots,
// so no terminal control sequence reaches the screen.
func asciiOf(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func (df *DataFormatter) FormatMessage(msg DataReceivedMsg) string {
	var parts []string

	if df.mode.ShowHex {
		parts = append(parts, fmt.Sprintf("HEX: % X", msg.Data))
	}
	if df.mode.ShowASCII {
		parts = append(parts, "ASCII: "+asciiOf(msg.Data))
	}
	// If both are disabled, show raw bytes count
	if !df.mode.ShowHex && !df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(msg.Data)))
	}
	body := strings.Join(parts, "  ")

	var prefix []string
	if !df.mode.HideTimestamps {
		prefix = append(prefix, lipgloss.NewStyle().
			Foreground(colors.Subtext0).
			Render("["+msg.Timestamp.Format("15:04:05.000")+"]"))
	}
	if !df.mode.HideIndicators {
		prefix = append(prefix, lipgloss.NewStyle().
			Foreground(colors.RX).
			Bold(true).
			Render("↙ RX"))
	}

	if len(prefix) == 0 {
		return body
	}
	return strings.Join(prefix, " ") + ": " + body
}

func (df *DataFormatter) FormatMessages(messages []DataReceivedMsg) []string {
	formatted := make([]string, len(messages))
	for i, msg := range messages {
		formatted[i] = df.FormatMessage(msg)
	}
	return formatted
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}

func (df *DataFormatter) ToggleTimestamps() {
	df.mode.HideTimestamps = !df.mode.HideTimestamps
}

func (df *DataFormatter) ToggleIndicators() {
	df.mode.HideIndicators = !df.mode.HideIndicators
}
