package components

import (
	"fmt"

	"github.com/allbin/go-serialport"
	"github.com/allbin/go-serialport/internal/tui/colors"
	"github.com/allbin/go-serialport/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

type StatusBar struct {
	title    string
	portPath string
	status   styles.StatusType
	err      error
	width    int
	settings *serial.Settings
}

func NewStatusBar(title, portPath string) *StatusBar {
	return &StatusBar{
		title:    title,
		portPath: portPath,
		status:   styles.StatusConnecting,
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

// SetSettings records the line settings shown in the bar.
func (sb *StatusBar) SetSettings(s serial.Settings) {
	sb.settings = &s
}

func (sb *StatusBar) SetConnecting() {
	sb.status = styles.StatusConnecting
	sb.err = nil
}

func (sb *StatusBar) SetConnected() {
	sb.status = styles.StatusConnected
	sb.err = nil
}

func (sb *StatusBar) SetDisconnected(err error) {
	sb.err = err
	if err != nil {
		sb.status = styles.StatusError
	} else {
		sb.status = styles.StatusDisconnected
	}
}

func (sb *StatusBar) Err() error {
	return sb.err
}

func (sb *StatusBar) indicator() string {
	symbol := "○"
	switch sb.status {
	case styles.StatusConnected:
		symbol = "●"
	case styles.StatusError:
		symbol = "✗"
	}
	return styles.GetStatusStyle(sb.status).Render(symbol)
}

// View renders the single line status bar. mode is shown in the left badge,
// rxBytes next to the line settings.
func (sb *StatusBar) View(mode string, rxBytes int64, timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	modeStyle := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(colors.Blue).
		Bold(true).
		Padding(0, 1)
	if mode != "FOLLOW" {
		modeStyle = modeStyle.Background(colors.Warning)
	}
	badge := modeStyle.Render(mode)

	portStyle := lipgloss.NewStyle().
		Foreground(colors.Accent).
		Bold(true).
		Padding(0, 1)
	port := portStyle.Render(sb.portPath)

	connInfo := "⚡ " + sb.title
	if sb.settings != nil {
		connInfo = fmt.Sprintf("⚡ %s", sb.settings)
	}
	connInfo += fmt.Sprintf("  RX %s", formatBytes(rxBytes))
	connectionDetails := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(connInfo)

	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(timestamp)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, badge, port, sb.indicator(), divider)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, connectionDetails, divider, clock)

	spacerWidth := terminalWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	statusBarStyle := lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth)

	return statusBarStyle.Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
