package styles

import (
	"github.com/allbin/go-serialport/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

// StatusType is the connection state shown by the status bar.
type StatusType int

const (
	StatusConnected StatusType = iota
	StatusDisconnected
	StatusConnecting
	StatusError
)

func (s StatusType) String() string {
	switch s {
	case StatusConnected:
		return "connected"
	case StatusConnecting:
		return "connecting"
	case StatusError:
		return "error"
	}
	return "disconnected"
}

var statusColors = map[StatusType]lipgloss.Color{
	StatusConnected:    colors.Green,
	StatusConnecting:   colors.Yellow,
	StatusDisconnected: colors.Red,
	StatusError:        colors.Red,
}

// GetStatusStyle returns the bold indicator style for status.
func GetStatusStyle(status StatusType) lipgloss.Style {
	c, ok := statusColors[status]
	if !ok {
		c = colors.Red
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

// Modem line levels.
var (
	SignalHighStyle = lipgloss.NewStyle().Foreground(colors.Green).Bold(true)
	SignalLowStyle  = lipgloss.NewStyle().Foreground(colors.Muted)
)

// SignalStyle picks the style for a modem line level.
func SignalStyle(high bool) lipgloss.Style {
	if high {
		return SignalHighStyle
	}
	return SignalLowStyle
}

var (
	// ContentBorderStyle separates received data from the status bar.
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	HelpStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colors.Red).
			Bold(true).
			Align(lipgloss.Center)

	InfoStyle = lipgloss.NewStyle().
			Foreground(colors.Accent).
			Align(lipgloss.Center)
)
