/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/allbin/go-serialport"
	"github.com/allbin/go-serialport/internal/tui/colors"
	"github.com/allbin/go-serialport/internal/tui/components"
	"github.com/allbin/go-serialport/internal/tui/keys"
	"github.com/allbin/go-serialport/internal/tui/models"
	"github.com/allbin/go-serialport/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen <port>",
	Short: "Listen for data on a serial port with real-time display",
	Long: `Listen for incoming data on a serial port with a real-time TUI display.

Features include:
- Real-time data streaming with timestamps
- ASCII and hex display modes
- Connection status and received byte count
- Modem signal snapshot on demand

Example usage:
  serial listen /dev/ttyUSB0
  serial listen /dev/ttyUSB0 --baud 115200
  serial listen COM3 --flow-control hardware --raw`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		noTimestamps, _ := cmd.Flags().GetBool("no-timestamps")
		showIndicators, _ := cmd.Flags().GetBool("show-indicators")
		rawMode, _ := cmd.Flags().GetBool("raw")

		opts, err := portOptions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if err := runListenTUI(portPath, noTimestamps || rawMode, !showIndicators || rawMode, opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().Bool("no-timestamps", false, "Hide timestamps from output")
	listenCmd.Flags().Bool("show-indicators", false, "Show RX indicators (off by default)")
	listenCmd.Flags().Bool("raw", false, "Raw output mode: no timestamps, no indicators")
}

type tickMsg time.Time

type signalsMsg struct {
	signals serial.ModemSignals
	err     error
}

// listenModel represents the Bubble Tea model for the listen command
type listenModel struct {
	*models.SerialModel
	terminal  *components.Terminal
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.TerminalKeys
	signals   string
	now       time.Time
}

func newListenModel(portPath string, hideTimestamps, hideIndicators bool, settings serial.Settings) *listenModel {
	terminal := components.NewTerminal(80, 20)
	terminal.SetFormatOptions(hideTimestamps, hideIndicators)

	m := &listenModel{
		SerialModel: models.NewSerialModel(portPath),
		terminal:    terminal,
		statusBar:   components.NewStatusBar("Serial Listen", portPath),
		help:        help.New(),
		keys:        keys.NewTerminalKeys(),
		now:         time.Now(),
	}
	m.statusBar.SetConnecting()
	m.statusBar.SetSettings(settings)
	return m
}

func runListenTUI(portPath string, hideTimestamps, hideIndicators bool, opts ...serial.Option) error {
	// Resolve the options once to show the requested settings before the
	// port is open.
	config := serial.DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return err
		}
	}

	m := newListenModel(portPath, hideTimestamps, hideIndicators, config.Settings)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	go func() {
		port, err := serial.Open(portPath, opts...)
		if err != nil {
			p.Send(models.ConnectionStatusMsg{Connected: false, Error: err})
			return
		}
		if m.GetContext().Err() != nil {
			// The UI quit while the port was opening.
			port.Close()
			return
		}
		m.SetPort(port)
		p.Send(models.ConnectionStatusMsg{Connected: true})

		readLoop(m.SerialModel, port, p.Send)
	}()

	_, err := p.Run()

	m.Cleanup()
	return err
}

// readLoop forwards everything read from port until the model's context
// is cancelled or the port fails.
func readLoop(m *models.SerialModel, port serial.Port, send func(tea.Msg)) {
	ctx := m.GetContext()
	buffer := make([]byte, 4096)
	for {
		n, err := port.ReadContext(ctx, buffer)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			send(models.ConnectionStatusMsg{Connected: false, Error: err})
			return
		}
		if n == 0 {
			continue
		}

		m.CountReceived(n)
		data := make([]byte, n)
		copy(data, buffer[:n])
		send(components.DataReceivedMsg{
			Timestamp: time.Now(),
			Data:      data,
		})
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *listenModel) Init() tea.Cmd {
	return tick()
}

func (m *listenModel) readSignals() tea.Cmd {
	port := m.GetPort()
	return func() tea.Msg {
		if port == nil {
			return signalsMsg{err: errors.New("not connected")}
		}
		s, err := port.GetModemSignals()
		return signalsMsg{signals: s, err: err}
	}
}

func (m *listenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Status bar is single line
		m.terminal.SetSize(msg.Width, msg.Height-1)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case tickMsg:
		m.now = time.Time(msg)
		cmds = append(cmds, tick())

	case models.ConnectionStatusMsg:
		m.SetConnected(msg.Connected)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetDisconnected(msg.Error)
		} else if port := m.GetPort(); port != nil {
			m.statusBar.SetConnected()
			m.statusBar.SetSettings(port.Settings())
		}

	case components.DataReceivedMsg:
		if !m.IsReady() {
			m.terminal.SetSize(80, 20)
			m.SetReady(true)
		}
		m.AddRawData(msg)
		m.terminal.AddMessage(msg)

	case signalsMsg:
		if msg.err != nil {
			m.signals = fmt.Sprintf("signals: %v", msg.err)
		} else {
			m.signals = fmt.Sprintf("CTS %s  DSR %s  RI %s  DCD %s",
				formatSignalState(msg.signals.CTS),
				formatSignalState(msg.signals.DSR),
				formatSignalState(msg.signals.RI),
				formatSignalState(msg.signals.DCD))
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Cleanup()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Clear):
			m.ClearData()
			m.terminal.Clear()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.ToggleHex):
			m.terminal.ToggleHex()
			m.terminal.RefreshDisplayWithRawData(m.GetRawData())

		case key.Matches(msg, m.keys.ToggleASCII):
			m.terminal.ToggleASCII()
			m.terminal.RefreshDisplayWithRawData(m.GetRawData())

		case key.Matches(msg, m.keys.ToggleTimestamps):
			m.terminal.ToggleTimestamps()
			m.terminal.RefreshDisplayWithRawData(m.GetRawData())

		case key.Matches(msg, m.keys.ToggleIndicators):
			m.terminal.ToggleIndicators()
			m.terminal.RefreshDisplayWithRawData(m.GetRawData())

		case key.Matches(msg, m.keys.ToggleFollow):
			m.terminal.ToggleFollow()

		case key.Matches(msg, m.keys.Up):
			m.terminal.ScrollUp(1)

		case key.Matches(msg, m.keys.Down):
			m.terminal.ScrollDown(1)

		case key.Matches(msg, m.keys.Signals):
			cmds = append(cmds, m.readSignals())
		}

	case tea.MouseMsg:
		_, cmd := m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		_, cmd := m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *listenModel) View() string {
	var content string
	switch {
	case m.statusBar.Err() != nil:
		content = styles.ErrorStyle.Width(m.terminal.Width()).Render(m.statusBar.Err().Error())
	case m.IsReady():
		content = m.terminal.View()
	default:
		content = styles.InfoStyle.Render("Initializing...")
	}

	mode := "FOLLOW"
	if !m.terminal.Following() {
		mode = "SCROLL"
	}
	statusBar := m.statusBar.View(mode, m.ReceivedBytes(), m.now.Format("15:04:05"))

	parts := []string{styles.ContentBorderStyle.Render(content)}
	if m.signals != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(colors.Muted).Render(m.signals))
	}
	if m.help.ShowAll {
		parts = append(parts, styles.HelpStyle.Render(m.help.View(m.keys)))
	}
	parts = append(parts, statusBar)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
