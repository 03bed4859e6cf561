package models

import (
	"context"
	"sync"

	"github.com/allbin/go-serialport"
	"github.com/allbin/go-serialport/internal/tui/components"
	"go.uber.org/atomic"
)

// maxRawMessages bounds the history kept for re-rendering.
const maxRawMessages = 5000

type ConnectionStatusMsg struct {
	Connected bool
	Error     error
}

// SerialModel holds the connection state shared by the reader goroutine
// and the Bubble Tea update loop.
type SerialModel struct {
	portPath string

	mu   sync.RWMutex
	port serial.Port

	connected *atomic.Bool
	rxBytes   *atomic.Int64
	rxChunks  *atomic.Int64

	// Only touched from the update loop
	rawData []components.DataReceivedMsg
	err     error
	ready   bool

	cancel context.CancelFunc
	ctx    context.Context
}

func NewSerialModel(portPath string) *SerialModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &SerialModel{
		portPath:  portPath,
		connected: atomic.NewBool(false),
		rxBytes:   atomic.NewInt64(0),
		rxChunks:  atomic.NewInt64(0),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *SerialModel) GetPort() serial.Port {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.port
}

func (m *SerialModel) SetPort(port serial.Port) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.port = port
}

func (m *SerialModel) GetPortPath() string {
	return m.portPath
}

func (m *SerialModel) IsConnected() bool {
	return m.connected.Load()
}

func (m *SerialModel) SetConnected(connected bool) {
	m.connected.Store(connected)
}

// CountReceived records n bytes read from the port. It is safe to call
// from the reader goroutine.
func (m *SerialModel) CountReceived(n int) {
	m.rxBytes.Add(int64(n))
	m.rxChunks.Inc()
}

func (m *SerialModel) ReceivedBytes() int64 {
	return m.rxBytes.Load()
}

func (m *SerialModel) ReceivedChunks() int64 {
	return m.rxChunks.Load()
}

func (m *SerialModel) GetError() error {
	return m.err
}

func (m *SerialModel) SetError(err error) {
	m.err = err
}

func (m *SerialModel) IsReady() bool {
	return m.ready
}

func (m *SerialModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *SerialModel) GetRawData() []components.DataReceivedMsg {
	return m.rawData
}

func (m *SerialModel) AddRawData(msg components.DataReceivedMsg) {
	m.rawData = append(m.rawData, msg)
	if len(m.rawData) > maxRawMessages {
		m.rawData = m.rawData[len(m.rawData)-maxRawMessages:]
	}
}

// ClearData drops the history and resets the counters.
func (m *SerialModel) ClearData() {
	m.rawData = nil
	m.rxBytes.Store(0)
	m.rxChunks.Store(0)
}

func (m *SerialModel) GetContext() context.Context {
	return m.ctx
}

func (m *SerialModel) Cancel() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *SerialModel) Cleanup() {
	// Cancel context to stop goroutines
	m.Cancel()

	m.mu.Lock()
	if m.port != nil {
		m.port.Close()
		m.port = nil
	}
	m.mu.Unlock()
	m.connected.Store(false)
}
