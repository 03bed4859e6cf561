package models

import (
	"sync"
	"testing"

	"github.com/allbin/go-serialport/internal/tui/components"
)

func TestCountReceivedConcurrent(t *testing.T) {
	m := NewSerialModel("/dev/ttyUSB0")
	defer m.Cleanup()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.CountReceived(3)
			}
		}()
	}
	wg.Wait()

	if got := m.ReceivedBytes(); got != 2400 {
		t.Errorf("Expected 2400 bytes, got %d", got)
	}
	if got := m.ReceivedChunks(); got != 800 {
		t.Errorf("Expected 800 chunks, got %d", got)
	}

	m.ClearData()
	if m.ReceivedBytes() != 0 || m.ReceivedChunks() != 0 {
		t.Error("Expected counters reset by ClearData")
	}
}

func TestRawDataIsBounded(t *testing.T) {
	m := NewSerialModel("COM3")
	defer m.Cleanup()

	for i := 0; i < maxRawMessages+5; i++ {
		m.AddRawData(components.DataReceivedMsg{Data: []byte{byte(i)}})
	}
	data := m.GetRawData()
	if len(data) != maxRawMessages {
		t.Fatalf("Expected %d messages, got %d", maxRawMessages, len(data))
	}
	if data[0].Data[0] != byte(5) {
		t.Errorf("Expected oldest messages dropped, first is %d", data[0].Data[0])
	}
}

func TestCleanupCancelsContext(t *testing.T) {
	m := NewSerialModel("COM3")
	m.SetConnected(true)
	m.Cleanup()

	if m.GetContext().Err() == nil {
		t.Error("Expected context cancelled after Cleanup")
	}
	if m.IsConnected() {
		t.Error("Expected disconnected after Cleanup")
	}
	if m.GetPort() != nil {
		t.Error("Expected no port after Cleanup")
	}
}
