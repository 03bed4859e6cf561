package serial

import (
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sys/windows"
)

func TestMillis(t *testing.T) {
	tests := []struct {
		timeout  time.Duration
		expected uint32
	}{
		{0, 0},
		{-time.Second, 0},
		{time.Nanosecond, 1},
		{999 * time.Microsecond, 1},
		{time.Millisecond, 1},
		{1500 * time.Microsecond, 2},
		{50 * time.Millisecond, 50},
		{time.Duration(maxDWORD) * time.Millisecond, maxDWORD - 1},
		{time.Duration(math.MaxInt64), maxDWORD - 1},
	}

	for _, tt := range tests {
		if got := millis(tt.timeout); got != tt.expected {
			t.Errorf("millis(%v) = %d, expected %d", tt.timeout, got, tt.expected)
		}
	}
}

func TestTimeoutsFor(t *testing.T) {
	tests := []struct {
		timeout  time.Duration
		expected commTimeouts
	}{
		{0, commTimeouts{ReadIntervalTimeout: maxDWORD}},
		{100 * time.Millisecond, commTimeouts{
			ReadIntervalTimeout:        maxDWORD,
			ReadTotalTimeoutMultiplier: maxDWORD,
			ReadTotalTimeoutConstant:   100,
		}},
		{1500 * time.Microsecond, commTimeouts{
			ReadIntervalTimeout:        maxDWORD,
			ReadTotalTimeoutMultiplier: maxDWORD,
			ReadTotalTimeoutConstant:   2,
		}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.expected, timeoutsFor(tt.timeout)); diff != "" {
			t.Errorf("timeoutsFor(%v) mismatch (-want +got):\n%s", tt.timeout, diff)
		}
	}
}

const (
	pipeAccessDuplex = 0x00000003
	pipeTypeByte     = 0x00000000
)

// pipeDevices returns both ends of a named pipe opened for overlapped I/O,
// wrapped as devices with their completion events. Pipes have no comm
// state, so only the transfer engine can be exercised through them.
func pipeDevices(t *testing.T) (server, client *windowsDevice) {
	t.Helper()
	name, err := windows.UTF16PtrFromString(fmt.Sprintf(`\\.\pipe\go-serialport-test-%d-%d`, os.Getpid(), time.Now().UnixNano()))
	if err != nil {
		t.Fatal(err)
	}

	sh, err := windows.CreateNamedPipe(name, pipeAccessDuplex|windows.FILE_FLAG_OVERLAPPED, pipeTypeByte, 1, 4096, 4096, 0, nil)
	if err != nil {
		t.Skipf("named pipes unavailable: %v", err)
	}
	server = &windowsDevice{handle: sh}
	t.Cleanup(func() { server.close() })

	ch, err := windows.CreateFile(name, windows.GENERIC_READ|windows.GENERIC_WRITE, 0, nil,
		windows.OPEN_EXISTING, windows.FILE_FLAG_OVERLAPPED, 0)
	if err != nil {
		t.Fatalf("open pipe client: %v", err)
	}
	client = &windowsDevice{handle: ch}
	t.Cleanup(func() { client.close() })

	for _, d := range []*windowsDevice{server, client} {
		if d.readOv.HEvent, err = windows.CreateEvent(nil, 1, 0, nil); err != nil {
			t.Fatal(err)
		}
		if d.writeOv.HEvent, err = windows.CreateEvent(nil, 1, 0, nil); err != nil {
			t.Fatal(err)
		}
	}

	// The client is already attached, so this completes at once.
	if err := windows.ConnectNamedPipe(sh, &server.readOv); err != nil && err != windows.ERROR_PIPE_CONNECTED {
		t.Fatalf("connect pipe: %v", err)
	}
	return server, client
}

func TestTransferTimeoutCancels(t *testing.T) {
	_, client := pipeDevices(t)

	for _, timeout := range []time.Duration{0, 50 * time.Millisecond} {
		start := time.Now()
		n, err := client.read(make([]byte, 16), timeout)
		elapsed := time.Since(start)

		if n != 0 || err != nil {
			t.Errorf("read(%v) = %d, %v; expected 0, nil", timeout, n, err)
		}
		if elapsed < timeout-5*time.Millisecond || elapsed > timeout+time.Second {
			t.Errorf("read(%v) returned after %v", timeout, elapsed)
		}
	}
}

func TestTransferAfterCancel(t *testing.T) {
	server, client := pipeDevices(t)

	// A cancelled read must leave the handle usable.
	if n, err := client.read(make([]byte, 16), 20*time.Millisecond); n != 0 || err != nil {
		t.Fatalf("idle read = %d, %v", n, err)
	}

	n, err := server.write([]byte("hello"), time.Second)
	if err != nil || n != 5 {
		t.Fatalf("write = %d, %v", n, err)
	}

	buf := make([]byte, 16)
	n, err = client.read(buf, time.Second)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(buf[:n]) != "hello" {
		t.Errorf("read %q, expected %q", buf[:n], "hello")
	}
}

func TestCloseReleasesEvents(t *testing.T) {
	server, _ := pipeDevices(t)

	if err := server.close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if server.handle != 0 || server.readOv.HEvent != 0 || server.writeOv.HEvent != 0 {
		t.Error("handles left open after close")
	}
	if err := server.close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
}

// TestPortIntegration needs a real or emulated port (for example a com0com
// pair) named by SERIAL_TEST_PORT, with nothing sending on the other side.
func TestPortIntegration(t *testing.T) {
	path := os.Getenv("SERIAL_TEST_PORT")
	if path == "" {
		t.Skip("SERIAL_TEST_PORT not set")
	}

	p, err := Open(path, WithBaudRate(115200), WithTimeout(100*time.Millisecond))
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", path, err)
	}
	defer p.Close()

	if err := p.Clear(ClearAll); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	start := time.Now()
	n, err := p.Read(make([]byte, 64))
	elapsed := time.Since(start)
	if n != 0 || err != nil {
		t.Errorf("idle Read() = %d, %v; expected 0, nil", n, err)
	}
	if elapsed < 90*time.Millisecond || elapsed > time.Second {
		t.Errorf("Read returned after %v, expected about 100ms", elapsed)
	}

	s, err := p.ReadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if s.BaudRate != 115200 || s.DataBits != DataBits8 || s.Parity != ParityNone {
		t.Errorf("ReadSettings() = %v", s)
	}

	if err := p.SetTimeout(0); err != nil {
		t.Fatal(err)
	}
	start = time.Now()
	if n, err := p.Read(make([]byte, 64)); n != 0 || err != nil {
		t.Errorf("zero-timeout Read() = %d, %v", n, err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("zero-timeout Read blocked for %v", elapsed)
	}
}
