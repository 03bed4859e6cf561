package serial

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// openPTY returns the master descriptor and the slave path of a new
// pseudo terminal. The test is skipped when no pty is available.
func openPTY(t *testing.T) (int, string) {
	t.Helper()
	master, err := unix.Open("/dev/ptmx", unix.O_RDWR|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		t.Skipf("no pseudo terminal available: %v", err)
	}
	t.Cleanup(func() { unix.Close(master) })

	if err := unix.IoctlSetPointerInt(master, unix.TIOCSPTLCK, 0); err != nil {
		t.Skipf("unlockpt: %v", err)
	}
	n, err := unix.IoctlGetInt(master, unix.TIOCGPTN)
	if err != nil {
		t.Skipf("ptsname: %v", err)
	}
	return master, fmt.Sprintf("/dev/pts/%d", n)
}

// readMaster collects exactly n bytes from the master side.
func readMaster(t *testing.T, master, n int) []byte {
	t.Helper()
	buf := make([]byte, 0, n)
	deadline := time.Now().Add(2 * time.Second)
	for len(buf) < n {
		ms := int(time.Until(deadline) / time.Millisecond)
		if ms < 0 {
			ms = 0
		}
		fds := []unix.PollFd{{Fd: int32(master), Events: unix.POLLIN}}
		if _, err := unix.Poll(fds, ms); err != nil && err != unix.EINTR {
			t.Fatalf("poll master: %v", err)
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			t.Fatalf("timed out after %d of %d bytes", len(buf), n)
		}
		chunk := make([]byte, n-len(buf))
		m, err := unix.Read(master, chunk)
		if err != nil {
			t.Fatalf("read master: %v", err)
		}
		buf = append(buf, chunk[:m]...)
	}
	return buf
}

func waitQueued(t *testing.T, p Port, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got, err := p.BytesToRead(); err == nil && got >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("input queue never reached %d bytes", n)
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open("/dev/ttyDOESNOTEXIST0")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}
}

func TestOpenNonTTY(t *testing.T) {
	_, err := Open("/dev/null")
	if err == nil {
		t.Fatal("Expected error opening /dev/null as a serial port")
	}
	if KindOf(err) == KindNoDevice {
		t.Errorf("Expected a configuration failure, got %v", err)
	}
}

func TestPTYReadWrite(t *testing.T) {
	master, slave := openPTY(t)

	p, err := Open(slave, WithBaudRate(115200), WithTimeout(500*time.Millisecond))
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", slave, err)
	}
	defer p.Close()

	if n, err := p.Write([]byte("ping\n")); n != 5 || err != nil {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	// Output processing is off, so no CR is inserted.
	if got := readMaster(t, master, 5); string(got) != "ping\n" {
		t.Errorf("master received %q", got)
	}

	if _, err := unix.Write(master, []byte("pong")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 16)
	n, err := p.Read(buf)
	if err != nil || string(buf[:n]) != "pong" {
		t.Errorf("Read() = %q, %v", buf[:n], err)
	}
}

func TestPTYReadTimeout(t *testing.T) {
	_, slave := openPTY(t)

	p, err := Open(slave, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", slave, err)
	}
	defer p.Close()

	start := time.Now()
	n, err := p.Read(make([]byte, 8))
	elapsed := time.Since(start)
	if n != 0 || err != nil {
		t.Errorf("Read() = %d, %v; expected 0, nil", n, err)
	}
	if elapsed < 40*time.Millisecond || elapsed > time.Second {
		t.Errorf("Read returned after %v, expected about 50ms", elapsed)
	}
}

func TestPTYSettingsReadBack(t *testing.T) {
	_, slave := openPTY(t)

	p, err := Open(slave,
		WithBaudRate(57600),
		WithDataBits(DataBits7),
		WithParity(ParityEven),
		WithStopBits(StopBitsTwo),
		WithFlowControl(FlowControlHardware),
	)
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", slave, err)
	}
	defer p.Close()

	// The pty driver forces CS8 and clears PARENB, so only the fields it
	// keeps are checked on the device.
	s, err := p.ReadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if s.BaudRate != 57600 || s.StopBits != StopBitsTwo || s.FlowControl != FlowControlHardware {
		t.Errorf("ReadSettings() = %v", s)
	}

	dev, ok := p.(*port).dev.(*linuxDevice)
	if !ok {
		t.Fatalf("unexpected device type %T", p.(*port).dev)
	}
	written := termiosSettings(&dev.termios)
	if written.DataBits != DataBits7 || written.Parity != ParityEven {
		t.Errorf("termios written to the device = %v", written)
	}

	if err := p.SetFlowControl(FlowControlSoftware); err != nil {
		t.Fatalf("SetFlowControl failed: %v", err)
	}
	if s, err := p.ReadSettings(); err != nil || s.FlowControl != FlowControlSoftware {
		t.Errorf("ReadSettings() after SetFlowControl = %v, %v", s, err)
	}

	if err := p.SetStopBits(StopBitsOnePointFive); KindOf(err) != KindInvalidInput {
		t.Errorf("Expected invalid input for 1.5 stop bits, got %v", err)
	}
	if p.Settings().StopBits != StopBitsTwo {
		t.Errorf("Cached stop bits changed to %v", p.Settings().StopBits)
	}
}

func TestPTYClearInput(t *testing.T) {
	master, slave := openPTY(t)

	p, err := Open(slave)
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", slave, err)
	}
	defer p.Close()

	if _, err := unix.Write(master, []byte("stale")); err != nil {
		t.Fatal(err)
	}
	waitQueued(t, p, 5)

	if err := p.Clear(ClearInput); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n, err := p.BytesToRead(); n != 0 || err != nil {
		t.Errorf("BytesToRead() after clear = %d, %v", n, err)
	}
}

func TestPTYTryClone(t *testing.T) {
	master, slave := openPTY(t)

	p, err := Open(slave, WithTimeout(500*time.Millisecond))
	if err != nil {
		t.Fatalf("Open(%s) failed: %v", slave, err)
	}
	clone, err := p.TryClone()
	if err != nil {
		p.Close()
		t.Fatalf("TryClone failed: %v", err)
	}
	defer clone.Close()

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := unix.Write(master, []byte("still here")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 32)
	n, err := clone.Read(buf)
	if err != nil || n == 0 {
		t.Errorf("clone Read() = %d, %v", n, err)
	}
}
