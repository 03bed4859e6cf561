package serial

import (
	"io"
	"time"

	"golang.org/x/sys/unix"
)

// linuxDevice drives a tty descriptor opened non-blocking. Every transfer
// waits in poll for at most the requested timeout.
type linuxDevice struct {
	fd      int
	termios unix.Termios
}

func openNativeDevice(path string) (device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, osError("open "+path, err)
	}
	// Not every tty driver supports exclusive mode.
	_ = unix.IoctlSetInt(fd, unix.TIOCEXCL, 0)
	return &linuxDevice{fd: fd}, nil
}

func (d *linuxDevice) loadState() error {
	t, err := unix.IoctlGetTermios(d.fd, unix.TCGETS2)
	if err != nil {
		return osError("get termios", err)
	}
	d.termios = *t
	return nil
}

func (d *linuxDevice) applyDefaults() { termiosApplyDefaults(&d.termios) }

func (d *linuxDevice) configure(s Settings) error {
	return termiosApplySettings(&d.termios, s)
}

func (d *linuxDevice) storeState() error {
	if err := unix.IoctlSetTermios(d.fd, unix.TCSETS2, &d.termios); err != nil {
		return osError("set termios", err)
	}
	return nil
}

func (d *linuxDevice) prepare(time.Duration) error { return nil }

func (d *linuxDevice) setTimeout(time.Duration) error { return nil }

func (d *linuxDevice) readBack() (Settings, error) {
	t, err := unix.IoctlGetTermios(d.fd, unix.TCGETS2)
	if err != nil {
		return Settings{}, osError("get termios", err)
	}
	return termiosSettings(t), nil
}

// poll waits until events are signalled or timeout passes. Zero revents
// means the timeout expired.
func (d *linuxDevice) poll(events int16, timeout time.Duration) (int16, error) {
	deadline := time.Now().Add(timeout)
	fds := []unix.PollFd{{Fd: int32(d.fd), Events: events}}
	for {
		ms := 0
		if remaining := time.Until(deadline); remaining > 0 {
			ms = int((remaining + time.Millisecond - 1) / time.Millisecond)
		}
		n, err := unix.Poll(fds, ms)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, osError("poll", err)
		}
		if n == 0 {
			return 0, nil
		}
		return fds[0].Revents, nil
	}
}

func hangup(op string) error {
	return &Error{Kind: KindNoDevice, Op: op, Err: io.EOF}
}

func (d *linuxDevice) read(p []byte, timeout time.Duration) (int, error) {
	for {
		revents, err := d.poll(unix.POLLIN, timeout)
		if err != nil || revents == 0 {
			return 0, err
		}
		if revents&unix.POLLIN == 0 {
			return 0, hangup("read")
		}

		n, err := unix.Read(d.fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return 0, nil
		case err != nil:
			return 0, osError("read", err)
		case n == 0:
			return 0, hangup("read")
		}
		return n, nil
	}
}

func (d *linuxDevice) write(p []byte, timeout time.Duration) (int, error) {
	deadline := time.Now().Add(timeout)
	written := 0
	for written < len(p) {
		revents, err := d.poll(unix.POLLOUT, time.Until(deadline))
		if err != nil {
			return written, err
		}
		if revents == 0 {
			break
		}
		if revents&unix.POLLOUT == 0 {
			return written, hangup("write")
		}

		n, err := unix.Write(d.fd, p[written:])
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return written, osError("write", err)
		}
		written += n
	}
	return written, nil
}

func (d *linuxDevice) drain() error {
	if err := unix.IoctlSetInt(d.fd, unix.TCSBRK, 1); err != nil {
		return osError("drain", err)
	}
	return nil
}

func (d *linuxDevice) modemBits(op string, bits int, set bool) error {
	req := uint(unix.TIOCMBIC)
	if set {
		req = unix.TIOCMBIS
	}
	if err := unix.IoctlSetPointerInt(d.fd, req, bits); err != nil {
		return osError(op, err)
	}
	return nil
}

func (d *linuxDevice) setRTS(level bool) error {
	return d.modemBits("set rts", unix.TIOCM_RTS, level)
}

func (d *linuxDevice) setDTR(level bool) error {
	return d.modemBits("set dtr", unix.TIOCM_DTR, level)
}

func (d *linuxDevice) setBreak(on bool) error {
	req := uint(unix.TIOCCBRK)
	if on {
		req = unix.TIOCSBRK
	}
	if err := unix.IoctlSetInt(d.fd, req, 0); err != nil {
		return osError("set break", err)
	}
	return nil
}

func (d *linuxDevice) modemStatus() (modemStatus, error) {
	status, err := unix.IoctlGetInt(d.fd, unix.TIOCMGET)
	if err != nil {
		return modemStatus{}, osError("modem status", err)
	}
	return modemStatus{
		cts: status&unix.TIOCM_CTS != 0,
		dsr: status&unix.TIOCM_DSR != 0,
		ri:  status&unix.TIOCM_RI != 0,
		cd:  status&unix.TIOCM_CAR != 0,
	}, nil
}

func (d *linuxDevice) queued() (int, int, error) {
	in, err := unix.IoctlGetInt(d.fd, unix.TIOCINQ)
	if err != nil {
		return 0, 0, osError("input queue", err)
	}
	out, err := unix.IoctlGetInt(d.fd, unix.TIOCOUTQ)
	if err != nil {
		return 0, 0, osError("output queue", err)
	}
	return in, out, nil
}

func (d *linuxDevice) purge(target ClearTarget) error {
	queue := unix.TCIOFLUSH
	switch target {
	case ClearInput:
		queue = unix.TCIFLUSH
	case ClearOutput:
		queue = unix.TCOFLUSH
	}
	if err := unix.IoctlSetInt(d.fd, unix.TCFLSH, queue); err != nil {
		return osError("clear "+target.String(), err)
	}
	return nil
}

func (d *linuxDevice) duplicate() (device, error) {
	fd, err := unix.FcntlInt(uintptr(d.fd), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return nil, osError("clone", err)
	}
	return &linuxDevice{fd: fd, termios: d.termios}, nil
}

func (d *linuxDevice) close() error {
	if d.fd < 0 {
		return nil
	}
	err := unix.Close(d.fd)
	d.fd = -1
	if err != nil {
		return osError("close", err)
	}
	return nil
}
