package serial

import "golang.org/x/sys/unix"

// baudRateCode converts a baud rate to its termios speed constant. Rates
// without a constant are programmed through BOTHER.
func baudRateCode(rate uint32) (uint32, bool) {
	switch rate {
	case 50:
		return unix.B50, true
	case 75:
		return unix.B75, true
	case 110:
		return unix.B110, true
	case 134:
		return unix.B134, true
	case 150:
		return unix.B150, true
	case 200:
		return unix.B200, true
	case 300:
		return unix.B300, true
	case 600:
		return unix.B600, true
	case 1200:
		return unix.B1200, true
	case 1800:
		return unix.B1800, true
	case 2400:
		return unix.B2400, true
	case 4800:
		return unix.B4800, true
	case 9600:
		return unix.B9600, true
	case 19200:
		return unix.B19200, true
	case 38400:
		return unix.B38400, true
	case 57600:
		return unix.B57600, true
	case 115200:
		return unix.B115200, true
	case 230400:
		return unix.B230400, true
	case 460800:
		return unix.B460800, true
	case 500000:
		return unix.B500000, true
	case 576000:
		return unix.B576000, true
	case 921600:
		return unix.B921600, true
	case 1000000:
		return unix.B1000000, true
	case 1152000:
		return unix.B1152000, true
	case 1500000:
		return unix.B1500000, true
	case 2000000:
		return unix.B2000000, true
	case 2500000:
		return unix.B2500000, true
	case 3000000:
		return unix.B3000000, true
	case 3500000:
		return unix.B3500000, true
	case 4000000:
		return unix.B4000000, true
	default:
		return 0, false
	}
}

// baudRateFromCode is the inverse of baudRateCode.
func baudRateFromCode(code uint32) (uint32, bool) {
	for _, rate := range []uint32{
		50, 75, 110, 134, 150, 200, 300, 600, 1200, 1800, 2400, 4800, 9600,
		19200, 38400, 57600, 115200, 230400, 460800, 500000, 576000, 921600,
		1000000, 1152000, 1500000, 2000000, 2500000, 3000000, 3500000, 4000000,
	} {
		if c, _ := baudRateCode(rate); c == code {
			return rate, true
		}
	}
	return 0, false
}

// termiosApplyDefaults puts t into raw mode: no line discipline, no
// character translation, receiver on and modem control lines ignored.
// Reads return immediately; timeouts are handled with poll.
func termiosApplyDefaults(t *unix.Termios) {
	t.Cflag |= unix.CREAD | unix.CLOCAL

	t.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHOE | unix.ECHOK | unix.ECHONL |
		unix.ECHOCTL | unix.ECHOPRT | unix.ECHOKE | unix.ISIG | unix.IEXTEN

	t.Iflag &^= unix.IXANY | unix.INPCK | unix.IGNPAR | unix.PARMRK | unix.ISTRIP |
		unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IUCLC

	t.Oflag &^= unix.OPOST

	t.Cc[unix.VMIN] = 0
	t.Cc[unix.VTIME] = 0
}

// termiosApplySettings writes s into t. Nothing is modified unless every
// field can be expressed.
func termiosApplySettings(t *unix.Termios, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.StopBits == StopBitsOnePointFive {
		return invalidInput("configure", "1.5 stop bits are not supported by termios")
	}

	t.Cflag &^= unix.CBAUD
	if code, ok := baudRateCode(s.BaudRate); ok {
		t.Cflag |= code
	} else {
		t.Cflag |= unix.BOTHER
	}
	t.Ispeed = s.BaudRate
	t.Ospeed = s.BaudRate

	t.Cflag &^= unix.CSIZE
	switch s.DataBits {
	case DataBits5:
		t.Cflag |= unix.CS5
	case DataBits6:
		t.Cflag |= unix.CS6
	case DataBits7:
		t.Cflag |= unix.CS7
	default:
		t.Cflag |= unix.CS8
	}

	t.Cflag &^= unix.PARENB | unix.PARODD | unix.CMSPAR
	switch s.Parity {
	case ParityOdd:
		t.Cflag |= unix.PARENB | unix.PARODD
	case ParityEven:
		t.Cflag |= unix.PARENB
	}

	if s.StopBits == StopBitsTwo {
		t.Cflag |= unix.CSTOPB
	} else {
		t.Cflag &^= unix.CSTOPB
	}

	t.Cflag &^= unix.CRTSCTS
	t.Iflag &^= unix.IXON | unix.IXOFF
	switch s.FlowControl {
	case FlowControlSoftware:
		t.Iflag |= unix.IXON | unix.IXOFF
	case FlowControlHardware:
		t.Cflag |= unix.CRTSCTS
	}
	return nil
}

// termiosSettings translates t back. Timeout is not stored in termios and
// is left zero.
func termiosSettings(t *unix.Termios) Settings {
	var s Settings

	code := t.Cflag & unix.CBAUD
	if rate, ok := baudRateFromCode(code); ok && code != unix.BOTHER {
		s.BaudRate = rate
	} else {
		s.BaudRate = t.Ospeed
	}

	switch t.Cflag & unix.CSIZE {
	case unix.CS5:
		s.DataBits = DataBits5
	case unix.CS6:
		s.DataBits = DataBits6
	case unix.CS7:
		s.DataBits = DataBits7
	case unix.CS8:
		s.DataBits = DataBits8
	}

	switch {
	case t.Cflag&unix.PARENB == 0:
		s.Parity = ParityNone
	case t.Cflag&unix.CMSPAR != 0:
		s.Parity = ParityUnknown
	case t.Cflag&unix.PARODD != 0:
		s.Parity = ParityOdd
	default:
		s.Parity = ParityEven
	}

	if t.Cflag&unix.CSTOPB != 0 {
		s.StopBits = StopBitsTwo
	} else {
		s.StopBits = StopBitsOne
	}

	switch {
	case t.Cflag&unix.CRTSCTS != 0:
		s.FlowControl = FlowControlHardware
	case t.Iflag&(unix.IXON|unix.IXOFF) != 0:
		s.FlowControl = FlowControlSoftware
	default:
		s.FlowControl = FlowControlNone
	}
	return s
}
