package serial

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Port represents a serial port connection interface
type Port interface {
	io.ReadWriteCloser

	// ReadContext and WriteContext repeat timeout-bounded transfers until
	// data arrives, everything is written, or ctx is done.
	ReadContext(ctx context.Context, buf []byte) (int, error)
	WriteContext(ctx context.Context, data []byte) (int, error)
	Drain() error

	Path() string
	// Settings returns the configuration last applied through this handle.
	Settings() Settings
	// ReadSettings queries the device. Fields the hardware reports in a
	// form this package cannot represent come back as Unknown.
	ReadSettings() (Settings, error)
	ApplySettings(s Settings) error
	SetBaudRate(rate uint32) error
	SetDataBits(bits DataBits) error
	SetParity(parity Parity) error
	SetStopBits(bits StopBits) error
	SetFlowControl(fc FlowControl) error
	SetTimeout(timeout time.Duration) error

	// Modem signal control and monitoring
	SetRTS(level bool) error
	SetDTR(level bool) error
	SetBreak(on bool) error
	CTS() (bool, error)
	DSR() (bool, error)
	RI() (bool, error)
	CD() (bool, error)
	GetModemSignals() (ModemSignals, error)

	BytesToRead() (int, error)
	BytesToWrite() (int, error)
	Clear(target ClearTarget) error

	// TryClone returns an independent handle to the same device.
	TryClone() (Port, error)
}

// ModemSignals represents modem control signal states
type ModemSignals struct {
	CTS bool // Clear To Send
	DSR bool // Data Set Ready
	RI  bool // Ring Indicator
	DCD bool // Data Carrier Detect
}

// port is the concrete implementation of the Port interface
type port struct {
	mu       sync.RWMutex
	dev      device
	path     string
	settings Settings
	log      zerolog.Logger
	closed   bool
}

// Ensure port implements Port interface at compile time
var _ Port = (*port)(nil)

// contextSlice bounds each transfer made on behalf of ReadContext and
// WriteContext when the port timeout is zero or long.
const contextSlice = 50 * time.Millisecond

// Open opens a serial port with the given device path and options.
//
// Open either returns a fully configured Port or releases everything it
// acquired before returning the error.
func Open(path string, opts ...Option) (Port, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}
	if err := config.Settings.Validate(); err != nil {
		return nil, err
	}

	log := config.Logger.With().Str("port", path).Logger()

	dev, err := openDevice(path)
	if err != nil {
		return nil, err
	}
	if err := setup(dev, config.Settings); err != nil {
		if cerr := dev.close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		log.Debug().Err(err).Msg("open failed")
		return nil, err
	}

	log.Debug().Stringer("settings", config.Settings).Dur("timeout", config.Settings.Timeout).Msg("port opened")

	return &port{
		dev:      dev,
		path:     path,
		settings: config.Settings,
		log:      log,
	}, nil
}

func setup(dev device, s Settings) error {
	if err := dev.loadState(); err != nil {
		return err
	}
	dev.applyDefaults()
	if err := dev.configure(s); err != nil {
		return err
	}
	if err := dev.storeState(); err != nil {
		return err
	}
	return dev.prepare(s.Timeout)
}

// Close closes the serial port. Closing an already closed port is a no-op.
func (p *port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	err := p.dev.close()
	p.log.Debug().Err(err).Msg("port closed")
	return err
}

func (p *port) Path() string { return p.path }

// Read reads data from the serial port. It returns 0 bytes and a nil error
// when the timeout expires before anything arrives.
func (p *port) Read(buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, closedError("read")
	}
	if len(buf) == 0 {
		return 0, nil
	}
	return p.dev.read(buf, p.settings.Timeout)
}

// Write writes data to the serial port. When the timeout expires first,
// the number of bytes accepted so far is returned with a nil error.
func (p *port) Write(data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, closedError("write")
	}
	if len(data) == 0 {
		return 0, nil
	}
	n, err := p.dev.write(data, p.settings.Timeout)
	if err == nil && n < len(data) {
		p.log.Debug().Int("written", n).Int("requested", len(data)).Msg("write timed out")
	}
	return n, err
}

// sliceFor returns the bound for the next transfer made under ctx.
func (p *port) sliceFor(ctx context.Context) (time.Duration, error) {
	slice := p.settings.Timeout
	if slice <= 0 || slice > contextSlice {
		slice = contextSlice
	}
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, context.DeadlineExceeded
		}
		if remaining < slice {
			slice = remaining
		}
	}
	return slice, nil
}

// ReadContext reads data with context timeout support
func (p *port) ReadContext(ctx context.Context, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		n, err := p.readSlice(ctx, buf)
		if n > 0 || err != nil {
			return n, err
		}
	}
}

func (p *port) readSlice(ctx context.Context, buf []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, closedError("read")
	}
	slice, err := p.sliceFor(ctx)
	if err != nil {
		return 0, err
	}
	return p.dev.read(buf, slice)
}

// WriteContext writes data with context timeout support
func (p *port) WriteContext(ctx context.Context, data []byte) (int, error) {
	written := 0
	for written < len(data) {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, err := p.writeSlice(ctx, data[written:])
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func (p *port) writeSlice(ctx context.Context, data []byte) (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, closedError("write")
	}
	slice, err := p.sliceFor(ctx)
	if err != nil {
		return 0, err
	}
	return p.dev.write(data, slice)
}

// Drain waits until all output written to the port has been transmitted
func (p *port) Drain() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return closedError("drain")
	}
	return p.dev.drain()
}

func (p *port) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

func (p *port) ReadSettings() (Settings, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return Settings{}, closedError("read settings")
	}
	s, err := p.dev.readBack()
	if err != nil {
		return Settings{}, err
	}
	s.Timeout = p.settings.Timeout
	if !s.Complete() {
		p.log.Warn().Stringer("reported", s).Stringer("applied", p.settings).Msg("device reported settings it cannot represent")
	}
	return s, nil
}

// update performs a read-modify-write of the native control block. The
// cached settings only change once the device has accepted the new block.
func (p *port) update(op string, modify func(*Settings)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return closedError(op)
	}

	next := p.settings
	modify(&next)
	if err := next.Validate(); err != nil {
		return err
	}

	if err := p.dev.loadState(); err != nil {
		return err
	}
	if err := p.dev.configure(next); err != nil {
		return err
	}
	if err := p.dev.storeState(); err != nil {
		return err
	}
	if next.Timeout != p.settings.Timeout {
		if err := p.dev.setTimeout(next.Timeout); err != nil {
			return err
		}
	}

	p.log.Debug().Str("op", op).Stringer("settings", next).Msg("settings applied")
	p.settings = next
	return nil
}

func (p *port) ApplySettings(s Settings) error {
	return p.update("apply settings", func(next *Settings) { *next = s })
}

func (p *port) SetBaudRate(rate uint32) error {
	return p.update("set baud rate", func(s *Settings) { s.BaudRate = rate })
}

func (p *port) SetDataBits(bits DataBits) error {
	return p.update("set data bits", func(s *Settings) { s.DataBits = bits })
}

func (p *port) SetParity(parity Parity) error {
	return p.update("set parity", func(s *Settings) { s.Parity = parity })
}

func (p *port) SetStopBits(bits StopBits) error {
	return p.update("set stop bits", func(s *Settings) { s.StopBits = bits })
}

func (p *port) SetFlowControl(fc FlowControl) error {
	return p.update("set flow control", func(s *Settings) { s.FlowControl = fc })
}

// SetTimeout changes the bound applied to subsequent reads and writes.
func (p *port) SetTimeout(timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return closedError("set timeout")
	}
	if timeout < 0 {
		return invalidInput("set timeout", "negative timeout %v", timeout)
	}
	if err := p.dev.setTimeout(timeout); err != nil {
		return err
	}
	p.settings.Timeout = timeout
	return nil
}

// SetRTS manually sets the RTS signal state
func (p *port) SetRTS(level bool) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return closedError("set rts")
	}
	return p.dev.setRTS(level)
}

// SetDTR sets DTR signal state
func (p *port) SetDTR(level bool) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return closedError("set dtr")
	}
	return p.dev.setDTR(level)
}

// SetBreak starts or ends a break condition on the transmit line.
func (p *port) SetBreak(on bool) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return closedError("set break")
	}
	return p.dev.setBreak(on)
}

// GetModemSignals returns current state of all modem input signals
func (p *port) GetModemSignals() (ModemSignals, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ModemSignals{}, closedError("modem status")
	}
	st, err := p.dev.modemStatus()
	if err != nil {
		return ModemSignals{}, err
	}
	return ModemSignals{CTS: st.cts, DSR: st.dsr, RI: st.ri, DCD: st.cd}, nil
}

func (p *port) CTS() (bool, error) {
	s, err := p.GetModemSignals()
	return s.CTS, err
}

func (p *port) DSR() (bool, error) {
	s, err := p.GetModemSignals()
	return s.DSR, err
}

func (p *port) RI() (bool, error) {
	s, err := p.GetModemSignals()
	return s.RI, err
}

func (p *port) CD() (bool, error) {
	s, err := p.GetModemSignals()
	return s.DCD, err
}

// BytesToRead returns the number of bytes waiting in the receive buffer.
func (p *port) BytesToRead() (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, closedError("bytes to read")
	}
	in, _, err := p.dev.queued()
	return in, err
}

// BytesToWrite returns the number of bytes not yet transmitted.
func (p *port) BytesToWrite() (int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, closedError("bytes to write")
	}
	_, out, err := p.dev.queued()
	return out, err
}

// Clear discards pending data in the selected buffers.
func (p *port) Clear(target ClearTarget) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return closedError("clear")
	}
	if target < ClearInput || target > ClearAll {
		return invalidInput("clear", "target %d", int(target))
	}
	return p.dev.purge(target)
}

func (p *port) TryClone() (Port, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, closedError("clone")
	}
	dev, err := p.dev.duplicate()
	if err != nil {
		return nil, err
	}
	p.log.Debug().Msg("port cloned")
	return &port{
		dev:      dev,
		path:     p.path,
		settings: p.settings,
		log:      p.log,
	}, nil
}
