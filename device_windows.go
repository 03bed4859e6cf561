package serial

import (
	"errors"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procGetCommState       = kernel32.NewProc("GetCommState")
	procSetCommState       = kernel32.NewProc("SetCommState")
	procSetCommTimeouts    = kernel32.NewProc("SetCommTimeouts")
	procEscapeCommFunction = kernel32.NewProc("EscapeCommFunction")
	procSetCommBreak       = kernel32.NewProc("SetCommBreak")
	procClearCommBreak     = kernel32.NewProc("ClearCommBreak")
	procGetCommModemStatus = kernel32.NewProc("GetCommModemStatus")
	procClearCommError     = kernel32.NewProc("ClearCommError")
	procPurgeComm          = kernel32.NewProc("PurgeComm")
)

const (
	setRTS = 3
	clrRTS = 4
	setDTR = 5
	clrDTR = 6

	msCTSOn  = 0x0010
	msDSROn  = 0x0020
	msRingOn = 0x0040
	msRLSDOn = 0x0080

	purgeTxAbort = 0x0001
	purgeRxAbort = 0x0002
	purgeTxClear = 0x0004
	purgeRxClear = 0x0008

	maxDWORD = 0xFFFFFFFF

	waitObject0 = 0x00000000
	waitTimeout = 0x00000102
)

// commTimeouts mirrors the Win32 COMMTIMEOUTS structure.
type commTimeouts struct {
	ReadIntervalTimeout         uint32
	ReadTotalTimeoutMultiplier  uint32
	ReadTotalTimeoutConstant    uint32
	WriteTotalTimeoutMultiplier uint32
	WriteTotalTimeoutConstant   uint32
}

// comStat mirrors the Win32 COMSTAT structure.
type comStat struct {
	Flags    uint32
	CbInQue  uint32
	CbOutQue uint32
}

// windowsDevice issues overlapped transfers and waits on a per-direction
// manual-reset event, turning the asynchronous driver model into bounded
// blocking calls.
type windowsDevice struct {
	handle  windows.Handle
	state   dcb
	timeout time.Duration
	readOv  windows.Overlapped
	writeOv windows.Overlapped
}

func openNativeDevice(path string) (device, error) {
	name, err := windows.UTF16PtrFromString(windowsDevicePath(path))
	if err != nil {
		return nil, invalidInput("open "+path, "%v", err)
	}
	h, err := windows.CreateFile(
		name,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0, // exclusive access
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_ATTRIBUTE_NORMAL|windows.FILE_FLAG_OVERLAPPED,
		0,
	)
	if err != nil {
		return nil, osError("open "+path, err)
	}
	return &windowsDevice{handle: h}, nil
}

func commCall(op string, proc *windows.LazyProc, args ...uintptr) error {
	r, _, err := proc.Call(args...)
	if r == 0 {
		return osError(op, err)
	}
	return nil
}

func (d *windowsDevice) getState(op string) (dcb, error) {
	state := newDCB()
	if err := commCall(op, procGetCommState, uintptr(d.handle), uintptr(unsafe.Pointer(&state))); err != nil {
		return dcb{}, err
	}
	return state, nil
}

func (d *windowsDevice) loadState() error {
	state, err := d.getState("get comm state")
	if err != nil {
		return err
	}
	d.state = state
	return nil
}

func (d *windowsDevice) applyDefaults() { d.state.applyDefaults() }

func (d *windowsDevice) configure(s Settings) error {
	return d.state.applySettings(s)
}

func (d *windowsDevice) storeState() error {
	return commCall("set comm state", procSetCommState, uintptr(d.handle), uintptr(unsafe.Pointer(&d.state)))
}

func (d *windowsDevice) prepare(timeout time.Duration) error {
	var err error
	if d.readOv.HEvent, err = windows.CreateEvent(nil, 1, 0, nil); err != nil {
		return osError("create read event", err)
	}
	if d.writeOv.HEvent, err = windows.CreateEvent(nil, 1, 0, nil); err != nil {
		return osError("create write event", err)
	}
	return d.setTimeout(timeout)
}

// timeoutsFor makes ReadFile return as soon as any byte is available or
// the timeout passes. A zero timeout returns what is buffered right away.
// Writes are bounded by the wait in transfer instead.
func timeoutsFor(timeout time.Duration) commTimeouts {
	if timeout == 0 {
		return commTimeouts{ReadIntervalTimeout: maxDWORD}
	}
	return commTimeouts{
		ReadIntervalTimeout:        maxDWORD,
		ReadTotalTimeoutMultiplier: maxDWORD,
		ReadTotalTimeoutConstant:   millis(timeout),
	}
}

func (d *windowsDevice) setTimeout(timeout time.Duration) error {
	t := timeoutsFor(timeout)
	if err := commCall("set comm timeouts", procSetCommTimeouts, uintptr(d.handle), uintptr(unsafe.Pointer(&t))); err != nil {
		return err
	}
	d.timeout = timeout
	return nil
}

// millis rounds up to whole milliseconds, staying below INFINITE.
func millis(timeout time.Duration) uint32 {
	if timeout <= 0 {
		return 0
	}
	ms := timeout / time.Millisecond
	if timeout%time.Millisecond != 0 {
		ms++
	}
	if ms >= maxDWORD {
		return maxDWORD - 1
	}
	return uint32(ms)
}

func (d *windowsDevice) readBack() (Settings, error) {
	state, err := d.getState("get comm state")
	if err != nil {
		return Settings{}, err
	}
	return state.settings(), nil
}

type issueFunc func(h windows.Handle, p []byte, done *uint32, ov *windows.Overlapped) error

// transfer runs one overlapped operation to completion or cancellation.
// A transfer still pending at the deadline is cancelled and the bytes it
// moved before cancellation are returned without error.
func (d *windowsDevice) transfer(op string, issue issueFunc, ov *windows.Overlapped, p []byte, timeout time.Duration) (int, error) {
	if err := windows.ResetEvent(ov.HEvent); err != nil {
		return 0, osError(op, err)
	}
	ov.Internal, ov.InternalHigh, ov.Offset, ov.OffsetHigh = 0, 0, 0, 0

	var done uint32
	err := issue(d.handle, p, &done, ov)
	if err == nil {
		return int(done), nil
	}
	if err != windows.ERROR_IO_PENDING {
		return 0, osError(op, err)
	}

	event, werr := windows.WaitForSingleObject(ov.HEvent, millis(timeout))
	switch event {
	case waitObject0:
	case waitTimeout:
		// ERROR_NOT_FOUND means it completed in the meantime.
		_ = windows.CancelIoEx(d.handle, ov)
	default:
		_ = windows.CancelIoEx(d.handle, ov)
		_ = windows.GetOverlappedResult(d.handle, ov, &done, true)
		return 0, osError(op, werr)
	}

	if err := windows.GetOverlappedResult(d.handle, ov, &done, true); err != nil && err != windows.ERROR_OPERATION_ABORTED {
		return int(done), osError(op, err)
	}
	return int(done), nil
}

func (d *windowsDevice) read(p []byte, timeout time.Duration) (int, error) {
	return d.transfer("read", windows.ReadFile, &d.readOv, p, timeout)
}

func (d *windowsDevice) write(p []byte, timeout time.Duration) (int, error) {
	return d.transfer("write", windows.WriteFile, &d.writeOv, p, timeout)
}

func (d *windowsDevice) drain() error {
	if err := windows.FlushFileBuffers(d.handle); err != nil {
		return osError("drain", err)
	}
	return nil
}

func (d *windowsDevice) escape(op string, fn uintptr) error {
	return commCall(op, procEscapeCommFunction, uintptr(d.handle), fn)
}

func (d *windowsDevice) setRTS(level bool) error {
	if level {
		return d.escape("set rts", setRTS)
	}
	return d.escape("set rts", clrRTS)
}

func (d *windowsDevice) setDTR(level bool) error {
	if level {
		return d.escape("set dtr", setDTR)
	}
	return d.escape("set dtr", clrDTR)
}

func (d *windowsDevice) setBreak(on bool) error {
	if on {
		return commCall("set break", procSetCommBreak, uintptr(d.handle))
	}
	return commCall("set break", procClearCommBreak, uintptr(d.handle))
}

func (d *windowsDevice) modemStatus() (modemStatus, error) {
	var status uint32
	if err := commCall("modem status", procGetCommModemStatus, uintptr(d.handle), uintptr(unsafe.Pointer(&status))); err != nil {
		return modemStatus{}, err
	}
	return modemStatus{
		cts: status&msCTSOn != 0,
		dsr: status&msDSROn != 0,
		ri:  status&msRingOn != 0,
		cd:  status&msRLSDOn != 0,
	}, nil
}

func (d *windowsDevice) queued() (int, int, error) {
	var errs uint32
	var stat comStat
	if err := commCall("comm status", procClearCommError, uintptr(d.handle), uintptr(unsafe.Pointer(&errs)), uintptr(unsafe.Pointer(&stat))); err != nil {
		return 0, 0, err
	}
	return int(stat.CbInQue), int(stat.CbOutQue), nil
}

func (d *windowsDevice) purge(target ClearTarget) error {
	var flags uintptr
	switch target {
	case ClearInput:
		flags = purgeRxAbort | purgeRxClear
	case ClearOutput:
		flags = purgeTxAbort | purgeTxClear
	default:
		flags = purgeRxAbort | purgeRxClear | purgeTxAbort | purgeTxClear
	}
	return commCall("clear "+target.String(), procPurgeComm, uintptr(d.handle), flags)
}

func (d *windowsDevice) duplicate() (device, error) {
	proc := windows.CurrentProcess()
	var h windows.Handle
	if err := windows.DuplicateHandle(proc, d.handle, proc, &h, 0, false, windows.DUPLICATE_SAME_ACCESS); err != nil {
		return nil, osError("clone", err)
	}
	clone := &windowsDevice{handle: h, state: d.state}
	if err := clone.prepare(d.timeout); err != nil {
		return nil, errors.Join(err, clone.close())
	}
	return clone, nil
}

// close releases the completion events before the device handle.
func (d *windowsDevice) close() error {
	var errs []error
	for _, ev := range []*windows.Handle{&d.readOv.HEvent, &d.writeOv.HEvent, &d.handle} {
		if *ev == 0 {
			continue
		}
		if err := windows.CloseHandle(*ev); err != nil {
			errs = append(errs, osError("close", err))
		}
		*ev = 0
	}
	return errors.Join(errs...)
}
