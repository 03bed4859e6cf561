package serial

import (
	"errors"
	"fmt"
	"io/fs"
)

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")
	ErrInvalidInput     = errors.New("invalid serial configuration")
	ErrIO               = errors.New("serial i/o failure")
	ErrUnknown          = errors.New("unknown serial error")
	ErrPortClosed       = errors.New("serial port is closed")
	ErrNotImplemented   = errors.New("serial ports are not supported on this platform")
)

// ErrorKind is the coarse category of a failed serial operation.
type ErrorKind int

const (
	// KindNoDevice means the device is absent, was removed, or the handle is closed.
	KindNoDevice ErrorKind = iota
	// KindInvalidInput means a setting or argument was rejected before or by the OS.
	KindInvalidInput
	// KindIO wraps any other operating system failure.
	KindIO
	// KindUnknown is reported when the OS signalled failure without a cause.
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNoDevice:
		return "no device"
	case KindInvalidInput:
		return "invalid input"
	case KindIO:
		return "i/o"
	default:
		return "unknown"
	}
}

// Error is returned by every fallible operation in this package.
//
// Err holds the underlying cause, usually the native errno, so callers can
// still test for fs.ErrPermission or a specific syscall error.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("serial: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("serial: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match the package sentinels against the error kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrDeviceNotFound:
		return e.Kind == KindNoDevice
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrIO:
		return e.Kind == KindIO
	case ErrUnknown:
		return e.Kind == KindUnknown
	case ErrPermissionDenied:
		return errors.Is(e.Err, fs.ErrPermission)
	case ErrDeviceInUse:
		return isBusy(e.Err)
	}
	return false
}

// KindOf reports the kind of err. Errors not produced by this package are
// reported as KindIO, and a nil error as KindUnknown.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	if err == nil {
		return KindUnknown
	}
	return KindIO
}

// osError classifies a native failure. A nil cause means the OS reported
// failure without setting an error code.
func osError(op string, err error) error {
	if err == nil {
		return &Error{Kind: KindUnknown, Op: op}
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: classify(err), Op: op, Err: err}
}

func invalidInput(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)}
}

func closedError(op string) error {
	return &Error{Kind: KindNoDevice, Op: op, Err: ErrPortClosed}
}
