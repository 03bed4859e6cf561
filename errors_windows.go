package serial

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

const (
	errDevNotExist        syscall.Errno = 55
	errDeviceNotConnected syscall.Errno = 1167
	errDeviceRemoved      syscall.Errno = 1617
)

func classify(err error) ErrorKind {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return KindIO
	}
	switch errno {
	case 0:
		return KindUnknown
	case windows.ERROR_FILE_NOT_FOUND, windows.ERROR_PATH_NOT_FOUND,
		errDevNotExist, errDeviceNotConnected, errDeviceRemoved:
		return KindNoDevice
	}
	return KindIO
}

// A COM port held by another process fails CreateFile with access denied.
func isBusy(err error) bool {
	return errors.Is(err, windows.ERROR_SHARING_VIOLATION) || errors.Is(err, windows.ERROR_ACCESS_DENIED)
}
