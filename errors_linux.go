package serial

import (
	"errors"

	"golang.org/x/sys/unix"
)

func classify(err error) ErrorKind {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return KindIO
	}
	switch errno {
	case 0:
		return KindUnknown
	case unix.ENOENT, unix.ENODEV, unix.ENXIO:
		return KindNoDevice
	}
	return KindIO
}

func isBusy(err error) bool {
	return errors.Is(err, unix.EBUSY)
}
