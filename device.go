package serial

import "time"

// modemStatus is a snapshot of the modem input lines.
type modemStatus struct {
	cts, dsr, ri, cd bool
}

// device is the native side of a Port. Each platform provides one
// implementation; tests substitute a fake through openDevice.
//
// Open drives a device through loadState, applyDefaults, configure,
// storeState and prepare in that order. A failure at any step is followed
// by close. Setters repeat loadState, configure and storeState only.
type device interface {
	// loadState reads the native control block into the in-memory copy.
	loadState() error
	// applyDefaults sets the fields Settings does not cover to the
	// package defaults.
	applyDefaults()
	// configure translates s into the in-memory control block.
	configure(s Settings) error
	// storeState writes the in-memory control block to the device.
	storeState() error
	// prepare creates whatever the I/O engine needs and installs the timeout.
	prepare(timeout time.Duration) error

	// readBack queries the device and translates its control block.
	readBack() (Settings, error)
	setTimeout(timeout time.Duration) error

	read(p []byte, timeout time.Duration) (int, error)
	write(p []byte, timeout time.Duration) (int, error)
	drain() error

	setRTS(level bool) error
	setDTR(level bool) error
	setBreak(on bool) error
	modemStatus() (modemStatus, error)

	queued() (in, out int, err error)
	purge(target ClearTarget) error

	duplicate() (device, error)
	close() error
}

// openDevice acquires the native resource for path.
var openDevice = openNativeDevice
