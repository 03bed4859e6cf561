package serial

import (
	"sort"
	"strings"
)

// PortInfo describes one serial port known to the operating system.
type PortInfo struct {
	// Path is what Open expects, e.g. "/dev/ttyUSB0" or "COM3".
	Path string
	// FriendlyName is a human readable description. It may be empty.
	FriendlyName string
	// USB is set when the port belongs to a USB device whose identity
	// could be resolved.
	USB *USBInfo
}

// USBInfo identifies the USB device behind a port.
type USBInfo struct {
	VendorID     string
	ProductID    string
	SerialNumber string
}

// portEntry is one device reported by the platform enumerator. Lookups are
// lazy so that a failure only blanks the affected field.
type portEntry interface {
	portName() (string, error)
	friendlyName() (string, error)
	usbInfo() (*USBInfo, error)
}

// AvailablePorts returns the serial ports currently present, sorted by path.
//
// Only a failure to query the device database as a whole is reported as an
// error. A device whose name or description cannot be read is still listed,
// with the affected fields left empty.
func AvailablePorts() ([]PortInfo, error) {
	entries, err := nativePortEntries()
	if err != nil {
		return nil, osError("enumerate ports", err)
	}
	return collectPorts(entries), nil
}

func collectPorts(entries []portEntry) []PortInfo {
	ports := make([]PortInfo, 0, len(entries))
	for _, e := range entries {
		var info PortInfo
		if name, err := e.portName(); err == nil {
			info.Path = name
		}
		if name, err := e.friendlyName(); err == nil {
			info.FriendlyName = name
		}
		if usb, err := e.usbInfo(); err == nil {
			info.USB = usb
		}
		ports = append(ports, info)
	}

	sort.SliceStable(ports, func(i, j int) bool {
		return ports[i].Path < ports[j].Path
	})
	return ports
}

// ListPorts returns the paths of all available ports.
func ListPorts() ([]string, error) {
	ports, err := AvailablePorts()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(ports))
	for _, p := range ports {
		if p.Path != "" {
			paths = append(paths, p.Path)
		}
	}
	return paths, nil
}

// GetPortInfo returns detailed information about a specific port
func GetPortInfo(path string) (*PortInfo, error) {
	ports, err := AvailablePorts()
	if err != nil {
		return nil, err
	}
	for _, p := range ports {
		if samePath(p.Path, path) {
			return &p, nil
		}
	}
	return nil, &Error{Kind: KindNoDevice, Op: "port info " + path, Err: ErrDeviceNotFound}
}

// parseUSBInstanceID extracts vendor, product and serial number from a
// Windows device instance ID such as `USB\VID_0403&PID_6001\A50285BI`.
// FTDI style IDs (`FTDIBUS\VID_0403+PID_6001+A50285BIA\0000`) are accepted
// too.
func parseUSBInstanceID(id string) (*USBInfo, bool) {
	upper := strings.ToUpper(id)
	vid := strings.Index(upper, "VID_")
	pid := strings.Index(upper, "PID_")
	if vid < 0 || pid < 0 || len(id) < vid+8 || len(id) < pid+8 {
		return nil, false
	}

	info := &USBInfo{
		VendorID:  strings.ToLower(id[vid+4 : vid+8]),
		ProductID: strings.ToLower(id[pid+4 : pid+8]),
	}

	rest := id[pid+8:]
	switch {
	case strings.HasPrefix(rest, `\`):
		serial := rest[1:]
		// Composite devices get a generated ID containing '&' instead of
		// the real serial number.
		if serial != "" && !strings.Contains(serial, "&") {
			info.SerialNumber = serial
		}
	case strings.HasPrefix(rest, "+"):
		serial, _, _ := strings.Cut(rest[1:], `\`)
		info.SerialNumber = strings.TrimSuffix(serial, "A")
	}
	return info, true
}
