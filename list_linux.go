package serial

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.bug.st/serial/enumerator"
)

const devDir = "/dev"

// Patterns for the device names of real serial hardware
var serialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^ttyUSB\d+$`), // USB serial adapters
	regexp.MustCompile(`^ttyACM\d+$`), // USB CDC/ACM devices
	regexp.MustCompile(`^ttyS\d+$`),   // Standard serial ports
	regexp.MustCompile(`^ttyAMA\d+$`), // ARM/Raspberry Pi serial
	regexp.MustCompile(`^ttymxc\d+$`), // i.MX serial ports
	regexp.MustCompile(`^ttyO\d+$`),   // OMAP serial ports
	regexp.MustCompile(`^ttySAC\d+$`), // Samsung serial ports
	regexp.MustCompile(`^ttyTHS\d+$`), // Tegra serial ports
}

func isSerialName(name string) bool {
	for _, pattern := range serialPatterns {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

// isCharacterDevice checks if the given path is a character device
func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// devEntry is a /dev node, optionally matched with the USB details the
// kernel exposes through sysfs.
type devEntry struct {
	path    string
	details *enumerator.PortDetails
}

func (e devEntry) portName() (string, error) { return e.path, nil }

func (e devEntry) friendlyName() (string, error) {
	if e.details != nil && e.details.Product != "" {
		return e.details.Product, nil
	}
	return getPortDescription(filepath.Base(e.path)), nil
}

func (e devEntry) usbInfo() (*USBInfo, error) {
	if e.details == nil || !e.details.IsUSB {
		return nil, nil
	}
	return &USBInfo{
		VendorID:     strings.ToLower(e.details.VID),
		ProductID:    strings.ToLower(e.details.PID),
		SerialNumber: e.details.SerialNumber,
	}, nil
}

func nativePortEntries() ([]portEntry, error) {
	return scanDevDir(devDir, usbDetails())
}

// usbDetails indexes the USB metadata by device path. Enumeration failures
// only cost the USB fields, so they are not reported.
func usbDetails() map[string]*enumerator.PortDetails {
	list, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil
	}
	details := make(map[string]*enumerator.PortDetails, len(list))
	for _, d := range list {
		details[d.Name] = d
	}
	return details
}

func scanDevDir(dir string, details map[string]*enumerator.PortDetails) ([]portEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var ports []portEntry
	for _, entry := range entries {
		if !isSerialName(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		// Verify it's a character device (not a directory or regular file)
		if !isCharacterDevice(path) {
			continue
		}
		ports = append(ports, devEntry{path: path, details: details[path]})
	}
	return ports, nil
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	default:
		return "Serial Port"
	}
}

func samePath(a, b string) bool { return a == b }
