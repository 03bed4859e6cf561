package serial

import "strings"

// windowsDevicePath turns a port name such as "COM10" into the device
// namespace path CreateFile needs for ports above COM9. Paths that already
// start with a backslash are used verbatim.
func windowsDevicePath(name string) string {
	if strings.HasPrefix(name, `\`) {
		return name
	}
	return `\\.\` + name
}
