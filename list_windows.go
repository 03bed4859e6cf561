package serial

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// GUID_DEVCLASS_PORTS, the setup class of COM and LPT ports.
var guidDevClassPorts = windows.GUID{
	Data1: 0x4d36e978,
	Data2: 0xe325,
	Data3: 0x11ce,
	Data4: [8]byte{0xbf, 0xc1, 0x08, 0x00, 0x2b, 0xe1, 0x03, 0x18},
}

// setupEntry holds what the setup API returned for one device. Lookups are
// done while the device information set is open.
type setupEntry struct {
	name, friendly, instanceID  string
	nameErr, friendlyErr, idErr error
}

func (e setupEntry) portName() (string, error)     { return e.name, e.nameErr }
func (e setupEntry) friendlyName() (string, error) { return e.friendly, e.friendlyErr }

func (e setupEntry) usbInfo() (*USBInfo, error) {
	if e.idErr != nil {
		return nil, e.idErr
	}
	if info, ok := parseUSBInstanceID(e.instanceID); ok {
		return info, nil
	}
	return nil, nil
}

func nativePortEntries() ([]portEntry, error) {
	devs, err := windows.SetupDiGetClassDevsEx(&guidDevClassPorts, "", 0, windows.DIGCF_PRESENT, 0, "")
	if err != nil {
		return nil, err
	}
	defer devs.Close()

	var ports []portEntry
	for i := 0; ; i++ {
		data, err := devs.EnumDeviceInfo(i)
		if errors.Is(err, windows.ERROR_NO_MORE_ITEMS) {
			break
		}
		if err != nil {
			continue
		}

		var e setupEntry
		e.name, e.nameErr = portNameOf(devs, data)
		e.friendly, e.friendlyErr = friendlyNameOf(devs, data)
		e.instanceID, e.idErr = devs.DeviceInstanceID(data)
		ports = append(ports, e)
	}
	return ports, nil
}

// portNameOf reads PortName ("COM3") from the device's hardware key.
func portNameOf(devs windows.DevInfo, data *windows.DevInfoData) (string, error) {
	h, err := devs.OpenDevRegKey(data, windows.DICS_FLAG_GLOBAL, 0, windows.DIREG_DEV, windows.KEY_READ)
	if err != nil {
		return "", err
	}
	key := registry.Key(h)
	defer key.Close()

	name, _, err := key.GetStringValue("PortName")
	return name, err
}

func friendlyNameOf(devs windows.DevInfo, data *windows.DevInfoData) (string, error) {
	v, err := devs.DeviceRegistryProperty(data, windows.SPDRP_FRIENDLYNAME)
	if err != nil {
		return "", err
	}
	name, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("friendly name has type %T", v)
	}
	return name, nil
}

func samePath(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(a, `\\.\`), strings.TrimPrefix(b, `\\.\`))
}
