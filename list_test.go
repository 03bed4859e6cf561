package serial

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var errLookup = errors.New("lookup failed")

// fakeEntry is a portEntry whose lookups can fail individually.
type fakeEntry struct {
	name, friendly string
	usb            *USBInfo
	nameErr        error
	friendlyErr    error
	usbErr         error
}

func (e fakeEntry) portName() (string, error)     { return e.name, e.nameErr }
func (e fakeEntry) friendlyName() (string, error) { return e.friendly, e.friendlyErr }
func (e fakeEntry) usbInfo() (*USBInfo, error)    { return e.usb, e.usbErr }

func TestCollectPorts(t *testing.T) {
	ftdi := &USBInfo{VendorID: "0403", ProductID: "6001", SerialNumber: "A50285BI"}
	entries := []portEntry{
		fakeEntry{name: "COM7", friendly: "USB Serial Port (COM7)", usb: ftdi},
		fakeEntry{name: "COM1", friendly: "Communications Port (COM1)"},
		fakeEntry{name: "COM3", friendly: "stale", friendlyErr: errLookup, usb: ftdi, usbErr: errLookup},
		fakeEntry{name: "bogus", nameErr: errLookup, friendly: "Nameless"},
	}

	want := []PortInfo{
		{Path: "", FriendlyName: "Nameless"},
		{Path: "COM1", FriendlyName: "Communications Port (COM1)"},
		{Path: "COM3"},
		{Path: "COM7", FriendlyName: "USB Serial Port (COM7)", USB: ftdi},
	}

	got := collectPorts(entries)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("collectPorts mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectPortsEmpty(t *testing.T) {
	got := collectPorts(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", got)
	}
}

func TestParseUSBInstanceID(t *testing.T) {
	tests := []struct {
		id   string
		want *USBInfo
	}{
		{`USB\VID_0403&PID_6001\A50285BI`, &USBInfo{VendorID: "0403", ProductID: "6001", SerialNumber: "A50285BI"}},
		{`USB\VID_2341&PID_0043\85736323838351F0B1C1`, &USBInfo{VendorID: "2341", ProductID: "0043", SerialNumber: "85736323838351F0B1C1"}},
		{`USB\VID_067B&PID_2303\5&2C8A4C5A&0&2`, &USBInfo{VendorID: "067b", ProductID: "2303"}},
		{`FTDIBUS\VID_0403+PID_6001+A50285BIA\0000`, &USBInfo{VendorID: "0403", ProductID: "6001", SerialNumber: "A50285BI"}},
		{`usb\vid_10c4&pid_ea60`, &USBInfo{VendorID: "10c4", ProductID: "ea60"}},
		{`ACPI\PNP0501\1`, nil},
		{`USB\VID_04`, nil},
		{``, nil},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := parseUSBInstanceID(tt.id)
			if ok != (tt.want != nil) {
				t.Fatalf("parseUSBInstanceID(%q) ok = %v", tt.id, ok)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseUSBInstanceID(%q) mismatch (-want +got):\n%s", tt.id, diff)
			}
		})
	}
}

func TestWindowsDevicePath(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"COM1", `\\.\COM1`},
		{"COM12", `\\.\COM12`},
		{`\\.\COM3`, `\\.\COM3`},
		{`\\?\usb#vid_0403`, `\\?\usb#vid_0403`},
	}
	for _, tt := range tests {
		if got := windowsDevicePath(tt.name); got != tt.expected {
			t.Errorf("windowsDevicePath(%q) = %q, expected %q", tt.name, got, tt.expected)
		}
	}
}
