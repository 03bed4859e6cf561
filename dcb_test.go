package serial

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func allConcreteSettings() []Settings {
	var out []Settings
	for _, baud := range []uint32{110, 9600, 115200, 250000, 921600} {
		for _, bits := range []DataBits{DataBits5, DataBits6, DataBits7, DataBits8} {
			for _, parity := range []Parity{ParityNone, ParityOdd, ParityEven} {
				for _, stop := range []StopBits{StopBitsOne, StopBitsOnePointFive, StopBitsTwo} {
					for _, flow := range []FlowControl{FlowControlNone, FlowControlSoftware, FlowControlHardware} {
						out = append(out, Settings{
							BaudRate:    baud,
							DataBits:    bits,
							Parity:      parity,
							StopBits:    stop,
							FlowControl: flow,
						})
					}
				}
			}
		}
	}
	return out
}

func TestDCBRoundTrip(t *testing.T) {
	for _, s := range allConcreteSettings() {
		d := newDCB()
		d.applyDefaults()
		if err := d.applySettings(s); err != nil {
			t.Fatalf("applySettings(%v) failed: %v", s, err)
		}
		if diff := cmp.Diff(s, d.settings()); diff != "" {
			t.Errorf("round trip of %v mismatch (-want +got):\n%s", s, diff)
		}
	}
}

func TestDCBDefaults(t *testing.T) {
	d := newDCB()
	// Start from a block with everything switched on.
	d.Flags = 0xFFFFFFFF
	d.XonChar, d.XoffChar, d.ErrorChar, d.EofChar = 1, 2, 3, 4

	d.applyDefaults()

	if !d.binary() {
		t.Error("Expected binary mode")
	}
	if d.outxDsrFlow() || d.dsrSensitivity() || d.errorChar() || d.null() || d.abortOnError() {
		t.Errorf("Expected DSR flow, DSR sensitivity, error char, null and abort-on-error off, flags=%#x", d.Flags)
	}
	if d.dtrControl() != dtrControlDisable {
		t.Errorf("Expected DTR control disabled, got %d", d.dtrControl())
	}
	if d.XonChar != 0x11 || d.XoffChar != 0x13 || d.ErrorChar != 0 || d.EofChar != 0x1A {
		t.Errorf("Unexpected control characters: xon=%#x xoff=%#x err=%#x eof=%#x",
			d.XonChar, d.XoffChar, d.ErrorChar, d.EofChar)
	}
	// Defaults leave flow control to applySettings.
	if !d.outxCtsFlow() || !d.outX() || !d.inX() || d.rtsControl() != rtsControlToggle {
		t.Errorf("applyDefaults touched flow control flags: %#x", d.Flags)
	}
}

func TestDCBSettingsWinOverDefaults(t *testing.T) {
	d := newDCB()
	d.applyDefaults()
	s := Settings{BaudRate: 19200, DataBits: DataBits7, Parity: ParityEven, StopBits: StopBitsTwo, FlowControl: FlowControlHardware}
	if err := d.applySettings(s); err != nil {
		t.Fatal(err)
	}
	if !d.parityCheck() {
		t.Error("Expected parity checking for even parity")
	}
	if !d.outxCtsFlow() || d.rtsControl() != rtsControlEnable {
		t.Errorf("Expected CTS output flow and RTS enabled, flags=%#x", d.Flags)
	}
	if d.outX() || d.inX() {
		t.Error("Expected XON/XOFF cleared for hardware flow control")
	}
	// Defaults not overridden by a setting survive.
	if !d.binary() || d.dtrControl() != dtrControlDisable || d.EofChar != 0x1A {
		t.Errorf("Defaults lost: flags=%#x eof=%#x", d.Flags, d.EofChar)
	}
}

func TestDCBFlowControlTable(t *testing.T) {
	tests := []struct {
		flow           FlowControl
		cts, outX, inX bool
		rts            rtsControl
	}{
		{FlowControlNone, false, false, false, rtsControlDisable},
		{FlowControlSoftware, false, true, true, rtsControlDisable},
		{FlowControlHardware, true, false, false, rtsControlEnable},
	}

	for _, tt := range tests {
		t.Run(tt.flow.String(), func(t *testing.T) {
			d := newDCB()
			d.Flags = 0xFFFFFFFF
			s := DefaultSettings()
			s.FlowControl = tt.flow
			if err := d.applySettings(s); err != nil {
				t.Fatal(err)
			}
			if d.outxCtsFlow() != tt.cts || d.outX() != tt.outX || d.inX() != tt.inX || d.rtsControl() != tt.rts {
				t.Errorf("flags=%#x: cts=%v outX=%v inX=%v rts=%d", d.Flags, d.outxCtsFlow(), d.outX(), d.inX(), d.rtsControl())
			}
		})
	}
}

func TestDCBRejectsUnknownWithoutMutation(t *testing.T) {
	bad := []Settings{
		{BaudRate: 9600, DataBits: DataBitsUnknown, Parity: ParityEven, StopBits: StopBitsTwo},
		{BaudRate: 9600, DataBits: DataBits8, Parity: ParityUnknown, StopBits: StopBitsTwo},
		{BaudRate: 9600, DataBits: DataBits8, Parity: ParityEven, StopBits: StopBitsUnknown},
		{BaudRate: 9600, DataBits: DataBits8, Parity: ParityEven, StopBits: StopBitsTwo, FlowControl: FlowControlUnknown},
		{BaudRate: 0, DataBits: DataBits8},
		{BaudRate: 9600, DataBits: DataBits8, Timeout: -time.Second},
	}

	for _, s := range bad {
		d := newDCB()
		d.applyDefaults()
		if err := d.applySettings(DefaultSettings()); err != nil {
			t.Fatal(err)
		}
		before := d

		err := d.applySettings(s)
		if KindOf(err) != KindInvalidInput {
			t.Errorf("applySettings(%+v) = %v, expected invalid input", s, err)
		}
		if d != before {
			t.Errorf("applySettings(%+v) modified the block", s)
		}
	}
}

func TestDCBReadBackUnknown(t *testing.T) {
	d := newDCB()
	d.BaudRate = 9600
	d.ByteSize = 9
	d.Parity = 3 // mark parity
	d.StopBits = 7

	s := d.settings()
	if s.DataBits != DataBitsUnknown {
		t.Errorf("Expected unknown data bits, got %v", s.DataBits)
	}
	if s.Parity != ParityUnknown {
		t.Errorf("Expected unknown parity, got %v", s.Parity)
	}
	if s.StopBits != StopBitsUnknown {
		t.Errorf("Expected unknown stop bits, got %v", s.StopBits)
	}
	if s.Complete() {
		t.Error("Expected incomplete settings")
	}
}

func TestDCBFlowControlReadBack(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*dcb)
		want  FlowControl
	}{
		{"nothing", func(*dcb) {}, FlowControlNone},
		{"cts only", func(d *dcb) { d.setOutxCtsFlow(true) }, FlowControlHardware},
		{"rts handshake only", func(d *dcb) { d.setRtsControl(rtsControlHandshake) }, FlowControlHardware},
		{"xoff input only", func(d *dcb) { d.setInX(true) }, FlowControlSoftware},
		{"hardware wins", func(d *dcb) { d.setOutX(true); d.setOutxCtsFlow(true) }, FlowControlHardware},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDCB()
			tt.setup(&d)
			if got := d.settings().FlowControl; got != tt.want {
				t.Errorf("FlowControl = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestDCBLength(t *testing.T) {
	// sizeof(DCB) on Windows
	if d := newDCB(); d.DCBlength != 28 {
		t.Errorf("DCBlength = %d, expected 28", d.DCBlength)
	}
}
