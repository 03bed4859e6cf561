package serial

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	want := Settings{
		BaudRate:    9600,
		DataBits:    DataBits8,
		Parity:      ParityNone,
		StopBits:    StopBitsOne,
		FlowControl: FlowControlNone,
		Timeout:     time.Millisecond,
	}
	if diff := cmp.Diff(want, config.Settings); diff != "" {
		t.Errorf("DefaultConfig settings mismatch (-want +got):\n%s", diff)
	}
	if err := config.Settings.Validate(); err != nil {
		t.Errorf("Default settings should be valid: %v", err)
	}
}

func TestFunctionalOptions(t *testing.T) {
	config := DefaultConfig()
	opts := []Option{
		WithBaudRate(115200),
		WithDataBits(DataBits7),
		WithParity(ParityOdd),
		WithStopBits(StopBitsTwo),
		WithFlowControl(FlowControlHardware),
		WithTimeout(250 * time.Millisecond),
		WithLogger(zerolog.Nop()),
	}
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			t.Fatalf("option failed: %v", err)
		}
	}

	want := Settings{
		BaudRate:    115200,
		DataBits:    DataBits7,
		Parity:      ParityOdd,
		StopBits:    StopBitsTwo,
		FlowControl: FlowControlHardware,
		Timeout:     250 * time.Millisecond,
	}
	if diff := cmp.Diff(want, config.Settings); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero baud rate", WithBaudRate(0)},
		{"4 data bits", WithDataBits(4)},
		{"9 data bits", WithDataBits(9)},
		{"unknown data bits", WithDataBits(DataBitsUnknown)},
		{"unknown parity", WithParity(ParityUnknown)},
		{"negative parity", WithParity(-1)},
		{"unknown stop bits", WithStopBits(StopBitsUnknown)},
		{"unknown flow control", WithFlowControl(FlowControlUnknown)},
		{"negative timeout", WithTimeout(-time.Millisecond)},
		{"incomplete settings", WithSettings(Settings{BaudRate: 9600})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			err := tt.opt(&config)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Expected ErrInvalidInput, got %v", err)
			}
			if diff := cmp.Diff(DefaultSettings(), config.Settings); diff != "" {
				t.Errorf("rejected option modified settings (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWithSettings(t *testing.T) {
	s := Settings{BaudRate: 57600, DataBits: DataBits8, Parity: ParityEven, StopBits: StopBitsOne, Timeout: 0}
	config := DefaultConfig()
	if err := WithSettings(s)(&config); err != nil {
		t.Fatal(err)
	}
	if config.Settings != s {
		t.Errorf("Settings = %v, expected %v", config.Settings, s)
	}
}

func TestSettingsString(t *testing.T) {
	tests := []struct {
		s        Settings
		expected string
	}{
		{DefaultSettings(), "9600 8N1"},
		{Settings{BaudRate: 115200, DataBits: DataBits7, Parity: ParityEven, StopBits: StopBitsTwo}, "115200 7E2"},
		{Settings{BaudRate: 300, DataBits: DataBits5, Parity: ParityOdd, StopBits: StopBitsOnePointFive, FlowControl: FlowControlSoftware}, "300 5O1.5 flow=software"},
		{Settings{BaudRate: 9600, Parity: ParityUnknown, StopBits: StopBitsUnknown, FlowControl: FlowControlHardware}, "9600 unknown?unknown flow=hardware"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.expected {
			t.Errorf("String() = %q, expected %q", got, tt.expected)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if p, err := ParseParity("E"); err != nil || p != ParityEven {
		t.Errorf("ParseParity(E) = %v, %v", p, err)
	}
	if _, err := ParseParity("mark"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ParseParity(mark) error = %v", err)
	}
	if s, err := ParseStopBits("1.5"); err != nil || s != StopBitsOnePointFive {
		t.Errorf("ParseStopBits(1.5) = %v, %v", s, err)
	}
	if _, err := ParseStopBits("3"); err == nil {
		t.Error("ParseStopBits(3) should fail")
	}
	if f, err := ParseFlowControl("rtscts"); err != nil || f != FlowControlHardware {
		t.Errorf("ParseFlowControl(rtscts) = %v, %v", f, err)
	}
	if f, err := ParseFlowControl("XONXOFF"); err != nil || f != FlowControlSoftware {
		t.Errorf("ParseFlowControl(XONXOFF) = %v, %v", f, err)
	}
	if c, err := ParseClearTarget("output"); err != nil || c != ClearOutput {
		t.Errorf("ParseClearTarget(output) = %v, %v", c, err)
	}
	if _, err := ParseClearTarget("sideways"); err == nil {
		t.Error("ParseClearTarget(sideways) should fail")
	}
}
