package serial

import (
	"fmt"
	"strings"
	"time"
)

// DataBits is the number of bits per character.
type DataBits int

const (
	DataBitsUnknown DataBits = 0
	DataBits5       DataBits = 5
	DataBits6       DataBits = 6
	DataBits7       DataBits = 7
	DataBits8       DataBits = 8
)

func (d DataBits) valid() bool { return d >= DataBits5 && d <= DataBits8 }

func (d DataBits) String() string {
	if !d.valid() {
		return "unknown"
	}
	return fmt.Sprintf("%d", int(d))
}

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	// ParityUnknown is only produced when reading settings back from hardware.
	ParityUnknown
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	default:
		return "unknown"
	}
}

// StopBits is the number of stop bits per character.
type StopBits int

const (
	StopBitsOne StopBits = iota
	StopBitsOnePointFive
	StopBitsTwo
	StopBitsUnknown
)

func (s StopBits) String() string {
	switch s {
	case StopBitsOne:
		return "1"
	case StopBitsOnePointFive:
		return "1.5"
	case StopBitsTwo:
		return "2"
	default:
		return "unknown"
	}
}

// FlowControl represents the flow control mode
type FlowControl int

const (
	FlowControlNone FlowControl = iota
	// FlowControlSoftware is XON/XOFF in both directions.
	FlowControlSoftware
	// FlowControlHardware is RTS/CTS handshaking.
	FlowControlHardware
	FlowControlUnknown
)

func (f FlowControl) String() string {
	switch f {
	case FlowControlNone:
		return "none"
	case FlowControlSoftware:
		return "software"
	case FlowControlHardware:
		return "hardware"
	default:
		return "unknown"
	}
}

// ClearTarget selects which buffer Clear discards.
type ClearTarget int

const (
	ClearInput ClearTarget = iota
	ClearOutput
	ClearAll
)

func (c ClearTarget) String() string {
	switch c {
	case ClearInput:
		return "input"
	case ClearOutput:
		return "output"
	case ClearAll:
		return "all"
	default:
		return "unknown"
	}
}

// Settings is the complete line configuration of a port.
type Settings struct {
	BaudRate    uint32
	DataBits    DataBits
	Parity      Parity
	StopBits    StopBits
	FlowControl FlowControl
	// Timeout bounds every Read and Write. Zero returns whatever is
	// immediately available.
	Timeout time.Duration
}

// DefaultSettings returns 9600 8N1 without flow control and a 1ms timeout.
func DefaultSettings() Settings {
	return Settings{
		BaudRate:    9600,
		DataBits:    DataBits8,
		Parity:      ParityNone,
		StopBits:    StopBitsOne,
		FlowControl: FlowControlNone,
		Timeout:     time.Millisecond,
	}
}

// Validate rejects settings that cannot be sent to a device, including
// any Unknown value.
func (s Settings) Validate() error {
	const op = "validate"
	if s.BaudRate == 0 {
		return invalidInput(op, "baud rate must be positive")
	}
	if !s.DataBits.valid() {
		return invalidInput(op, "data bits %d", int(s.DataBits))
	}
	if s.Parity < ParityNone || s.Parity >= ParityUnknown {
		return invalidInput(op, "parity %d", int(s.Parity))
	}
	if s.StopBits < StopBitsOne || s.StopBits >= StopBitsUnknown {
		return invalidInput(op, "stop bits %d", int(s.StopBits))
	}
	if s.FlowControl < FlowControlNone || s.FlowControl >= FlowControlUnknown {
		return invalidInput(op, "flow control %d", int(s.FlowControl))
	}
	if s.Timeout < 0 {
		return invalidInput(op, "negative timeout %v", s.Timeout)
	}
	return nil
}

// Complete reports whether no field is Unknown.
func (s Settings) Complete() bool {
	return s.DataBits.valid() && s.Parity != ParityUnknown &&
		s.StopBits != StopBitsUnknown && s.FlowControl != FlowControlUnknown
}

// String formats settings the conventional way, e.g. "9600 8N1".
func (s Settings) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d %s", s.BaudRate, s.DataBits)
	switch s.Parity {
	case ParityNone:
		b.WriteByte('N')
	case ParityOdd:
		b.WriteByte('O')
	case ParityEven:
		b.WriteByte('E')
	default:
		b.WriteByte('?')
	}
	b.WriteString(s.StopBits.String())
	if s.FlowControl != FlowControlNone {
		fmt.Fprintf(&b, " flow=%s", s.FlowControl)
	}
	return b.String()
}

// ParseParity accepts "none", "odd", "even" or their initials.
func ParseParity(s string) (Parity, error) {
	switch strings.ToLower(s) {
	case "n", "none":
		return ParityNone, nil
	case "o", "odd":
		return ParityOdd, nil
	case "e", "even":
		return ParityEven, nil
	}
	return ParityUnknown, invalidInput("parse parity", "%q", s)
}

// ParseStopBits accepts "1", "1.5" and "2".
func ParseStopBits(s string) (StopBits, error) {
	switch s {
	case "1":
		return StopBitsOne, nil
	case "1.5":
		return StopBitsOnePointFive, nil
	case "2":
		return StopBitsTwo, nil
	}
	return StopBitsUnknown, invalidInput("parse stop bits", "%q", s)
}

// ParseFlowControl accepts "none", "software" (or "xonxoff") and
// "hardware" (or "rtscts").
func ParseFlowControl(s string) (FlowControl, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return FlowControlNone, nil
	case "software", "xonxoff":
		return FlowControlSoftware, nil
	case "hardware", "rtscts":
		return FlowControlHardware, nil
	}
	return FlowControlUnknown, invalidInput("parse flow control", "%q", s)
}

// ParseClearTarget accepts "input", "output" and "all".
func ParseClearTarget(s string) (ClearTarget, error) {
	switch strings.ToLower(s) {
	case "input", "in":
		return ClearInput, nil
	case "output", "out":
		return ClearOutput, nil
	case "all", "both":
		return ClearAll, nil
	}
	return ClearAll, invalidInput("parse clear target", "%q", s)
}
