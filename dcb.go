package serial

import "unsafe"

// dcb mirrors the Win32 DCB structure. It lives in a platform neutral file
// so the translation rules are exercised on every OS.
type dcb struct {
	DCBlength uint32
	BaudRate  uint32

	// Flags field is a bitfield
	//  fBinary            :1
	//  fParity            :1
	//  fOutxCtsFlow       :1
	//  fOutxDsrFlow       :1
	//  fDtrControl        :2
	//  fDsrSensitivity    :1
	//  fTXContinueOnXoff  :1
	//  fOutX              :1
	//  fInX               :1
	//  fErrorChar         :1
	//  fNull              :1
	//  fRtsControl        :2
	//  fAbortOnError      :1
	//  fDummy2            :17
	Flags uint32

	wReserved  uint16
	XonLim     uint16
	XoffLim    uint16
	ByteSize   byte
	Parity     byte
	StopBits   byte
	XonChar    byte
	XoffChar   byte
	ErrorChar  byte
	EofChar    byte
	EvtChar    byte
	wReserved1 uint16
}

const (
	noParity   = 0
	oddParity  = 1
	evenParity = 2

	oneStopBit   = 0
	one5StopBits = 1
	twoStopBits  = 2
)

type dtrControl uint32

const (
	dtrControlDisable dtrControl = iota
	dtrControlEnable
	dtrControlHandshake
)

type rtsControl uint32

const (
	rtsControlDisable rtsControl = iota
	rtsControlEnable
	rtsControlHandshake
	rtsControlToggle
)

const (
	dcbBinary           = 0
	dcbParity           = 1
	dcbOutxCtsFlow      = 2
	dcbOutxDsrFlow      = 3
	dcbDtrControl       = 4
	dcbDsrSensitivity   = 6
	dcbTXContinueOnXoff = 7
	dcbOutX             = 8
	dcbInX              = 9
	dcbErrorChar        = 10
	dcbNull             = 11
	dcbRtsControl       = 12
	dcbAbortOnError     = 14
)

func newDCB() dcb {
	return dcb{DCBlength: uint32(unsafe.Sizeof(dcb{}))}
}

func (d *dcb) flag(bit uint) bool { return d.Flags&(1<<bit) != 0 }

func (d *dcb) setFlag(bit uint, v bool) {
	if v {
		d.Flags |= 1 << bit
	} else {
		d.Flags &^= 1 << bit
	}
}

func (d *dcb) field(shift uint) uint32 { return (d.Flags >> shift) & 0x3 }

func (d *dcb) setField(shift uint, v uint32) {
	d.Flags = d.Flags&^(0x3<<shift) | (v&0x3)<<shift
}

func (d *dcb) binary() bool               { return d.flag(dcbBinary) }
func (d *dcb) setBinary(v bool)           { d.setFlag(dcbBinary, v) }
func (d *dcb) parityCheck() bool          { return d.flag(dcbParity) }
func (d *dcb) setParityCheck(v bool)      { d.setFlag(dcbParity, v) }
func (d *dcb) outxCtsFlow() bool          { return d.flag(dcbOutxCtsFlow) }
func (d *dcb) setOutxCtsFlow(v bool)      { d.setFlag(dcbOutxCtsFlow, v) }
func (d *dcb) outxDsrFlow() bool          { return d.flag(dcbOutxDsrFlow) }
func (d *dcb) setOutxDsrFlow(v bool)      { d.setFlag(dcbOutxDsrFlow, v) }
func (d *dcb) dtrControl() dtrControl     { return dtrControl(d.field(dcbDtrControl)) }
func (d *dcb) setDtrControl(v dtrControl) { d.setField(dcbDtrControl, uint32(v)) }
func (d *dcb) dsrSensitivity() bool       { return d.flag(dcbDsrSensitivity) }
func (d *dcb) setDsrSensitivity(v bool)   { d.setFlag(dcbDsrSensitivity, v) }
func (d *dcb) txContinueOnXoff() bool     { return d.flag(dcbTXContinueOnXoff) }
func (d *dcb) setTxContinueOnXoff(v bool) { d.setFlag(dcbTXContinueOnXoff, v) }
func (d *dcb) outX() bool                 { return d.flag(dcbOutX) }
func (d *dcb) setOutX(v bool)             { d.setFlag(dcbOutX, v) }
func (d *dcb) inX() bool                  { return d.flag(dcbInX) }
func (d *dcb) setInX(v bool)              { d.setFlag(dcbInX, v) }
func (d *dcb) errorChar() bool            { return d.flag(dcbErrorChar) }
func (d *dcb) setErrorChar(v bool)        { d.setFlag(dcbErrorChar, v) }
func (d *dcb) null() bool                 { return d.flag(dcbNull) }
func (d *dcb) setNull(v bool)             { d.setFlag(dcbNull, v) }
func (d *dcb) rtsControl() rtsControl     { return rtsControl(d.field(dcbRtsControl)) }
func (d *dcb) setRtsControl(v rtsControl) { d.setField(dcbRtsControl, uint32(v)) }
func (d *dcb) abortOnError() bool         { return d.flag(dcbAbortOnError) }
func (d *dcb) setAbortOnError(v bool)     { d.setFlag(dcbAbortOnError, v) }

// applyDefaults puts the block into binary mode and disables every feature
// that would alter or drop bytes. Flow control and framing are left alone.
func (d *dcb) applyDefaults() {
	d.XonChar = 0x11
	d.XoffChar = 0x13
	d.ErrorChar = 0x00
	d.EofChar = 0x1A

	d.setBinary(true)
	d.setOutxDsrFlow(false)
	d.setDtrControl(dtrControlDisable)
	d.setDsrSensitivity(false)
	d.setErrorChar(false)
	d.setNull(false)
	d.setAbortOnError(false)
}

// applySettings writes s into the block. Every field is checked before the
// first write, so a rejected Settings leaves d untouched.
func (d *dcb) applySettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	d.BaudRate = s.BaudRate
	d.ByteSize = byte(s.DataBits)

	switch s.Parity {
	case ParityOdd:
		d.Parity = oddParity
	case ParityEven:
		d.Parity = evenParity
	default:
		d.Parity = noParity
	}
	d.setParityCheck(s.Parity != ParityNone)

	switch s.StopBits {
	case StopBitsOnePointFive:
		d.StopBits = one5StopBits
	case StopBitsTwo:
		d.StopBits = twoStopBits
	default:
		d.StopBits = oneStopBit
	}

	switch s.FlowControl {
	case FlowControlNone:
		d.setOutxCtsFlow(false)
		d.setRtsControl(rtsControlDisable)
		d.setOutX(false)
		d.setInX(false)
	case FlowControlSoftware:
		d.setOutxCtsFlow(false)
		d.setRtsControl(rtsControlDisable)
		d.setOutX(true)
		d.setInX(true)
	case FlowControlHardware:
		d.setOutxCtsFlow(true)
		d.setRtsControl(rtsControlEnable)
		d.setOutX(false)
		d.setInX(false)
	}
	return nil
}

// settings reads the line configuration back. Values the package cannot
// represent come back as the matching Unknown constant. Timeout is not part
// of the block and is left zero.
func (d *dcb) settings() Settings {
	s := Settings{BaudRate: d.BaudRate}

	if bits := DataBits(d.ByteSize); bits.valid() {
		s.DataBits = bits
	}

	switch d.Parity {
	case noParity:
		s.Parity = ParityNone
	case oddParity:
		s.Parity = ParityOdd
	case evenParity:
		s.Parity = ParityEven
	default:
		s.Parity = ParityUnknown
	}

	switch d.StopBits {
	case oneStopBit:
		s.StopBits = StopBitsOne
	case one5StopBits:
		s.StopBits = StopBitsOnePointFive
	case twoStopBits:
		s.StopBits = StopBitsTwo
	default:
		s.StopBits = StopBitsUnknown
	}

	switch {
	case d.outxCtsFlow() || d.rtsControl() != rtsControlDisable:
		s.FlowControl = FlowControlHardware
	case d.outX() || d.inX():
		s.FlowControl = FlowControlSoftware
	default:
		s.FlowControl = FlowControlNone
	}
	return s
}
