// Package serial provides a portable, idiomatic Go interface to serial ports
// on Linux and Windows.
//
// Line parameters are described by a platform neutral Settings value and
// translated to termios on Linux and to a DCB on Windows. Every read and
// write is bounded by the port timeout, so no call blocks indefinitely.
//
// # Basic Usage
//
// Open a serial port with default configuration (9600 8N1, no flow control,
// 1ms timeout):
//
//	port, err := serial.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	n, err := port.Write([]byte("Hello"))
//	buffer := make([]byte, 256)
//	n, err = port.Read(buffer) // n == 0 && err == nil on timeout
//
// On Windows pass the port name, e.g. "COM3". Names above COM9 are handled.
//
// # Configuration Options
//
// Use functional options for custom configuration:
//
//	port, err := serial.Open("COM3",
//	    serial.WithBaudRate(115200),
//	    serial.WithParity(serial.ParityEven),
//	    serial.WithFlowControl(serial.FlowControlHardware),
//	    serial.WithTimeout(100*time.Millisecond),
//	    serial.WithLogger(logger),
//	)
//
// Settings can be changed on an open port. Each setter reads the current
// device state, changes one field and writes it back; on failure the port
// keeps its previous configuration.
//
//	err = port.SetBaudRate(57600)
//	actual, err := port.ReadSettings() // fields may be Unknown
//
// # Port Discovery
//
//	ports, err := serial.AvailablePorts()
//	for _, p := range ports {
//	    fmt.Printf("%s: %s\n", p.Path, p.FriendlyName)
//	    if p.USB != nil {
//	        fmt.Printf("  VID=%s PID=%s Serial=%s\n", p.USB.VendorID, p.USB.ProductID, p.USB.SerialNumber)
//	    }
//	}
//
// # Modem Lines and Buffers
//
//	signals, err := port.GetModemSignals()
//	err = port.SetRTS(true)
//	err = port.SetDTR(false)
//	err = port.SetBreak(true)
//
//	queued, err := port.BytesToRead()
//	err = port.Clear(serial.ClearInput)
//
// # Context Support
//
// ReadContext and WriteContext repeat bounded transfers until ctx is done:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	n, err := port.WriteContext(ctx, data)
//
// # Error Handling
//
// Failures are reported as *Error values carrying an ErrorKind. Use
// errors.Is with the kind sentinels:
//
//	if errors.Is(err, serial.ErrDeviceNotFound) {
//	    // unplugged, or the port was closed
//	}
//
// # Concurrency
//
// A Port is safe for concurrent use. Reads, writes and line control share
// the port, while configuration changes and Close wait for them to finish.
// TryClone returns a second handle that can be closed independently.
package serial
