package serial

import (
	"time"

	"github.com/rs/zerolog"
)

// Config holds the configuration for a serial port
type Config struct {
	Settings Settings
	Logger   zerolog.Logger
}

// Option is a functional option for configuring a serial port
type Option func(*Config) error

// DefaultConfig returns DefaultSettings with logging disabled.
func DefaultConfig() Config {
	return Config{
		Settings: DefaultSettings(),
		Logger:   zerolog.Nop(),
	}
}

// WithSettings replaces the whole line configuration.
func WithSettings(s Settings) Option {
	return func(c *Config) error {
		if err := s.Validate(); err != nil {
			return err
		}
		c.Settings = s
		return nil
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate uint32) Option {
	return func(c *Config) error {
		if rate == 0 {
			return invalidInput("option", "baud rate must be positive")
		}
		c.Settings.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits DataBits) Option {
	return func(c *Config) error {
		if !bits.valid() {
			return invalidInput("option", "data bits %d", int(bits))
		}
		c.Settings.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits
func WithStopBits(bits StopBits) Option {
	return func(c *Config) error {
		if bits < StopBitsOne || bits >= StopBitsUnknown {
			return invalidInput("option", "stop bits %d", int(bits))
		}
		c.Settings.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		if parity < ParityNone || parity >= ParityUnknown {
			return invalidInput("option", "parity %d", int(parity))
		}
		c.Settings.Parity = parity
		return nil
	}
}

// WithFlowControl sets the flow control mode
func WithFlowControl(fc FlowControl) Option {
	return func(c *Config) error {
		if fc < FlowControlNone || fc >= FlowControlUnknown {
			return invalidInput("option", "flow control %d", int(fc))
		}
		c.Settings.FlowControl = fc
		return nil
	}
}

// WithTimeout sets the bound applied to each Read and Write.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < 0 {
			return invalidInput("option", "negative timeout %v", timeout)
		}
		c.Settings.Timeout = timeout
		return nil
	}
}

// WithLogger routes debug and warning events to l.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) error {
		c.Logger = l
		return nil
	}
}
