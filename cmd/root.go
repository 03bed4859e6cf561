/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allbin/go-serialport"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	logger  = zerolog.Nop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "serial",
	Short: "Inspect, configure and talk to serial ports",
	Long: `serial is a command line tool for serial ports on Linux and Windows.

Port settings can be given as flags, as SERIAL_* environment variables
(SERIAL_BAUD=115200, SERIAL_FLOW_CONTROL=hardware) or in a serial.yaml
config file:

  baud: 115200
  data-bits: 8
  parity: none
  stop-bits: 1
  flow-control: none
  timeout: 100ms`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./serial.yaml or <user config dir>/serial/serial.yaml)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	flags.Uint32P("baud", "b", 9600, "Baud rate")
	flags.Int("data-bits", 8, "Data bits: 5, 6, 7, 8")
	flags.String("parity", "none", "Parity: none, odd, even")
	flags.String("stop-bits", "1", "Stop bits: 1, 1.5, 2")
	flags.String("flow-control", "none", "Flow control: none, software, hardware")
	flags.Duration("timeout", 100*time.Millisecond, "Timeout for each read and write")

	for _, name := range []string{"verbose", "baud", "data-bits", "parity", "stop-bits", "flow-control", "timeout"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("serial")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			viper.AddConfigPath(filepath.Join(dir, "serial"))
		}
	}

	viper.SetEnvPrefix("SERIAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	level := zerolog.InfoLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug().Str("file", used).Msg("using config file")
	}
	return nil
}

// portOptions builds the open options from flags, environment and config file.
func portOptions() ([]serial.Option, error) {
	parity, err := serial.ParseParity(viper.GetString("parity"))
	if err != nil {
		return nil, err
	}
	stopBits, err := serial.ParseStopBits(viper.GetString("stop-bits"))
	if err != nil {
		return nil, err
	}
	flow, err := serial.ParseFlowControl(viper.GetString("flow-control"))
	if err != nil {
		return nil, err
	}

	return []serial.Option{
		serial.WithBaudRate(viper.GetUint32("baud")),
		serial.WithDataBits(serial.DataBits(viper.GetInt("data-bits"))),
		serial.WithParity(parity),
		serial.WithStopBits(stopBits),
		serial.WithFlowControl(flow),
		serial.WithTimeout(viper.GetDuration("timeout")),
		serial.WithLogger(logger),
	}, nil
}

// openPort opens path with the configured settings.
func openPort(path string) (serial.Port, error) {
	opts, err := portOptions()
	if err != nil {
		return nil, err
	}
	return serial.Open(path, opts...)
}

// mustOpenPort opens path or exits with an error message.
func mustOpenPort(path string) serial.Port {
	port, err := openPort(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
		os.Exit(1)
	}
	return port
}
