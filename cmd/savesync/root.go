package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/walteh/savesync/cmd/savesync/opts"
	"github.com/walteh/savesync/pkg/status"
)

var (
	// Flags
	configFile  string
	pidfilePath string
	debug       bool
)

// newRootOpts creates a new RootOpts with initialized dependencies
func newRootOpts() *opts.RootOpts {
	return &opts.RootOpts{
		Reporter: status.NewConsole(os.Stdout),
	}
}

// resolveRootOpts copies parsed flag values into o. Must run after flag
// parsing; the flag vars still hold their zero values before that.
func resolveRootOpts(o *opts.RootOpts) {
	o.ConfigPath = configFile
	o.PidfilePath = pidfilePath
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	defaultPidfile := filepath.Join(os.TempDir(), "savesync.pid")
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".savesync.yaml", "config file path")
	cmd.PersistentFlags().StringVar(&pidfilePath, "pidfile", defaultPidfile, "pidfile path used to find the running daemon")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog for console output on stderr
func setupLogging() {
	writer := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// applyLogLevel honors the --debug flag once flags are parsed
func applyLogLevel() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
