package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/walteh/savesync/cmd/savesync/commands"
	"github.com/walteh/savesync/cmd/savesync/opts"
)

// newRootCmd builds the command tree. Flag values only land in RootOpts in
// PersistentPreRun, after cobra has parsed argv.
func newRootCmd() (*cobra.Command, *opts.RootOpts) {
	rootOpts := newRootOpts()

	rootCmd := &cobra.Command{
		Use:   "savesync",
		Short: "Mirror files to configured destinations on every save",
		Long: `savesync watches your workspace folders and, whenever a tracked file is
saved, copies it to every destination its mapping declares. Mappings live in
a small config file (YAML, JSON or HCL) and are picked up again on every
change without restarting the daemon.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			applyLogLevel()
			resolveRootOpts(rootOpts)
		},
	}

	// Add shared flags
	addRootFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(
		commands.NewRunCmd(rootOpts),
		commands.NewEnableCmd(rootOpts),
		commands.NewDisableCmd(rootOpts),
	)

	return rootCmd, rootOpts
}

func main() {
	// Setup logging
	setupLogging()
	ctx := log.Logger.WithContext(context.Background())

	rootCmd, rootOpts := newRootCmd()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		rootOpts.Reporter.Error(ctx, "command failed", err)
		os.Exit(1)
	}
}
