package commands

import (
	"syscall"

	"github.com/spf13/cobra"
	"github.com/walteh/savesync/cmd/savesync/opts"
)

// NewDisableCmd creates the disable command
func NewDisableCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "disable",
		Short: "Tell the running daemon to stop mirroring saves",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := signalDaemon(opts.PidfilePath, syscall.SIGUSR2); err != nil {
				return err
			}
			opts.Reporter.Info(cmd.Context(), "savesync disabled")
			return nil
		},
	}
}
