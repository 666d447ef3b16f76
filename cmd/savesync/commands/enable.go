package commands

import (
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/walteh/savesync/cmd/savesync/opts"
	"github.com/walteh/savesync/pkg/pidfile"
	"gitlab.com/tozd/go/errors"
)

// NewEnableCmd creates the enable command
func NewEnableCmd(opts *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "enable",
		Short: "Tell the running daemon to start mirroring saves",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := signalDaemon(opts.PidfilePath, syscall.SIGUSR1); err != nil {
				return err
			}
			opts.Reporter.Info(cmd.Context(), "savesync enabled")
			return nil
		},
	}
}

// signalDaemon delivers sig to the daemon recorded in the pidfile
func signalDaemon(pidPath string, sig syscall.Signal) error {
	pid, err := pidfile.Read(pidPath)
	if err != nil {
		return errors.Errorf("no running savesync daemon found: %w", err)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return errors.Errorf("finding daemon process %d: %w", pid, err)
	}
	if err := proc.Signal(sig); err != nil {
		return errors.Errorf("signalling daemon process %d: %w", pid, err)
	}
	return nil
}
