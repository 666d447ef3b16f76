package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/savesync/cmd/savesync/opts"
	"github.com/walteh/savesync/pkg/config"
	"github.com/walteh/savesync/pkg/lifecycle"
	"github.com/walteh/savesync/pkg/pidfile"
	"github.com/walteh/savesync/pkg/registry"
	"github.com/walteh/savesync/pkg/syncer"
	"github.com/walteh/savesync/pkg/watcher"
	"github.com/walteh/savesync/pkg/workspace"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// folderPollInterval is how often workspace root availability is re-checked
const folderPollInterval = 2 * time.Second

// NewRunCmd creates the run command
func NewRunCmd(opts *opts.RootOpts) *cobra.Command {
	var startDisabled bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the savesync daemon",
		Long: `Run starts the savesync daemon. It will:
1. Load the mapping configuration
2. Register a save listener for every mapping under an open workspace folder
3. Mirror each saved file to its destinations
4. Pick up configuration changes and folder churn as they happen

While running, the daemon reacts to signals: SIGUSR1 enables, SIGUSR2
disables, SIGHUP forces a full reload.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return runDaemon(ctx, opts, startDisabled)
		},
	}

	cmd.Flags().BoolVar(&startDisabled, "disabled", false, "start without listening for saves")
	return cmd
}

func runDaemon(ctx context.Context, o *opts.RootOpts, startDisabled bool) error {
	logger := zerolog.Ctx(ctx)
	reporter := o.Reporter

	store := config.NewStore(o.ConfigPath)
	ws := workspace.New(store.Folders(ctx))
	engine := syncer.New(syncer.OSCopier{}, reporter)

	// One recursive save watcher per matched mapping; the listener invokes
	// the sync engine directly with its mapping and the saved file
	listen := func(ctx context.Context, m config.Mapping) (registry.Disposable, error) {
		return watcher.New(ctx, m.Source, func(path string) {
			engine.Sync(ctx, m, path)
		})
	}

	ctrl, err := lifecycle.New(lifecycle.Options{
		Mappings: store,
		Folders:  ws,
		Listen:   listen,
		Reporter: reporter,
	})
	if err != nil {
		return errors.Errorf("creating lifecycle controller: %w", err)
	}

	if err := pidfile.Write(o.PidfilePath); err != nil {
		return errors.Errorf("recording daemon pid: %w", err)
	}
	defer pidfile.Remove(o.PidfilePath)

	reload := func() {
		ws.SetFolders(store.Folders(ctx))
		ctrl.Reload(ctx)
	}

	cfgWatch, err := config.WatchFile(ctx, o.ConfigPath, reload)
	if err != nil {
		return errors.Errorf("watching config file: %w", err)
	}
	defer cfgWatch.Close()

	monitor := workspace.Watch(ctx, ws, folderPollInterval, func(added, removed []string) {
		ctrl.FoldersChanged(ctx, added, removed)
	})
	defer monitor.Close()

	if !startDisabled {
		ctrl.Enable(ctx)
	} else {
		logger.Info().Msg("started disabled; send SIGUSR1 or run `savesync enable`")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigs)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case sig := <-sigs:
				switch sig {
				case syscall.SIGUSR1:
					ctrl.Enable(gctx)
				case syscall.SIGUSR2:
					ctrl.Disable(gctx)
				case syscall.SIGHUP:
					reload()
				default:
					logger.Info().Str("signal", sig.String()).Msg("shutting down")
					return nil
				}
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	err = g.Wait()

	// Tear listeners down, then let in-flight copies finish
	ctrl.Disable(ctx)
	engine.Drain()

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
