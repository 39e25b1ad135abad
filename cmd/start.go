package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"inventory-sync/core/apperrors"
	"inventory-sync/core/logger"
	"inventory-sync/core/topology"
	"inventory-sync/core/watcher"
	"inventory-sync/feature/inventory"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Synchronize all accounts, then keep them in sync",
	Long: `Runs the startup sync, then watches every account's saved variables directory and
propagates a changed account's inventories to the other accounts until interrupted.`,
	RunE: runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	// 1. Load configuration, logger, and topology
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.log.Sync()
	zap.ReplaceGlobals(rt.log)

	// 2. Graceful shutdown on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := inventory.NewOrchestrator(rt.accounts, rt.cfg.Database, rt.log)

	// 3. Watch every account's save directory before the startup sync, so a save landing
	// during the sync is queued instead of lost
	g, gctx := errgroup.WithContext(ctx)
	w, err := watchAccounts(gctx, rt)
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	// 4. Startup sync. An account that cannot be read is fatal; a failed write is not.
	report, err := orch.Sync(gctx, inventory.SyncOptions{})
	if report == nil && err != nil {
		return err
	}
	printSyncReport(rt.log, report)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		rt.log.Error("Startup sync finished with errors",
			zap.String("kind", string(apperrors.KindOf(err))),
			zap.Error(err),
			logger.Meta(err),
		)
	}

	g.Go(func() error {
		<-gctx.Done()
		return w.Stop()
	})
	g.Go(func() error {
		rt.log.Info("Watching for inventory changes")
		return orch.Run(gctx, w.Paths())
	})

	err = g.Wait()
	rt.log.Info("Shutting down...")
	if err != nil && !isShutdown(ctx, err) {
		return err
	}
	return nil
}

// watchAccounts starts a watcher over every account's save directory.
func watchAccounts(ctx context.Context, rt *session) (*watcher.Watcher, error) {
	w, err := watcher.New(rt.cfg.Database.FileName, rt.log)
	if err != nil {
		return nil, err
	}
	for _, name := range topology.Names(rt.accounts) {
		if err := w.Add(rt.accounts[name].SaveDir()); err != nil {
			_ = w.Stop()
			return nil, err
		}
	}
	if err := w.Start(ctx); err != nil {
		_ = w.Stop()
		return nil, err
	}
	return w, nil
}

func isShutdown(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, inventory.ErrWatcherStopped)
}
