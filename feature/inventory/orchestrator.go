package inventory

import (
	"context"
	"errors"
	"path/filepath"

	"inventory-sync/core/apperrors"
	"inventory-sync/core/logger"
	"inventory-sync/core/topology"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrWatcherStopped is returned by Run when the change notifications stop arriving.
var ErrWatcherStopped = errors.New("watcher stopped")

// Orchestrator runs the startup sync and then reacts to account database changes.
type Orchestrator struct {
	accounts   map[string]*topology.Account
	targets    []*topology.Account
	store      *Store
	propagator *Propagator
	reserved   ReservedFunc
	logger     *zap.Logger
}

// NewOrchestrator creates an orchestrator over the given accounts.
func NewOrchestrator(accounts map[string]*topology.Account, cfg Config, l *zap.Logger) *Orchestrator {
	if l == nil {
		l = zap.NewNop()
	}
	store := NewStore(cfg, l)

	targets := make([]*topology.Account, 0, len(accounts))
	for _, name := range topology.Names(accounts) {
		targets = append(targets, accounts[name])
	}

	return &Orchestrator{
		accounts:   accounts,
		targets:    targets,
		store:      store,
		propagator: NewPropagator(store, l),
		reserved:   cfg.Reserved(),
		logger:     l,
	}
}

// Sync runs the startup phase: every account receives the snapshots of every other account,
// and each changed account is written once.
func (o *Orchestrator) Sync(ctx context.Context, opts SyncOptions) (*Report, error) {
	plan, err := o.BuildPlan(ctx)
	if err != nil {
		return nil, err
	}
	return o.ApplyPlan(ctx, plan, opts)
}

// Run handles changed database paths until ctx is cancelled or paths is closed.
// Cancellation returns nil; a closed channel returns ErrWatcherStopped.
func (o *Orchestrator) Run(ctx context.Context, paths <-chan string) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-paths:
			// A shutdown that raced with the receive wins.
			if ctx.Err() != nil {
				return nil
			}
			if !ok {
				return ErrWatcherStopped
			}
			o.handlePath(ctx, path)
		}
	}
}

func (o *Orchestrator) handlePath(ctx context.Context, path string) {
	l := logger.WithCycle(o.logger, uuid.NewString())

	account, err := o.AccountFromPath(path)
	if err != nil {
		l.Warn("Ignoring change", zap.String("path", path), zap.Error(err), logger.Meta(err))
		return
	}

	l = logger.WithAccount(l, account)
	l.Info("Account database changed")

	report, err := o.handleChange(ctx, l, account)
	if err != nil {
		l.Error("Sync cycle finished with errors", zap.Error(err), logger.Meta(err))
	}
	if report != nil {
		l.Info("Sync cycle complete",
			zap.Int("snapshots", report.Snapshots),
			zap.Int("targets", report.Targets),
			zap.Int("written", report.Written),
			zap.Int("failed", report.Failed),
		)
	}
}

// HandleChange extracts the account's current snapshots and propagates them to every other account.
func (o *Orchestrator) HandleChange(ctx context.Context, account string) (*Report, error) {
	return o.handleChange(ctx, logger.WithAccount(o.logger, account), account)
}

func (o *Orchestrator) handleChange(ctx context.Context, l *zap.Logger, name string) (*Report, error) {
	account, ok := o.accounts[name]
	if !ok {
		return nil, apperrors.PathMappingf("unknown account %q", name).WithMeta("account", name)
	}

	db, err := o.store.Load(ctx, account)
	if err != nil {
		return nil, err
	}

	sets, skipped := Extract(db, account, o.reserved)
	for _, err := range skipped {
		l.Warn("Skipping character inventory", zap.Error(err), logger.Meta(err))
	}
	if ce := l.Check(zap.DebugLevel, "Extracted snapshots"); ce != nil {
		keys := make([]string, 0, len(sets))
		for _, set := range sets {
			keys = append(keys, set.Key())
		}
		ce.Write(zap.Strings("characters", keys), zap.Bool("missing", db.Missing))
	}

	report, err := o.propagator.Propagate(ctx, name, sets, o.targets)
	if report != nil {
		report.Skipped = len(skipped)
	}
	return report, err
}

// AccountFromPath maps a changed database path to its account: the file's directory is the
// account's save directory and that directory's parent is named after the account.
func (o *Orchestrator) AccountFromPath(path string) (string, error) {
	saveDir := filepath.Dir(filepath.Clean(path))
	name := filepath.Base(filepath.Dir(saveDir))

	account, ok := o.accounts[name]
	if !ok || filepath.Base(saveDir) != filepath.Base(account.SaveDir()) {
		return "", apperrors.PathMappingf("path %s does not belong to a registered account", path).
			WithMeta("path", path)
	}
	return name, nil
}
