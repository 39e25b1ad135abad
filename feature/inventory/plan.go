package inventory

import (
	"context"
	"errors"

	"inventory-sync/core/logger"
	"inventory-sync/core/topology"
	"inventory-sync/feature/inventory/models"

	"go.uber.org/zap"
)

// Report summarizes a sync pass.
type Report struct {
	// Targets is the number of accounts considered as merge targets.
	Targets int
	// Snapshots is the number of character snapshots extracted from the sources.
	Snapshots int
	MergeResult
	// Written is the number of target databases written to disk.
	Written int
	// Failed is the number of targets that could not be loaded or written.
	Failed int
	// Skipped is the number of character entries that failed to decode.
	Skipped int
}

// SyncOptions controls how a plan is applied.
type SyncOptions struct {
	// DryRun computes the plan and report without writing any file.
	DryRun bool
}

// TargetPlan is the pending state of one account after every other account was folded into it.
type TargetPlan struct {
	Account  string
	Database *Database
	Sources  []string
	Result   MergeResult
}

// Plan is the startup sync: every account's database with every other account's snapshots
// merged in, not yet written.
type Plan struct {
	Targets   []*TargetPlan
	Snapshots int
	Skipped   int
}

// BuildPlan loads every account's database once and folds the snapshots of all other
// accounts into each one, in account order. Sources are read from the plan's in-memory
// databases, so a target folded earlier passes on what it received and every account ends
// with the same entry for a character known to several of them. A database that cannot be
// read or decoded aborts the plan.
func (o *Orchestrator) BuildPlan(ctx context.Context) (*Plan, error) {
	names := topology.Names(o.accounts)

	databases := make(map[string]*Database, len(names))
	for _, name := range names {
		db, err := o.store.Load(ctx, o.accounts[name])
		if err != nil {
			return nil, err
		}
		databases[name] = db
	}

	plan := &Plan{}
	cached := make(map[string][]models.InventorySet, len(names))
	extracted := make(map[string]bool, len(names))

	snapshots := func(name string) []models.InventorySet {
		if sets, ok := cached[name]; ok {
			return sets
		}
		sets, skipped := Extract(databases[name], o.accounts[name], o.reserved)
		if !extracted[name] {
			extracted[name] = true
			plan.Snapshots += len(sets)
			plan.Skipped += len(skipped)
			for _, err := range skipped {
				o.logger.Warn("Skipping character inventory",
					zap.String("account", name),
					zap.Error(err),
					logger.Meta(err),
				)
			}
		}
		cached[name] = sets
		return sets
	}

	for _, target := range names {
		tp := &TargetPlan{Account: target, Database: databases[target]}
		for _, source := range names {
			if source == target {
				continue
			}
			sets := snapshots(source)
			if len(sets) == 0 {
				continue
			}
			tp.Sources = append(tp.Sources, source)
			tp.Result.Add(Merge(tp.Database, sets))
		}
		// The target's own snapshots changed; later targets must read them again.
		if tp.Result.Merged > 0 {
			delete(cached, target)
		}
		plan.Targets = append(plan.Targets, tp)

		o.logger.Debug("Planned target",
			zap.String("account", target),
			zap.Bool("missing", tp.Database.Missing),
			zap.Strings("sources", tp.Sources),
			zap.Int("merged", tp.Result.Merged),
			zap.Int("unchanged", tp.Result.Unchanged),
			zap.Int("dropped", tp.Result.Dropped),
		)
	}

	return plan, nil
}

// ApplyPlan writes every target the plan changed, once. A failed write is reported and the
// remaining targets are still written. With opts.DryRun nothing is written.
func (o *Orchestrator) ApplyPlan(ctx context.Context, plan *Plan, opts SyncOptions) (*Report, error) {
	report := &Report{
		Targets:   len(plan.Targets),
		Snapshots: plan.Snapshots,
		Skipped:   plan.Skipped,
	}

	var errs []error
	for _, tp := range plan.Targets {
		report.MergeResult.Add(tp.Result)

		if tp.Result.Merged == 0 {
			continue
		}
		if opts.DryRun {
			o.logger.Info("Dry-run: would write database",
				zap.String("account", tp.Account),
				zap.Int("merged", tp.Result.Merged),
			)
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		if err := o.store.Save(ctx, tp.Database); err != nil {
			o.logger.Error("Failed to write database",
				zap.String("account", tp.Account),
				zap.Error(err),
				logger.Meta(err),
			)
			report.Failed++
			errs = append(errs, err)
			continue
		}
		report.Written++
	}

	return report, errors.Join(errs...)
}
