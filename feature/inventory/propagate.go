package inventory

import (
	"context"
	"errors"

	"inventory-sync/core/logger"
	"inventory-sync/core/luatable"
	"inventory-sync/core/topology"
	"inventory-sync/feature/inventory/models"

	"go.uber.org/zap"
)

// MergeResult counts what a merge did with each snapshot.
type MergeResult struct {
	// Merged is the number of character entries inserted or overwritten.
	Merged int
	// Unchanged is the number of snapshots already identical in the target.
	Unchanged int
	// Dropped is the number of snapshots whose realm the target does not have.
	Dropped int
}

// Add accumulates other into r.
func (r *MergeResult) Add(other MergeResult) {
	r.Merged += other.Merged
	r.Unchanged += other.Unchanged
	r.Dropped += other.Dropped
}

// Merge writes each snapshot into the realm of the same name in db, replacing the
// character's entry. Only that entry is touched. Snapshots for realms db does not
// already contain are dropped.
func Merge(db *Database, sets []models.InventorySet) MergeResult {
	var result MergeResult
	for _, set := range sets {
		realm, ok := db.Realm(set.Realm)
		if !ok {
			result.Dropped++
			continue
		}

		key := luatable.StringKey(set.Character)
		if current, ok := realm.Get(key); ok && luatable.Equal(current, set.Raw) {
			result.Unchanged++
			continue
		}
		realm.Set(key, luatable.Clone(set.Raw))
		result.Merged++
	}
	return result
}

// Propagator merges snapshots into other accounts' databases and writes them back.
type Propagator struct {
	store  *Store
	logger *zap.Logger
}

// NewPropagator creates a propagator writing through store.
func NewPropagator(store *Store, logger *zap.Logger) *Propagator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Propagator{store: store, logger: logger}
}

// Propagate merges sets from the source account into every target except the source.
// Each target is loaded, merged, and written only if the merge changed it. A failing target
// is recorded in the report and the returned error but does not stop the others.
func (p *Propagator) Propagate(ctx context.Context, source string, sets []models.InventorySet, targets []*topology.Account) (*Report, error) {
	report := &Report{Snapshots: len(sets)}
	if len(sets) == 0 {
		return report, nil
	}

	var errs []error
	for _, target := range targets {
		if target.Name == source {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		report.Targets++

		l := p.logger.With(zap.String("source", source), zap.String("target", target.Name))

		db, err := p.store.Load(ctx, target)
		if err != nil {
			l.Error("Skipping target, database could not be loaded", zap.Error(err), logger.Meta(err))
			report.Failed++
			errs = append(errs, err)
			continue
		}

		result := Merge(db, sets)
		report.MergeResult.Add(result)

		if result.Merged == 0 {
			l.Debug("Target already up to date",
				zap.Bool("missing", db.Missing),
				zap.Int("unchanged", result.Unchanged),
				zap.Int("dropped", result.Dropped),
			)
			continue
		}

		if err := p.store.Save(ctx, db); err != nil {
			l.Error("Failed to write target database", zap.Error(err), logger.Meta(err))
			report.Failed++
			errs = append(errs, err)
			continue
		}
		report.Written++

		l.Info("Propagated inventories",
			zap.Int("merged", result.Merged),
			zap.Int("unchanged", result.Unchanged),
			zap.Int("dropped", result.Dropped),
		)
	}

	return report, errors.Join(errs...)
}
