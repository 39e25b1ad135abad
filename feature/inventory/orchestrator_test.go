package inventory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"inventory-sync/core/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func twoAccounts(t *testing.T) *Orchestrator {
	t.Helper()
	_, accounts := layout(t, map[string][]string{
		"ACC1": {"Stormrage/Arthas"},
		"ACC2": {"Stormrage/Jaina"},
	})
	writeDB(t, accounts["ACC1"], `["Stormrage"] = { ["Arthas"] = `+character(10)+` },`)
	writeDB(t, accounts["ACC2"], `["Stormrage"] = { ["Jaina"] = `+character(20)+` },`)
	return newTestOrchestrator(accounts)
}

func TestSync_TwoAccounts(t *testing.T) {
	o := twoAccounts(t)
	ctx := context.Background()

	report, err := o.Sync(ctx, SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Targets)
	assert.Equal(t, 2, report.Snapshots)
	assert.Equal(t, 2, report.Merged)
	assert.Equal(t, 2, report.Written)

	for _, name := range []string{"ACC1", "ACC2"} {
		root := readDB(t, o.accounts[name])
		assert.Equal(t, float64(10), money(t, entry(root, "Stormrage", "Arthas")), name)
		assert.Equal(t, float64(20), money(t, entry(root, "Stormrage", "Jaina")), name)
	}

	// A second pass finds nothing to do.
	report, err = o.Sync(ctx, SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Merged)
	assert.Equal(t, 2, report.Unchanged)
	assert.Equal(t, 0, report.Written)
}

func TestSync_SharedCharacterConverges(t *testing.T) {
	_, accounts := layout(t, map[string][]string{
		"ACC1": {"Stormrage/Arthas"},
		"ACC2": {"Stormrage/Arthas"},
	})
	writeDB(t, accounts["ACC1"], `["Stormrage"] = { ["Arthas"] = `+character(100)+` },`)
	writeDB(t, accounts["ACC2"], `["Stormrage"] = { ["Arthas"] = `+character(50)+` },`)
	o := newTestOrchestrator(accounts)
	ctx := context.Background()

	report, err := o.Sync(ctx, SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Snapshots)
	assert.Equal(t, 1, report.Merged)
	assert.Equal(t, 1, report.Unchanged)
	assert.Equal(t, 1, report.Written)

	acc1 := money(t, entry(readDB(t, accounts["ACC1"]), "Stormrage", "Arthas"))
	acc2 := money(t, entry(readDB(t, accounts["ACC2"]), "Stormrage", "Arthas"))
	assert.Equal(t, acc1, acc2, "accounts disagree on the shared character")
	assert.Equal(t, float64(50), acc1)

	report, err = o.Sync(ctx, SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Merged)
	assert.Equal(t, 0, report.Written)
}

func TestSync_SharedCharacterThreeAccounts(t *testing.T) {
	_, accounts := layout(t, map[string][]string{
		"ACC1": {"Stormrage/Arthas"},
		"ACC2": {"Stormrage/Arthas"},
		"ACC3": {"Stormrage/Arthas"},
	})
	for i, name := range []string{"ACC1", "ACC2", "ACC3"} {
		writeDB(t, accounts[name], `["Stormrage"] = { ["Arthas"] = `+character(i+1)+` },`)
	}
	o := newTestOrchestrator(accounts)
	ctx := context.Background()

	report, err := o.Sync(ctx, SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Written)

	for _, name := range []string{"ACC1", "ACC2", "ACC3"} {
		root := readDB(t, accounts[name])
		assert.Equal(t, float64(3), money(t, entry(root, "Stormrage", "Arthas")), name)
	}

	report, err = o.Sync(ctx, SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Written)
}

func TestSync_DryRun(t *testing.T) {
	o := twoAccounts(t)
	path := o.accounts["ACC2"].DatabasePath(testConfig.FileName)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	report, err := o.Sync(context.Background(), SyncOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Merged)
	assert.Equal(t, 0, report.Written)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSync_MissingDatabase(t *testing.T) {
	_, accounts := layout(t, map[string][]string{
		"ACC1": {"Stormrage/Arthas"},
		"ACC2": {"Stormrage/Jaina"},
	})
	writeDB(t, accounts["ACC1"], `["Stormrage"] = { ["Arthas"] = `+character(10)+` },`)
	o := newTestOrchestrator(accounts)

	report, err := o.Sync(context.Background(), SyncOptions{})
	require.NoError(t, err)

	// ACC2 has no realm keys, so the snapshot is dropped and nothing is written.
	assert.Equal(t, 1, report.Dropped)
	assert.Equal(t, 0, report.Written)
	_, statErr := os.Stat(accounts["ACC2"].DatabasePath(testConfig.FileName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSync_CorruptSourceIsFatal(t *testing.T) {
	o := twoAccounts(t)
	writeDB(t, o.accounts["ACC2"], `["Stormrage"] = `)

	_, err := o.Sync(context.Background(), SyncOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindCorruptDatabase))

	// Nothing was written to the healthy account.
	assert.Nil(t, entry(readDB(t, o.accounts["ACC1"]), "Stormrage", "Jaina"))
}

func TestBuildPlan(t *testing.T) {
	o := twoAccounts(t)

	plan, err := o.BuildPlan(context.Background())
	require.NoError(t, err)
	require.Len(t, plan.Targets, 2)

	assert.Equal(t, "ACC1", plan.Targets[0].Account)
	assert.Equal(t, []string{"ACC2"}, plan.Targets[0].Sources)
	assert.Equal(t, MergeResult{Merged: 1}, plan.Targets[0].Result)
	assert.NotNil(t, entry(plan.Targets[0].Database.Root, "Stormrage", "Jaina"))
}

func TestHandleChange(t *testing.T) {
	o := twoAccounts(t)
	ctx := context.Background()

	writeDB(t, o.accounts["ACC1"], `["Stormrage"] = { ["Arthas"] = `+character(777)+` },`)

	report, err := o.HandleChange(ctx, "ACC1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Targets)
	assert.Equal(t, 1, report.Written)

	assert.Equal(t, float64(777), money(t, entry(readDB(t, o.accounts["ACC2"]), "Stormrage", "Arthas")))
	// The changed account is not merged into.
	assert.Nil(t, entry(readDB(t, o.accounts["ACC1"]), "Stormrage", "Jaina"))

	_, err = o.HandleChange(ctx, "GHOST")
	assert.True(t, apperrors.Is(err, apperrors.KindPathMapping))
}

func TestHandleChange_LogsExtractedCharacters(t *testing.T) {
	_, accounts := layout(t, map[string][]string{
		"ACC1": {"Stormrage/Arthas", "Illidan/Thrall"},
		"ACC2": {"Stormrage/Jaina"},
	})
	writeDB(t, accounts["ACC1"], `["Stormrage"] = { ["Arthas"] = `+character(10)+` }, `+
		`["Illidan"] = { ["Thrall"] = `+character(5)+` },`)

	core, logs := observer.New(zapcore.DebugLevel)
	o := NewOrchestrator(accounts, testConfig, zap.New(core))
	o.store.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }

	_, err := o.HandleChange(context.Background(), "ACC1")
	require.NoError(t, err)

	extracted := logs.FilterMessage("Extracted snapshots").All()
	require.Len(t, extracted, 1)
	fields := extracted[0].ContextMap()
	assert.Equal(t, "ACC1", fields["account"])
	assert.Equal(t, []any{"Illidan/Thrall", "Stormrage/Arthas"}, fields["characters"])
	assert.Equal(t, false, fields["missing"])

	// ACC2 has no database yet, so it has no realm to receive the snapshots.
	skipped := logs.FilterMessage("Target already up to date").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, true, skipped[0].ContextMap()["missing"])
	assert.Equal(t, int64(2), skipped[0].ContextMap()["dropped"])
}

func TestAccountFromPath(t *testing.T) {
	o := twoAccounts(t)
	acc1 := o.accounts["ACC1"]

	name, err := o.AccountFromPath(acc1.DatabasePath(testConfig.FileName))
	require.NoError(t, err)
	assert.Equal(t, "ACC1", name)

	tests := []struct {
		name string
		path string
	}{
		{"UnknownAccount", filepath.Join(filepath.Dir(acc1.Dir), "GHOST", "SavedVariables", testConfig.FileName)},
		{"NotInSaveDir", filepath.Join(acc1.Dir, "Stormrage", testConfig.FileName)},
		{"Root", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.AccountFromPath(tt.path)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.KindPathMapping))
		})
	}
}

func TestRun(t *testing.T) {
	o := twoAccounts(t)
	writeDB(t, o.accounts["ACC1"], `["Stormrage"] = { ["Arthas"] = `+character(321)+` },`)

	paths := make(chan string, 3)
	paths <- "/elsewhere/GHOST/SavedVariables/" + testConfig.FileName
	paths <- o.accounts["ACC1"].DatabasePath(testConfig.FileName)
	close(paths)

	err := o.Run(context.Background(), paths)
	assert.ErrorIs(t, err, ErrWatcherStopped)

	// The unmapped path was ignored and the loop went on to the next change.
	assert.Equal(t, float64(321), money(t, entry(readDB(t, o.accounts["ACC2"]), "Stormrage", "Arthas")))
}

func TestRun_CancellationWins(t *testing.T) {
	o := twoAccounts(t)
	writeDB(t, o.accounts["ACC1"], `["Stormrage"] = { ["Arthas"] = `+character(321)+` },`)

	paths := make(chan string, 1)
	paths <- o.accounts["ACC1"].DatabasePath(testConfig.FileName)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, o.Run(ctx, paths))
	assert.Len(t, paths, 1, "pending change is left unhandled")
	assert.Nil(t, entry(readDB(t, o.accounts["ACC2"]), "Stormrage", "Arthas"))
}
