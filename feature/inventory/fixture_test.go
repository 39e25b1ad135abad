package inventory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"inventory-sync/core/luatable"
	"inventory-sync/core/topology"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testConfig = Config{
	FileName:       "BagSyncString.lua",
	Identifier:     "BagSyncDB",
	ReservedSuffix: "§",
	WriteRetries:   1,
}

// character renders a valid character entry holding the given amount of money.
func character(money int) string {
	return fmt.Sprintf(`{ ["bag"] = { [0] = { "6948", "4540;5" } }, ["equip"] = { "49" }, ["money"] = %d, `+
		`["faction"] = "Alliance", ["race"] = "Human", ["class"] = "WARRIOR", ["gender"] = 2 }`, money)
}

// layout creates realm/character directories per account under a temp root and loads the topology.
func layout(t *testing.T, accounts map[string][]string) (string, map[string]*topology.Account) {
	t.Helper()
	root := t.TempDir()

	names := make([]string, 0, len(accounts))
	for name, dirs := range accounts {
		names = append(names, name)
		require.NoError(t, os.MkdirAll(filepath.Join(root, name, "SavedVariables"), 0o755))
		for _, d := range dirs {
			require.NoError(t, os.MkdirAll(filepath.Join(root, name, d), 0o755))
		}
	}

	loaded, err := topology.Load(topology.Config{Root: root, Accounts: names})
	require.NoError(t, err)
	return root, loaded
}

func writeDB(t *testing.T, account *topology.Account, body string) {
	t.Helper()
	text := "BagSyncDB = {\n" + body + "\n}\n"
	require.NoError(t, os.WriteFile(account.DatabasePath(testConfig.FileName), []byte(text), 0o644))
}

func readDB(t *testing.T, account *topology.Account) *luatable.Table {
	t.Helper()
	text, err := os.ReadFile(account.DatabasePath(testConfig.FileName))
	require.NoError(t, err)
	root, err := luatable.Decode(context.Background(), string(text), testConfig.Identifier)
	require.NoError(t, err)
	return root
}

// entry returns root[realm][character], or nil.
func entry(root *luatable.Table, realm, char string) luatable.Value {
	v, ok := root.GetString(realm)
	if !ok {
		return nil
	}
	t, ok := v.(*luatable.Table)
	if !ok {
		return nil
	}
	c, _ := t.GetString(char)
	return c
}

func money(t *testing.T, v luatable.Value) float64 {
	t.Helper()
	tbl, ok := v.(*luatable.Table)
	require.True(t, ok, "entry is not a table")
	m, ok := tbl.GetString("money")
	require.True(t, ok)
	return m.(float64)
}

func newTestStore() *Store {
	s := NewStore(testConfig, zap.NewNop())
	s.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return s
}

func newTestOrchestrator(accounts map[string]*topology.Account) *Orchestrator {
	o := NewOrchestrator(accounts, testConfig, zap.NewNop())
	o.store.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return o
}
