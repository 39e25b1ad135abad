package cmd

import (
	"maps"
	"slices"

	"inventory-sync/core/topology"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// topologyCmd prints the accounts, realms, and characters that take part in syncing.
var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "List the accounts, realms, and characters found on disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := setup()
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		for _, name := range topology.Names(rt.accounts) {
			acc := rt.accounts[name]
			rt.log.Info("Account",
				zap.String("account", name),
				zap.String("database", acc.DatabasePath(rt.cfg.Database.FileName)),
				zap.Int("realms", len(acc.Realms)),
			)
			for _, realm := range slices.Sorted(maps.Keys(acc.Realms)) {
				r := acc.Realms[realm]
				rt.log.Info("Realm",
					zap.String("account", name),
					zap.String("realm", realm),
					zap.Strings("characters", r.Characters),
				)
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(topologyCmd)
}
