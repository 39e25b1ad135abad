package topology

import (
	"strings"

	"inventory-sync/core/apperrors"
)

// Config holds the directory layout to enumerate.
type Config struct {
	// Root is the directory holding one subdirectory per account (the client's WTF/Account dir).
	Root string `mapstructure:"root" default:""`
	// Accounts lists the account directory names to synchronize. At least two are required.
	Accounts []string `mapstructure:"accounts" default:""`
	// SaveDir is the per-account directory holding saved variables; it is never a realm.
	SaveDir string `mapstructure:"save_dir" default:"SavedVariables"`
}

// Validate checks the root path and account list, removing blank and duplicate names.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return apperrors.Configurationf("root directory is required")
	}
	if strings.TrimSpace(c.SaveDir) == "" {
		c.SaveDir = DefaultSaveDir
	}

	seen := make(map[string]struct{}, len(c.Accounts))
	accounts := make([]string, 0, len(c.Accounts))
	for _, name := range c.Accounts {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		accounts = append(accounts, name)
	}
	c.Accounts = accounts

	if len(c.Accounts) < 2 {
		return apperrors.Configurationf("at least two accounts are required, got %d", len(c.Accounts))
	}
	return nil
}
