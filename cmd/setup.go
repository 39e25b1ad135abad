package cmd

import (
	"fmt"

	"inventory-sync/core/config"
	"inventory-sync/core/logger"
	"inventory-sync/core/topology"

	"go.uber.org/zap"
)

// session is what every command needs before touching account files.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	accounts map[string]*topology.Account
}

// setup loads configuration, applies flag overrides, validates, initializes the logger,
// and enumerates the account topology.
func setup() (*session, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if rootDir != "" {
		cfg.Sync.Root = rootDir
	}
	if len(accountList) > 0 {
		cfg.Sync.Accounts = accountList
	}
	if verbosity > 0 {
		cfg.Log.Level = "debug"
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	accounts, err := topology.Load(cfg.Sync)
	if err != nil {
		return nil, err
	}

	l.Info("Loaded account topology",
		zap.String("root", cfg.Sync.Root),
		zap.Strings("accounts", topology.Names(accounts)),
	)

	return &session{cfg: cfg, log: l, accounts: accounts}, nil
}
