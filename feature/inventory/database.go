package inventory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"inventory-sync/core/apperrors"
	"inventory-sync/core/luatable"
	"inventory-sync/core/topology"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Database is an account's decoded inventory database.
type Database struct {
	// Account is the name of the owning account.
	Account string
	// Path is the file the database was read from and is written back to.
	Path string
	// Root maps realm names to realm tables. Reserved keys are kept as-is.
	Root *luatable.Table
	// Missing is true when the file did not exist and Root came from the empty document.
	Missing bool
}

// Realm returns the table stored under a realm name.
func (d *Database) Realm(name string) (*luatable.Table, bool) {
	v, ok := d.Root.GetString(name)
	if !ok {
		return nil, false
	}
	t, ok := v.(*luatable.Table)
	return t, ok
}

// Store loads and saves account databases.
type Store struct {
	cfg        Config
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

// NewStore creates a store using cfg for file naming and write retries.
func NewStore(cfg Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		cfg:    cfg,
		logger: logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
}

// Load reads and decodes the account's database. A missing file decodes as the empty document.
func (s *Store) Load(ctx context.Context, account *topology.Account) (*Database, error) {
	path := account.DatabasePath(s.cfg.FileName)
	db := &Database{Account: account.Name, Path: path}

	text, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debug("Database file not found, using empty database",
			zap.String("account", account.Name),
			zap.String("path", path),
		)
		text = []byte(luatable.EmptyDocument(s.cfg.Identifier))
		db.Missing = true
	case err != nil:
		return nil, apperrors.Wrap(err, apperrors.KindPersistence, "failed to read database").
			WithMeta("account", account.Name).
			WithMeta("path", path)
	}

	root, err := luatable.Decode(ctx, string(text), s.cfg.Identifier)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.Wrap(err, apperrors.KindCorruptDatabase, "failed to decode database").
			WithMeta("account", account.Name).
			WithMeta("path", path)
	}
	db.Root = root
	return db, nil
}

// Save encodes db and atomically replaces its file, retrying failed writes with backoff.
func (s *Store) Save(ctx context.Context, db *Database) error {
	data := luatable.Encode(s.cfg.Identifier, db.Root)

	write := func() (struct{}, error) {
		return struct{}{}, writeFileAtomic(db.Path, data)
	}
	notify := func(err error, next time.Duration) {
		s.logger.Warn("Database write failed, retrying",
			zap.String("account", db.Account),
			zap.Duration("retry_in", next),
			zap.Error(err),
		)
	}

	_, err := backoff.Retry(ctx, write,
		backoff.WithBackOff(s.newBackOff()),
		backoff.WithMaxTries(uint(s.cfg.WriteRetries)+1),
		backoff.WithNotify(notify),
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.KindPersistence, "failed to write database").
			WithMeta("account", db.Account).
			WithMeta("path", db.Path)
	}

	s.logger.Debug("Database written",
		zap.String("account", db.Account),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// writeFileAtomic writes data next to path and renames it into place, so readers never
// observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
