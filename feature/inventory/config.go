package inventory

import (
	"strings"

	"inventory-sync/core/apperrors"
)

// Config holds the settings for reading and writing account databases.
type Config struct {
	// FileName is the database file inside an account's save directory.
	FileName string `mapstructure:"file_name" default:"BagSyncString.lua"`
	// Identifier is the global the database table is assigned to.
	Identifier string `mapstructure:"identifier" default:"BagSyncDB"`
	// ReservedSuffix marks top-level keys that hold addon metadata rather than a realm.
	ReservedSuffix string `mapstructure:"reserved_suffix" default:"§"`
	// WriteRetries is how many times a failed write is retried before giving up.
	WriteRetries int `mapstructure:"write_retries" default:"3"`
}

// ReservedFunc reports whether a top-level database key is reserved metadata.
type ReservedFunc func(key string) bool

// Validate checks that the database settings are usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.FileName) == "" {
		return apperrors.Configurationf("database file name is required")
	}
	if strings.TrimSpace(c.Identifier) == "" {
		return apperrors.Configurationf("database identifier is required")
	}
	if c.WriteRetries < 0 {
		return apperrors.Configurationf("write retries must not be negative, got %d", c.WriteRetries)
	}
	return nil
}

// Reserved returns the predicate matching keys that end with ReservedSuffix.
// An empty suffix reserves nothing.
func (c Config) Reserved() ReservedFunc {
	suffix := c.ReservedSuffix
	return func(key string) bool {
		return suffix != "" && strings.HasSuffix(key, suffix)
	}
}
