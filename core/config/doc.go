// Package config provides configuration management for inventory-sync.
//
// It utilizes Viper for loading configuration from environment variables,
// an optional config file (config.yaml or config.toml), and a .env file.
// Defaults come from the `default` struct tags of each section.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Sync: accounts root directory, account names, save directory name
//   - Database: saved variables file name, table identifier, reserved key suffix, write retries
//   - Log: logging level, format, and optional rotating file
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.Root)
package config
