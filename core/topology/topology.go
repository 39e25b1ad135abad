package topology

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"unicode/utf8"

	"inventory-sync/core/apperrors"
)

// DefaultSaveDir is the saved variables directory name used by the game client.
const DefaultSaveDir = "SavedVariables"

// Realm is the set of characters known for one realm of an account.
type Realm struct {
	// Characters lists character directory names.
	Characters []string
}

// HasCharacter reports whether name was present at startup.
func (r Realm) HasCharacter(name string) bool {
	return slices.Contains(r.Characters, name)
}

// Account is one game account directory.
type Account struct {
	// Name is the account directory name.
	Name string
	// Dir is the absolute or root-relative account directory.
	Dir string
	// Realms maps realm name to the characters known on it.
	Realms map[string]Realm

	saveDir string
}

// SaveDir returns the account's saved variables directory.
func (a *Account) SaveDir() string {
	name := a.saveDir
	if name == "" {
		name = DefaultSaveDir
	}
	return filepath.Join(a.Dir, name)
}

// DatabasePath returns the path of the given saved variables file for this account.
func (a *Account) DatabasePath(fileName string) string {
	return filepath.Join(a.SaveDir(), fileName)
}

// HasCharacter reports whether realm/character was part of the startup topology.
func (a *Account) HasCharacter(realm, character string) bool {
	r, ok := a.Realms[realm]
	return ok && r.HasCharacter(character)
}

// Load enumerates the configured accounts. It fails with a configuration error when a
// directory is missing, unreadable, or holds a name that is not valid UTF-8.
func Load(cfg Config) (map[string]*Account, error) {
	saveDir := cfg.SaveDir
	if saveDir == "" {
		saveDir = DefaultSaveDir
	}

	accounts := make(map[string]*Account, len(cfg.Accounts))
	for _, name := range cfg.Accounts {
		acc := &Account{
			Name:    name,
			Dir:     filepath.Join(cfg.Root, name),
			Realms:  make(map[string]Realm),
			saveDir: saveDir,
		}

		entries, err := os.ReadDir(acc.Dir)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.KindConfiguration, "read account %s", name).
				WithMeta("account", name)
		}

		for _, entry := range entries {
			if entry.Name() == saveDir {
				continue
			}
			realmPath := filepath.Join(acc.Dir, entry.Name())
			if !isDir(realmPath, entry) {
				continue
			}
			if !utf8.ValidString(entry.Name()) {
				return nil, apperrors.Configurationf("realm name %q in account %s is not valid UTF-8", entry.Name(), name)
			}

			characters, err := listCharacters(realmPath)
			if err != nil {
				return nil, apperrors.Wrapf(err, apperrors.KindConfiguration, "read realm %s of account %s", entry.Name(), name).
					WithMeta("account", name).
					WithMeta("realm", entry.Name())
			}
			// An empty realm directory contributes nothing to synchronize.
			if len(characters) == 0 {
				continue
			}
			acc.Realms[entry.Name()] = Realm{Characters: characters}
		}

		accounts[name] = acc
	}

	return accounts, nil
}

// Names returns the account names sorted, giving a stable processing order.
func Names(accounts map[string]*Account) []string {
	names := make([]string, 0, len(accounts))
	for name := range accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func listCharacters(realmPath string) ([]string, error) {
	entries, err := os.ReadDir(realmPath)
	if err != nil {
		return nil, err
	}
	characters := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !utf8.ValidString(entry.Name()) {
			return nil, apperrors.Configurationf("character name %q is not valid UTF-8", entry.Name())
		}
		characters = append(characters, entry.Name())
	}
	return characters, nil
}

// isDir follows symlinks, which os.DirEntry.IsDir does not.
func isDir(path string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir()
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
