package models

import "inventory-sync/core/luatable"

// CharacterInventoryData is the inventory snapshot stored for one character.
type CharacterInventoryData struct {
	// Bag maps a bag slot index to the item strings it holds.
	Bag map[string][]string `mapstructure:"bag"`
	// Mailbox is absent for characters that never opened a mailbox.
	Mailbox []string `mapstructure:"mailbox"`
	Equip   []string `mapstructure:"equip"`
	// Bank maps a bank bag index to its items. Absent until the bank was visited.
	Bank    map[int][]string `mapstructure:"bank"`
	Money   uint64           `mapstructure:"money"`
	Guild   string           `mapstructure:"guild"`
	Faction string           `mapstructure:"faction"`
	Race    string           `mapstructure:"race"`
	Class   string           `mapstructure:"class"`
	Gender  int              `mapstructure:"gender"`
}

// InventorySet is one character's snapshot extracted from an account database,
// addressed by realm and character name.
type InventorySet struct {
	Realm     string
	Character string
	// Data is the typed view used to validate the entry.
	Data CharacterInventoryData
	// Raw is the entry exactly as decoded. It is what gets written to other accounts,
	// so fields the typed view does not name are carried along.
	Raw luatable.Value
}

// Key returns "realm/character".
func (s InventorySet) Key() string {
	return s.Realm + "/" + s.Character
}
