package inventory

import (
	"inventory-sync/core/apperrors"
	"inventory-sync/core/luatable"
	"inventory-sync/core/topology"
	"inventory-sync/feature/inventory/models"
)

// Extract returns a snapshot for every (realm, character) present in both db and the
// account's topology, ordered by realm then character.
//
// Reserved keys are never looked at. Entries the topology does not know are skipped
// silently. A character entry that does not decode is skipped and returned among the
// skipped errors, each a snapshot decode error naming the realm and character.
func Extract(db *Database, account *topology.Account, reserved ReservedFunc) (sets []models.InventorySet, skipped []error) {
	for _, realmEntry := range db.Root.Entries() {
		if !realmEntry.Key.IsString() {
			continue
		}
		realmName := realmEntry.Key.Str()
		if reserved != nil && reserved(realmName) {
			continue
		}
		if _, ok := account.Realms[realmName]; !ok {
			continue
		}
		realmTable, ok := realmEntry.Value.(*luatable.Table)
		if !ok {
			continue
		}

		for _, charEntry := range realmTable.Entries() {
			if !charEntry.Key.IsString() {
				continue
			}
			character := charEntry.Key.Str()
			if !account.HasCharacter(realmName, character) {
				continue
			}

			data, err := models.DecodeCharacter(luatable.ToPlain(charEntry.Value))
			if err != nil {
				skipped = append(skipped, apperrors.Wrapf(err, apperrors.KindSnapshotDecode,
					"invalid inventory for %s/%s", realmName, character).
					WithMeta("account", db.Account).
					WithMeta("realm", realmName).
					WithMeta("character", character))
				continue
			}

			sets = append(sets, models.InventorySet{
				Realm:     realmName,
				Character: character,
				Data:      data,
				Raw:       charEntry.Value,
			})
		}
	}
	return sets, skipped
}
