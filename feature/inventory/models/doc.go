// Package models holds the inventory snapshot types shared by the extractor and the
// propagation engine.
//
// A character entry is validated through its typed view, CharacterInventoryData, but is
// propagated as the raw decoded value so that nothing the typed view omits is lost.
package models
