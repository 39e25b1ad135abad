// Package luatable decodes and encodes the saved variables table text written by the game client.
//
// A saved variables file is a single top-level assignment:
//
//	BagSyncDB = {
//		["Stormrage"] = {
//			["Arthas"] = {
//				["money"] = 100,
//			},
//		},
//	}
//
// # Value Model
//
// Decoded data is an owned Go value tree:
//   - string, float64 and bool scalars
//   - *Table, split into a sequence part (Array, keys 1..n) and a keyed part (Fields)
//
// Tables keep string and numeric keys distinct, so re-encoding never retypes a key.
//
// # Decoding
//
// Decode parses the text with the gopher-lua parser and walks the syntax tree of the wrapper
// assignment; nothing is executed. Anything other than a plain data table built from string,
// number and boolean constants is reported as a corrupt database.
//
// # Encoding
//
// Encode pretty-prints the tree in the client's saved variables style: tab indentation,
// bracketed keys, and sequence items annotated with their index. Keys are written in a fixed
// order, so encoding the same tree twice yields identical bytes.
package luatable
