package models

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
)

// RequiredFields lists the keys every character entry must carry.
var RequiredFields = []string{"bag", "equip", "money", "faction", "race", "class", "gender"}

// DecodeCharacter decodes a plain character entry (see luatable.ToPlain) into its typed view.
func DecodeCharacter(plain any) (CharacterInventoryData, error) {
	var data CharacterInventoryData

	fields, ok := plain.(map[string]any)
	if !ok {
		return data, fmt.Errorf("expected a table, got %T", plain)
	}
	for _, name := range RequiredFields {
		if _, ok := fields[name]; !ok {
			return data, fmt.Errorf("missing required field %q", name)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(sequenceHook),
		WeaklyTypedInput: true,
		Result:           &data,
	})
	if err != nil {
		return data, err
	}
	if err := decoder.Decode(fields); err != nil {
		return data, err
	}
	return data, nil
}

// sequenceHook bridges the two shapes a Lua list can take after ToPlain: a sparse or empty
// table arrives as a map keyed by index, and a dense table keyed by index arrives as a slice.
func sequenceHook(from, to reflect.Type, data any) (any, error) {
	switch {
	case to.Kind() == reflect.Slice && from.Kind() == reflect.Map:
		m, ok := data.(map[string]any)
		if !ok {
			return data, nil
		}
		return sequenceFromMap(m)

	case to.Kind() == reflect.Map && from.Kind() == reflect.Slice:
		items, ok := data.([]any)
		if !ok {
			return data, nil
		}
		m := make(map[string]any, len(items))
		for i, item := range items {
			m[strconv.Itoa(i+1)] = item
		}
		return m, nil
	}
	return data, nil
}

func sequenceFromMap(m map[string]any) ([]any, error) {
	type indexed struct {
		idx  int
		item any
	}
	entries := make([]indexed, 0, len(m))
	for k, item := range m {
		idx, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("expected a list, found key %q", k)
		}
		entries = append(entries, indexed{idx: idx, item: item})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })

	items := make([]any, len(entries))
	for i, e := range entries {
		items[i] = e.item
	}
	return items, nil
}
