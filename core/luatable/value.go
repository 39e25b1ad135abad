package luatable

import (
	"math"
	"sort"
	"strconv"
)

// Value is a decoded table value: string, float64, bool, or *Table.
type Value any

type keyKind uint8

const (
	keyString keyKind = iota
	keyNumber
	keyBool
)

// Key is a table key. String and numeric keys with the same text are distinct.
type Key struct {
	kind keyKind
	str  string
	num  float64
	b    bool
}

// StringKey returns a string key.
func StringKey(s string) Key {
	return Key{kind: keyString, str: s}
}

// NumberKey returns a numeric key.
func NumberKey(n float64) Key {
	return Key{kind: keyNumber, num: n}
}

// BoolKey returns a boolean key.
func BoolKey(b bool) Key {
	return Key{kind: keyBool, b: b}
}

// IsString reports whether the key is a string key.
func (k Key) IsString() bool {
	return k.kind == keyString
}

// Str returns the string form of a string key, or "" for other keys.
func (k Key) Str() string {
	if k.kind != keyString {
		return ""
	}
	return k.str
}

// Index returns the key as a 1-based sequence index if it is a positive integral number.
func (k Key) Index() (int, bool) {
	if k.kind != keyNumber || k.num < 1 || k.num != math.Trunc(k.num) || k.num > math.MaxInt32 {
		return 0, false
	}
	return int(k.num), true
}

// String returns the key as text, formatting numbers the same way Encode does.
func (k Key) String() string {
	switch k.kind {
	case keyNumber:
		return formatNumber(k.num)
	case keyBool:
		return strconv.FormatBool(k.b)
	default:
		return k.str
	}
}

func compareKeys(a, b Key) bool {
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	switch a.kind {
	case keyNumber:
		return a.num < b.num
	case keyBool:
		return !a.b && b.b
	default:
		return a.str < b.str
	}
}

// Table is a decoded table.
//
// Fields never holds an integral key in 1..len(Array)+1; Set keeps that invariant.
type Table struct {
	// Array is the sequence part, holding keys 1..len(Array).
	Array []Value
	// Fields holds every other key.
	Fields map[Key]Value
}

// Entry is a single key/value pair of a table's keyed part.
type Entry struct {
	Key   Key
	Value Value
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{Fields: make(map[Key]Value)}
}

// Len returns the total number of entries.
func (t *Table) Len() int {
	return len(t.Array) + len(t.Fields)
}

// Get returns the value stored under key.
func (t *Table) Get(key Key) (Value, bool) {
	if idx, ok := key.Index(); ok && idx <= len(t.Array) {
		return t.Array[idx-1], true
	}
	v, ok := t.Fields[key]
	return v, ok
}

// GetString returns the value stored under a string key.
func (t *Table) GetString(name string) (Value, bool) {
	return t.Get(StringKey(name))
}

// Set stores value under key, inserting or overwriting.
func (t *Table) Set(key Key, value Value) {
	if t.Fields == nil {
		t.Fields = make(map[Key]Value)
	}
	idx, ok := key.Index()
	switch {
	case ok && idx <= len(t.Array):
		t.Array[idx-1] = value
	case ok && idx == len(t.Array)+1:
		t.Array = append(t.Array, value)
		// Pull any following keys out of the keyed part to keep the sequence contiguous.
		for {
			next := NumberKey(float64(len(t.Array) + 1))
			v, found := t.Fields[next]
			if !found {
				break
			}
			delete(t.Fields, next)
			t.Array = append(t.Array, v)
		}
	default:
		t.Fields[key] = value
	}
}

// SetString stores value under a string key.
func (t *Table) SetString(name string, value Value) {
	t.Set(StringKey(name), value)
}

// Entries returns the keyed part sorted by key: strings, then numbers, then booleans.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, len(t.Fields))
	for k, v := range t.Fields {
		entries = append(entries, Entry{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		return compareKeys(entries[i].Key, entries[j].Key)
	})
	return entries
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	t, ok := v.(*Table)
	if !ok {
		return v
	}
	clone := &Table{Fields: make(map[Key]Value, len(t.Fields))}
	if len(t.Array) > 0 {
		clone.Array = make([]Value, len(t.Array))
		for i, item := range t.Array {
			clone.Array[i] = Clone(item)
		}
	}
	for k, item := range t.Fields {
		clone.Fields[k] = Clone(item)
	}
	return clone
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Value) bool {
	ta, aIsTable := a.(*Table)
	tb, bIsTable := b.(*Table)
	if aIsTable || bIsTable {
		if !aIsTable || !bIsTable {
			return false
		}
		if len(ta.Array) != len(tb.Array) || len(ta.Fields) != len(tb.Fields) {
			return false
		}
		for i := range ta.Array {
			if !Equal(ta.Array[i], tb.Array[i]) {
				return false
			}
		}
		for k, va := range ta.Fields {
			vb, ok := tb.Fields[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	}
	return a == b
}

// ToPlain converts v into plain Go values for typed decoding.
// A table with only a sequence part becomes []any; any other table becomes
// map[string]any with keys rendered by Key.String.
func ToPlain(v Value) any {
	t, ok := v.(*Table)
	if !ok {
		return v
	}
	if len(t.Fields) == 0 && len(t.Array) > 0 {
		items := make([]any, len(t.Array))
		for i, item := range t.Array {
			items[i] = ToPlain(item)
		}
		return items
	}
	m := make(map[string]any, t.Len())
	for i, item := range t.Array {
		m[strconv.Itoa(i+1)] = ToPlain(item)
	}
	for k, item := range t.Fields {
		m[k.String()] = ToPlain(item)
	}
	return m
}
