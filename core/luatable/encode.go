package luatable

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Encode serializes root as "<identifier> = { ... }" in the saved variables style.
func Encode(identifier string, root *Table) []byte {
	var b bytes.Buffer
	b.WriteString(identifier)
	b.WriteString(" = ")
	writeTable(&b, root, 0)
	b.WriteByte('\n')
	return b.Bytes()
}

func writeValue(b *bytes.Buffer, v Value, depth int) {
	switch val := v.(type) {
	case string:
		writeString(b, val)
	case float64:
		b.WriteString(formatNumber(val))
	case bool:
		b.WriteString(strconv.FormatBool(val))
	case *Table:
		writeTable(b, val, depth)
	default:
		b.WriteString("nil")
	}
}

func writeTable(b *bytes.Buffer, t *Table, depth int) {
	indent := strings.Repeat("\t", depth+1)
	b.WriteString("{\n")
	for i, item := range t.Array {
		b.WriteString(indent)
		writeValue(b, item, depth+1)
		b.WriteString(", -- [")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("]\n")
	}
	for _, e := range t.Entries() {
		b.WriteString(indent)
		writeKey(b, e.Key)
		b.WriteString(" = ")
		writeValue(b, e.Value, depth+1)
		b.WriteString(",\n")
	}
	b.WriteString(strings.Repeat("\t", depth))
	b.WriteByte('}')
}

func writeKey(b *bytes.Buffer, k Key) {
	b.WriteByte('[')
	switch k.kind {
	case keyString:
		writeString(b, k.str)
	case keyNumber:
		b.WriteString(formatNumber(k.num))
	case keyBool:
		b.WriteString(strconv.FormatBool(k.b))
	}
	b.WriteByte(']')
}

// writeString writes s as a double-quoted Lua string literal. Valid UTF-8 is written as is;
// control characters and invalid bytes use three-digit decimal escapes.
func writeString(b *bytes.Buffer, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c < 0x20 || c == 0x7f || (r == utf8.RuneError && size == 1):
			b.WriteByte('\\')
			b.WriteString(leftPad3(int(c)))
		default:
			b.WriteString(s[i : i+size])
			i += size
			continue
		}
		i++
	}
	b.WriteByte('"')
}

func leftPad3(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// formatNumber prints integral values without a fraction and everything else in the
// shortest form that parses back to the same float64.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "0/0"
	case math.IsInf(f, 1):
		return "1/0"
	case math.IsInf(f, -1):
		return "-1/0"
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatInt(int64(f), 10)
	default:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
}
