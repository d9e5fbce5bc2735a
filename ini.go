package prefs

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/zoobzio/capitan"
)

// ParsePreferences parses the on-disk preferences format into a fresh Table.
//
// The parser is total: malformed lines are skipped (and reported via the
// LineSkipped signal), never fatal. String values reference the input
// buffer directly, so the buffer must stay live as long as the table.
//
// Format rules:
//   - Lines are separated by '\n'. Blank and whitespace-only lines are
//     ignored and leading whitespace is stripped.
//   - A line starting with ';' is a comment.
//   - "[name]" sets the current section, provided the trimmed name is a
//     valid key string. Invalid headers are ignored and reset nothing. A
//     '['-line that does not end in ']' is not a header and is parsed as
//     an ordinary key/value line.
//   - Any other line must contain '='. The part before the first '='
//     (right-trimmed) is the key, the part after (trimmed) is the value.
//   - An empty value marks the key as explicitly cleared: the key is
//     present with a nil value list.
//   - Values parse as bool ("true"/"false", case-insensitive), then as a
//     signed decimal integer, then fall back to verbatim text.
//   - A key that is purely a decimal integer is stored as an integer key.
//   - Repeated keys accumulate: later values are prepended to the list.
//     The parser does not deduplicate; the mutation API does.
func ParsePreferences(ctx context.Context, data []byte) *Table {
	table := NewTable()
	section := ""

	lineNum := 0
	for line := range strings.Lines(string(data)) {
		lineNum++
		line = strings.TrimRight(line, "\n")
		line = strings.TrimLeft(line, " \t")
		if line == "" || line[0] == ';' {
			continue
		}

		// A section header is a '['-line ending in ']'. A '['-line that
		// does not end in ']' is not a header: it falls through and its
		// text up to '=' becomes an ordinary key.
		if line[0] == '[' {
			if trimmed := strings.TrimRight(line, " \t"); strings.HasSuffix(trimmed, "]") {
				name := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
				if validKeyString(name) {
					section = name
				} else {
					skipLine(ctx, lineNum, "invalid section name")
				}
				continue
			}
		}

		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			skipLine(ctx, lineNum, "no '=' separator")
			continue
		}

		key, ok := parseKey(strings.TrimRight(line[:eq], " \t"), section)
		if !ok {
			skipLine(ctx, lineNum, "invalid key")
			continue
		}

		valueText := strings.TrimSpace(line[eq+1:])
		if valueText == "" {
			// Explicitly cleared key. Distinct from an absent key, and
			// it never shadows values the key already accumulated.
			if _, exists := table.Find(key); !exists {
				table.insert(key, nil)
			}
			continue
		}

		head, _ := table.Find(key)
		table.insert(key, &ValueNode{Value: parseValue(valueText), next: head})
	}

	return table
}

// parseKey interprets text as a key in the given section. A key that is
// purely a decimal integer becomes an integer key.
func parseKey(text, section string) (Key, bool) {
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		if section != "" {
			return SectionedInt(section, n), true
		}
		return GlobalInt(n), true
	}
	if !validKeyString(text) {
		return Key{}, false
	}
	if section != "" {
		return SectionedString(section, text), true
	}
	return GlobalString(text), true
}

// parseValue types a non-empty value string: bool, then integer, then text.
func parseValue(text string) Value {
	if strings.EqualFold(text, "true") {
		return BoolValue(true)
	}
	if strings.EqualFold(text, "false") {
		return BoolValue(false)
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return IntValue(n)
	}
	return StringValue(text)
}

func skipLine(ctx context.Context, line int, reason string) {
	capitan.Emit(ctx, LineSkipped,
		KeyLine.Field(line),
		KeyReason.Field(reason),
	)
}

// SerializeTable renders the table in the on-disk format.
func SerializeTable(t *Table) []byte {
	var buf bytes.Buffer
	_ = WriteTable(&buf, t) //nolint:errcheck // bytes.Buffer writes cannot fail
	return buf.Bytes()
}

// WriteTable writes the table to w in the on-disk format. Output is
// deterministic: sectionless keys first, then each section introduced by a
// blank line and its header, with every key of that section grouped under
// it. Cleared keys serialize as "key =" with no value.
func WriteTable(w io.Writer, t *Table) error {
	keys := make([]Key, 0, t.Size())
	for k := range t.entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)

	// First pass: global keys.
	for _, k := range keys {
		if _, sectioned := k.Section(); sectioned {
			continue
		}
		if err := writePair(w, k, t.entries[k]); err != nil {
			return err
		}
	}

	// Second pass: group the remaining keys by section. The written set
	// is a side table standing in for marking nodes themselves.
	written := make(map[Key]bool)
	for _, k := range keys {
		section, sectioned := k.Section()
		if !sectioned || written[k] {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n[%s]\n", section); err != nil {
			return err
		}
		for _, other := range keys {
			if s, ok := other.Section(); !ok || s != section {
				continue
			}
			if err := writePair(w, other, t.entries[other]); err != nil {
				return err
			}
			written[other] = true
		}
	}

	return nil
}

// writePair writes one line per value under the key, or a single valueless
// line for a cleared key.
func writePair(w io.Writer, k Key, head *ValueNode) error {
	name := keyText(k)
	if head == nil {
		_, err := fmt.Fprintf(w, "%s =\n", name)
		return err
	}
	for n := head; n != nil; n = n.next {
		if _, err := fmt.Fprintf(w, "%s = %s\n", name, n.Value.String()); err != nil {
			return err
		}
	}
	return nil
}

// keyText renders the terminal part of a key as it appears on disk.
func keyText(k Key) string {
	if name, ok := k.Name(); ok {
		return name
	}
	n, _ := k.Num()
	return strconv.FormatInt(n, 10)
}

// compareKeys orders keys for serialization: global keys before sectioned
// ones, sections alphabetically, and within a scope integer keys before
// string keys.
func compareKeys(a, b Key) int {
	aSection, _ := a.Section()
	bSection, _ := b.Section()
	if c := strings.Compare(aSection, bSection); c != 0 {
		return c
	}
	aNum, aInt := a.Num()
	bNum, bInt := b.Num()
	if aInt != bInt {
		if aInt {
			return -1
		}
		return 1
	}
	if aInt {
		return cmp.Compare(aNum, bNum)
	}
	aName, _ := a.Name()
	bName, _ := b.Name()
	return strings.Compare(aName, bName)
}
