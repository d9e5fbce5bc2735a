package prefs

import (
	"encoding/binary"
	"hash/fnv"
	"strconv"
)

// MaxKeySize is the maximum length in bytes of a string key or section name.
const MaxKeySize = 50

// keyKind discriminates the Key variants.
type keyKind uint8

const (
	keyGlobalString keyKind = iota
	keyGlobalInt
	keySectionedString
	keySectionedInt
)

// Key identifies a preference. A key is either global or scoped to a named
// section, and its terminal part is either a string or an integer.
//
// Key is comparable: two keys are equal iff they have the same variant and
// the same payload. This makes Key usable directly as a map key.
type Key struct {
	kind    keyKind
	section string
	str     string
	num     int64
}

// GlobalString returns a top-level string key.
func GlobalString(name string) Key {
	return Key{kind: keyGlobalString, str: name}
}

// GlobalInt returns a top-level integer key.
func GlobalInt(n int64) Key {
	return Key{kind: keyGlobalInt, num: n}
}

// SectionedString returns a string key scoped to the given section.
func SectionedString(section, name string) Key {
	return Key{kind: keySectionedString, section: section, str: name}
}

// SectionedInt returns an integer key scoped to the given section.
func SectionedInt(section string, n int64) Key {
	return Key{kind: keySectionedInt, section: section, num: n}
}

// Section returns the section name and true for sectioned keys, or
// ("", false) for global keys.
func (k Key) Section() (string, bool) {
	switch k.kind {
	case keySectionedString, keySectionedInt:
		return k.section, true
	default:
		return "", false
	}
}

// Name returns the string part of the key and true, or ("", false) if the
// key's terminal part is an integer.
func (k Key) Name() (string, bool) {
	switch k.kind {
	case keyGlobalString, keySectionedString:
		return k.str, true
	default:
		return "", false
	}
}

// Num returns the integer part of the key and true, or (0, false) if the
// key's terminal part is a string.
func (k Key) Num() (int64, bool) {
	switch k.kind {
	case keyGlobalInt, keySectionedInt:
		return k.num, true
	default:
		return 0, false
	}
}

// Valid reports whether the key satisfies the storage constraints: every
// string part is non-empty and at most MaxKeySize bytes. Integer parts are
// unconstrained.
func (k Key) Valid() bool {
	switch k.kind {
	case keyGlobalString:
		return validKeyString(k.str)
	case keyGlobalInt:
		return true
	case keySectionedString:
		return validKeyString(k.section) && validKeyString(k.str)
	case keySectionedInt:
		return validKeyString(k.section)
	default:
		return false
	}
}

// validKeyString reports whether s is usable as a key or section name.
func validKeyString(s string) bool {
	return len(s) > 0 && len(s) <= MaxKeySize
}

// Hash returns a hash of the key that is stable across process runs for
// identical contents. The variant discriminant is mixed in so that, for
// example, GlobalString("7") and GlobalInt(7) hash distinctly.
func (k Key) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte{byte(k.kind)})
	if k.section != "" {
		h.Write([]byte(k.section))
		h.Write([]byte{0})
	}
	switch k.kind {
	case keyGlobalString, keySectionedString:
		h.Write([]byte(k.str))
	case keyGlobalInt, keySectionedInt:
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(k.num))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// String renders the key for diagnostics. Sectioned keys render as
// "section/name".
func (k Key) String() string {
	var terminal string
	switch k.kind {
	case keyGlobalString, keySectionedString:
		terminal = k.str
	case keyGlobalInt, keySectionedInt:
		terminal = strconv.FormatInt(k.num, 10)
	}
	if k.section != "" {
		return k.section + "/" + terminal
	}
	return terminal
}

// ValueType discriminates the Value variants.
type ValueType uint8

const (
	// ValueString holds UTF-8 text.
	ValueString ValueType = iota
	// ValueInt holds a signed 64-bit integer.
	ValueInt
	// ValueBool holds a boolean.
	ValueBool
)

// String returns the type name.
func (t ValueType) String() string {
	switch t {
	case ValueString:
		return "string"
	case ValueInt:
		return "int"
	case ValueBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a tagged preference value: a string, an int64, or a bool.
// Value is comparable: two values are equal iff their types and payloads
// are equal.
type Value struct {
	typ ValueType
	str string
	num int64
	b   bool
}

// StringValue returns a string Value.
func StringValue(s string) Value {
	return Value{typ: ValueString, str: s}
}

// IntValue returns an integer Value.
func IntValue(n int64) Value {
	return Value{typ: ValueInt, num: n}
}

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value {
	return Value{typ: ValueBool, b: b}
}

// Type returns the value's type tag.
func (v Value) Type() ValueType {
	return v.typ
}

// Str returns the string payload and true, or ("", false) on type mismatch.
func (v Value) Str() (string, bool) {
	if v.typ != ValueString {
		return "", false
	}
	return v.str, true
}

// Int returns the integer payload and true, or (0, false) on type mismatch.
func (v Value) Int() (int64, bool) {
	if v.typ != ValueInt {
		return 0, false
	}
	return v.num, true
}

// Bool returns the boolean payload and true, or (false, false) on type
// mismatch.
func (v Value) Bool() (bool, bool) {
	if v.typ != ValueBool {
		return false, false
	}
	return v.b, true
}

// String renders the value in the on-disk form: booleans as true/false,
// integers as signed decimal, strings verbatim.
func (v Value) String() string {
	switch v.typ {
	case ValueBool:
		if v.b {
			return "true"
		}
		return "false"
	case ValueInt:
		return strconv.FormatInt(v.num, 10)
	default:
		return v.str
	}
}

// ValueNode is a node in a key's value list. Lists are intrusive and
// singly linked; the node is owned by the Preferences (or Table) that
// allocated it.
type ValueNode struct {
	Value
	next *ValueNode
}

// Next returns the following node in the list, or nil at the tail.
func (n *ValueNode) Next() *ValueNode {
	return n.next
}

// listContains reports whether v appears in the list starting at head.
func listContains(head *ValueNode, v Value) bool {
	for n := head; n != nil; n = n.next {
		if n.Value == v {
			return true
		}
	}
	return false
}

// listContainsBefore reports whether v appears in the list between head and
// stop, exclusive of stop.
func listContainsBefore(head, stop *ValueNode, v Value) bool {
	for n := head; n != nil && n != stop; n = n.next {
		if n.Value == v {
			return true
		}
	}
	return false
}

// listLen returns the number of nodes in the list starting at head.
func listLen(head *ValueNode) int {
	count := 0
	for n := head; n != nil; n = n.next {
		count++
	}
	return count
}
