package prefs

import (
	"strings"
	"testing"
)

func TestKey_Validity(t *testing.T) {
	cases := []struct {
		name  string
		key   Key
		valid bool
	}{
		{"global string", GlobalString("window_width"), true},
		{"empty global string", GlobalString(""), false},
		{"max size string", GlobalString(strings.Repeat("k", MaxKeySize)), true},
		{"oversize string", GlobalString(strings.Repeat("k", MaxKeySize+1)), false},
		{"global int", GlobalInt(42), true},
		{"negative global int", GlobalInt(-7), true},
		{"sectioned string", SectionedString("midi", "channel"), true},
		{"sectioned empty name", SectionedString("midi", ""), false},
		{"sectioned empty section", SectionedString("", "channel"), false},
		{"sectioned int", SectionedInt("cc_to_param_id_map", 64), true},
		{"sectioned int oversize section", SectionedInt(strings.Repeat("s", MaxKeySize+1), 64), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.key.Valid(); got != tc.valid {
				t.Errorf("Valid() = %v, want %v", got, tc.valid)
			}
		})
	}
}

func TestKey_Equality(t *testing.T) {
	if GlobalString("x") != GlobalString("x") {
		t.Error("identical global string keys should compare equal")
	}
	if GlobalString("x") == GlobalString("y") {
		t.Error("different global string keys should not compare equal")
	}
	if SectionedString("a", "x") == GlobalString("x") {
		t.Error("sectioned and global keys should not compare equal")
	}
	if SectionedInt("a", 1) == SectionedString("a", "1") {
		t.Error("int and string keys should not compare equal even with equal text")
	}
}

func TestKey_HashDiscriminatesVariants(t *testing.T) {
	// The same payload under different variants must hash distinctly.
	hashes := map[uint64]string{}
	for name, k := range map[string]Key{
		"GlobalString(7)":     GlobalString("7"),
		"GlobalInt(7)":        GlobalInt(7),
		"Sectioned(x, 7)":     SectionedInt("x", 7),
		"Sectioned(x, \"7\")": SectionedString("x", "7"),
	} {
		h := k.Hash()
		if other, dup := hashes[h]; dup {
			t.Errorf("%s and %s hash identically (%d)", name, other, h)
		}
		hashes[h] = name
	}
}

func TestKey_HashStable(t *testing.T) {
	k := SectionedString("gui", "theme")
	if k.Hash() != SectionedString("gui", "theme").Hash() {
		t.Error("equal keys must hash equally")
	}
}

func TestValue_TypedExtraction(t *testing.T) {
	v := IntValue(42)
	if n, ok := v.Int(); !ok || n != 42 {
		t.Errorf("Int() = (%d, %v), want (42, true)", n, ok)
	}
	if _, ok := v.Str(); ok {
		t.Error("Str() on an int value should report false")
	}
	if _, ok := v.Bool(); ok {
		t.Error("Bool() on an int value should report false")
	}

	s := StringValue("hello")
	if got, ok := s.Str(); !ok || got != "hello" {
		t.Errorf("Str() = (%q, %v), want (hello, true)", got, ok)
	}

	b := BoolValue(true)
	if got, ok := b.Bool(); !ok || !got {
		t.Errorf("Bool() = (%v, %v), want (true, true)", got, ok)
	}
}

func TestValue_Equality(t *testing.T) {
	if StringValue("1") == IntValue(1) {
		t.Error("values of different types must not compare equal")
	}
	if IntValue(1) != IntValue(1) {
		t.Error("equal int values must compare equal")
	}
	if BoolValue(false) != BoolValue(false) {
		t.Error("equal bool values must compare equal")
	}
}

func TestValue_String(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{BoolValue(true), "true"},
		{BoolValue(false), "false"},
		{IntValue(-12), "-12"},
		{StringValue("plain text"), "plain text"},
	}
	for _, tc := range cases {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
