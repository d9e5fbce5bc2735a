package prefs

import (
	"context"
	"strings"
	"testing"
)

func TestParse_TwoStringPairs(t *testing.T) {
	ctx := context.Background()
	table := ParsePreferences(ctx, []byte("key1 = value1\nkey2 = value2\n"))

	if table.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", table.Size())
	}
	if s, ok := table.LookupString(GlobalString("key1")); !ok || s != "value1" {
		t.Errorf("key1 = (%q, %v), want value1", s, ok)
	}
	if s, ok := table.LookupString(GlobalString("key2")); !ok || s != "value2" {
		t.Errorf("key2 = (%q, %v), want value2", s, ok)
	}
}

func TestParse_ClearedKey(t *testing.T) {
	for _, input := range []string{"key = ", "key =", "key = \n"} {
		table := ParsePreferences(context.Background(), []byte(input))
		if table.Size() != 1 {
			t.Fatalf("input %q: Size() = %d, want 1", input, table.Size())
		}
		head, ok := table.Find(GlobalString("key"))
		if !ok {
			t.Fatalf("input %q: cleared key should be present", input)
		}
		if head != nil {
			t.Errorf("input %q: cleared key should have a nil value list", input)
		}
	}
}

func TestParse_ClearedKeyDoesNotShadowValues(t *testing.T) {
	table := ParsePreferences(context.Background(), []byte("key = v\nkey =\n"))
	head := table.LookupValues(GlobalString("key"))
	if head == nil {
		t.Fatal("existing values should survive a later cleared line")
	}
}

func TestParse_ValueTyping(t *testing.T) {
	input := "b1 = true\nb2 = FALSE\nb3 = True\ni1 = 42\ni2 = -7\ns1 = hello world\ns2 = 12abc\n"
	table := ParsePreferences(context.Background(), []byte(input))

	for _, name := range []string{"b1", "b3"} {
		if b, ok := table.LookupBool(GlobalString(name)); !ok || !b {
			t.Errorf("%s should parse as bool true", name)
		}
	}
	if b, ok := table.LookupBool(GlobalString("b2")); !ok || b {
		t.Error("b2 should parse as bool false")
	}
	if n, ok := table.LookupInt(GlobalString("i1")); !ok || n != 42 {
		t.Errorf("i1 = (%d, %v), want 42", n, ok)
	}
	if n, ok := table.LookupInt(GlobalString("i2")); !ok || n != -7 {
		t.Errorf("i2 = (%d, %v), want -7", n, ok)
	}
	if s, ok := table.LookupString(GlobalString("s1")); !ok || s != "hello world" {
		t.Errorf("s1 = (%q, %v)", s, ok)
	}
	// Partial numeric prefix stays a string.
	if s, ok := table.LookupString(GlobalString("s2")); !ok || s != "12abc" {
		t.Errorf("s2 = (%q, %v), want 12abc", s, ok)
	}
}

func TestParse_IntegerKeys(t *testing.T) {
	table := ParsePreferences(context.Background(), []byte("42 = x\n[sec]\n7 = true\n"))

	if s, ok := table.LookupString(GlobalInt(42)); !ok || s != "x" {
		t.Errorf("GlobalInt(42) = (%q, %v), want x", s, ok)
	}
	if b, ok := table.LookupBool(SectionedInt("sec", 7)); !ok || !b {
		t.Error("SectionedInt(sec, 7) should hold true")
	}
}

func TestParse_SectionsAndComments(t *testing.T) {
	input := "; comment\nkey1 = value1\nkey2 = value2\n\n[section]\nkey1 = true\nkey2 = false\n"
	table := ParsePreferences(context.Background(), []byte(input))

	if table.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", table.Size())
	}
	if s, _ := table.LookupString(GlobalString("key1")); s != "value1" {
		t.Errorf("global key1 = %q", s)
	}
	if b, ok := table.LookupBool(SectionedString("section", "key1")); !ok || !b {
		t.Error("section/key1 should be true")
	}
	if b, ok := table.LookupBool(SectionedString("section", "key2")); !ok || b {
		t.Error("section/key2 should be false")
	}
}

func TestParse_MalformedLinesSkipped(t *testing.T) {
	input := strings.Join([]string{
		"good = 1",
		"no separator at all",     // no '=': skipped, not a cleared key
		"[unterminated",           // bad section header: ignored
		"[" + strings.Repeat("s", MaxKeySize+1) + "]", // oversize section: ignored
		strings.Repeat("k", MaxKeySize+1) + " = v",    // oversize key: skipped
		"   ",
		"also_good = 2",
	}, "\n")
	table := ParsePreferences(context.Background(), []byte(input))

	if table.Size() != 2 {
		t.Fatalf("Size() = %d, want 2 (malformed lines must be skipped)", table.Size())
	}
	// The malformed section headers must not have changed the section.
	if _, ok := table.LookupInt(GlobalString("also_good")); !ok {
		t.Error("also_good should remain a global key")
	}
}

func TestParse_BracketLineWithoutClosingBracketIsAPair(t *testing.T) {
	// Only a '['-line ending in ']' is a section header. "[x] = y" does
	// not end in ']', so it parses as the key "[x]".
	table := ParsePreferences(context.Background(), []byte("[x] = y\n[sec]\na = 1\n[z] = 3\n"))

	if s, ok := table.LookupString(GlobalString("[x]")); !ok || s != "y" {
		t.Errorf("[x] = (%q, %v), want y", s, ok)
	}
	// Pair parsing must not disturb section tracking around it.
	if n, ok := table.LookupInt(SectionedString("sec", "a")); !ok || n != 1 {
		t.Error("a should land under [sec]")
	}
	if n, ok := table.LookupInt(SectionedString("sec", "[z]")); !ok || n != 3 {
		t.Error("[z] should land under [sec]")
	}
}

func TestParse_LeadingWhitespaceStripped(t *testing.T) {
	table := ParsePreferences(context.Background(), []byte("  \t key = value\n\t; indented comment\n"))
	if s, ok := table.LookupString(GlobalString("key")); !ok || s != "value" {
		t.Errorf("key = (%q, %v), want value", s, ok)
	}
}

func TestParse_DuplicateKeysAccumulate(t *testing.T) {
	table := ParsePreferences(context.Background(), []byte("k = a\nk = b\nk = c\n"))

	head := table.LookupValues(GlobalString("k"))
	if listLen(head) != 3 {
		t.Fatalf("list length = %d, want 3", listLen(head))
	}
	// Later values are prepended.
	if s, _ := head.Str(); s != "c" {
		t.Errorf("head = %q, want c (latest value prepends)", s)
	}
	for _, want := range []string{"a", "b", "c"} {
		if !listContains(head, StringValue(want)) {
			t.Errorf("list should contain %q", want)
		}
	}
}

func TestSerialize_GlobalsFirstThenSections(t *testing.T) {
	ctx := context.Background()
	input := "; comment\nkey1 = value1\nkey2 = value2\n\n[section]\nkey1 = true\nkey2 = false\n"
	table := ParsePreferences(ctx, []byte(input))

	out := string(SerializeTable(table))

	globalIdx := strings.Index(out, "key1 = value1")
	sectionIdx := strings.Index(out, "[section]")
	if globalIdx < 0 || sectionIdx < 0 {
		t.Fatalf("serialized output missing expected lines:\n%s", out)
	}
	if globalIdx > sectionIdx {
		t.Error("sectionless keys must serialize before sections")
	}
	if !strings.Contains(out, "\n\n[section]\n") {
		t.Error("section header must be preceded by a blank line")
	}
	if strings.Count(out, "[section]") != 1 {
		t.Error("each section header must appear exactly once")
	}
}

func TestSerialize_ClearedKeyRoundTrips(t *testing.T) {
	ctx := context.Background()
	table := ParsePreferences(ctx, []byte("key =\n"))
	again := ParsePreferences(ctx, SerializeTable(table))

	head, ok := again.Find(GlobalString("key"))
	if !ok || head != nil {
		t.Errorf("cleared key did not survive a round-trip: present=%v head=%v", ok, head)
	}
}

func TestSerialize_Deterministic(t *testing.T) {
	ctx := context.Background()
	input := "z = 1\na = 2\n[s2]\nk = 3\n[s1]\nk = 4\n"
	table := ParsePreferences(ctx, []byte(input))

	first := string(SerializeTable(table))
	for range 5 {
		if got := string(SerializeTable(table)); got != first {
			t.Fatalf("serialization is not deterministic:\n%s\nvs\n%s", first, got)
		}
	}
}

func TestRoundTrip_ParseSerializeParse(t *testing.T) {
	ctx := context.Background()
	input := strings.Join([]string{
		"name = Floe",
		"count = 3",
		"flag = true",
		"multi = a",
		"multi = b",
		"cleared =",
		"9 = int key",
		"[gui]",
		"width = 910",
		"dark = false",
		"[cc_to_param_id_map]",
		"64 = 12",
		"64 = 40",
	}, "\n")

	table := ParsePreferences(ctx, []byte(input))
	again := ParsePreferences(ctx, SerializeTable(table))

	if again.Size() != table.Size() {
		t.Fatalf("round-trip size %d, want %d", again.Size(), table.Size())
	}
	table.Each(func(k Key, head *ValueNode) {
		other, ok := again.Find(k)
		if !ok {
			t.Errorf("key %s lost in round-trip", k)
			return
		}
		if !equalLists(head, other) {
			t.Errorf("key %s values changed in round-trip", k)
		}
	})
}
