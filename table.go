package prefs

// Table is the multi-value index mapping Keys to lists of Values. A key
// present in the table with a nil list head is a cleared key: the user
// explicitly emptied it, which is distinct from the key being absent.
//
// Table is the immutable-after-load view produced by the parser and the
// legacy importer. Preferences embeds one and layers the mutation API on
// top of it.
type Table struct {
	entries map[Key]*ValueNode
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[Key]*ValueNode)}
}

// Find returns the head of the key's value list and whether the key is
// present. A present key may return a nil head (a cleared key).
func (t *Table) Find(k Key) (*ValueNode, bool) {
	head, ok := t.entries[k]
	return head, ok
}

// insert sets the key's list head, adding the key if absent.
func (t *Table) insert(k Key, head *ValueNode) {
	if t.entries == nil {
		t.entries = make(map[Key]*ValueNode)
	}
	t.entries[k] = head
}

// remove deletes the key and returns its former head.
func (t *Table) remove(k Key) (*ValueNode, bool) {
	head, ok := t.entries[k]
	if ok {
		delete(t.entries, k)
	}
	return head, ok
}

// Size returns the number of present keys, cleared keys included.
func (t *Table) Size() int {
	return len(t.entries)
}

// Each calls fn once for every present key. Iteration order is unspecified.
// fn must not mutate the table.
func (t *Table) Each(fn func(Key, *ValueNode)) {
	for k, head := range t.entries {
		fn(k, head)
	}
}

// LookupValues returns the key's value list head. The head is nil when the
// key is absent or cleared; use Find to tell those apart.
func (t *Table) LookupValues(k Key) *ValueNode {
	return t.entries[k]
}

// LookupString returns the first string value stored under the key.
func (t *Table) LookupString(k Key) (string, bool) {
	for n := t.entries[k]; n != nil; n = n.next {
		if s, ok := n.Str(); ok {
			return s, true
		}
	}
	return "", false
}

// LookupInt returns the first integer value stored under the key.
func (t *Table) LookupInt(k Key) (int64, bool) {
	for n := t.entries[k]; n != nil; n = n.next {
		if i, ok := n.Int(); ok {
			return i, true
		}
	}
	return 0, false
}

// LookupBool returns the first boolean value stored under the key.
func (t *Table) LookupBool(k Key) (bool, bool) {
	for n := t.entries[k]; n != nil; n = n.next {
		if b, ok := n.Bool(); ok {
			return b, true
		}
	}
	return false, false
}

// equalLists reports whether two value lists hold the same set of values,
// ignoring order and repeated occurrences. Parsed lists may repeat a value
// (duplicate keys are legal in the file), so a length check would report
// false differences; full two-way containment compares the semantic
// content.
func equalLists(a, b *ValueNode) bool {
	for n := a; n != nil; n = n.next {
		if !listContains(b, n.Value) {
			return false
		}
	}
	for n := b; n != nil; n = n.next {
		if !listContains(a, n.Value) {
			return false
		}
	}
	return true
}
