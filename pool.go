package prefs

// stringPool deduplicates strings owned by a Preferences. Clone returns the
// canonical pooled copy of a string; Free is advisory and releases the
// pooled entry so the garbage collector can reclaim it once no key or value
// references it. Repeated set/unset of the same key therefore reuses one
// canonical string rather than accumulating copies.
type stringPool struct {
	interned map[string]string
}

// clone returns the pooled copy of s, interning it on first use.
func (p *stringPool) clone(s string) string {
	if s == "" {
		return ""
	}
	if p.interned == nil {
		p.interned = make(map[string]string)
	}
	if pooled, ok := p.interned[s]; ok {
		return pooled
	}
	// strings.Clone would detach from a larger backing array, but parse
	// buffers are released wholesale so sharing is fine here.
	p.interned[s] = s
	return s
}

// free releases the pooled entry for s. Advisory: callers may still hold
// the string, and a later clone of equal contents re-interns it.
func (p *stringPool) free(s string) {
	delete(p.interned, s)
}

// freeList recycles ValueNodes. RemoveValue and SetValue push retired nodes
// on; allocation pops before falling back to a fresh node. Preference
// mutation is dominated by repeated set/unset of the same keys, so the
// free-list keeps steady-state allocation flat.
type freeList struct {
	head *ValueNode
	size int
}

// push retires a single node onto the free-list. The node's payload is
// cleared so pooled strings it referenced can be reclaimed.
func (f *freeList) push(n *ValueNode) {
	n.Value = Value{}
	n.next = f.head
	f.head = n
	f.size++
}

// pop returns a recycled node, or nil if the free-list is empty.
func (f *freeList) pop() *ValueNode {
	n := f.head
	if n == nil {
		return nil
	}
	f.head = n.next
	n.next = nil
	f.size--
	return n
}

// len returns the number of recycled nodes currently held.
func (f *freeList) len() int {
	return f.size
}
