package prefs

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// PollInterval is the minimum spacing between external-change polls.
const PollInterval = time.Second

// ChangeListener observes semantic changes. It receives the post-change
// value list head for the key; a nil head means the key was removed or
// cleared. Listeners must not mutate the Preferences reentrantly.
type ChangeListener func(key Key, head *ValueNode)

// SetValueOptions configures SetValue.
type SetValueOptions struct {
	// OverwriteOnly skips the set entirely when the key is absent.
	// Existing entries are still updated.
	OverwriteOnly bool

	// CloneKeyString interns the key's string parts into the pool. Use
	// when the caller does not own the key's backing storage.
	CloneKeyString bool

	// DontTrackChanges suppresses the dirty flag and the listener.
	DontTrackChanges bool
}

// RemoveValueOptions configures RemoveValue and Remove.
type RemoveValueOptions struct {
	// DontTrackChanges suppresses the dirty flag and the listener.
	DontTrackChanges bool
}

// ReplaceOptions configures ReplacePreferences.
type ReplaceOptions struct {
	// RemoveKeysNotInNewTable deletes local keys the new table does not
	// mention, converging exactly on the new table's view.
	RemoveKeysNotInNewTable bool
}

// PollOptions configures PollForExternalChanges.
type PollOptions struct {
	// IgnoreRateLimiting polls even if the last poll was under
	// PollInterval ago.
	IgnoreRateLimiting bool
}

// config holds construction options for Preferences.
type config struct {
	clock        clockz.Clock
	pollInterval time.Duration
	watcher      DirWatcher
}

// Option configures a Preferences at construction.
type Option func(*config)

// WithClock sets a custom clock for rate limiting and mtime stamping.
// Use clockz.NewFakeClock() for deterministic tests.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithPollInterval overrides the external-change poll rate limit.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.pollInterval = d
	}
}

// WithWatcher injects a DirWatcher, replacing the fsnotify watcher Init
// would otherwise create.
func WithWatcher(w DirWatcher) Option {
	return func(c *config) {
		c.watcher = w
	}
}

// Preferences is the process-wide, file-backed preference store. One
// instance is created at startup, shared by all plugin instances, and torn
// down at shutdown.
//
// All mutation happens on a single designated goroutine (typically the
// host's main thread). The only blocking operations are Init,
// WriteIfNeeded and PollForExternalChanges, which touch the filesystem.
type Preferences struct {
	table *Table
	pool  stringPool
	free  freeList

	// dirty is true iff the in-memory state differs from the contents
	// last successfully read from or written to the file.
	dirty bool

	path        string // official write path
	lastFileMod int64  // mtime of the file as last read or written, ns

	watcher      DirWatcher
	clock        clockz.Clock
	pollInterval time.Duration
	lastPoll     time.Time
	hasPolled    bool

	onChange    ChangeListener
	initialized bool
}

// New returns an empty, uninitialized Preferences.
func New(opts ...Option) *Preferences {
	cfg := &config{
		clock:        clockz.RealClock,
		pollInterval: PollInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Preferences{
		table:        NewTable(),
		watcher:      cfg.watcher,
		clock:        cfg.clock,
		pollInterval: cfg.pollInterval,
	}
}

// Init loads preferences from the first candidate path that reads
// successfully and begins watching the official path's directory for
// external changes. The first candidate is the official path: it is where
// WriteIfNeeded flushes to, whichever candidate the load came from.
//
// Candidates ending in ".json" are imported from the legacy format. Absent
// and permission-denied candidates are skipped. Any other load failure is
// returned, but the Preferences remains usable with an empty table. A
// watcher that cannot be created is reported via the WatcherFailed signal
// and degrades the Preferences to write-only behavior.
func (p *Preferences) Init(ctx context.Context, candidatePaths []string) error {
	if p.initialized {
		return errors.New("preferences already initialized")
	}
	if len(candidatePaths) == 0 {
		return errors.New("no candidate paths")
	}
	p.initialized = true
	p.path = candidatePaths[0]

	table, loadedPath, mtime, err := loadCandidatePaths(ctx, candidatePaths)
	p.table = table
	switch loadedPath {
	case p.path:
		p.lastFileMod = mtime
	case "":
		// Nothing loaded; an empty table matches an absent file.
	default:
		// Loaded from a fallback or legacy path. The official file does
		// not hold this state yet, so a flush is pending.
		p.dirty = true
	}

	if p.watcher == nil {
		watcher, werr := WatchDir(filepath.Dir(p.path))
		if werr != nil {
			capitan.Emit(ctx, WatcherFailed,
				KeyPath.Field(p.path),
				KeyError.Field(werr.Error()),
			)
		} else {
			p.watcher = watcher
		}
	}
	if p.watcher != nil {
		capitan.Emit(ctx, WatchStarted,
			KeyPath.Field(p.path),
			KeyPollInterval.Field(p.pollInterval),
		)
	}

	return err
}

// Deinit detaches the listener and stops the watcher. WriteIfNeeded must
// be called first if pending changes should survive; Deinit does not
// flush.
func (p *Preferences) Deinit() {
	p.onChange = nil
	if p.watcher != nil {
		p.watcher.Close() //nolint:errcheck // shutdown is best effort
		p.watcher = nil
	}
}

// SetOnChange installs the change listener. Only one listener is
// supported; hosts needing more multiplex externally.
func (p *Preferences) SetOnChange(fn ChangeListener) {
	p.onChange = fn
}

// Table returns the underlying table view for use with GetValue and the
// other descriptor helpers. Callers must not retain it across mutations.
func (p *Preferences) Table() *Table {
	return p.table
}

// Dirty reports whether in-memory state has diverged from the file.
func (p *Preferences) Dirty() bool {
	return p.dirty
}

// Size returns the number of present keys.
func (p *Preferences) Size() int { return p.table.Size() }

// Find returns the key's value list head and whether the key is present.
func (p *Preferences) Find(k Key) (*ValueNode, bool) { return p.table.Find(k) }

// LookupValues returns the key's value list head, nil if absent or cleared.
func (p *Preferences) LookupValues(k Key) *ValueNode { return p.table.LookupValues(k) }

// LookupString returns the first string value stored under the key.
func (p *Preferences) LookupString(k Key) (string, bool) { return p.table.LookupString(k) }

// LookupInt returns the first integer value stored under the key.
func (p *Preferences) LookupInt(k Key) (int64, bool) { return p.table.LookupInt(k) }

// LookupBool returns the first boolean value stored under the key.
func (p *Preferences) LookupBool(k Key) (bool, bool) { return p.table.LookupBool(k) }

// SetValue replaces the key's values with the single value v. Setting a
// key that already holds exactly v is a no-op: nothing changes and the
// listener is not invoked. Displaced values are recycled.
func (p *Preferences) SetValue(k Key, v Value, opts SetValueOptions) {
	head, exists := p.table.Find(k)

	if exists && head != nil && head.next == nil && head.Value == v {
		return
	}

	if !exists {
		if opts.OverwriteOnly {
			return
		}
		if opts.CloneKeyString {
			k = p.cloneKey(k)
		}
		node := p.allocNode(v)
		p.table.insert(k, node)
		p.notifyChange(k, node, opts.DontTrackChanges)
		return
	}

	if head == nil {
		// Cleared key gains its first value.
		node := p.allocNode(v)
		p.table.insert(k, node)
		p.notifyChange(k, node, opts.DontTrackChanges)
		return
	}

	// Recycle everything past the first node, then rewrite the first in
	// place so the list head stays put.
	for n := head.next; n != nil; {
		next := n.next
		p.freeNode(n)
		n = next
	}
	if s, ok := head.Str(); ok {
		p.pool.free(s)
	}
	head.Value = p.cloneValue(v)
	head.next = nil
	p.notifyChange(k, head, opts.DontTrackChanges)
}

// SetValueWithDescriptor validates v against the descriptor before
// setting. When validation lands on the default, the set becomes
// overwrite-only: the file gains no entry for a default, but an existing
// entry is still updated.
func (p *Preferences) SetValueWithDescriptor(d Descriptor, v Value, opts SetValueOptions) {
	validated, isDefault := ValidatedOrDefault(v, d)
	if isDefault {
		opts.OverwriteOnly = true
	}
	p.SetValue(d.Key, validated, opts)
}

// AddValue appends v to the key's value list, creating the key if needed.
// It returns false without change if v is already present.
func (p *Preferences) AddValue(k Key, v Value, opts SetValueOptions) bool {
	head, exists := p.table.Find(k)
	if listContains(head, v) {
		return false
	}

	node := p.allocNode(v)
	if head == nil {
		if !exists && opts.CloneKeyString {
			k = p.cloneKey(k)
		}
		p.table.insert(k, node)
		head = node
	} else {
		tail := head
		for tail.next != nil {
			tail = tail.next
		}
		tail.next = node
	}

	p.notifyChange(k, head, opts.DontTrackChanges)
	return true
}

// RemoveValue removes every value equal to v under the key. Normally that
// is at most one node, since AddValue refuses duplicates. If the list
// becomes empty, the key is deleted entirely and the listener sees a nil
// head. Returns whether anything was removed.
func (p *Preferences) RemoveValue(k Key, v Value, opts RemoveValueOptions) bool {
	head, exists := p.table.Find(k)
	if !exists || head == nil {
		return false
	}

	removed := false
	for head != nil && head.Value == v {
		next := head.next
		p.freeNode(head)
		head = next
		removed = true
	}
	if head != nil {
		for prev := head; prev.next != nil; {
			if prev.next.Value == v {
				gone := prev.next
				prev.next = gone.next
				p.freeNode(gone)
				removed = true
			} else {
				prev = prev.next
			}
		}
	}

	if !removed {
		return false
	}

	if head == nil {
		p.deleteKey(k)
	} else {
		p.table.insert(k, head)
	}
	p.notifyChange(k, head, opts.DontTrackChanges)
	return true
}

// Remove deletes the key and all its values. Returns whether the key was
// present.
func (p *Preferences) Remove(k Key, opts RemoveValueOptions) bool {
	head, exists := p.table.Find(k)
	if !exists {
		return false
	}
	for n := head; n != nil; {
		next := n.next
		p.freeNode(n)
		n = next
	}
	p.deleteKey(k)
	p.notifyChange(k, nil, opts.DontTrackChanges)
	return true
}

// ReplacePreferences reconciles the in-memory state with a freshly parsed
// table. The listener is invoked once per key whose value list changed,
// with the final list, regardless of how many inserts and removals the
// reconciliation performed. With RemoveKeysNotInNewTable set, keys the new
// table does not mention are removed; otherwise they are left untouched.
func (p *Preferences) ReplacePreferences(newTable *Table, opts ReplaceOptions) {
	if opts.RemoveKeysNotInNewTable {
		var gone []Key
		p.table.Each(func(k Key, _ *ValueNode) {
			if _, ok := newTable.Find(k); !ok {
				gone = append(gone, k)
			}
		})
		for _, k := range gone {
			p.Remove(k, RemoveValueOptions{})
		}
	}

	newTable.Each(func(k Key, newHead *ValueNode) {
		curHead, exists := p.table.Find(k)

		if !exists {
			var head, tail *ValueNode
			for n := newHead; n != nil; n = n.next {
				if listContains(head, n.Value) {
					continue
				}
				node := p.allocNode(n.Value)
				if tail == nil {
					head = node
				} else {
					tail.next = node
				}
				tail = node
			}
			k = p.cloneKey(k)
			p.table.insert(k, head)
			p.notifyChange(k, head, false)
			return
		}

		if equalLists(curHead, newHead) {
			return
		}

		// Drop local values the new list lacks, recycle their nodes.
		// Repeated occurrences are collapsed here too: a list loaded
		// from a duplicate-bearing file converges to duplicate-free
		// form like every other list under the mutation API.
		for curHead != nil && !listContains(newHead, curHead.Value) {
			next := curHead.next
			p.freeNode(curHead)
			curHead = next
		}
		if curHead != nil {
			for prev := curHead; prev.next != nil; {
				v := prev.next.Value
				if !listContains(newHead, v) || listContainsBefore(curHead, prev.next, v) {
					gone := prev.next
					prev.next = gone.next
					p.freeNode(gone)
				} else {
					prev = prev.next
				}
			}
		}

		// Append new values the local list lacks.
		for n := newHead; n != nil; n = n.next {
			if listContains(curHead, n.Value) {
				continue
			}
			node := p.allocNode(n.Value)
			if curHead == nil {
				curHead = node
			} else {
				tail := curHead
				for tail.next != nil {
					tail = tail.next
				}
				tail.next = node
			}
		}

		p.table.insert(k, curHead)
		p.notifyChange(k, curHead, false)
	})
}

// PollForExternalChanges folds in edits made to the file by other
// processes. Polls are rate-limited to one per PollInterval unless
// overridden. If local changes are pending (dirty flag set), external
// changes are ignored for this poll: local edits win, and the next
// WriteIfNeeded will overwrite the file.
//
// A reload is skipped when the file's mtime is not strictly greater than
// the last mtime read or written, which filters out the echo of this
// process's own writes.
func (p *Preferences) PollForExternalChanges(ctx context.Context, opts PollOptions) error {
	if p.watcher == nil {
		return nil
	}

	now := p.clock.Now()
	if !opts.IgnoreRateLimiting && p.hasPolled && now.Sub(p.lastPoll) < p.pollInterval {
		return nil
	}
	p.lastPoll = now
	p.hasPolled = true

	changed, err := p.watcher.Poll()
	if err != nil {
		capitan.Emit(ctx, PollFailed,
			KeyPath.Field(p.path),
			KeyError.Field(err.Error()),
		)
		return err
	}

	filename := filepath.Base(p.path)
	for _, subpath := range changed {
		if subpath != filename {
			continue
		}
		if p.dirty {
			// Local unsaved edits win; skip this external view.
			break
		}

		data, mtime, err := ReadPreferencesFile(p.path)
		if err != nil {
			capitan.Emit(ctx, PollFailed,
				KeyPath.Field(p.path),
				KeyError.Field(err.Error()),
			)
			return err
		}
		if mtime <= p.lastFileMod {
			continue
		}

		newTable := ParsePreferences(ctx, data)
		p.ReplacePreferences(newTable, ReplaceOptions{RemoveKeysNotInNewTable: true})
		p.lastFileMod = mtime
		p.dirty = false

		capitan.Emit(ctx, Reconciled,
			KeyPath.Field(p.path),
			KeyCount.Field(newTable.Size()),
		)
	}

	return nil
}

// WriteIfNeeded flushes to the official path when the dirty flag is set.
// The file's mtime is set to the current time as sampled before the write,
// and that value is cached so the watcher can ignore the resulting change
// event. On failure the dirty flag stays set and the next call retries.
func (p *Preferences) WriteIfNeeded(ctx context.Context) error {
	if !p.dirty {
		return nil
	}

	mtime := p.clock.Now().UnixNano()
	if err := WritePreferencesFile(p.path, SerializeTable(p.table), mtime); err != nil {
		capitan.Emit(ctx, WriteFailed,
			KeyPath.Field(p.path),
			KeyError.Field(err.Error()),
		)
		return err
	}

	p.lastFileMod = mtime
	p.dirty = false
	capitan.Emit(ctx, Written,
		KeyPath.Field(p.path),
		KeyCount.Field(p.table.Size()),
	)
	return nil
}

// allocNode returns a node holding a clone of v, recycling from the
// free-list when possible.
func (p *Preferences) allocNode(v Value) *ValueNode {
	node := p.free.pop()
	if node == nil {
		node = &ValueNode{}
	}
	node.Value = p.cloneValue(v)
	return node
}

// freeNode recycles a node and releases its pooled string.
func (p *Preferences) freeNode(n *ValueNode) {
	if s, ok := n.Str(); ok {
		p.pool.free(s)
	}
	p.free.push(n)
}

// cloneValue interns string payloads into the pool.
func (p *Preferences) cloneValue(v Value) Value {
	if s, ok := v.Str(); ok {
		return StringValue(p.pool.clone(s))
	}
	return v
}

// cloneKey interns the key's string parts into the pool.
func (p *Preferences) cloneKey(k Key) Key {
	k.section = p.pool.clone(k.section)
	k.str = p.pool.clone(k.str)
	return k
}

// deleteKey removes the key from the table and releases its pooled
// strings.
func (p *Preferences) deleteKey(k Key) {
	p.table.remove(k)
	if k.section != "" {
		p.pool.free(k.section)
	}
	if k.str != "" {
		p.pool.free(k.str)
	}
}

// notifyChange records a semantic change: the dirty flag is set, the
// Changed signal is emitted, and the listener (if any) is invoked with the
// post-change list head.
func (p *Preferences) notifyChange(k Key, head *ValueNode, suppressed bool) {
	if suppressed {
		return
	}
	p.dirty = true
	capitan.Emit(context.Background(), Changed,
		KeyPrefKey.Field(k.String()),
	)
	if p.onChange != nil {
		p.onChange(k, head)
	}
}
