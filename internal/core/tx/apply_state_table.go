package tx

import (
	"bytes"
	"errors"
	"slices"
	"strings"

	"github.com/LeJamon/goTokend/internal/core/ledger/entry"
	"github.com/LeJamon/goTokend/internal/core/ledger/keylet"
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

func (a Action) String() string {
	switch a {
	case ActionCache:
		return "cache"
	case ActionInsert:
		return "insert"
	case ActionModify:
		return "modify"
	case ActionErase:
		return "erase"
	}
	return "unknown"
}

var (
	ErrEntryExists   = errors.New("entry already exists")
	ErrEntryNotFound = errors.New("entry not found")
)

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Type     entry.Type
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state
}

// AffectedEntry describes one entry changed by a committed request.
type AffectedEntry struct {
	Key    string
	Type   entry.Type
	Action Action
}

// ApplyStateTable wraps a read-only base and keeps every entry a single
// request reads or writes, together with its before-image. Nothing reaches
// the base until Apply; dropping the table discards the request.
type ApplyStateTable struct {
	base  ReadView
	items map[string]*TrackedEntry
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base view
func NewApplyStateTable(base ReadView) *ApplyStateTable {
	return &ApplyStateTable{
		base:  base,
		items: make(map[string]*TrackedEntry),
	}
}

// Read reads a ledger entry, tracking it as cached
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if e, ok := t.items[string(k.Key)]; ok {
		if e.Action == ActionErase {
			return nil, nil
		}
		return e.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[string(k.Key)] = &TrackedEntry{
			Type:     k.Type,
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}
	return data, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if e, ok := t.items[string(k.Key)]; ok {
		return e.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if e, ok := t.items[string(k.Key)]; ok {
		if e.Action != ActionErase {
			return ErrEntryExists
		}
		// Re-inserting a deleted entry becomes a modify
		e.Action = ActionModify
		e.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ErrEntryExists
	}

	t.items[string(k.Key)] = &TrackedEntry{
		Type:    k.Type,
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if e, ok := t.items[string(k.Key)]; ok {
		if e.Action == ActionErase {
			return ErrEntryNotFound
		}
		if e.Action == ActionCache {
			e.Action = ActionModify
		}
		// an insert stays an insert with new data
		e.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return ErrEntryNotFound
	}

	t.items[string(k.Key)] = &TrackedEntry{
		Type:     k.Type,
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes an entry
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if e, ok := t.items[string(k.Key)]; ok {
		switch e.Action {
		case ActionErase:
			return ErrEntryNotFound
		case ActionInsert:
			// Inserting then deleting = no change
			delete(t.items, string(k.Key))
		default:
			e.Action = ActionErase
		}
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return ErrEntryNotFound
	}

	t.items[string(k.Key)] = &TrackedEntry{
		Type:     k.Type,
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}
	return nil
}

// ForEach visits the merged view of base and tracked entries under prefix
// in ascending key order.
func (t *ApplyStateTable) ForEach(prefix []byte, fn func(key, data []byte) bool) error {
	p := string(prefix)
	var local []string
	for key, e := range t.items {
		if e.Action != ActionErase && strings.HasPrefix(key, p) {
			local = append(local, key)
		}
	}
	slices.Sort(local)

	i := 0
	stopped := false
	emitLocalBefore := func(limit []byte) bool {
		for i < len(local) && (limit == nil || local[i] < string(limit)) {
			k := local[i]
			i++
			e := t.items[k]
			if e == nil || e.Action == ActionErase {
				continue
			}
			if !fn([]byte(k), e.Current) {
				return false
			}
		}
		return true
	}

	err := t.base.ForEach(prefix, func(key, data []byte) bool {
		if !emitLocalBefore(key) {
			stopped = true
			return false
		}
		if _, tracked := t.items[string(key)]; tracked {
			// the tracked version, if still present, is in local
			return true
		}
		if !fn(key, data) {
			stopped = true
			return false
		}
		return true
	})
	if err != nil || stopped {
		return err
	}
	emitLocalBefore(nil)
	return nil
}

// Changes returns the writes the request made, sorted by key.
func (t *ApplyStateTable) Changes() []Op {
	ops := make([]Op, 0, len(t.items))
	for key, e := range t.items {
		switch e.Action {
		case ActionInsert:
			ops = append(ops, Op{Key: []byte(key), Data: e.Current})
		case ActionModify:
			if bytes.Equal(e.Original, e.Current) {
				continue
			}
			ops = append(ops, Op{Key: []byte(key), Data: e.Current})
		case ActionErase:
			ops = append(ops, Op{Key: []byte(key)})
		}
	}
	slices.SortFunc(ops, func(a, b Op) int { return bytes.Compare(a.Key, b.Key) })
	return ops
}

// Affected lists the entries changed by the request, sorted by key.
func (t *ApplyStateTable) Affected() []AffectedEntry {
	var out []AffectedEntry
	for key, e := range t.items {
		if e.Action == ActionCache || (e.Action == ActionModify && bytes.Equal(e.Original, e.Current)) {
			continue
		}
		out = append(out, AffectedEntry{Key: key, Type: e.Type, Action: e.Action})
	}
	slices.SortFunc(out, func(a, b AffectedEntry) int { return strings.Compare(a.Key, b.Key) })
	return out
}

// Apply commits all changes to base atomically.
func (t *ApplyStateTable) Apply(base Base) error {
	ops := t.Changes()
	if len(ops) == 0 {
		return nil
	}
	return base.ApplyBatch(ops)
}
