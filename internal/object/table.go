package object

import (
	"log/slog"
	"sort"
	"sync"

	"ensue/internal/backtrace"
	"ensue/internal/token"
)

// Table is a shared, mutex guarded map from string keys to variants. It serves both as the map
// value kind and as every frame of a scope chain.
//
// The guard is held for one operation at a time and never while evaluating, so a command may
// read or write the table it is nested in. A panic while the guard is held poisons the table:
// its contents are in an unknown state and every later operation fails with a bug.
type Table struct {
	mu       sync.Mutex
	entries  map[string]Variant
	poisoned bool
}

func NewTable() *Table {
	return &Table{entries: make(map[string]Variant)}
}

func (t *Table) Type() ObjectType  { return TABLE_OBJ }
func (t *Table) Represent() string { return "<table>" }
func (*Table) variant()            {}

// with runs fn while holding the guard.
func (t *Table) with(mark token.Mark, fn func(entries map[string]Variant)) (err error) {
	t.mu.Lock()
	if t.poisoned {
		t.mu.Unlock()
		return backtrace.NewBug(mark, "table guard is poisoned")
	}
	if t.entries == nil {
		t.entries = make(map[string]Variant)
	}
	defer func() {
		if r := recover(); r != nil {
			t.poisoned = true
			slog.Error("table poisoned by panic under guard", slog.Any("panic", r))
			err = backtrace.NewBug(mark, "panic while table guard was held: %v", r)
		}
		t.mu.Unlock()
	}()
	fn(t.entries)
	return nil
}

// Insert sets key to val and returns the value it replaced, if any.
func (t *Table) Insert(key string, val Variant, mark token.Mark) (Variant, bool, error) {
	var prev Variant
	var had bool
	err := t.with(mark, func(entries map[string]Variant) {
		prev, had = entries[key]
		entries[key] = val
	})
	return prev, had, err
}

func (t *Table) Get(key string, mark token.Mark) (Variant, bool, error) {
	var val Variant
	var ok bool
	err := t.with(mark, func(entries map[string]Variant) {
		val, ok = entries[key]
	})
	return val, ok, err
}

func (t *Table) ContainsKey(key string, mark token.Mark) (bool, error) {
	var ok bool
	err := t.with(mark, func(entries map[string]Variant) {
		_, ok = entries[key]
	})
	return ok, err
}

func (t *Table) Remove(key string, mark token.Mark) (Variant, bool, error) {
	var prev Variant
	var had bool
	err := t.with(mark, func(entries map[string]Variant) {
		prev, had = entries[key]
		delete(entries, key)
	})
	return prev, had, err
}

// Keys returns the keys in sorted order.
func (t *Table) Keys(mark token.Mark) ([]string, error) {
	var keys []string
	err := t.with(mark, func(entries map[string]Variant) {
		keys = make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
	})
	sort.Strings(keys)
	return keys, err
}

func (t *Table) Len(mark token.Mark) (int, error) {
	var n int
	err := t.with(mark, func(entries map[string]Variant) {
		n = len(entries)
	})
	return n, err
}
