// Package symbol tracks the aliases a DSL program introduces so that later
// statements can be checked against earlier ones. One Table is scoped to a
// single compile; concurrent compiles each own their own Table.
package symbol

import (
	"fmt"
)

// Kind names the statement kind that introduced an alias.
type Kind string

const (
	KindLoad      Kind = "LOAD_CSV"
	KindAggregate Kind = "AGGREGATE"
	KindEnrich    Kind = "ENRICH"
	KindCompute   Kind = "COMPUTE"
)

// Entry holds what is known about one alias. Fields is the growable set of
// field names known to exist on instances of the alias; it informs
// generation of identity column maps and is never a hard type check.
type Entry struct {
	Alias     string
	Kind      Kind
	Statement int // index of the introducing statement

	fields []string
	seen   map[string]struct{}
}

// AddField records a field name on the entry, preserving first-seen order.
func (e *Entry) AddField(name string) {
	if name == "" {
		return
	}
	if _, ok := e.seen[name]; ok {
		return
	}
	e.seen[name] = struct{}{}
	e.fields = append(e.fields, name)
}

// Fields returns the known field names in first-seen order.
func (e *Entry) Fields() []string {
	return e.fields
}

// HasField reports whether the field name has been recorded.
func (e *Entry) HasField(name string) bool {
	_, ok := e.seen[name]
	return ok
}

// Table is the alias registry for one program. Aliases are case-sensitive
// and unique; order of registration is preserved.
type Table struct {
	entries map[string]*Entry
	order   []string
}

// NewTable returns an empty registry.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// Register adds an alias introduced by the statement at index stmt. An alias
// may not be reintroduced by a different statement kind within one program.
func (t *Table) Register(alias string, kind Kind, stmt int) (*Entry, error) {
	if prev, ok := t.entries[alias]; ok {
		if prev.Kind != kind {
			return nil, fmt.Errorf("alias %q already introduced by %s (statement %d)", alias, prev.Kind, prev.Statement+1)
		}
		return prev, nil
	}
	e := &Entry{
		Alias:     alias,
		Kind:      kind,
		Statement: stmt,
		seen:      make(map[string]struct{}),
	}
	t.entries[alias] = e
	t.order = append(t.order, alias)
	return e, nil
}

// Resolve returns the entry for an alias, if registered.
func (t *Table) Resolve(alias string) (*Entry, bool) {
	e, ok := t.entries[alias]
	return e, ok
}

// Aliases returns the registered aliases in registration order.
func (t *Table) Aliases() []string {
	return t.order
}
