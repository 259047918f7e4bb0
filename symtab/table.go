// Package symtab implements the Quill symbol table: scope lifetime, variable
// resolution with shadowing, and overload sets of functions and prototypes.
//
// Scope ids come from a serial counter and are never reused. A stack of open
// ids decides visibility. Scope 0 holds the built-ins and scope 1 is the
// global scope; both stay open for the table's lifetime.
//
// All failures are fatal *diag.Error values. A Table is owned by one analysis
// pass and is not safe for concurrent use.
package symtab

import (
	"fmt"
	"sort"
	"strings"

	"github.com/metaphox/quill/diag"
	"github.com/metaphox/quill/types"
)

// Fixed scope ids.
const (
	BuiltinScope = 0
	GlobalScope  = 1
)

// Table maps names to variable bindings and overload sets.
type Table struct {
	symbols   map[string][]*Symbol
	callables map[string][]Callable

	serial int   // last id handed out
	open   []int // currently open scope ids, innermost last
}

// New returns a table seeded with the built-in catalog, with the built-in and
// global scopes open.
func New() *Table {
	t := &Table{
		symbols:   make(map[string][]*Symbol),
		callables: make(map[string][]Callable),
		open:      []int{BuiltinScope},
	}
	if err := t.seed(); err != nil {
		panic("symtab: invalid built-in catalog: " + err.Error())
	}
	t.serial = GlobalScope
	t.open = append(t.open, GlobalScope)
	return t
}

// ── Scopes ────────────────────────────────────────────────────────────────────

// Level returns the innermost open scope id.
func (t *Table) Level() int { return t.open[len(t.open)-1] }

// EnterScope opens a fresh scope and returns its id.
func (t *Table) EnterScope() int {
	t.serial++
	t.open = append(t.open, t.serial)
	return t.serial
}

// LeaveScope closes the innermost scope. It does nothing at the global scope.
func (t *Table) LeaveScope() {
	if t.Level() <= GlobalScope {
		return
	}
	t.open = t.open[:len(t.open)-1]
}

// IsOpen reports whether scope id is currently open.
func (t *Table) IsOpen(id int) bool {
	for _, s := range t.open {
		if s == id {
			return true
		}
	}
	return false
}

// ── Variables ─────────────────────────────────────────────────────────────────

// Insert binds sym in the current scope. A name may be shadowed by an inner
// scope but not redeclared in the same one, and built-in names are reserved.
func (t *Table) Insert(sym *Symbol) error {
	level := t.Level()
	for _, e := range t.symbols[sym.Name] {
		if e.Scope == BuiltinScope && level != BuiltinScope {
			return diag.Newf(diag.Name, 0, "Cannot redefine built-in '%s'", sym.Name)
		}
		if e.Scope == level {
			return diag.Newf(diag.Name, 0, "Duplicate symbol '%s' in the same scope", sym.Name)
		}
	}
	sym.Scope = level
	t.symbols[sym.Name] = append(t.symbols[sym.Name], sym)
	return nil
}

// Lookup returns the most deeply nested visible binding of name.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	var best *Symbol
	for _, e := range t.symbols[name] {
		if t.IsOpen(e.Scope) && (best == nil || e.Scope > best.Scope) {
			best = e
		}
	}
	return best, best != nil
}

// Replace substitutes the binding of name that Lookup would return with sym,
// keeping its scope.
func (t *Table) Replace(name string, sym *Symbol) error {
	visible, ok := t.Lookup(name)
	if !ok {
		return diag.Newf(diag.Reference, 0, "'%s' is not defined", name)
	}
	entries := t.symbols[name]
	for i, e := range entries {
		if e == visible {
			sym.Name = name
			sym.Scope = e.Scope
			entries[i] = sym
			break
		}
	}
	return nil
}

// ── Callables ─────────────────────────────────────────────────────────────────

// InsertCallable adds a function or prototype to its name's overload set.
func (t *Table) InsertCallable(c Callable) error {
	return t.insertCallable(c, false)
}

// InsertSpecialized adds the concrete overload produced by specializing a
// prototype. It may extend a built-in overload set.
func (t *Table) InsertSpecialized(f *FunctionSymbol) error {
	return t.insertCallable(f, true)
}

func (t *Table) insertCallable(c Callable, specialized bool) error {
	name := c.Name()
	existing := t.callables[name]
	if !specialized {
		for _, e := range existing {
			if e.Builtin() && !c.Builtin() {
				return diag.Newf(diag.Name, 0, "Cannot redefine built-in function '%s'", name)
			}
		}
	}
	switch c := c.(type) {
	case *FunctionSymbol:
		if c.hasGeneric() {
			return diag.Newf(diag.IllegalStatement, 0,
				"Function %s cannot have a generic parameter or return type", c.Signature())
		}
		if _, ok := t.LookupFunction(name, c.params); ok {
			return diag.Newf(diag.Name, 0, "Duplicate function %s", c.Signature())
		}
	case *PrototypeSymbol:
		if !c.hasGeneric() {
			return diag.Newf(diag.IllegalStatement, 0,
				"Prototype %s must have at least one generic parameter or return type", c.Signature())
		}
		if _, ok := t.LookupPrototype(name, c.params); ok {
			return diag.Newf(diag.Name, 0, "Duplicate prototype %s", c.Signature())
		}
	}

	if !specialized {
		for _, e := range existing {
			if returnsConflict(e.Return(), c.Return()) {
				return diag.Newf(diag.Type, 0, "Return type %v of %s conflicts with %v of %s",
					c.Return(), c.Signature(), e.Return(), e.Signature())
			}
		}
	}
	t.callables[name] = append(existing, c)
	return nil
}

// LookupFunction returns the first concrete overload of name whose
// parameters accept args.
func (t *Table) LookupFunction(name string, args []types.EntityType) (*FunctionSymbol, bool) {
	for _, c := range t.callables[name] {
		if f, ok := c.(*FunctionSymbol); ok && compatibleParams(f.params, args) {
			return f, true
		}
	}
	return nil, false
}

// LookupPrototype returns the first prototype of name whose parameters accept
// args.
func (t *Table) LookupPrototype(name string, args []types.EntityType) (*PrototypeSymbol, bool) {
	for _, c := range t.callables[name] {
		if p, ok := c.(*PrototypeSymbol); ok && compatibleParams(p.params, args) {
			return p, true
		}
	}
	return nil, false
}

// Overloads returns the overload set of name in insertion order.
func (t *Table) Overloads(name string) []Callable {
	return append([]Callable(nil), t.callables[name]...)
}

// returnsConflict reports whether two overloads of one name disagree on what
// they return. GENERIC unifies with any type of matching shape.
func returnsConflict(a, b types.EntityType) bool {
	switch {
	case a.IsZero() && b.IsZero():
		return false
	case a.IsZero() != b.IsZero():
		return true
	case a.IsGeneric() || b.IsGeneric():
		return !types.Compatible(a, b) && !types.Compatible(b, a)
	default:
		return !a.Equal(b)
	}
}

// String returns a deterministically ordered dump of the table.
func (t *Table) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Open scopes: %v\n", t.open)

	names := make([]string, 0, len(t.symbols))
	for name := range t.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	sb.WriteString("Symbols:\n")
	for _, name := range names {
		for _, sym := range t.symbols[name] {
			fmt.Fprintf(&sb, "  %-20s  %-16v scope %d", name, sym.Type, sym.Scope)
			if sym.Const {
				sb.WriteString(" const")
			}
			sb.WriteByte('\n')
		}
	}

	names = names[:0]
	for name := range t.callables {
		names = append(names, name)
	}
	sort.Strings(names)
	sb.WriteString("Callables:\n")
	for _, name := range names {
		for _, c := range t.callables[name] {
			kind := "fn"
			if c.generic() {
				kind = "proto"
			}
			fmt.Fprintf(&sb, "  %-5s %s -> %v", kind, c.Signature(), c.Return())
			if c.Builtin() {
				sb.WriteString(" builtin")
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
