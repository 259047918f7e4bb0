// Package sema implements the minimal semantic pass of the Quill front end.
//
// The analyzer walks a PROGRAM tree once, driving a [symtab.Table]: scopes are
// opened for function bodies, blocks and loops, declarations become symbols,
// and every expression is given an [types.EntityType]. The first violation
// aborts the walk and is returned as a *diag.Error stamped with the line of
// the offending node.
//
// Top-level functions are declared before any body is analyzed, so a call
// may appear above the definition it resolves to.
package sema

import (
	"errors"
	"strconv"
	"strings"

	"github.com/metaphox/quill/ast"
	"github.com/metaphox/quill/diag"
	"github.com/metaphox/quill/symtab"
	"github.com/metaphox/quill/types"
)

// Result is the typed program: the populated table plus the type of every
// expression node.
type Result struct {
	Table *symtab.Table
	Types map[ast.Node]types.EntityType
}

// Analyzer holds the state of one walk. Create one with [New] per program.
type Analyzer struct {
	table *symtab.Table
	types map[ast.Node]types.EntityType
	funcs map[*ast.Branch]*symtab.FunctionSymbol

	fn    *symtab.FunctionSymbol // enclosing function; nil at top level
	loops int                    // enclosing loop depth within fn
}

// New returns an Analyzer over a freshly seeded symbol table.
func New() *Analyzer {
	return &Analyzer{
		table: symtab.New(),
		types: make(map[ast.Node]types.EntityType),
		funcs: make(map[*ast.Branch]*symtab.FunctionSymbol),
	}
}

// Analyze checks program and returns its typed form.
func (a *Analyzer) Analyze(program *ast.Branch) (*Result, error) {
	if program == nil || program.Label != ast.LabelProgram {
		return nil, diag.Newf(diag.Syntax, 0, "Expected a PROGRAM node")
	}
	if err := a.declareFunctions(program); err != nil {
		return nil, err
	}
	if err := a.statements(program.Children); err != nil {
		return nil, err
	}
	return &Result{Table: a.table, Types: a.types}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// atLine stamps n's line onto err when err carries none.
func atLine(err error, n ast.Node) error {
	var d *diag.Error
	if errors.As(err, &d) && d.Line == 0 && n != nil {
		d.Line = n.Line()
	}
	return err
}

func errorf(kind diag.Kind, n ast.Node, format string, args ...any) error {
	return diag.Newf(kind, n.Line(), format, args...)
}

// text returns the source text of a leaf, or "" for a branch.
func text(n ast.Node) string {
	if l, ok := n.(*ast.Leaf); ok {
		return l.Token.Text()
	}
	return ""
}

// intLiteral returns the value of an integer NUMBER leaf.
func intLiteral(n ast.Node) (int, bool) {
	if !ast.IsLeaf(n, ast.NUMBER) {
		return 0, false
	}
	v, err := strconv.Atoi(text(n))
	return v, err == nil
}

// scoped runs fn inside a fresh scope.
func (a *Analyzer) scoped(fn func() error) error {
	a.table.EnterScope()
	defer a.table.LeaveScope()
	return fn()
}

// ── Functions ─────────────────────────────────────────────────────────────────

// declareFunctions inserts every top-level FUNC-DEF into the table.
func (a *Analyzer) declareFunctions(program *ast.Branch) error {
	for _, c := range program.Children {
		def, ok := c.(*ast.Branch)
		if !ok || def.Label != ast.LabelFuncDef {
			continue
		}
		fn, err := signatureOf(def)
		if err != nil {
			return atLine(err, def)
		}
		if err := a.table.InsertCallable(fn); err != nil {
			return atLine(err, def)
		}
		a.funcs[def] = fn
	}
	return nil
}

// signatureOf builds the function symbol for FUNC-DEF [ID, PARAMS, RETURN-TYPE?, BLOCK].
func signatureOf(def *ast.Branch) (*symtab.FunctionSymbol, error) {
	name := text(def.Child(0))
	var params []types.EntityType
	for _, p := range def.Child(1).(*ast.Branch).Children {
		t, err := types.FromNode(p.(*ast.Branch).Child(0))
		if err != nil {
			return nil, err
		}
		params = append(params, t)
	}
	var ret types.EntityType
	if rt, ok := def.Child(2).(*ast.Branch); ok && rt.Label == ast.LabelReturnType {
		t, err := types.FromNode(rt.Child(0))
		if err != nil {
			return nil, err
		}
		ret = t
	}
	body := def.Children[len(def.Children)-1]
	return symtab.NewFunction(name, ret, params, body), nil
}

func (a *Analyzer) funcDef(def *ast.Branch) error {
	fn, ok := a.funcs[def]
	if !ok {
		return errorf(diag.IllegalStatement, def, "Functions may only be defined at the top level")
	}
	outerFn, outerLoops := a.fn, a.loops
	a.fn, a.loops = fn, 0
	defer func() { a.fn, a.loops = outerFn, outerLoops }()

	return a.scoped(func() error {
		for i, p := range def.Child(1).(*ast.Branch).Children {
			param := p.(*ast.Branch)
			sym := &symtab.Symbol{Name: text(param.Child(1)), Type: fn.Params()[i]}
			if err := a.table.Insert(sym); err != nil {
				return atLine(err, param)
			}
		}
		body := fn.Body().(*ast.Branch)
		if err := a.statements(body.Children); err != nil {
			return err
		}
		if !fn.Return().IsZero() && !alwaysReturns(body.Children) {
			return errorf(diag.Type, def, "Function %s may finish without returning %v", fn.Signature(), fn.Return())
		}
		return nil
	})
}

// alwaysReturns reports whether a statement list ends in a return on every
// path. Loops are not considered to return.
func alwaysReturns(stmts []ast.Node) bool {
	if len(stmts) == 0 {
		return false
	}
	last, ok := stmts[len(stmts)-1].(*ast.Branch)
	if !ok {
		return false
	}
	switch last.Label {
	case ast.LabelReturn:
		return true
	case ast.LabelConditional:
		hasElse := false
		for _, clause := range last.Children {
			c := clause.(*ast.Branch)
			body := c.Children[len(c.Children)-1].(*ast.Branch)
			if !alwaysReturns(body.Children) {
				return false
			}
			hasElse = hasElse || c.Label == ast.LabelElse
		}
		return hasElse
	}
	return false
}

// ── Statements ────────────────────────────────────────────────────────────────

// statements analyzes a statement list. Nothing may follow a return, break or
// continue in the same list.
func (a *Analyzer) statements(stmts []ast.Node) error {
	for i, s := range stmts {
		if err := a.statement(s); err != nil {
			return err
		}
		if b, ok := s.(*ast.Branch); ok && i+1 < len(stmts) {
			switch b.Label {
			case ast.LabelReturn, ast.LabelBreak, ast.LabelContinue:
				return errorf(diag.UnreachableCode, stmts[i+1], "Unreachable code after '%s'", strings.ToLower(string(b.Label)))
			}
		}
	}
	return nil
}

func (a *Analyzer) statement(n ast.Node) error {
	b, ok := n.(*ast.Branch)
	if !ok {
		_, err := a.expr(n)
		return err
	}
	switch b.Label {
	case ast.LabelVarDecl:
		return a.varDecl(b)
	case ast.LabelArrayDecl, ast.LabelImmutableArrayDecl:
		return a.arrayDecl(b)
	case ast.LabelFuncDef:
		return a.funcDef(b)
	case ast.LabelAssign:
		return a.assign(b)
	case ast.LabelWhileLoop:
		if err := a.condition(b.Child(0)); err != nil {
			return err
		}
		return a.loopBody(b.Child(1))
	case ast.LabelForLoop:
		return a.forLoop(b)
	case ast.LabelForEachLoop:
		return a.forEach(b)
	case ast.LabelConditional:
		return a.conditional(b)
	case ast.LabelReturn:
		return a.returnStmt(b)
	case ast.LabelBreak, ast.LabelContinue:
		if a.loops == 0 {
			return errorf(diag.IllegalStatement, b, "'%s' outside a loop", strings.ToLower(string(b.Label)))
		}
		return nil
	case ast.LabelBlock:
		return a.block(b)
	}
	_, err := a.expr(b)
	return err
}

func (a *Analyzer) block(n ast.Node) error {
	return a.scoped(func() error {
		return a.statements(n.(*ast.Branch).Children)
	})
}

func (a *Analyzer) loopBody(n ast.Node) error {
	a.loops++
	defer func() { a.loops-- }()
	return a.block(n)
}

// condition checks that n is a BOOLEAN expression.
func (a *Analyzer) condition(n ast.Node) error {
	t, err := a.expr(n)
	if err != nil {
		return err
	}
	if !t.IsType(types.BOOLEAN) {
		return errorf(diag.Type, n, "Condition must be BOOLEAN, got %v", t)
	}
	return nil
}

// varDecl handles VAR-DECL [const?, type, ID, (=, expr)?].
func (a *Analyzer) varDecl(n *ast.Branch) error {
	c := n.Children
	isConst := ast.IsLeaf(c[0], ast.CONST)
	if isConst {
		c = c[1:]
	}
	typ, err := types.FromNode(c[0])
	if err != nil {
		return atLine(err, n)
	}
	sym := &symtab.Symbol{Name: text(c[1]), Type: typ, Const: isConst}
	if len(c) > 3 {
		if err := a.initializer(sym, c[3]); err != nil {
			return err
		}
	} else if isConst {
		return errorf(diag.Declaration, n, "Constant '%s' needs an initial value", sym.Name)
	}
	return atLine(a.table.Insert(sym), n)
}

// initializer type-checks value against sym's declared type and records it.
func (a *Analyzer) initializer(sym *symtab.Symbol, value ast.Node) error {
	vt, err := a.expr(value)
	if err != nil {
		return err
	}
	if !assignable(sym.Type, vt) {
		return errorf(diag.Type, value, "Cannot initialize '%s' of type %v with %v", sym.Name, sym.Type, vt)
	}
	sym.Init = value
	return nil
}

// arrayDecl handles ARRAY-DECL and IMMUTABLE-ARRAY-DECL:
// [const?, mut?, TYPE, ID, ARRAY-SIZE?, (=, expr)?].
func (a *Analyzer) arrayDecl(n *ast.Branch) error {
	c := n.Children
	isConst := ast.IsLeaf(c[0], ast.CONST)
	if isConst {
		c = c[1:]
	}
	mutable := ast.IsLeaf(c[0], ast.MUT)
	if mutable {
		c = c[1:]
	}
	typ, err := types.FromNode(c[0])
	if err != nil {
		return atLine(err, n)
	}
	sym := &symtab.Symbol{Name: text(c[1]), Type: typ, Const: isConst, Mutable: mutable}
	rest := c[2:]

	if len(rest) > 0 && ast.IsBranch(rest[0], ast.LabelArraySize) {
		sym.Sizes = rest[0].(*ast.Branch).Children
		rest = rest[1:]
		if len(sym.Sizes) != typ.Depth() {
			return errorf(diag.Declaration, n, "Array '%s' of type %v needs %d size(s), got %d",
				sym.Name, typ, typ.Depth(), len(sym.Sizes))
		}
		for _, size := range sym.Sizes {
			st, err := a.expr(size)
			if err != nil {
				return err
			}
			if !st.IsType(types.INT) {
				return errorf(diag.Type, size, "Array size must be INT, got %v", st)
			}
		}
	}
	if len(rest) == 2 {
		if err := a.initializer(sym, rest[1]); err != nil {
			return err
		}
		if err := fitsSizes(sym.Name, rest[1], sym.Sizes); err != nil {
			return err
		}
	}
	return atLine(a.table.Insert(sym), n)
}

// fitsSizes checks an array literal against the literal sizes of each
// dimension it initializes.
func fitsSizes(name string, value ast.Node, sizes []ast.Node) error {
	lit, ok := value.(*ast.Branch)
	if !ok || lit.Label != ast.LabelArrayLit || len(sizes) == 0 {
		return nil
	}
	if size, ok := intLiteral(sizes[0]); ok && len(lit.Children) > size {
		return errorf(diag.ArrayBounds, lit, "Array literal of length %d does not fit '%s' of size %d",
			len(lit.Children), name, size)
	}
	for _, elem := range lit.Children {
		if err := fitsSizes(name, elem, sizes[1:]); err != nil {
			return err
		}
	}
	return nil
}

// assign handles ASSIGN [target, op, expr].
func (a *Analyzer) assign(n *ast.Branch) error {
	target, op, value := n.Child(0), text(n.Child(1)), n.Child(2)
	if err := a.checkWritable(target); err != nil {
		return err
	}
	tt, err := a.expr(target)
	if err != nil {
		return err
	}
	vt, err := a.expr(value)
	if err != nil {
		return err
	}
	if op != "=" {
		if vt, err = binaryResult(strings.TrimSuffix(op, "="), tt, vt); err != nil {
			return atLine(err, n)
		}
	}
	if !assignable(tt, vt) {
		return errorf(diag.Type, n, "Cannot assign %v to %v", vt, tt)
	}
	a.types[n] = tt
	if op == "=" && ast.IsLeaf(target, ast.ID) {
		return atLine(a.lateInit(text(target), value), n)
	}
	return nil
}

// lateInit records value as the initializer of a variable declared without
// one, provided the assignment sits in the declaring scope.
func (a *Analyzer) lateInit(name string, value ast.Node) error {
	sym, ok := a.table.Lookup(name)
	if !ok || sym.Init != nil || sym.Scope != a.table.Level() {
		return nil
	}
	late := *sym
	late.Init = value
	return a.table.Replace(name, &late)
}

// checkWritable rejects writes to constants and to elements of immutable
// arrays.
func (a *Analyzer) checkWritable(target ast.Node) error {
	if ast.IsLeaf(target, ast.ID) {
		sym, ok := a.table.Lookup(text(target))
		if ok && sym.Const {
			return errorf(diag.IllegalStatement, target, "Cannot assign to constant '%s'", sym.Name)
		}
		return nil
	}
	if !ast.IsBranch(target, ast.LabelArrayAccess) {
		return nil
	}
	root, _ := accessRoot(target)
	if !ast.IsLeaf(root, ast.ID) {
		return errorf(diag.IllegalStatement, target, "Cannot assign to an element of a function result")
	}
	sym, ok := a.table.Lookup(text(root))
	if ok && sym.Const && !sym.Mutable {
		return errorf(diag.IllegalStatement, target, "Cannot assign to an element of immutable array '%s'", sym.Name)
	}
	return nil
}

// forLoop handles FOR-LOOP [init, cond, update, BLOCK]. The init binding is
// scoped to the loop.
func (a *Analyzer) forLoop(n *ast.Branch) error {
	return a.scoped(func() error {
		init, cond, update, body := n.Child(0), n.Child(1), n.Child(2), n.Child(3)
		if !ast.IsBranch(init, ast.LabelEmpty) {
			if err := a.statement(init); err != nil {
				return err
			}
		}
		if !ast.IsBranch(cond, ast.LabelEmpty) {
			if err := a.condition(cond); err != nil {
				return err
			}
		}
		if !ast.IsBranch(update, ast.LabelEmpty) {
			if err := a.statement(update); err != nil {
				return err
			}
		}
		return a.loopBody(body)
	})
}

// forEach handles FOR-EACH-LOOP [type, ID, iterable, BLOCK].
func (a *Analyzer) forEach(n *ast.Branch) error {
	typ, err := types.FromNode(n.Child(0))
	if err != nil {
		return atLine(err, n)
	}
	it, err := a.expr(n.Child(2))
	if err != nil {
		return err
	}
	var elem types.EntityType
	switch {
	case it.IsArray():
		elem = it.Elem()
	case it.IsType(types.STRING):
		elem = it
	default:
		return errorf(diag.Type, n.Child(2), "Cannot iterate over %v", it)
	}
	if !assignable(typ, elem) {
		return errorf(diag.Type, n, "Loop variable of type %v cannot hold elements of type %v", typ, elem)
	}
	return a.scoped(func() error {
		sym := &symtab.Symbol{Name: text(n.Child(1)), Type: typ}
		if err := a.table.Insert(sym); err != nil {
			return atLine(err, n)
		}
		return a.loopBody(n.Child(3))
	})
}

// conditional handles CONDITIONAL [IF, ELSE-IF*, ELSE?].
func (a *Analyzer) conditional(n *ast.Branch) error {
	for _, clause := range n.Children {
		c := clause.(*ast.Branch)
		if c.Label != ast.LabelElse {
			if err := a.condition(c.Child(0)); err != nil {
				return err
			}
		}
		if err := a.block(c.Children[len(c.Children)-1]); err != nil {
			return err
		}
	}
	return nil
}

// returnStmt handles RETURN [return, expr?].
func (a *Analyzer) returnStmt(n *ast.Branch) error {
	if a.fn == nil {
		return errorf(diag.IllegalStatement, n, "'return' outside a function")
	}
	want := a.fn.Return()
	if len(n.Children) < 2 {
		if !want.IsZero() {
			return errorf(diag.Type, n, "Function %s must return %v", a.fn.Signature(), want)
		}
		return nil
	}
	got, err := a.expr(n.Child(1))
	if err != nil {
		return err
	}
	if want.IsZero() {
		return errorf(diag.Type, n, "Function %s does not return a value", a.fn.Signature())
	}
	if !assignable(want, got) {
		return errorf(diag.Type, n, "Cannot return %v from %s, which returns %v", got, a.fn.Signature(), want)
	}
	return nil
}
