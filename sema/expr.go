package sema

import (
	"strings"

	"github.com/metaphox/quill/ast"
	"github.com/metaphox/quill/diag"
	"github.com/metaphox/quill/symtab"
	"github.com/metaphox/quill/types"
)

var (
	tInt     = types.New(types.INT)
	tFloat   = types.New(types.FLOAT)
	tString  = types.New(types.STRING)
	tBool    = types.New(types.BOOLEAN)
	tNull    = types.New(types.NULL)
	tGeneric = types.New(types.GENERIC)
)

// assignable reports whether a value of type value may be stored where target
// is declared. INT widens to FLOAT, NULL fits strings and arrays, and GENERIC
// matches anything of the same shape.
func assignable(target, value types.EntityType) bool {
	switch {
	case target.IsZero() || value.IsZero():
		return false
	case target.Equal(value):
		return true
	case target.IsType(types.FLOAT) && value.IsType(types.INT):
		return true
	case value.IsType(types.NULL):
		return target.IsType(types.STRING) || target.IsArray()
	case target.IsArray() && value.IsArray():
		return assignable(target.Elem(), value.Elem())
	case value.IsGeneric():
		return types.Compatible(value, target)
	case target.IsGeneric():
		return types.Compatible(target, value)
	}
	return false
}

// binaryResult types an arithmetic operator applied to l and r.
func binaryResult(op string, l, r types.EntityType) (types.EntityType, error) {
	switch op {
	case "+", "-", "*", "/", "%", "**":
		if op == "+" && (l.IsType(types.STRING) || r.IsType(types.STRING)) && scalar(l) && scalar(r) {
			return tString, nil
		}
		if l.IsNumeric() && r.IsNumeric() {
			if l.IsType(types.FLOAT) || r.IsType(types.FLOAT) {
				return tFloat, nil
			}
			return tInt, nil
		}
	case "^", "&":
		if l.IsType(types.INT) && r.IsType(types.INT) {
			return tInt, nil
		}
	}
	return types.EntityType{}, diag.Newf(diag.Type, 0, "Operator '%s' is not defined for %v and %v", op, l, r)
}

// scalar reports whether t is one of the printable primitive types.
func scalar(t types.EntityType) bool {
	return t.IsNumeric() || t.IsType(types.STRING) || t.IsType(types.BOOLEAN)
}

// ── Expressions ───────────────────────────────────────────────────────────────

// expr types n and records the result.
func (a *Analyzer) expr(n ast.Node) (types.EntityType, error) {
	t, err := a.typeOf(n)
	if err != nil {
		return types.EntityType{}, err
	}
	a.types[n] = t
	return t, nil
}

func (a *Analyzer) typeOf(n ast.Node) (types.EntityType, error) {
	if l, ok := n.(*ast.Leaf); ok {
		return a.leaf(l)
	}
	b := n.(*ast.Branch)
	switch b.Label {
	case ast.LabelTernary:
		return a.ternary(b)
	case ast.LabelLogicalOr, ast.LabelLogicalAnd:
		return a.logical(b)
	case ast.LabelComparison:
		return a.comparison(b)
	case ast.LabelArithmetic, ast.LabelTerm, ast.LabelExponent:
		l, err := a.expr(b.Child(0))
		if err != nil {
			return l, err
		}
		r, err := a.expr(b.Child(2))
		if err != nil {
			return r, err
		}
		t, err := binaryResult(text(b.Child(1)), l, r)
		return t, atLine(err, b)
	case ast.LabelUnaryOp:
		return a.unary(b)
	case ast.LabelFuncCall:
		return a.call(b)
	case ast.LabelArrayAccess:
		return a.index(b)
	case ast.LabelArrayLit:
		return a.arrayLiteral(b)
	}
	return types.EntityType{}, errorf(diag.Syntax, b, "Unexpected %s in an expression", b.Label)
}

func (a *Analyzer) leaf(l *ast.Leaf) (types.EntityType, error) {
	switch l.Token.Kind {
	case ast.NUMBER:
		if strings.Contains(l.Token.Lexeme, ".") {
			return tFloat, nil
		}
		return tInt, nil
	case ast.STRING:
		return tString, nil
	case ast.TRUE, ast.FALSE:
		return tBool, nil
	case ast.NULL:
		return tNull, nil
	case ast.ID:
		sym, ok := a.table.Lookup(l.Token.Lexeme)
		if !ok {
			return types.EntityType{}, errorf(diag.Reference, l, "'%s' is not defined", l.Token.Lexeme)
		}
		return sym.Type, nil
	}
	return types.EntityType{}, errorf(diag.Syntax, l, "Unexpected %v in an expression", l.Token.Kind)
}

func (a *Analyzer) ternary(b *ast.Branch) (types.EntityType, error) {
	if err := a.condition(b.Child(0)); err != nil {
		return types.EntityType{}, err
	}
	x, err := a.expr(b.Child(1))
	if err != nil {
		return x, err
	}
	y, err := a.expr(b.Child(2))
	if err != nil {
		return y, err
	}
	switch {
	case assignable(x, y):
		return x, nil
	case assignable(y, x):
		return y, nil
	}
	return types.EntityType{}, errorf(diag.Type, b, "Ternary branches have different types %v and %v", x, y)
}

func (a *Analyzer) logical(b *ast.Branch) (types.EntityType, error) {
	l, err := a.expr(b.Child(0))
	if err != nil {
		return l, err
	}
	r, err := a.expr(b.Child(2))
	if err != nil {
		return r, err
	}
	if !l.IsType(types.BOOLEAN) || !r.IsType(types.BOOLEAN) {
		return types.EntityType{}, errorf(diag.Type, b, "Operator '%s' needs BOOLEAN operands, got %v and %v",
			text(b.Child(1)), l, r)
	}
	return tBool, nil
}

func (a *Analyzer) comparison(b *ast.Branch) (types.EntityType, error) {
	l, err := a.expr(b.Child(0))
	if err != nil {
		return l, err
	}
	r, err := a.expr(b.Child(2))
	if err != nil {
		return r, err
	}
	op := text(b.Child(1))
	var ok bool
	switch op {
	case "==", "!=":
		ok = (l.IsNumeric() && r.IsNumeric()) || assignable(l, r) || assignable(r, l)
	default:
		ok = (l.IsNumeric() && r.IsNumeric()) || (l.IsType(types.STRING) && r.IsType(types.STRING))
	}
	if !ok {
		return types.EntityType{}, errorf(diag.Type, b, "Cannot compare %v and %v with '%s'", l, r, op)
	}
	return tBool, nil
}

// unary handles UNARY-OP [op, x] and [x, op].
func (a *Analyzer) unary(b *ast.Branch) (types.EntityType, error) {
	opNode, operand := b.Child(0), b.Child(1)
	if ast.IsLeaf(operand, ast.OP) {
		opNode, operand = operand, opNode
	}
	op := text(opNode)
	if op == "++" || op == "--" {
		if err := a.checkWritable(operand); err != nil {
			return types.EntityType{}, err
		}
	}
	t, err := a.expr(operand)
	if err != nil {
		return t, err
	}
	switch {
	case op == "!" && t.IsType(types.BOOLEAN):
		return t, nil
	case op != "!" && t.IsNumeric():
		return t, nil
	}
	return types.EntityType{}, errorf(diag.Type, b, "Operator '%s' is not defined for %v", op, t)
}

// accessRoot walks the base chain of an ARRAY-ACCESS to the innermost base
// and reports how many accesses lie below n.
func accessRoot(n ast.Node) (ast.Node, int) {
	depth := -1
	for ast.IsBranch(n, ast.LabelArrayAccess) {
		n = n.(*ast.Branch).Child(0)
		depth++
	}
	return n, depth
}

// index handles ARRAY-ACCESS [base, index].
func (a *Analyzer) index(b *ast.Branch) (types.EntityType, error) {
	base, err := a.expr(b.Child(0))
	if err != nil {
		return base, err
	}
	it, err := a.expr(b.Child(1))
	if err != nil {
		return it, err
	}
	if !it.IsType(types.INT) {
		return types.EntityType{}, errorf(diag.Type, b.Child(1), "Array index must be INT, got %v", it)
	}
	var elem types.EntityType
	switch {
	case base.IsArray():
		elem = base.Elem()
	case base.IsType(types.STRING):
		elem = base
	default:
		return types.EntityType{}, errorf(diag.Type, b, "Cannot index a value of type %v", base)
	}
	if err := a.checkBounds(b); err != nil {
		return types.EntityType{}, err
	}
	return elem, nil
}

// checkBounds compares a literal index with the literal size of the
// dimension it selects, when the array is a named variable.
func (a *Analyzer) checkBounds(b *ast.Branch) error {
	idx, ok := intLiteral(b.Child(1))
	if !ok {
		return nil
	}
	root, dim := accessRoot(b)
	if !ast.IsLeaf(root, ast.ID) {
		return nil
	}
	sym, ok := a.table.Lookup(text(root))
	if !ok {
		return nil
	}
	size, ok := boundAt(sym, dim)
	if ok && idx >= size {
		return errorf(diag.ArrayBounds, b, "Index %d is out of bounds for '%s' of size %d", idx, sym.Name, size)
	}
	return nil
}

// boundAt returns the literal size of dimension dim of an array symbol. An
// immutable array without declared sizes is bounded by its literal.
func boundAt(sym *symtab.Symbol, dim int) (int, bool) {
	if dim < len(sym.Sizes) {
		return intLiteral(sym.Sizes[dim])
	}
	if dim == 0 && len(sym.Sizes) == 0 && sym.Const && !sym.Mutable && ast.IsBranch(sym.Init, ast.LabelArrayLit) {
		return len(sym.Init.(*ast.Branch).Children), true
	}
	return 0, false
}

// arrayLiteral types ARRAY-LIT [expr*]. An empty literal is ARRAY<GENERIC>.
// Mixed INT and FLOAT elements give FLOAT.
func (a *Analyzer) arrayLiteral(b *ast.Branch) (types.EntityType, error) {
	var elem types.EntityType
	for _, c := range b.Children {
		t, err := a.expr(c)
		if err != nil {
			return t, err
		}
		switch {
		case elem.IsZero(), elem.Equal(t):
			elem = t
		case elem.IsNumeric() && t.IsNumeric():
			elem = tFloat
		case elem.IsType(types.NULL) && assignable(t, elem):
			elem = t
		case elem.IsGeneric() && assignable(t, elem):
			elem = t
		case assignable(elem, t):
		default:
			return types.EntityType{}, errorf(diag.Type, c, "Array literal mixes %v and %v", elem, t)
		}
	}
	if elem.IsZero() {
		elem = tGeneric
	}
	return types.ArrayOf(elem), nil
}

// ── Calls ─────────────────────────────────────────────────────────────────────

// call resolves FUNC-CALL [ID, ARGS]. A concrete overload is preferred; a
// prototype is specialized to the argument types and, once fully concrete,
// the specialization joins the overload set for later calls.
func (a *Analyzer) call(b *ast.Branch) (types.EntityType, error) {
	name := text(b.Child(0))
	argNodes := b.Child(1).(*ast.Branch).Children
	args := make([]types.EntityType, len(argNodes))
	for i, n := range argNodes {
		t, err := a.expr(n)
		if err != nil {
			return t, err
		}
		args[i] = t
	}

	if fn, ok := a.table.LookupFunction(name, args); ok {
		return fn.Return(), nil
	}
	if proto, ok := a.table.LookupPrototype(name, args); ok {
		binding, ok := proto.Bind(args)
		if !ok {
			return types.EntityType{}, errorf(diag.Type, b, "Arguments %s disagree on the generic type of %s",
				formatTypes(args), proto.Signature())
		}
		fn := proto.Specialize(binding)
		if !binding.IsGeneric() {
			if _, done := a.table.LookupFunction(name, fn.Params()); !done {
				if err := a.table.InsertSpecialized(fn); err != nil {
					return types.EntityType{}, atLine(err, b)
				}
			}
		}
		return fn.Return(), nil
	}
	if fn, ok := a.widened(name, args); ok {
		return fn.Return(), nil
	}
	if len(a.table.Overloads(name)) == 0 {
		return types.EntityType{}, errorf(diag.Reference, b, "Function '%s' is not defined", name)
	}
	return types.EntityType{}, errorf(diag.Reference, b, "No overload of '%s' accepts %s", name, formatTypes(args))
}

// widened finds a concrete overload that accepts args once INT arguments are
// widened to FLOAT.
func (a *Analyzer) widened(name string, args []types.EntityType) (*symtab.FunctionSymbol, bool) {
	for _, c := range a.table.Overloads(name) {
		fn, ok := c.(*symtab.FunctionSymbol)
		if !ok || len(fn.Params()) != len(args) {
			continue
		}
		match := true
		for i, p := range fn.Params() {
			if !assignable(p, args[i]) {
				match = false
				break
			}
		}
		if match {
			return fn, true
		}
	}
	return nil, false
}

func formatTypes(ts []types.EntityType) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, ",") + ")"
}
