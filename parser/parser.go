// Package parser implements the Quill recursive-descent parser.
//
// The parser reads a token sequence produced by the lexer and builds a single
// [ast.Branch] labelled PROGRAM. Each grammar rule is one method; precedence
// is encoded by which rule calls which, from lowest to highest:
//
//	expression  → logical-or ( "?" expression ":" expression )?
//	logical-or  → logical-and ( "||" logical-and )*
//	logical-and → comparison ( "&&" comparison )*
//	comparison  → arithmetic ( ("==" | "!=" | "<" | ">" | "<=" | ">=") arithmetic )?
//	arithmetic  → term ( ("+" | "-" | "^" | "&") term )*
//	term        → exponent ( ("*" | "/" | "%") exponent )*
//	exponent    → factor ( "**" exponent )?
//	factor      → value | "(" expression ")" | unary-op
//
// A level with a single operand collapses to that operand, so `3.14` parses to
// a bare NUMBER leaf rather than a tower of one-child branches.
//
// Usage:
//
//	p, err := parser.New(tokens)
//	prog, err := p.Parse()
//
// Error policy: parsing is fail-fast. The first grammar violation is returned
// as a *diag.Error of kind Syntax naming what was expected and what was found.
package parser

import (
	"github.com/metaphox/quill/ast"
	"github.com/metaphox/quill/diag"
)

var (
	assignOps     = []string{"=", "+=", "-=", "*=", "/="}
	comparisonOps = []string{"==", "!=", "<", ">", "<=", ">="}
)

// Parser holds the token sequence and the read position.
// Create one with [New] and call [Parser.Parse] once.
type Parser struct {
	tokens []ast.Token
	pos    int
	err    error // first error; parsing stops once set
}

// New creates a Parser over tokens, which must be non-empty.
func New(tokens []ast.Token) (*Parser, error) {
	if len(tokens) == 0 {
		return nil, diag.Newf(diag.Syntax, 0, "Nothing to parse")
	}
	return &Parser{tokens: tokens}, nil
}

// Parse builds the PROGRAM node: top-level statements and function
// definitions in source order.
func (p *Parser) Parse() (*ast.Branch, error) {
	prog := ast.NewBranch(ast.LabelProgram)
	for !p.atEnd() {
		if p.skip(ast.SEMICOLON) {
			continue
		}
		var n ast.Node
		if p.curIs(ast.FN) {
			n = p.parseFuncDef()
		} else {
			n = p.parseStatement()
		}
		if n == nil {
			return nil, p.err
		}
		prog.AppendChildren(n)
	}
	return prog, nil
}

// ── Token management ──────────────────────────────────────────────────────────

// cur returns the current token, or a synthetic EOF past the end.
func (p *Parser) cur() ast.Token { return p.peekAt(0) }

// peekAt returns the token k positions ahead of the current one.
func (p *Parser) peekAt(k int) ast.Token {
	if i := p.pos + k; i < len(p.tokens) {
		return p.tokens[i]
	}
	return ast.Static(ast.EOF, 0)
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.tokens) }

// advance consumes the current token and returns it.
func (p *Parser) advance() ast.Token {
	tok := p.cur()
	if !p.atEnd() {
		p.pos++
	}
	return tok
}

// leaf consumes the current token and wraps it.
func (p *Parser) leaf() ast.Node { return ast.NewLeaf(p.advance()) }

func (p *Parser) curIs(kind ast.Kind) bool { return !p.atEnd() && p.cur().Kind == kind }

// curOp reports whether the current token is one of the given operators.
func (p *Parser) curOp(ops ...string) bool {
	tok := p.cur()
	for _, op := range ops {
		if tok.Is(op) {
			return true
		}
	}
	return false
}

// skip consumes the current token when it has the given kind.
func (p *Parser) skip(kind ast.Kind) bool {
	if p.curIs(kind) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of the given kind, or records an error naming what.
func (p *Parser) expect(kind ast.Kind, what string) (ast.Token, bool) {
	if p.curIs(kind) {
		return p.advance(), true
	}
	p.fail(what)
	return ast.Token{}, false
}

// expectOp consumes the operator op, or records an error.
func (p *Parser) expectOp(op string) (ast.Token, bool) {
	if p.curOp(op) {
		return p.advance(), true
	}
	p.fail("'" + op + "'")
	return ast.Token{}, false
}

// fail records "Expected <what> but got …" for the current token. Only the
// first error is kept.
func (p *Parser) fail(what string) {
	if p.err != nil {
		return
	}
	if p.atEnd() {
		p.err = diag.Newf(diag.Syntax, 0, "Expected %s but reached EOF", what)
		return
	}
	tok := p.cur()
	p.err = diag.Newf(diag.Syntax, tok.Line, "Expected %s but got %v ('%s')", what, tok.Kind, tok.Text())
}

// ── Statements ────────────────────────────────────────────────────────────────

// parseStatement dispatches on the current token. A trailing ';' is consumed.
func (p *Parser) parseStatement() ast.Node {
	var n ast.Node
	switch p.cur().Kind {
	case ast.CONST, ast.INT_TYPE, ast.FLOAT_TYPE, ast.STRING_TYPE, ast.BOOLEAN_TYPE, ast.ARRAY:
		n = p.parseDeclaration()
	case ast.WHILE:
		n = p.parseWhile()
	case ast.FOR:
		n = p.parseFor()
	case ast.IF:
		n = p.parseConditional()
	case ast.RETURN:
		n = p.parseReturn()
	case ast.BREAK:
		n = ast.NewBranch(ast.LabelBreak, p.leaf())
	case ast.CONTINUE:
		n = ast.NewBranch(ast.LabelContinue, p.leaf())
	case ast.FN:
		p.fail("a statement (functions may only be defined at the top level)")
	default:
		n = p.parseSimpleStatement()
	}
	if n == nil {
		return nil
	}
	p.skip(ast.SEMICOLON)
	return n
}

// parseSimpleStatement parses an assignment or a bare expression such as a
// call or x++.
func (p *Parser) parseSimpleStatement() ast.Node {
	if p.curIs(ast.ID) && p.isAssignment() {
		return p.parseAssignment()
	}
	return p.parseExpression()
}

// isAssignment looks past an identifier and any number of bracketed indices
// for an assignment operator. The indices may be arbitrarily long.
func (p *Parser) isAssignment() bool {
	k := 1
	for p.peekAt(k).Kind == ast.LBRACKET {
		depth := 0
		for ; ; k++ {
			tok := p.peekAt(k)
			switch tok.Kind {
			case ast.EOF:
				return false
			case ast.LBRACKET:
				depth++
			case ast.RBRACKET:
				depth--
			}
			if depth == 0 {
				break
			}
		}
		k++
	}
	next := p.peekAt(k)
	for _, op := range assignOps {
		if next.Is(op) {
			return true
		}
	}
	return false
}

// parseAssignment parses `target op expression` where target is an
// identifier or an array access.
func (p *Parser) parseAssignment() ast.Node {
	target := p.parseIndices(p.leaf())
	if target == nil {
		return nil
	}
	if !p.curOp(assignOps...) {
		p.fail("an assignment operator")
		return nil
	}
	op := p.leaf()
	value := p.parseExpression()
	if value == nil {
		return nil
	}
	return ast.NewBranch(ast.LabelAssign, target, op, value)
}

// parseDeclaration parses a scalar or array variable declaration:
//
//	(const)? TYPE ID (= expr)?
//	(const mut?)? Array<TYPE> ID [size]+ (= expr)?
func (p *Parser) parseDeclaration() ast.Node {
	var mods []ast.Node
	isConst := p.curIs(ast.CONST)
	if isConst {
		mods = append(mods, p.leaf())
	}
	mutable := p.curIs(ast.MUT)
	if mutable {
		mods = append(mods, p.leaf())
		if !p.curIs(ast.ARRAY) {
			p.fail("'Array' after 'mut'")
			return nil
		}
	}
	if p.curIs(ast.ARRAY) {
		return p.parseArrayDecl(mods, isConst && !mutable)
	}
	if !p.cur().Kind.IsPrimitiveType() {
		p.fail("a type")
		return nil
	}
	children := append(mods, p.leaf())

	id, ok := p.expect(ast.ID, "an identifier")
	if !ok {
		return nil
	}
	children = append(children, ast.NewLeaf(id))

	if p.curOp("=") {
		children = append(children, p.leaf())
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		children = append(children, value)
	} else if isConst {
		p.fail("'=' (a constant needs an initial value)")
		return nil
	}
	return ast.NewBranch(ast.LabelVarDecl, children...)
}

// parseArrayDecl parses the part of an array declaration after the modifiers.
// An immutable array needs an initializer and may omit its size; any other
// array needs a size.
func (p *Parser) parseArrayDecl(mods []ast.Node, immutable bool) ast.Node {
	typ := p.parseType()
	if typ == nil {
		return nil
	}
	id, ok := p.expect(ast.ID, "an identifier")
	if !ok {
		return nil
	}
	children := append(mods, typ, ast.NewLeaf(id))

	if p.curIs(ast.LBRACKET) {
		sizes := ast.NewBranch(ast.LabelArraySize)
		for p.skip(ast.LBRACKET) {
			size := p.parseExpression()
			if size == nil {
				return nil
			}
			if _, ok := p.expect(ast.RBRACKET, "']'"); !ok {
				return nil
			}
			sizes.AppendChildren(size)
		}
		children = append(children, sizes)
	} else if !immutable {
		p.fail("'[' (an array needs a size)")
		return nil
	}

	label := ast.LabelArrayDecl
	if immutable {
		label = ast.LabelImmutableArrayDecl
	}
	if p.curOp("=") {
		children = append(children, p.leaf())
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		children = append(children, value)
	} else if immutable {
		p.fail("'=' (an immutable array needs an initial value)")
		return nil
	}
	return ast.NewBranch(label, children...)
}

// parseType parses a primitive type keyword, returned as a leaf, or
// Array<TYPE>, returned as TYPE[Array, inner].
func (p *Parser) parseType() ast.Node {
	if p.cur().Kind.IsPrimitiveType() {
		return p.leaf()
	}
	if !p.curIs(ast.ARRAY) {
		p.fail("a type")
		return nil
	}
	array := p.leaf()
	if _, ok := p.expectOp("<"); !ok {
		return nil
	}
	inner := p.parseType()
	if inner == nil {
		return nil
	}
	if _, ok := p.expectOp(">"); !ok {
		return nil
	}
	return ast.NewBranch(ast.LabelType, array, inner)
}

// parseFuncDef parses `fn ID ( params? ) (: TYPE)? { body* }`.
func (p *Parser) parseFuncDef() ast.Node {
	p.advance() // 'fn'
	id, ok := p.expect(ast.ID, "a function name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(ast.LPAREN, "'('"); !ok {
		return nil
	}
	params := ast.NewBranch(ast.LabelParams)
	if !p.curIs(ast.RPAREN) {
		for {
			typ := p.parseType()
			if typ == nil {
				return nil
			}
			name, ok := p.expect(ast.ID, "a parameter name")
			if !ok {
				return nil
			}
			params.AppendChildren(ast.NewBranch(ast.LabelParam, typ, ast.NewLeaf(name)))
			if !p.skip(ast.COMMA) {
				break
			}
		}
	}
	if _, ok := p.expect(ast.RPAREN, "')'"); !ok {
		return nil
	}
	children := []ast.Node{ast.NewLeaf(id), params}

	if p.skip(ast.COLON) {
		ret := p.parseType()
		if ret == nil {
			return nil
		}
		children = append(children, ast.NewBranch(ast.LabelReturnType, ret))
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return ast.NewBranch(ast.LabelFuncDef, append(children, body)...)
}

// parseBlock parses `{ statement* }` into a BLOCK.
func (p *Parser) parseBlock() ast.Node {
	if _, ok := p.expect(ast.LBRACE, "'{'"); !ok {
		return nil
	}
	block := ast.NewBranch(ast.LabelBlock)
	for !p.curIs(ast.RBRACE) {
		if p.atEnd() {
			p.fail("'}'")
			return nil
		}
		if p.skip(ast.SEMICOLON) {
			continue
		}
		s := p.parseStatement()
		if s == nil {
			return nil
		}
		block.AppendChildren(s)
	}
	p.advance() // '}'
	return block
}

// parseBody parses a brace block, or a single statement wrapped in a BLOCK.
func (p *Parser) parseBody() ast.Node {
	if p.curIs(ast.LBRACE) {
		return p.parseBlock()
	}
	s := p.parseStatement()
	if s == nil {
		return nil
	}
	return ast.NewBranch(ast.LabelBlock, s)
}

// parseParenExpr parses `( expression )`.
func (p *Parser) parseParenExpr() ast.Node {
	if _, ok := p.expect(ast.LPAREN, "'('"); !ok {
		return nil
	}
	e := p.parseExpression()
	if e == nil {
		return nil
	}
	if _, ok := p.expect(ast.RPAREN, "')'"); !ok {
		return nil
	}
	return e
}

// parseWhile parses `while ( expression ) { body* }`.
func (p *Parser) parseWhile() ast.Node {
	p.advance() // 'while'
	cond := p.parseParenExpr()
	if cond == nil {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return ast.NewBranch(ast.LabelWhileLoop, cond, body)
}

// parseFor parses either header form:
//
//	for ( init? ; cond? ; update? ) { body* }
//	for ( TYPE ID : expression ) { body* }
func (p *Parser) parseFor() ast.Node {
	p.advance() // 'for'
	if _, ok := p.expect(ast.LPAREN, "'('"); !ok {
		return nil
	}
	if p.isForEach() {
		return p.parseForEach()
	}

	init := ast.Node(ast.NewBranch(ast.LabelEmpty))
	if !p.curIs(ast.SEMICOLON) {
		if p.curIs(ast.CONST) || p.curIs(ast.ARRAY) || p.cur().Kind.IsPrimitiveType() {
			init = p.parseDeclaration()
		} else {
			init = p.parseSimpleStatement()
		}
		if init == nil {
			return nil
		}
	}
	if _, ok := p.expect(ast.SEMICOLON, "';'"); !ok {
		return nil
	}

	cond := ast.Node(ast.NewBranch(ast.LabelEmpty))
	if !p.curIs(ast.SEMICOLON) {
		if cond = p.parseExpression(); cond == nil {
			return nil
		}
	}
	if _, ok := p.expect(ast.SEMICOLON, "';'"); !ok {
		return nil
	}

	update := ast.Node(ast.NewBranch(ast.LabelEmpty))
	if !p.curIs(ast.RPAREN) {
		if update = p.parseSimpleStatement(); update == nil {
			return nil
		}
	}
	if _, ok := p.expect(ast.RPAREN, "')'"); !ok {
		return nil
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return ast.NewBranch(ast.LabelForLoop, init, cond, update, body)
}

// isForEach scans the loop header up to the first ';' at the outer nesting
// level. Finding a ':' first selects the for-each form, unless that ':' pairs
// with an earlier '?'.
func (p *Parser) isForEach() bool {
	depth, pending := 0, 0
	for k := 0; ; k++ {
		tok := p.peekAt(k)
		switch tok.Kind {
		case ast.EOF:
			return false
		case ast.LPAREN, ast.LBRACKET, ast.LBRACE:
			depth++
		case ast.RPAREN, ast.RBRACKET, ast.RBRACE:
			if depth == 0 {
				return false
			}
			depth--
		case ast.SEMICOLON:
			if depth == 0 {
				return false
			}
		case ast.COLON:
			if depth == 0 {
				if pending == 0 {
					return true
				}
				pending--
			}
		case ast.OP:
			if depth == 0 && tok.Lexeme == "?" {
				pending++
			}
		}
	}
}

func (p *Parser) parseForEach() ast.Node {
	typ := p.parseType()
	if typ == nil {
		return nil
	}
	id, ok := p.expect(ast.ID, "an identifier")
	if !ok {
		return nil
	}
	if _, ok := p.expect(ast.COLON, "':'"); !ok {
		return nil
	}
	iterable := p.parseExpression()
	if iterable == nil {
		return nil
	}
	if _, ok := p.expect(ast.RPAREN, "')'"); !ok {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return ast.NewBranch(ast.LabelForEachLoop, typ, ast.NewLeaf(id), iterable, body)
}

// parseConditional parses `if (e) body (else if (e) body)* (else body)?`.
func (p *Parser) parseConditional() ast.Node {
	first := p.parseIfClause(ast.LabelIf)
	if first == nil {
		return nil
	}
	cond := ast.NewBranch(ast.LabelConditional, first)
	for p.curIs(ast.ELSE) {
		p.advance() // 'else'
		if p.curIs(ast.IF) {
			clause := p.parseIfClause(ast.LabelElseIf)
			if clause == nil {
				return nil
			}
			cond.AppendChildren(clause)
			continue
		}
		body := p.parseBody()
		if body == nil {
			return nil
		}
		cond.AppendChildren(ast.NewBranch(ast.LabelElse, body))
		break
	}
	return cond
}

func (p *Parser) parseIfClause(label ast.Label) ast.Node {
	p.advance() // 'if'
	test := p.parseParenExpr()
	if test == nil {
		return nil
	}
	body := p.parseBody()
	if body == nil {
		return nil
	}
	return ast.NewBranch(label, test, body)
}

// parseReturn parses `return expression?`. A value must start on the same
// line as the keyword.
func (p *Parser) parseReturn() ast.Node {
	kw := p.advance()
	ret := ast.NewBranch(ast.LabelReturn, ast.NewLeaf(kw))
	if p.startsExpression() && p.cur().Line == kw.Line {
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		ret.AppendChildren(value)
	}
	return ret
}

// startsExpression reports whether the current token can begin an expression.
func (p *Parser) startsExpression() bool {
	switch p.cur().Kind {
	case ast.ID, ast.NUMBER, ast.STRING, ast.TRUE, ast.FALSE, ast.NULL, ast.LPAREN, ast.LBRACE:
		return true
	case ast.OP:
		return p.curOp("-", "!", "++", "--")
	}
	return false
}

// ── Expressions ───────────────────────────────────────────────────────────────

// parseExpression parses a logical-or, optionally the condition of a ternary.
func (p *Parser) parseExpression() ast.Node {
	cond := p.parseLogicalOr()
	if cond == nil || !p.curOp("?") {
		return cond
	}
	p.advance() // '?'
	then := p.parseExpression()
	if then == nil {
		return nil
	}
	if _, ok := p.expect(ast.COLON, "':'"); !ok {
		return nil
	}
	els := p.parseExpression()
	if els == nil {
		return nil
	}
	return ast.NewBranch(ast.LabelTernary, cond, then, els)
}

// binary parses a left-associative chain `next (op next)*`.
func (p *Parser) binary(label ast.Label, next func() ast.Node, ops ...string) ast.Node {
	left := next()
	for left != nil && p.curOp(ops...) {
		op := p.leaf()
		right := next()
		if right == nil {
			return nil
		}
		left = ast.NewBranch(label, left, op, right)
	}
	return left
}

func (p *Parser) parseLogicalOr() ast.Node {
	return p.binary(ast.LabelLogicalOr, p.parseLogicalAnd, "||")
}

func (p *Parser) parseLogicalAnd() ast.Node {
	return p.binary(ast.LabelLogicalAnd, p.parseComparison, "&&")
}

// parseComparison allows at most one comparison operator.
func (p *Parser) parseComparison() ast.Node {
	left := p.parseArithmetic()
	if left == nil || !p.curOp(comparisonOps...) {
		return left
	}
	op := p.leaf()
	right := p.parseArithmetic()
	if right == nil {
		return nil
	}
	return ast.NewBranch(ast.LabelComparison, left, op, right)
}

func (p *Parser) parseArithmetic() ast.Node {
	return p.binary(ast.LabelArithmetic, p.parseTerm, "+", "-", "^", "&")
}

func (p *Parser) parseTerm() ast.Node {
	return p.binary(ast.LabelTerm, p.parseExponent, "*", "/", "%")
}

// parseExponent is right-associative: 2 ** 3 ** 2 is 2 ** (3 ** 2).
func (p *Parser) parseExponent() ast.Node {
	base := p.parseFactor()
	if base == nil || !p.curOp("**") {
		return base
	}
	op := p.leaf()
	power := p.parseExponent()
	if power == nil {
		return nil
	}
	return ast.NewBranch(ast.LabelExponent, base, op, power)
}

// parseFactor parses a value, a parenthesized expression or a unary operation.
func (p *Parser) parseFactor() ast.Node {
	switch {
	case p.curIs(ast.LPAREN):
		return p.parseParenExpr()
	case p.curOp("++", "--", "-", "!"):
		op := p.cur().Lexeme
		opLeaf := p.leaf()
		operand := p.parseUnaryOperand(op)
		if operand == nil {
			return nil
		}
		return ast.NewBranch(ast.LabelUnaryOp, opLeaf, operand)
	}

	v := p.parseValue()
	if v == nil {
		return nil
	}
	if p.curOp("++", "--") && postfixable(v) {
		return ast.NewBranch(ast.LabelUnaryOp, v, p.leaf())
	}
	return v
}

// parseUnaryOperand parses what a prefix operator applies to. ++ and -- take
// an identifier, number, array access or call; - additionally takes a
// parenthesized expression; ! takes a boolean literal, identifier, array
// access, call or parenthesized expression.
func (p *Parser) parseUnaryOperand(op string) ast.Node {
	tok := p.cur()
	switch {
	case tok.Kind == ast.ID:
		return p.parseIDValue()
	case tok.Kind == ast.NUMBER && op != "!":
		return p.leaf()
	case (tok.Kind == ast.TRUE || tok.Kind == ast.FALSE) && op == "!":
		return p.leaf()
	case tok.Kind == ast.LPAREN && (op == "-" || op == "!"):
		return p.parseParenExpr()
	}
	switch op {
	case "!":
		p.fail("a boolean, identifier, array access or function call after '!'")
	default:
		p.fail("an identifier, number, array access or function call after '" + op + "'")
	}
	return nil
}

// postfixable reports whether a postfix ++ or -- may follow v.
func postfixable(v ast.Node) bool {
	return ast.IsLeaf(v, ast.ID) || ast.IsLeaf(v, ast.NUMBER) ||
		ast.IsBranch(v, ast.LabelArrayAccess) || ast.IsBranch(v, ast.LabelFuncCall)
}

// parseValue parses a literal, an array literal, or an identifier-led value.
func (p *Parser) parseValue() ast.Node {
	switch p.cur().Kind {
	case ast.ID:
		return p.parseIDValue()
	case ast.NUMBER, ast.STRING, ast.TRUE, ast.FALSE, ast.NULL:
		return p.leaf()
	case ast.LBRACE:
		return p.parseArrayLiteral()
	}
	p.fail("an expression")
	return nil
}

// parseIDValue parses an identifier, a call, and any indices that follow.
func (p *Parser) parseIDValue() ast.Node {
	id := p.leaf()
	if !p.curIs(ast.LPAREN) {
		return p.parseIndices(id)
	}
	p.advance() // '('
	args := ast.NewBranch(ast.LabelArgs)
	if !p.curIs(ast.RPAREN) {
		for {
			arg := p.parseExpression()
			if arg == nil {
				return nil
			}
			args.AppendChildren(arg)
			if !p.skip(ast.COMMA) {
				break
			}
		}
	}
	if _, ok := p.expect(ast.RPAREN, "')'"); !ok {
		return nil
	}
	return p.parseIndices(ast.NewBranch(ast.LabelFuncCall, id, args))
}

// parseIndices wraps base in one ARRAY-ACCESS per bracketed index, each nested
// under the previous: a[1][2] is ARRAY-ACCESS[ARRAY-ACCESS[a, 1], 2].
func (p *Parser) parseIndices(base ast.Node) ast.Node {
	for p.skip(ast.LBRACKET) {
		index := p.parseExpression()
		if index == nil {
			return nil
		}
		if _, ok := p.expect(ast.RBRACKET, "']'"); !ok {
			return nil
		}
		base = ast.NewBranch(ast.LabelArrayAccess, base, index)
	}
	return base
}

// parseArrayLiteral parses `{ expr (, expr)* }`; `{}` is an empty literal.
func (p *Parser) parseArrayLiteral() ast.Node {
	p.advance() // '{'
	lit := ast.NewBranch(ast.LabelArrayLit)
	if !p.curIs(ast.RBRACE) {
		for {
			e := p.parseExpression()
			if e == nil {
				return nil
			}
			lit.AppendChildren(e)
			if !p.skip(ast.COMMA) {
				break
			}
		}
	}
	if _, ok := p.expect(ast.RBRACE, "'}'"); !ok {
		return nil
	}
	return lit
}
