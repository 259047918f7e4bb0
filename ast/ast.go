package ast

import "strings"

// Label names the grammar rule a [Branch] was built from.
type Label string

const (
	LabelProgram            Label = "PROGRAM"
	LabelVarDecl            Label = "VAR-DECL"
	LabelArrayDecl          Label = "ARRAY-DECL"
	LabelImmutableArrayDecl Label = "IMMUTABLE-ARRAY-DECL"
	LabelArraySize          Label = "ARRAY-SIZE"
	LabelType               Label = "TYPE"
	LabelFuncDef            Label = "FUNC-DEF"
	LabelParams             Label = "PARAMS"
	LabelParam              Label = "PARAM"
	LabelReturnType         Label = "RETURN-TYPE"
	LabelBlock              Label = "BLOCK"
	LabelFuncCall           Label = "FUNC-CALL"
	LabelArgs               Label = "ARGS"
	LabelArrayAccess        Label = "ARRAY-ACCESS"
	LabelArrayLit           Label = "ARRAY-LIT"
	LabelAssign             Label = "ASSIGN"
	LabelWhileLoop          Label = "WHILE-LOOP"
	LabelForLoop            Label = "FOR-LOOP"
	LabelForEachLoop        Label = "FOR-EACH-LOOP"
	LabelEmpty              Label = "EMPTY"
	LabelConditional        Label = "CONDITIONAL"
	LabelIf                 Label = "IF"
	LabelElseIf             Label = "ELSE-IF"
	LabelElse               Label = "ELSE"
	LabelTernary            Label = "TERNARY"
	LabelLogicalOr          Label = "LOGICAL-OR"
	LabelLogicalAnd         Label = "LOGICAL-AND"
	LabelComparison         Label = "COMPARISON"
	LabelArithmetic         Label = "ARITHMETIC"
	LabelTerm               Label = "TERM"
	LabelExponent           Label = "EXPONENT"
	LabelUnaryOp            Label = "UNARY-OP"
	LabelReturn             Label = "RETURN"
	LabelBreak              Label = "BREAK"
	LabelContinue           Label = "CONTINUE"
)

// Node is a syntax-tree node. It has exactly two implementations: *Branch for
// non-terminals and *Leaf for terminals.
type Node interface {
	// Line returns the source line the node starts on, or 0 when unknown.
	Line() int
	// String renders the subtree as an S-expression for debugging and tests.
	String() string
	node()
}

// Branch is a non-terminal: a grammar label and its ordered children.
// A Branch owns its children; the tree is never shared.
type Branch struct {
	Label    Label
	Children []Node
}

// Leaf is a terminal wrapping exactly one token.
type Leaf struct {
	Token Token
}

// NewBranch builds a branch with the given children.
func NewBranch(label Label, children ...Node) *Branch {
	return &Branch{Label: label, Children: children}
}

// NewLeaf wraps tok.
func NewLeaf(tok Token) *Leaf {
	return &Leaf{Token: tok}
}

func (b *Branch) node() {}
func (l *Leaf) node()   {}

// AppendChildren adds nodes to the end of b's children.
func (b *Branch) AppendChildren(nodes ...Node) {
	b.Children = append(b.Children, nodes...)
}

// Line approximates the branch's line by its leftmost terminal with a known
// line.
func (b *Branch) Line() int {
	for _, c := range b.Children {
		if n := c.Line(); n > 0 {
			return n
		}
	}
	return 0
}

func (l *Leaf) Line() int { return l.Token.Line }

func (b *Branch) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(string(b.Label))
	for _, c := range b.Children {
		sb.WriteByte(' ')
		sb.WriteString(c.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func (l *Leaf) String() string { return l.Token.Text() }

// Child returns the i-th child of b, or nil when out of range.
func (b *Branch) Child(i int) Node {
	if i < 0 || i >= len(b.Children) {
		return nil
	}
	return b.Children[i]
}

// IsBranch reports whether n is a branch with the given label.
func IsBranch(n Node, label Label) bool {
	b, ok := n.(*Branch)
	return ok && b.Label == label
}

// IsLeaf reports whether n is a leaf of the given kind.
func IsLeaf(n Node, kind Kind) bool {
	l, ok := n.(*Leaf)
	return ok && l.Token.Kind == kind
}

// Inspect walks the tree rooted at n in pre-order, calling fn for each node.
// Children of a node are skipped when fn returns false.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	if b, ok := n.(*Branch); ok {
		for _, c := range b.Children {
			Inspect(c, fn)
		}
	}
}
