// Package types implements EntityType, the structural type representation used
// by the Quill symbol table and semantic pass.
//
// An EntityType is an ordered sequence of tags. Array nesting is expressed by
// position: [ARRAY, ARRAY, INT] is "array of array of int". The GENERIC tag is
// a wildcard that unifies with any concrete type at the same position, which
// lets built-ins such as length or pop be declared once per shape.
package types

import (
	"strings"

	"github.com/metaphox/quill/ast"
	"github.com/metaphox/quill/diag"
)

// Tag is a single element of an EntityType.
type Tag int

const (
	INT Tag = iota
	FLOAT
	STRING
	BOOLEAN
	ARRAY
	NULL
	GENERIC
)

var tagNames = [...]string{
	INT:     "INT",
	FLOAT:   "FLOAT",
	STRING:  "STRING",
	BOOLEAN: "BOOLEAN",
	ARRAY:   "ARRAY",
	NULL:    "NULL",
	GENERIC: "GENERIC",
}

func (t Tag) String() string {
	if int(t) >= 0 && int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "?"
}

// EntityType is an immutable tag sequence. The zero value means "no type"
// and is used for callables without a return value.
type EntityType struct {
	tags []Tag
}

// New builds an EntityType from one or more tags.
func New(tags ...Tag) EntityType {
	if len(tags) == 0 {
		panic("types.New: empty tag sequence")
	}
	return EntityType{tags: append([]Tag(nil), tags...)}
}

// ArrayOf returns the type "array of elem".
func ArrayOf(elem EntityType) EntityType {
	return EntityType{tags: append([]Tag{ARRAY}, elem.tags...)}
}

// FromNode derives a type from a primitive type leaf or a TYPE subtree such as
// TYPE[Array, TYPE[int]]. Each nesting level prepends ARRAY.
func FromNode(n ast.Node) (EntityType, error) {
	switch n := n.(type) {
	case *ast.Leaf:
		tag, ok := primitive(n.Token.Kind)
		if !ok {
			return EntityType{}, diag.Newf(diag.Syntax, n.Line(), "Expected a type but got %v ('%s')", n.Token.Kind, n.Token.Text())
		}
		return New(tag), nil
	case *ast.Branch:
		if n.Label != ast.LabelType || len(n.Children) == 0 {
			return EntityType{}, diag.Newf(diag.Syntax, n.Line(), "Expected a type but got %s", n.Label)
		}
		if !ast.IsLeaf(n.Children[0], ast.ARRAY) {
			return FromNode(n.Children[0])
		}
		if len(n.Children) != 2 {
			return EntityType{}, diag.Newf(diag.Syntax, n.Line(), "Expected an element type for Array")
		}
		elem, err := FromNode(n.Children[1])
		if err != nil {
			return EntityType{}, err
		}
		return ArrayOf(elem), nil
	}
	return EntityType{}, diag.Newf(diag.Syntax, 0, "Expected a type")
}

func primitive(k ast.Kind) (Tag, bool) {
	switch k {
	case ast.INT_TYPE:
		return INT, true
	case ast.FLOAT_TYPE:
		return FLOAT, true
	case ast.STRING_TYPE:
		return STRING, true
	case ast.BOOLEAN_TYPE:
		return BOOLEAN, true
	}
	return 0, false
}

// Tags returns a copy of the tag sequence.
func (e EntityType) Tags() []Tag { return append([]Tag(nil), e.tags...) }

// Len returns the number of tags.
func (e EntityType) Len() int { return len(e.tags) }

// IsZero reports whether e is the "no type" value.
func (e EntityType) IsZero() bool { return len(e.tags) == 0 }

// IsType reports whether e is exactly the single tag t.
func (e EntityType) IsType(t Tag) bool {
	return len(e.tags) == 1 && e.tags[0] == t
}

// StartsWith reports whether the first tag of e is t.
func (e EntityType) StartsWith(t Tag) bool {
	return len(e.tags) > 0 && e.tags[0] == t
}

// IsArray is shorthand for StartsWith(ARRAY).
func (e EntityType) IsArray() bool { return e.StartsWith(ARRAY) }

// IsNumeric reports whether e is INT or FLOAT.
func (e EntityType) IsNumeric() bool { return e.IsType(INT) || e.IsType(FLOAT) }

// IsSubType reports whether other is a prefix of e.
func (e EntityType) IsSubType(other EntityType) bool {
	if other.IsZero() || len(other.tags) > len(e.tags) {
		return false
	}
	for i, t := range other.tags {
		if e.tags[i] != t {
			return false
		}
	}
	return true
}

// ContainsSubType reports whether t appears anywhere in e.
func (e EntityType) ContainsSubType(t Tag) bool {
	for _, x := range e.tags {
		if x == t {
			return true
		}
	}
	return false
}

// IsGeneric reports whether e contains a GENERIC tag.
func (e EntityType) IsGeneric() bool { return e.ContainsSubType(GENERIC) }

// Equal reports sequence equality.
func (e EntityType) Equal(other EntityType) bool {
	if len(e.tags) != len(other.tags) {
		return false
	}
	for i := range e.tags {
		if e.tags[i] != other.tags[i] {
			return false
		}
	}
	return true
}

// Elem returns the element type of an array, or the zero value when e is not
// an array.
func (e EntityType) Elem() EntityType {
	if !e.IsArray() || len(e.tags) < 2 {
		return EntityType{}
	}
	return EntityType{tags: e.tags[1:]}
}

// Depth returns the number of leading ARRAY tags.
func (e EntityType) Depth() int {
	n := 0
	for n < len(e.tags) && e.tags[n] == ARRAY {
		n++
	}
	return n
}

// Unify matches a declared parameter type against an argument type. It
// reports whether they are compatible and, when param contains GENERIC, the
// argument tags bound to it. Matching proceeds tag by tag; GENERIC absorbs the
// remainder of the argument, so [ARRAY, GENERIC] accepts any array.
func Unify(param, arg EntityType) (EntityType, bool) {
	for i, t := range param.tags {
		if t == GENERIC {
			if i >= len(arg.tags) {
				return EntityType{}, false
			}
			return EntityType{tags: arg.tags[i:]}, true
		}
		if i >= len(arg.tags) {
			return EntityType{}, false
		}
		if arg.tags[i] == GENERIC {
			// An argument that is itself generic (an empty array literal)
			// stands in for anything from this position on.
			return EntityType{tags: []Tag{GENERIC}}, true
		}
		if arg.tags[i] != t {
			return EntityType{}, false
		}
	}
	return EntityType{}, len(param.tags) == len(arg.tags)
}

// Compatible reports whether a value of type arg may be passed where param is
// declared, treating GENERIC as a wildcard.
func Compatible(param, arg EntityType) bool {
	if !param.IsGeneric() && !arg.IsGeneric() {
		return param.Equal(arg)
	}
	_, ok := Unify(param, arg)
	return ok
}

// Substitute replaces the first GENERIC tag in e with binding.
func (e EntityType) Substitute(binding EntityType) EntityType {
	for i, t := range e.tags {
		if t == GENERIC {
			tags := append([]Tag(nil), e.tags[:i]...)
			tags = append(tags, binding.tags...)
			tags = append(tags, e.tags[i+1:]...)
			return EntityType{tags: tags}
		}
	}
	return e
}

// String renders e as INT, ARRAY<STRING>, ARRAY<ARRAY<GENERIC>>.
func (e EntityType) String() string {
	if e.IsZero() {
		return "NONE"
	}
	var sb strings.Builder
	for _, t := range e.tags[:len(e.tags)-1] {
		sb.WriteString(t.String())
		sb.WriteByte('<')
	}
	sb.WriteString(e.tags[len(e.tags)-1].String())
	sb.WriteString(strings.Repeat(">", len(e.tags)-1))
	return sb.String()
}
