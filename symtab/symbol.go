package symtab

import (
	"strings"

	"github.com/metaphox/quill/ast"
	"github.com/metaphox/quill/types"
)

// Symbol is a variable binding.
type Symbol struct {
	Name  string
	Type  types.EntityType
	Scope int  // stamped by Table.Insert
	Const bool // the binding cannot be reassigned
	// Mutable is set on const mut arrays: the binding is fixed but its
	// elements may still change.
	Mutable bool
	Init    ast.Node   // initializer expression; owned by the declaration
	Sizes   []ast.Node // per-dimension size expressions of an array
}

// Callable is an entry in an overload set: either a concrete *FunctionSymbol
// or a generic *PrototypeSymbol.
type Callable interface {
	Name() string
	// Return is the zero EntityType when the callable returns nothing.
	Return() types.EntityType
	Params() []types.EntityType
	Builtin() bool
	// Body is the function's BLOCK node, or nil for built-ins.
	Body() ast.Node
	// Signature formats the callable as name(TYPE,TYPE).
	Signature() string
	generic() bool
}

type signature struct {
	name    string
	ret     types.EntityType
	params  []types.EntityType
	builtin bool
	body    ast.Node
}

func (s *signature) Name() string               { return s.name }
func (s *signature) Return() types.EntityType   { return s.ret }
func (s *signature) Params() []types.EntityType { return s.params }
func (s *signature) Builtin() bool              { return s.builtin }
func (s *signature) Body() ast.Node             { return s.body }
func (s *signature) Signature() string          { return formatSignature(s.name, s.params) }

// hasGeneric reports whether GENERIC appears in the parameters or return.
func (s *signature) hasGeneric() bool {
	if s.ret.IsGeneric() {
		return true
	}
	for _, p := range s.params {
		if p.IsGeneric() {
			return true
		}
	}
	return false
}

// FunctionSymbol is a concrete overload.
type FunctionSymbol struct {
	signature
}

// NewFunction builds a user-defined function. body may be nil.
func NewFunction(name string, ret types.EntityType, params []types.EntityType, body ast.Node) *FunctionSymbol {
	return &FunctionSymbol{signature{name: name, ret: ret, params: params, body: body}}
}

func (f *FunctionSymbol) generic() bool { return false }

// PrototypeSymbol is a generic overload that specializes to concrete types at
// each call site.
type PrototypeSymbol struct {
	signature
}

// NewPrototype builds a user-level prototype.
func NewPrototype(name string, ret types.EntityType, params []types.EntityType) *PrototypeSymbol {
	return &PrototypeSymbol{signature{name: name, ret: ret, params: params}}
}

func (p *PrototypeSymbol) generic() bool { return true }

// Bind computes the concrete type GENERIC stands for given the call-site
// argument types. Every generic parameter must agree on the binding. Scalar
// GENERIC parameters widen INT and FLOAT to FLOAT, but a GENERIC under ARRAY
// pins the binding to the array's element type: a scalar may then only widen
// into it. A binding of GENERIC itself means the arguments did not pin it
// down (an empty array literal, say).
func (p *PrototypeSymbol) Bind(args []types.EntityType) (types.EntityType, bool) {
	if len(args) != len(p.params) {
		return types.EntityType{}, false
	}
	var bound types.EntityType
	pinned := false
	for i, param := range p.params {
		b, ok := types.Unify(param, args[i])
		if !ok {
			return types.EntityType{}, false
		}
		if !param.IsGeneric() || b.IsType(types.GENERIC) {
			continue
		}
		scalar := param.IsType(types.GENERIC)
		switch {
		case bound.IsZero():
			bound, pinned = b, !scalar
		case bound.Equal(b):
			pinned = pinned || !scalar
		case !bound.IsNumeric() || !b.IsNumeric():
			return types.EntityType{}, false
		case scalar && !pinned:
			bound = types.New(types.FLOAT)
		case scalar && bound.IsType(types.FLOAT):
			// INT widens into a pinned FLOAT.
		case !scalar && !pinned && b.IsType(types.FLOAT):
			bound, pinned = b, true
		default:
			return types.EntityType{}, false
		}
	}
	if bound.IsZero() {
		bound = types.New(types.GENERIC)
	}
	return bound, true
}

// Specialize returns the concrete overload p stands for when GENERIC is bound
// to binding. The result is a built-in when p is.
func (p *PrototypeSymbol) Specialize(binding types.EntityType) *FunctionSymbol {
	params := make([]types.EntityType, len(p.params))
	for i, param := range p.params {
		params[i] = param.Substitute(binding)
	}
	ret := p.ret
	if !ret.IsZero() {
		ret = ret.Substitute(binding)
	}
	return &FunctionSymbol{signature{name: p.name, ret: ret, params: params, builtin: p.builtin}}
}

func formatSignature(name string, params []types.EntityType) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

// compatibleParams reports whether a call with args may use an overload
// declared with params.
func compatibleParams(params, args []types.EntityType) bool {
	if len(params) != len(args) {
		return false
	}
	for i := range params {
		if !types.Compatible(params[i], args[i]) {
			return false
		}
	}
	return true
}
