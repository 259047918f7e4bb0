package symtab

import (
	"github.com/metaphox/quill/types"
)

// builtinVar is one predeclared constant.
type builtinVar struct {
	name string
	typ  types.EntityType
}

// builtinFunc is one predeclared callable. Entries whose parameters or return
// mention GENERIC are seeded as prototypes.
type builtinFunc struct {
	name   string
	ret    types.EntityType
	params []types.EntityType
}

var (
	tInt     = types.New(types.INT)
	tFloat   = types.New(types.FLOAT)
	tString  = types.New(types.STRING)
	tBool    = types.New(types.BOOLEAN)
	tGeneric = types.New(types.GENERIC)
	tArrGen  = types.New(types.ARRAY, types.GENERIC)
	tArrStr  = types.New(types.ARRAY, types.STRING)
	tNone    = types.EntityType{}
)

func params(ts ...types.EntityType) []types.EntityType { return ts }

var builtinVars = []builtinVar{
	{"INT_MIN", tInt},
	{"INT_MAX", tInt},
	{"FLOAT_MIN", tFloat},
	{"FLOAT_MAX", tFloat},
}

var builtinFuncs = []builtinFunc{
	{"length", tInt, params(tArrGen)},
	{"length", tInt, params(tString)},
	{"toString", tString, params(tInt)},
	{"toString", tString, params(tFloat)},
	{"toString", tString, params(tBool)},
	{"toInt", tInt, params(tString)},
	{"toInt", tInt, params(tFloat)},
	{"toFloat", tFloat, params(tString)},
	{"toFloat", tFloat, params(tInt)},
	{"max", tGeneric, params(tGeneric, tGeneric)},
	{"min", tGeneric, params(tGeneric, tGeneric)},
	{"abs", tGeneric, params(tGeneric)},
	{"contains", tBool, params(tArrGen, tGeneric)},
	{"contains", tBool, params(tString, tString)},
	{"split", tArrStr, params(tString, tString)},
	{"join", tString, params(tArrStr, tString)},
	{"sort", tNone, params(tArrGen)},
	{"reverse", tNone, params(tArrGen)},
	{"pop", tGeneric, params(tArrGen)},
	{"append", tNone, params(tArrGen, tGeneric)},
	{"print", tNone, params(tGeneric)},
	{"println", tNone, params(tGeneric)},
	{"input", tString, params()},
}

// seed inserts the catalog. It runs while only the built-in scope is open.
func (t *Table) seed() error {
	for _, v := range builtinVars {
		if err := t.Insert(&Symbol{Name: v.name, Type: v.typ, Const: true}); err != nil {
			return err
		}
	}
	for _, f := range builtinFuncs {
		sig := signature{name: f.name, ret: f.ret, params: f.params, builtin: true}
		var c Callable = &FunctionSymbol{sig}
		if sig.hasGeneric() {
			c = &PrototypeSymbol{sig}
		}
		if err := t.InsertCallable(c); err != nil {
			return err
		}
	}
	return nil
}
