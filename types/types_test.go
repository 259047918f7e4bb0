package types_test

import (
	"testing"

	"github.com/metaphox/quill/ast"
	"github.com/metaphox/quill/types"
)

func TestEntityType_Predicates(t *testing.T) {
	arrStr := types.New(types.ARRAY, types.STRING)

	if !types.New(types.INT).IsType(types.INT) {
		t.Error("INT.IsType(INT) = false")
	}
	if arrStr.IsType(types.ARRAY) {
		t.Error("ARRAY<STRING>.IsType(ARRAY) = true")
	}
	if !arrStr.StartsWith(types.ARRAY) || !arrStr.IsArray() {
		t.Error("ARRAY<STRING> should start with ARRAY")
	}
	if !arrStr.IsSubType(types.New(types.ARRAY)) {
		t.Error("[ARRAY] should be a prefix of [ARRAY, STRING]")
	}
	if types.New(types.ARRAY).IsSubType(arrStr) {
		t.Error("[ARRAY, STRING] is not a prefix of [ARRAY]")
	}
	if !arrStr.ContainsSubType(types.STRING) || arrStr.ContainsSubType(types.GENERIC) {
		t.Error("ContainsSubType mismatch")
	}
	if !types.New(types.ARRAY, types.ARRAY, types.GENERIC).IsGeneric() {
		t.Error("buried GENERIC not detected")
	}
}

func TestEntityType_Equal(t *testing.T) {
	a := types.New(types.ARRAY, types.INT)
	b := types.ArrayOf(types.New(types.INT))
	if !a.Equal(b) {
		t.Errorf("%v != %v", a, b)
	}
	if a.Equal(types.New(types.ARRAY, types.FLOAT)) {
		t.Error("ARRAY<INT> == ARRAY<FLOAT>")
	}
	if a.Equal(types.New(types.ARRAY)) {
		t.Error("different lengths compared equal")
	}
}

func TestEntityType_String(t *testing.T) {
	tests := []struct {
		typ  types.EntityType
		want string
	}{
		{types.New(types.INT), "INT"},
		{types.New(types.ARRAY, types.STRING), "ARRAY<STRING>"},
		{types.New(types.ARRAY, types.ARRAY, types.GENERIC), "ARRAY<ARRAY<GENERIC>>"},
		{types.EntityType{}, "NONE"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEntityType_ElemAndDepth(t *testing.T) {
	typ := types.New(types.ARRAY, types.ARRAY, types.BOOLEAN)
	if typ.Depth() != 2 {
		t.Errorf("Depth = %d, want 2", typ.Depth())
	}
	if got := typ.Elem(); !got.Equal(types.New(types.ARRAY, types.BOOLEAN)) {
		t.Errorf("Elem = %v", got)
	}
	if !types.New(types.INT).Elem().IsZero() {
		t.Error("Elem of a scalar should be zero")
	}
}

func TestUnify(t *testing.T) {
	arrGen := types.New(types.ARRAY, types.GENERIC)
	tests := []struct {
		name    string
		param   types.EntityType
		arg     types.EntityType
		ok      bool
		binding string
	}{
		{"array of string", arrGen, types.New(types.ARRAY, types.STRING), true, "STRING"},
		{"array of int", arrGen, types.New(types.ARRAY, types.INT), true, "INT"},
		{"nested array", arrGen, types.New(types.ARRAY, types.ARRAY, types.INT), true, "ARRAY<INT>"},
		{"scalar into array", arrGen, types.New(types.INT), false, ""},
		{"bare generic", types.New(types.GENERIC), types.New(types.FLOAT), true, "FLOAT"},
		{"concrete equal", types.New(types.INT), types.New(types.INT), true, "NONE"},
		{"concrete differ", types.New(types.INT), types.New(types.STRING), false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binding, ok := types.Unify(tt.param, tt.arg)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && binding.String() != tt.binding {
				t.Errorf("binding = %v, want %s", binding, tt.binding)
			}
		})
	}
}

func TestCompatible_EmptyArrayLiteral(t *testing.T) {
	if !types.Compatible(types.New(types.ARRAY, types.INT), types.New(types.ARRAY, types.GENERIC)) {
		t.Error("an empty array literal should fit any array parameter")
	}
	if types.Compatible(types.New(types.INT), types.New(types.ARRAY, types.GENERIC)) {
		t.Error("an array literal should not fit a scalar parameter")
	}
}

func TestSubstitute(t *testing.T) {
	ret := types.New(types.ARRAY, types.GENERIC)
	got := ret.Substitute(types.New(types.STRING))
	if !got.Equal(types.New(types.ARRAY, types.STRING)) {
		t.Errorf("Substitute = %v", got)
	}
	if !ret.IsGeneric() {
		t.Error("Substitute mutated its receiver")
	}
}

func TestFromNode(t *testing.T) {
	intLeaf := ast.NewLeaf(ast.Static(ast.INT_TYPE, 1))
	arrayLeaf := ast.NewLeaf(ast.Static(ast.ARRAY, 1))

	got, err := types.FromNode(intLeaf)
	if err != nil || !got.IsType(types.INT) {
		t.Fatalf("int leaf: got (%v, %v)", got, err)
	}

	nested := ast.NewBranch(ast.LabelType, arrayLeaf,
		ast.NewBranch(ast.LabelType, arrayLeaf,
			ast.NewBranch(ast.LabelType, ast.NewLeaf(ast.Static(ast.STRING_TYPE, 1)))))
	got, err = types.FromNode(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(types.New(types.ARRAY, types.ARRAY, types.STRING)) {
		t.Errorf("nested: got %v", got)
	}

	if _, err := types.FromNode(ast.NewLeaf(ast.Variable(ast.ID, "x", 3))); err == nil {
		t.Error("identifier leaf should not be a type")
	}
}
