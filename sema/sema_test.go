package sema_test

import (
	"strings"
	"testing"

	"github.com/metaphox/quill/ast"
	"github.com/metaphox/quill/diag"
	"github.com/metaphox/quill/lexer"
	"github.com/metaphox/quill/parser"
	"github.com/metaphox/quill/sema"
	"github.com/metaphox/quill/symtab"
	"github.com/metaphox/quill/types"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

func analyze(t *testing.T, src string) (*sema.Result, *ast.Branch, error) {
	t.Helper()
	toks, err := lexer.LexString(src)
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	p, err := parser.New(toks)
	if err != nil {
		t.Fatalf("parser.New: %v", err)
	}
	prog, err := p.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := sema.New().Analyze(prog)
	return res, prog, err
}

func mustAnalyze(t *testing.T, src string) (*sema.Result, *ast.Branch) {
	t.Helper()
	res, prog, err := analyze(t, src)
	if err != nil {
		t.Fatalf("Analyze:\n%s\nunexpected error: %v", src, err)
	}
	return res, prog
}

// callType returns the recorded type of the first call to name.
func callType(t *testing.T, res *sema.Result, prog ast.Node, name string) types.EntityType {
	t.Helper()
	var found ast.Node
	ast.Inspect(prog, func(n ast.Node) bool {
		if found == nil && ast.IsBranch(n, ast.LabelFuncCall) && n.(*ast.Branch).Child(0).String() == name {
			found = n
		}
		return found == nil
	})
	if found == nil {
		t.Fatalf("no call to %s", name)
	}
	return res.Types[found]
}

// ── Accepted programs ─────────────────────────────────────────────────────────

func TestAnalyze_ConstantsAndWidening(t *testing.T) {
	res, prog := mustAnalyze(t, `
const float PI = 3.14
fn area(float r): float { return PI * r ** 2 }
float a = area(2)
`)
	if got := callType(t, res, prog, "area"); !got.Equal(types.New(types.FLOAT)) {
		t.Errorf("area(2) typed %v, want FLOAT", got)
	}
	if res.Table.Level() != symtab.GlobalScope {
		t.Errorf("scopes left open: level %d", res.Table.Level())
	}
	sym, ok := res.Table.Lookup("PI")
	if !ok || !sym.Const || sym.Init == nil {
		t.Errorf("PI = %+v", sym)
	}
}

func TestAnalyze_ForwardCall(t *testing.T) {
	mustAnalyze(t, `
int x = twice(2)
fn twice(int n): int { return n * 2 }
`)
}

func TestAnalyze_GenericSpecialization(t *testing.T) {
	res, prog := mustAnalyze(t, `
Array<int> xs[3] = {3, 1, 2}
int top = pop(xs)
int n = length(xs)
float m = max(1, 2.5)
println("done")
`)
	arrInt := types.New(types.ARRAY, types.INT)
	tests := []struct {
		name string
		args []types.EntityType
		ret  types.EntityType
	}{
		{"pop", []types.EntityType{arrInt}, types.New(types.INT)},
		{"length", []types.EntityType{arrInt}, types.New(types.INT)},
		{"max", []types.EntityType{types.New(types.FLOAT), types.New(types.FLOAT)}, types.New(types.FLOAT)},
		{"println", []types.EntityType{types.New(types.STRING)}, types.EntityType{}},
	}
	for _, tc := range tests {
		fn, ok := res.Table.LookupFunction(tc.name, tc.args)
		if !ok {
			t.Errorf("%s not specialized", tc.name)
			continue
		}
		if !fn.Return().Equal(tc.ret) || !fn.Builtin() {
			t.Errorf("%s -> %v builtin=%v, want %v builtin", fn.Signature(), fn.Return(), fn.Builtin(), tc.ret)
		}
	}
	if got := callType(t, res, prog, "max"); !got.Equal(types.New(types.FLOAT)) {
		t.Errorf("max(1, 2.5) typed %v", got)
	}
}

func TestAnalyze_RepeatedGenericCall(t *testing.T) {
	res, _ := mustAnalyze(t, "print(1)\nprint(2)\nprint(\"s\")")
	n := 0
	for _, c := range res.Table.Overloads("print") {
		if !c.Params()[0].IsGeneric() {
			n++
		}
	}
	if n != 2 {
		t.Errorf("got %d specializations of print, want 2", n)
	}
}

func TestAnalyze_ControlFlow(t *testing.T) {
	mustAnalyze(t, `
fn sign(int v): int {
  if (v > 0) { return 1 } else if (v < 0) { return -1 } else { return 0 }
}
int total = 0
for (int i = 0; i < 10; i++) {
  if (i % 2 == 0) continue
  total += i
}
for (string s : split("a,b", ",")) { print(s) }
while (total > 0) { total -= 1; if (total == 3) break }
boolean pos = sign(total) == 1 ? true : false
`)
}

func TestAnalyze_ArraysAndNull(t *testing.T) {
	mustAnalyze(t, `
const mut Array<int> xs[2] = {1, 2}
xs[0] = 5
const Array<int> ys = {1, 2}
int y = ys[1]
Array<Array<float>> grid[2][2] = {{1, 2.5}, {}}
grid[1][0] += 1
string s = null
Array<int> zs[2] = null
string t = "n=" + 5
`)
}

func TestAnalyze_Shadowing(t *testing.T) {
	res, _ := mustAnalyze(t, `
int x = 1
fn f() { string x = "s" }
`)
	sym, _ := res.Table.Lookup("x")
	if !sym.Type.Equal(types.New(types.INT)) || sym.Scope != symtab.GlobalScope {
		t.Errorf("global x = %+v", sym)
	}
}

func TestAnalyze_LateInitialization(t *testing.T) {
	res, _ := mustAnalyze(t, `
int x
int y
x = 4
x = 5
if (x > 0) { y = 1 }
`)
	x, _ := res.Table.Lookup("x")
	if x.Init == nil || x.Init.String() != "4" || x.Scope != symtab.GlobalScope {
		t.Errorf("x = %+v, want initializer 4 at global scope", x)
	}
	if y, _ := res.Table.Lookup("y"); y.Init != nil {
		t.Errorf("y initialized from a nested block: %+v", y)
	}
}

// ── Rejected programs ─────────────────────────────────────────────────────────

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		kind     diag.Kind
		fragment string
		line     int
	}{
		{"undefined", "int x = y", diag.Reference, "'y' is not defined", 1},
		{"bad init", `int x = "s"`, diag.Type, "Cannot initialize 'x' of type INT with STRING", 1},
		{"const assign", "const int c = 1\nc = 2", diag.IllegalStatement, "constant 'c'", 2},
		{"immutable element", "const Array<int> xs = {1}\nxs[0] = 2", diag.IllegalStatement, "immutable array 'xs'", 2},
		{"const increment", "const int c = 1\nc++", diag.IllegalStatement, "constant 'c'", 2},
		{"top-level return", "return 1", diag.IllegalStatement, "'return' outside a function", 1},
		{"top-level break", "break", diag.IllegalStatement, "'break' outside a loop", 1},
		{"continue in fn", "fn f() { continue }", diag.IllegalStatement, "'continue' outside a loop", 1},
		{"size count", "Array<Array<int>> g[2]", diag.Declaration, "needs 2 size(s), got 1", 1},
		{"literal too long", "Array<int> xs[2] = {1, 2, 3}", diag.ArrayBounds, "length 3 does not fit 'xs' of size 2", 1},
		{"index past size", "Array<int> xs[2]\nint y = xs[2]", diag.ArrayBounds, "Index 2 is out of bounds for 'xs' of size 2", 2},
		{"index past literal", "const Array<int> ys = {1}\nint y = ys[1]", diag.ArrayBounds, "of size 1", 2},
		{"inner dimension", "Array<Array<int>> g[2][3]\nint v = g[1][3]", diag.ArrayBounds, "of size 3", 2},
		{"after return", "fn f(): int {\n  return 1\n  int y = 2\n}", diag.UnreachableCode, "after 'return'", 3},
		{"after break", "while (true) {\n  break\n  print(1)\n}", diag.UnreachableCode, "after 'break'", 3},
		{"condition", "if (1) { }", diag.Type, "Condition must be BOOLEAN, got INT", 1},
		{"duplicate var", "int x = 1\nint x = 2", diag.Name, "Duplicate symbol 'x'", 2},
		{"duplicate fn", "fn f(int a): int { return a }\nfn f(int b): int { return b }", diag.Name, "Duplicate function f(INT)", 2},
		{"return conflict", "fn f(int a): int { return a }\nfn f(string s): string { return s }", diag.Type, "f(STRING)", 2},
		{"builtin fn", "fn length(string s): int { return 0 }", diag.Name, "built-in function 'length'", 1},
		{"builtin var", "int INT_MAX = 3", diag.Name, "built-in 'INT_MAX'", 1},
		{"missing return", "fn f(): int { }", diag.Type, "may finish without returning INT", 1},
		{"void return value", "fn f() { return 1 }", diag.Type, "does not return a value", 1},
		{"wrong return", "fn f(): string { return 1 }", diag.Type, "Cannot return INT from f(), which returns STRING", 1},
		{"unknown fn", "foo(1)", diag.Reference, "Function 'foo' is not defined", 1},
		{"no overload", "toInt(true)", diag.Reference, "No overload of 'toInt' accepts (BOOLEAN)", 1},
		{"generic disagreement", "Array<int> xs[1]\nappend(xs, \"s\")", diag.Type, "disagree on the generic type of append", 2},
		{"generic element widening", "Array<int> xs[1]\nappend(xs, 1.5)", diag.Type, "disagree on the generic type of append", 2},
		{"generic element widening after use", "Array<int> xs[2] = {1, 2}\nappend(xs, 3)\nappend(xs, 1.5)", diag.Type, "disagree on the generic type of append", 3},
		{"logical operands", "boolean b = 1 && true", diag.Type, "Operator '&&' needs BOOLEAN operands", 1},
		{"bitwise operands", "int x = true ^ 1", diag.Type, "Operator '^' is not defined for BOOLEAN and INT", 1},
		{"string increment", "string s = \"a\"\ns++", diag.Type, "Operator '++' is not defined for STRING", 2},
		{"iterate scalar", "for (int c : 5) {}", diag.Type, "Cannot iterate over INT", 1},
		{"float size", "Array<int> xs[1.5]", diag.Type, "Array size must be INT, got FLOAT", 1},
		{"mixed literal", "Array<int> xs[2] = {1, \"a\"}", diag.Type, "Array literal mixes INT and STRING", 1},
		{"compare kinds", "boolean b = \"a\" < 1", diag.Type, "Cannot compare STRING and INT", 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := analyze(t, tc.src)
			if err == nil {
				t.Fatalf("expected %v, got nil", tc.kind)
			}
			if !diag.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
			if !strings.Contains(err.Error(), tc.fragment) {
				t.Errorf("error %q does not mention %q", err.Error(), tc.fragment)
			}
			if d := err.(*diag.Error); d.Line != tc.line {
				t.Errorf("line %d, want %d", d.Line, tc.line)
			}
		})
	}
}

func TestAnalyze_RejectsNonProgram(t *testing.T) {
	_, err := sema.New().Analyze(ast.NewBranch(ast.LabelBlock))
	if !diag.Is(err, diag.Syntax) {
		t.Errorf("expected SyntaxError, got %v", err)
	}
}
