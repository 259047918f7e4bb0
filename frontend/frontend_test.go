package frontend_test

import (
	"testing"

	"github.com/metaphox/quill/diag"
	"github.com/metaphox/quill/frontend"
)

func TestCompile_Program(t *testing.T) {
	u, err := frontend.CompileString("const float PI = 3.14\r\nfloat r = PI * 2\r\n")
	if err != nil {
		t.Fatalf("CompileString: %v", err)
	}
	if len(u.Tokens) != 11 {
		t.Errorf("got %d tokens, want 11", len(u.Tokens))
	}
	want := "(PROGRAM (VAR-DECL const float PI = 3.14) (VAR-DECL float r = (TERM PI * 2)))"
	if u.Program.String() != want {
		t.Errorf("program:\n got  %s\n want %s", u.Program, want)
	}
	if _, ok := u.Result.Table.Lookup("r"); !ok {
		t.Error("r not declared")
	}
}

func TestCompile_StopsAtFirstFailingStage(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind diag.Kind
		// stages that must have produced output
		tokens, program bool
	}{
		{"lexer", "int x = 1 $", diag.Syntax, false, false},
		{"empty", "// nothing here", diag.Syntax, false, false},
		{"parser", "int x = ", diag.Syntax, true, false},
		{"sema", "int x = y", diag.Reference, true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, err := frontend.CompileString(tc.src)
			if !diag.Is(err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, err)
			}
			if (u.Tokens != nil) != tc.tokens {
				t.Errorf("tokens present = %v, want %v", u.Tokens != nil, tc.tokens)
			}
			if (u.Program != nil) != tc.program {
				t.Errorf("program present = %v, want %v", u.Program != nil, tc.program)
			}
			if u.Result != nil {
				t.Error("result should be nil on error")
			}
		})
	}
}

func TestCompile_Format(t *testing.T) {
	_, err := frontend.Compile([]string{"int a = 1", "a = \"s\""})
	want := "Line 2\n\tTypeError: Cannot assign STRING to INT"
	if got := diag.Format(err); got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
	if diag.ExitCode(err) != diag.ExitCompile {
		t.Errorf("ExitCode = %d", diag.ExitCode(err))
	}
}
