// Package frontend chains the Quill stages: lexing, parsing and semantic
// analysis. Each stage's first error is returned unchanged, so callers can
// inspect it with the diag package.
package frontend

import (
	"github.com/metaphox/quill/ast"
	"github.com/metaphox/quill/lexer"
	"github.com/metaphox/quill/parser"
	"github.com/metaphox/quill/sema"
)

// Unit is one compiled source: the tokens, the PROGRAM tree and the analysis.
// Fields for stages that were not reached stay nil.
type Unit struct {
	Tokens  []ast.Token
	Program *ast.Branch
	Result  *sema.Result
}

// Compile runs every stage over the source lines. On error the returned Unit
// holds the outputs of the stages that succeeded.
func Compile(lines []string) (*Unit, error) {
	u := &Unit{}
	toks, err := lexer.New().Lex(lines)
	if err != nil {
		return u, err
	}
	u.Tokens = toks

	p, err := parser.New(toks)
	if err != nil {
		return u, err
	}
	prog, err := p.Parse()
	if err != nil {
		return u, err
	}
	u.Program = prog

	res, err := sema.New().Analyze(prog)
	if err != nil {
		return u, err
	}
	u.Result = res
	return u, nil
}

// CompileString splits src into lines and compiles them.
func CompileString(src string) (*Unit, error) {
	return Compile(lexer.SplitLines(src))
}
