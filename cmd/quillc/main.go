// Command quillc checks a Quill source file and reports the first error.
//
// Usage:
//
//	quillc [-tokens] [-ast] [-symbols] file.ql
//	quillc -repl
//
// With -repl, declarations and statements are read interactively and checked
// against everything accepted so far.
//
// The exit status is 0 when the file is valid, 1 for a compile error and 2
// when the file cannot be read.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/metaphox/quill/diag"
	"github.com/metaphox/quill/frontend"
	"github.com/metaphox/quill/lexer"
)

func main() {
	showTokens := flag.Bool("tokens", false, "print the token stream")
	showAST := flag.Bool("ast", false, "print the syntax tree")
	showSymbols := flag.Bool("symbols", false, "print the symbol table after analysis")
	repl := flag.Bool("repl", false, "check input interactively")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: quillc [-tokens] [-ast] [-symbols] file")
		fmt.Fprintln(os.Stderr, "       quillc -repl")
		flag.PrintDefaults()
	}
	flag.Parse()
	if *repl {
		os.Exit(runRepl())
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(diag.ExitInternal)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read error:", err)
		os.Exit(diag.ExitInternal)
	}

	u, err := frontend.Compile(lexer.SplitLines(string(data)))
	if *showTokens && u.Tokens != nil {
		fmt.Printf("Tokens (%d)\n", len(u.Tokens))
		for _, tok := range u.Tokens {
			fmt.Printf("  %4d  %v\n", tok.Line, tok)
		}
	}
	if *showAST && u.Program != nil {
		fmt.Println("AST")
		for _, n := range u.Program.Children {
			fmt.Println(" ", n)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, diag.Format(err))
		os.Exit(diag.ExitCode(err))
	}
	if *showSymbols {
		fmt.Print(u.Result.Table)
	}
}
