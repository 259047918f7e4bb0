// Package lexer implements the Quill lexical scanner.
//
// The lexer turns source lines into a flat sequence of [ast.Token] values.
// Create one with [New] and feed it lines with [Lexer.AnalyzeLine], or hand the
// whole file to [Lexer.Lex].
//
// Design notes:
//   - A small state machine drives scanning. Number, operator and identifier
//     runs never span lines; multi-line comments (/* … */) and multi-line
//     strings (/" … "/) do, so their state survives between AnalyzeLine calls.
//   - One character of look-ahead decides where a run ends.
//   - Comments produce no tokens.
//   - Every failure is a fatal [diag.Syntax] error stamped with the 1-based
//     line; there is no recovery.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/metaphox/quill/ast"
	"github.com/metaphox/quill/diag"
)

type state int

const (
	stateDefault state = iota
	stateNumber
	stateOperator
	stateIdentifier
	stateMultilineComment
	stateMultilineString
)

// operators lists every multi-character operator. Single operator characters
// are always valid operators on their own.
var operators = map[string]bool{
	"++": true, "--": true, "**": true, "==": true, "&&": true, "||": true,
	"+=": true, "-=": true, "*=": true, "/=": true, "<=": true, ">=": true,
	"!=": true,
}

// Lexer holds the scanning state for one source file.
// Never share a Lexer between files.
type Lexer struct {
	state  state
	buf    strings.Builder // current run, or multi-line string contents
	opened int             // line a multi-line comment or string was opened on
}

// New returns a Lexer in the default state.
func New() *Lexer {
	return &Lexer{}
}

// LexString splits src into lines and lexes them with a fresh Lexer.
func LexString(src string) ([]ast.Token, error) {
	return New().Lex(SplitLines(src))
}

// SplitLines breaks src on newlines, dropping a trailing carriage return from
// each line.
func SplitLines(src string) []string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Lex scans every line in order and returns the accumulated tokens. A
// multi-line comment or string still open after the last line is an error.
func (l *Lexer) Lex(lines []string) ([]ast.Token, error) {
	var tokens []ast.Token
	for i, line := range lines {
		toks, err := l.AnalyzeLine(line, i+1)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, toks...)
	}
	switch l.state {
	case stateMultilineComment:
		return nil, diag.Newf(diag.Syntax, l.opened, "EOF while scanning multi-line comment")
	case stateMultilineString:
		return nil, diag.Newf(diag.Syntax, l.opened, "EOF while scanning multi-line string literal")
	}
	return tokens, nil
}

// AnalyzeLine scans one line. lineNumber is 1-based and stamped on every token
// the line produces.
func (l *Lexer) AnalyzeLine(line string, lineNumber int) ([]ast.Token, error) {
	var toks []ast.Token
	emit := func(tok ast.Token) { toks = append(toks, tok) }

	i := 0
	for i < len(line) {
		c := line[i]
		next := byte(0)
		if i+1 < len(line) {
			next = line[i+1]
		}

		// Continue whatever the previous character started.
		switch l.state {
		case stateMultilineComment:
			if c == '*' && next == '/' {
				l.state = stateDefault
				i += 2
			} else {
				i++
			}
			continue

		case stateMultilineString:
			switch {
			case c == '\\' && next != 0:
				l.buf.WriteByte(c)
				l.buf.WriteByte(next)
				i += 2
			case c == '"' && next == '/':
				emit(ast.Variable(ast.STRING, `"`+l.buf.String()+`"`, lineNumber))
				l.buf.Reset()
				l.state = stateDefault
				i += 2
			case c == '"':
				l.buf.WriteString(`\"`)
				i++
			default:
				l.buf.WriteByte(c)
				i++
			}
			continue

		case stateNumber:
			if isDigit(c) || c == '.' {
				l.buf.WriteByte(c)
				i++
				continue
			}
		case stateOperator:
			if isOperator(c) && !opensComment(c, next) {
				l.buf.WriteByte(c)
				i++
				continue
			}
		case stateIdentifier:
			if isLetter(c) || isDigit(c) || c == '_' {
				l.buf.WriteByte(c)
				i++
				continue
			}
		}
		if err := l.closeRun(lineNumber, emit); err != nil {
			return nil, err
		}

		// Default state: c starts something new.
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			i++
		case c == '"':
			end, err := scanString(line, i, lineNumber)
			if err != nil {
				return nil, err
			}
			emit(ast.Variable(ast.STRING, line[i:end], lineNumber))
			i = end
		case c == '/' && next == '/':
			return toks, nil
		case c == '/' && next == '*':
			l.state = stateMultilineComment
			l.opened = lineNumber
			i += 2
		case c == '/' && next == '"':
			l.state = stateMultilineString
			l.opened = lineNumber
			l.buf.Reset()
			i += 2
		case isDigit(c):
			l.startRun(stateNumber, c)
			i++
		case isLetter(c):
			l.startRun(stateIdentifier, c)
			i++
		case isOperator(c):
			l.startRun(stateOperator, c)
			i++
		default:
			kind, ok := ast.LookupPunctuation(c)
			if !ok {
				r, _ := utf8.DecodeRuneInString(line[i:])
				return nil, diag.Newf(diag.Syntax, lineNumber, "Unrecognized character '%c'", r)
			}
			emit(ast.Static(kind, lineNumber))
			i++
		}
	}

	if err := l.closeRun(lineNumber, emit); err != nil {
		return nil, err
	}
	if l.state == stateMultilineString {
		l.buf.WriteByte('\n')
	}
	return toks, nil
}

func (l *Lexer) startRun(s state, c byte) {
	l.state = s
	l.buf.Reset()
	l.buf.WriteByte(c)
}

// closeRun finishes an open number, operator or identifier run. It is a no-op
// in any other state.
func (l *Lexer) closeRun(line int, emit func(ast.Token)) error {
	run := l.buf.String()
	switch l.state {
	case stateNumber:
		if !validNumber(run) {
			return diag.Newf(diag.Syntax, line, "Found invalid number '%s'", run)
		}
		emit(ast.Variable(ast.NUMBER, run, line))
	case stateOperator:
		for _, op := range splitOperators(run) {
			emit(ast.Variable(ast.OP, op, line))
		}
	case stateIdentifier:
		if kind := ast.LookupWord(run); kind != ast.ID {
			emit(ast.Static(kind, line))
		} else {
			emit(ast.Variable(ast.ID, run, line))
		}
	default:
		return nil
	}
	l.buf.Reset()
	l.state = stateDefault
	return nil
}

// scanString returns the index just past the closing quote of the single-line
// string starting at line[start]. A backslash escapes the character after it.
func scanString(line string, start, lineNumber int) (int, error) {
	for j := start + 1; j < len(line); j++ {
		switch line[j] {
		case '\\':
			j++
		case '"':
			return j + 1, nil
		}
	}
	return 0, diag.Newf(diag.Syntax, lineNumber, "EOL while scanning string literal")
}

// splitOperators breaks an operator run into known operators by longest
// match. Every operator character is an operator by itself, so the whole run
// is always consumed.
func splitOperators(run string) []string {
	var ops []string
	for len(run) > 0 {
		if len(run) >= 2 && operators[run[:2]] {
			ops = append(ops, run[:2])
			run = run[2:]
			continue
		}
		ops = append(ops, run[:1])
		run = run[1:]
	}
	return ops
}

// validNumber reports whether s matches digits(.digits)?
func validNumber(s string) bool {
	intPart, frac, hasDot := strings.Cut(s, ".")
	if !allDigits(intPart) {
		return false
	}
	return !hasDot || allDigits(frac)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// opensComment reports whether c, next begin a comment or multi-line string,
// which end an operator run.
func opensComment(c, next byte) bool {
	return c == '/' && (next == '/' || next == '*' || next == '"')
}

func isOperator(b byte) bool {
	return strings.IndexByte("+-*/%!&^=?<>|", b) >= 0
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
