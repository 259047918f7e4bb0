// Package ast defines the tokens and syntax-tree nodes shared by the Quill
// lexer, parser and semantic pass.
//
// A token is either static (a fixed keyword or punctuation mark with no
// payload) or variable (an ID, NUMBER, STRING or OP carrying its lexeme).
// Every token is stamped with the 1-based source line it was scanned on;
// line 0 marks a synthetic token such as EOF.
package ast

import "fmt"

// Kind identifies the category of a token.
type Kind int

const (
	// ── Special ────────────────────────────────────────────────────────────────

	// EOF is synthesized by the parser when it runs past the last token.
	// The lexer never emits it.
	EOF Kind = iota

	// ── Variable tokens (carry a lexeme) ──────────────────────────────────────

	// ID is an identifier: [a-zA-Z][a-zA-Z0-9_]*
	ID
	// NUMBER is an integer or decimal literal: digits(.digits)?
	NUMBER
	// STRING is a string literal. The lexeme keeps the surrounding quotes and
	// escape sequences exactly as written.
	STRING
	// OP is an operator: + - * / % ! & ^ = ? < > | and the multi-character
	// forms ++ -- ** == && || += -= *= /= <= >= !=
	OP

	// ── Keywords ───────────────────────────────────────────────────────────────

	CONST
	INT_TYPE
	FLOAT_TYPE
	STRING_TYPE
	BOOLEAN_TYPE
	FN
	RETURN
	FOR
	IF
	ELSE
	WHILE
	BREAK
	CONTINUE
	TRUE
	FALSE
	// ARRAY is the generic array type constructor: Array<int>
	ARRAY
	// MUT marks a const array whose elements may still change: const mut Array<int>
	MUT
	NULL

	// ── Punctuation ────────────────────────────────────────────────────────────

	LBRACE
	RBRACE
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	SEMICOLON
	COLON
	COMMA
)

var kindNames = [...]string{
	EOF:          "EOF",
	ID:           "ID",
	NUMBER:       "NUMBER",
	STRING:       "STRING",
	OP:           "OP",
	CONST:        "CONST",
	INT_TYPE:     "INT_TYPE",
	FLOAT_TYPE:   "FLOAT_TYPE",
	STRING_TYPE:  "STRING_TYPE",
	BOOLEAN_TYPE: "BOOLEAN_TYPE",
	FN:           "FN",
	RETURN:       "RETURN",
	FOR:          "FOR",
	IF:           "IF",
	ELSE:         "ELSE",
	WHILE:        "WHILE",
	BREAK:        "BREAK",
	CONTINUE:     "CONTINUE",
	TRUE:         "TRUE",
	FALSE:        "FALSE",
	ARRAY:        "ARRAY",
	MUT:          "MUT",
	NULL:         "NULL",
	LBRACE:       "LBRACE",
	RBRACE:       "RBRACE",
	LPAREN:       "LPAREN",
	RPAREN:       "RPAREN",
	LBRACKET:     "LBRACKET",
	RBRACKET:     "RBRACKET",
	SEMICOLON:    "SEMICOLON",
	COLON:        "COLON",
	COMMA:        "COMMA",
}

// spellings holds the source text of every static kind.
var spellings = map[Kind]string{
	CONST:        "const",
	INT_TYPE:     "int",
	FLOAT_TYPE:   "float",
	STRING_TYPE:  "string",
	BOOLEAN_TYPE: "boolean",
	FN:           "fn",
	RETURN:       "return",
	FOR:          "for",
	IF:           "if",
	ELSE:         "else",
	WHILE:        "while",
	BREAK:        "break",
	CONTINUE:     "continue",
	TRUE:         "true",
	FALSE:        "false",
	ARRAY:        "Array",
	MUT:          "mut",
	NULL:         "null",
	LBRACE:       "{",
	RBRACE:       "}",
	LPAREN:       "(",
	RPAREN:       ")",
	LBRACKET:     "[",
	RBRACKET:     "]",
	SEMICOLON:    ";",
	COLON:        ":",
	COMMA:        ",",
}

// reserved maps every Quill keyword to its Kind. The lexer consults it when it
// closes an identifier run.
var reserved = map[string]Kind{}

// punctuation maps single-character punctuation to its Kind.
var punctuation = map[byte]Kind{}

func init() {
	for k, s := range spellings {
		if k >= LBRACE {
			punctuation[s[0]] = k
		} else {
			reserved[s] = k
		}
	}
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsVariable reports whether tokens of this kind carry a lexeme.
func (k Kind) IsVariable() bool {
	switch k {
	case ID, NUMBER, STRING, OP:
		return true
	}
	return false
}

// IsPrimitiveType reports whether k names one of the scalar types.
func (k Kind) IsPrimitiveType() bool {
	switch k {
	case INT_TYPE, FLOAT_TYPE, STRING_TYPE, BOOLEAN_TYPE:
		return true
	}
	return false
}

// LookupWord returns the keyword kind for word, or ID when word is not
// reserved.
func LookupWord(word string) Kind {
	if k, ok := reserved[word]; ok {
		return k
	}
	return ID
}

// LookupPunctuation returns the kind of a single punctuation character.
func LookupPunctuation(c byte) (Kind, bool) {
	k, ok := punctuation[c]
	return k, ok
}

// Token is a single lexical unit.
type Token struct {
	Kind   Kind
	Lexeme string // empty for static tokens
	Line   int    // 1-based source line; 0 when synthetic
}

// Static builds a payload-free token.
func Static(kind Kind, line int) Token {
	if kind.IsVariable() {
		panic(fmt.Sprintf("ast.Static: %v carries a lexeme", kind))
	}
	return Token{Kind: kind, Line: line}
}

// Variable builds a lexeme-carrying token.
func Variable(kind Kind, lexeme string, line int) Token {
	if !kind.IsVariable() {
		panic(fmt.Sprintf("ast.Variable: %v is a static kind", kind))
	}
	return Token{Kind: kind, Lexeme: lexeme, Line: line}
}

// Is reports whether t is an OP token with the given lexeme.
func (t Token) Is(op string) bool {
	return t.Kind == OP && t.Lexeme == op
}

// Text returns the source text of the token: the lexeme of a variable token,
// or the fixed spelling of a static one.
func (t Token) Text() string {
	if t.Kind.IsVariable() {
		return t.Lexeme
	}
	return spellings[t.Kind]
}

func (t Token) String() string {
	if t.Kind.IsVariable() {
		return fmt.Sprintf("%v %q", t.Kind, t.Lexeme)
	}
	return t.Kind.String()
}
